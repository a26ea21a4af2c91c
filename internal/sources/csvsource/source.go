// Package csvsource implements the CSV side of a sync: it downloads the
// export, parses it, and yields the header plus the rows in file order with
// every value kept verbatim as a string. Typing differences against the
// remote store are the differ's concern, not the reader's.
package csvsource

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/agentstation/tablesync/internal/transport"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/record"
)

// Source fetches and parses one CSV export. It is restartable: every Table
// call re-fetches from the start.
type Source struct {
	url       string
	transport *transport.Client
}

// New creates a Source for the given export URL. URLs without a scheme are
// treated as local file paths, which the original export tooling also
// produces.
func New(exportURL string) *Source {
	return &Source{
		url:       exportURL,
		transport: transport.New(&transport.NoAuth{}),
	}
}

// Table implements syncer.Source.
func (s *Source) Table(ctx context.Context) ([]string, []record.Record, error) {
	reader, err := s.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close() //nolint:errcheck // read-only stream

	return Parse(reader, s.url)
}

// open returns the raw CSV byte stream.
func (s *Source) open(ctx context.Context) (io.ReadCloser, error) {
	if !strings.Contains(s.url, "://") {
		f, err := os.Open(s.url)
		if err != nil {
			return nil, errors.WrapIO("open", s.url, err)
		}
		return f, nil
	}

	resp, err := s.transport.Get(ctx, s.url)
	if err != nil {
		return nil, errors.WrapIO("fetch", s.url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck
		return nil, errors.NewAPIError("csv export", resp.StatusCode, "unable to download CSV file")
	}
	return resp.Body, nil
}

// Parse reads a CSV stream into the header and one Record per data row.
// Rows shorter than the header leave their trailing columns absent rather
// than empty, preserving the absent-versus-empty distinction downstream.
func Parse(r io.Reader, source string) ([]string, []record.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.NewParseError("csv", source, "empty file", nil)
	}
	if err != nil {
		return nil, nil, errors.WrapParse("csv", source, err)
	}

	var records []record.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return header, records, nil
		}
		if err != nil {
			return nil, nil, errors.WrapParse("csv", source, err)
		}

		fields := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) {
				fields[col] = row[i]
			}
		}
		records = append(records, record.New(fields))
	}
}
