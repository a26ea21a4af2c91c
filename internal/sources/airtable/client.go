// Package airtable implements the remote tabular store collaborator
// against the Airtable REST API: offset-token pagination on the read side,
// batched creates and partial updates on the write side.
package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/agentstation/tablesync/internal/transport"
	"github.com/agentstation/tablesync/pkg/applier"
	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/record"
	"github.com/agentstation/tablesync/pkg/syncer"
)

const (
	// defaultBaseURL is the Airtable REST API root.
	defaultBaseURL = "https://api.airtable.com/v0"

	// maxBatchSize is Airtable's hard limit on records per write call.
	maxBatchSize = 10

	storeName = "airtable"
)

// Client talks to one Airtable table.
type Client struct {
	transport *transport.Client
	tableURL  string
	pageSize  int
	batchSize int
}

// New creates a Client for the given base and table, authenticating with
// the access token.
func New(accessToken, baseID, tableName string, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, errors.ErrAccessTokenRequired
	}
	if baseID == "" || tableName == "" {
		return nil, errors.NewConfigError(storeName, "base ID and table name are required", errors.ErrInvalidInput)
	}

	c := &Client{
		transport: transport.New(&transport.BearerAuth{Token: accessToken}),
		tableURL:  fmt.Sprintf("%s/%s/%s", defaultBaseURL, baseID, url.PathEscape(tableName)),
		pageSize:  constants.DefaultPageSize,
		batchSize: maxBatchSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// apiRecord is the wire form of one Airtable record.
type apiRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

// listResponse is the wire form of one list page.
type listResponse struct {
	Records []apiRecord `json:"records"`
	Offset  string      `json:"offset,omitempty"`
}

// writeRequest is the wire form of one create or update call.
type writeRequest struct {
	Records []apiRecord `json:"records"`
}

// MaxBatchSize implements applier.Store.
func (c *Client) MaxBatchSize() int {
	return c.batchSize
}

// List implements syncer.Remote, starting a fresh pagination.
func (c *Client) List() syncer.Pager {
	return &pager{client: c}
}

// pager walks the table's offset-token pagination.
type pager struct {
	client *Client
	offset string
}

// Next fetches one page. The offset token from each response addresses the
// next page; its absence means the listing is exhausted.
func (p *pager) Next(ctx context.Context) ([]record.RemoteRecord, bool, error) {
	u := p.client.tableURL
	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(p.client.pageSize))
	if p.offset != "" {
		params.Set("offset", p.offset)
	}
	u += "?" + params.Encode()

	resp, err := p.client.transport.Get(ctx, u)
	if err != nil {
		return nil, false, errors.WrapIO("fetch", u, err)
	}

	var page listResponse
	if err := transport.DecodeResponse(storeName, resp, &page); err != nil {
		return nil, false, err
	}
	records := make([]record.RemoteRecord, 0, len(page.Records))
	for _, r := range page.Records {
		records = append(records, record.NewRemote(r.ID, r.Fields))
	}

	p.offset = page.Offset
	return records, p.offset != "", nil
}

// Create implements applier.Store. Airtable applies a create call
// atomically, so a per-item failure cannot outlive a successful call.
func (c *Client) Create(ctx context.Context, records []record.Record) ([]applier.ItemResult, error) {
	req := writeRequest{Records: make([]apiRecord, len(records))}
	for i, rec := range records {
		req.Records[i] = apiRecord{Fields: rec.Fields()}
	}

	var resp listResponse
	if err := c.write(ctx, "POST", req, &resp); err != nil {
		return nil, err
	}

	items := make([]applier.ItemResult, len(records))
	for i := range items {
		if i < len(resp.Records) {
			items[i].RemoteID = resp.Records[i].ID
		}
	}
	return items, nil
}

// Update implements applier.Store. PATCH rewrites only the submitted
// fields, leaving the rest of each remote record untouched.
func (c *Client) Update(ctx context.Context, updates []applier.Update) ([]applier.ItemResult, error) {
	req := writeRequest{Records: make([]apiRecord, len(updates))}
	for i, upd := range updates {
		req.Records[i] = apiRecord{ID: upd.RemoteID, Fields: upd.Fields.Fields()}
	}

	var resp listResponse
	if err := c.write(ctx, "PATCH", req, &resp); err != nil {
		return nil, err
	}

	items := make([]applier.ItemResult, len(updates))
	for i, upd := range updates {
		items[i].RemoteID = upd.RemoteID
	}
	return items, nil
}

// write issues one batched write call and decodes the response.
func (c *Client) write(ctx context.Context, method string, req writeRequest, out *listResponse) error {
	body, err := json.Marshal(req)
	if err != nil {
		return errors.WrapParse("json", "write request", err)
	}

	resp, err := c.transport.Send(ctx, method, c.tableURL, body)
	if err != nil {
		return errors.WrapIO("write", c.tableURL, err)
	}

	return transport.DecodeResponse(storeName, resp, out)
}
