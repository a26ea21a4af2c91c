package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/agentstation/tablesync/pkg/errors"
)

// DecodeResponse decodes a JSON response into the target structure.
// Non-2xx statuses become APIErrors carrying the status code, which is what
// the applier's retry classification keys off.
func DecodeResponse(store string, resp *http.Response, target any) error {
	defer resp.Body.Close() //nolint:errcheck // read side already consumed

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &errors.APIError{
			Store:      store,
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   resp.Request.URL.Path,
		}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}

	return nil
}
