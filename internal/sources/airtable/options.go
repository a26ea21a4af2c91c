package airtable

import (
	"fmt"
	"net/url"
)

// Option is a functional option for configuring a Client
type Option func(*Client)

// WithPageSize sets how many records are requested per list page
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithBatchSize sets how many records are written per batch, capped at the
// API's limit of ten records per call.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= maxBatchSize {
			c.batchSize = n
		}
	}
}

// WithBaseURL points the client at a different API root. Used by tests to
// target a local server.
func WithBaseURL(baseURL, baseID, tableName string) Option {
	return func(c *Client) {
		c.tableURL = fmt.Sprintf("%s/%s/%s", baseURL, baseID, url.PathEscape(tableName))
	}
}
