package httpds

import (
	"context"
	"io"
	"strings"
)

// Source adapts Client to the datasource.Source interface so that a job can
// point its input or mapping path at a URL.
type Source struct {
	client *Client
	url    string
}

// NewSource returns a Source that fetches the given URL on Open. A nil client
// gets default Config.
func NewSource(client *Client, url string) *Source {
	if client == nil {
		client = NewClient(Config{})
	}
	return &Source{client: client, url: url}
}

// Open performs the GET and returns the response body. The caller owns the
// returned ReadCloser.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// IsURL reports whether path looks like an http(s) URL rather than a local
// filesystem path.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
