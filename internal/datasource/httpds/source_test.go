package httpds

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestSourceOpen(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.String() != "http://example/mapping.csv" {
				t.Errorf("url = %s", req.URL)
			}
			return respWithStatus(200, "old,new\nA,X\n"), nil
		}),
	})

	rc, err := NewSource(c, "http://example/mapping.csv").Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	body, _ := io.ReadAll(rc)
	if !strings.HasPrefix(string(body), "old,new") {
		t.Errorf("body = %q", body)
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"http://host/file.json":  true,
		"https://host/file.json": true,
		"/var/data/file.json":    false,
		"file.json":              false,
		"ftp://host/file.json":   false,
	}
	for in, want := range cases {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}
