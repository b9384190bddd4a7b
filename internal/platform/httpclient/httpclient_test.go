package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDo_SendsHeadersAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "k" {
			t.Errorf("missing default header")
		}
		if r.Header.Get("Prefer") != "count=exact" {
			t.Errorf("missing request header")
		}
		w.Header().Set("Content-Range", "*/3")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, err := NewWithBaseURL(srv.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("NewWithBaseURL: %v", err)
	}
	c.Headers = map[string]string{"apikey": "k"}

	var out struct {
		OK bool `json:"ok"`
	}
	h, err := c.Do(context.Background(), Request{
		Path:    "rest/v1/clients",
		Headers: map[string]string{"Prefer": "count=exact"},
		Out:     &out,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !out.OK || h.Get("Content-Range") != "*/3" {
		t.Fatalf("unexpected result ok=%v range=%q", out.OK, h.Get("Content-Range"))
	}
}

func TestDo_Non2xxIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	c := New(time.Second)
	err := c.DoJSON(context.Background(), http.MethodPost, srv.URL+"/x", nil, map[string]string{"a": "b"}, nil)

	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", StatusOf(err))
	}
}

func TestDo_RelativePathWithoutBaseURL(t *testing.T) {
	c := New(0)
	if err := c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil); err == nil {
		t.Fatalf("expected error for relative path without BaseURL")
	}
}
