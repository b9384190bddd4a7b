package supabase

import (
	"errors"
	"strings"
	"time"

	"vet-clinic/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("supabase client not configured")
)

// Config del proyecto Supabase. Normalmente SUPABASE_URL + SUPABASE_ANON_KEY.
type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration

	// Table del Record Store; vacío => "clients".
	Table string
}

// Client comparte el httpclient entre Auth (GoTrue) y REST (PostgREST).
type Client struct {
	http    *httpclient.Client
	anonKey string
	table   string
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, ErrNotConfigured
	}

	hc, err := httpclient.NewWithBaseURL(cfg.URL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSpace(cfg.AnonKey)
	hc.Headers = map[string]string{
		"apikey": key,
	}

	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		table = "clients"
	}

	return &Client{
		http:    hc,
		anonKey: key,
		table:   table,
	}, nil
}

// bearer: token de usuario si hay, si no la anon key (rol anon de PostgREST).
func (c *Client) bearer(token string) map[string]string {
	if strings.TrimSpace(token) == "" {
		token = c.anonKey
	}
	return map[string]string{"Authorization": "Bearer " + token}
}
