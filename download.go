package imgqa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// ErrFetch is returned when the image URL cannot be reached at all.
var ErrFetch = errors.New("imgqa: fetch image")

// FetchResult holds the response facts the catalog rules look at, plus the
// body when it was downloaded.
type FetchResult struct {
	StatusCode         int
	ContentType        string // raw Content-Type header, empty when absent
	ContentLength      string // raw Content-Length header, empty when absent
	ValidContentLength bool   // Content-Length present, all digits and > 0
	SupportedType      bool   // media type in Config.SupportedTypes (true when no Content-Type)
	Downloaded         bool   // body was read into Data
	Data               []byte
}

// Fetch requests rawURL and inspects its headers. The body is read only when
// download is set, the status is 200, Content-Length is valid and the type is
// supported. Tries cfg.StealthClient first (if set) and falls back to
// cfg.HTTPClient when the stealth attempt errors or does not return 200.
func (cfg *Config) Fetch(ctx context.Context, rawURL string, download bool) (*FetchResult, error) {
	cfg = cfg.withDefaults()

	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetch, err)
		}
	}

	if cfg.StealthClient != nil {
		r, err := cfg.fetchWith(ctx, cfg.StealthClient, rawURL, download)
		if err == nil && r.StatusCode == http.StatusOK {
			return r, nil
		}
	}

	return cfg.fetchWith(ctx, cfg.HTTPClient, rawURL, download)
}

func (cfg *Config) fetchWith(ctx context.Context, client *http.Client, rawURL string, download bool) (*FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req) //nolint:gosec // G704: URL is caller-supplied, SSRF checks belong to the caller
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	r := &FetchResult{
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.Header.Get("Content-Length"),
		SupportedType: true,
	}
	r.ValidContentLength = validContentLength(r.ContentLength)
	if r.ContentType != "" {
		r.SupportedType = cfg.supported(r.ContentType)
	}

	if !download || resp.StatusCode != http.StatusOK || !r.ValidContentLength || !r.SupportedType {
		return r, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, cfg.MaxBytes))
	if err != nil {
		return r, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	r.Data = data
	r.Downloaded = true
	return r, nil
}

// validContentLength reports whether the header is a positive decimal integer.
func validContentLength(v string) bool {
	if v == "" || strings.TrimLeft(v, "0123456789") != "" {
		return false
	}
	n, err := strconv.ParseUint(v, 10, 64)
	return err == nil && n > 0
}

func (cfg *Config) supported(contentType string) bool {
	mt := mediaType(contentType)
	for _, t := range cfg.SupportedTypes {
		if mt == t {
			return true
		}
	}
	return false
}
