package imgqa

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"
)

const fakeBody = "FAKEIMAGEDATA_PADDING_XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte(fakeBody))
	}))
	defer srv.Close()

	cfg := &Config{HTTPClient: srv.Client()}
	res, err := cfg.Fetch(context.Background(), srv.URL+"/image.jpg", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", res.StatusCode)
	}
	if !res.ValidContentLength || !res.SupportedType {
		t.Errorf("ValidContentLength=%v SupportedType=%v, want both true", res.ValidContentLength, res.SupportedType)
	}
	if !res.Downloaded || string(res.Data) != fakeBody {
		t.Errorf("Downloaded=%v len(Data)=%d, want full body", res.Downloaded, len(res.Data))
	}
}

func TestFetch_SkipsBody(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		download bool
		status   int
		validCL  bool
		typeOK   bool
	}{
		{
			name: "download not requested",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "image/png")
				_, _ = w.Write([]byte(fakeBody))
			},
			download: false, status: http.StatusOK, validCL: true, typeOK: true,
		},
		{
			name: "404",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "image/png")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(fakeBody))
			},
			download: true, status: http.StatusNotFound, validCL: true, typeOK: true,
		},
		{
			name: "unsupported type",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "image/gif")
				_, _ = w.Write([]byte(fakeBody))
			},
			download: true, status: http.StatusOK, validCL: true, typeOK: false,
		},
		{
			name: "html page",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html></html>"))
			},
			download: true, status: http.StatusOK, validCL: true, typeOK: false,
		},
		{
			name: "zero content length",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				w.Header().Set("Content-Length", "0")
			},
			download: true, status: http.StatusOK, validCL: false, typeOK: true,
		},
		{
			name: "chunked response has no content length",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				_, _ = w.Write([]byte(fakeBody))
				w.(http.Flusher).Flush()
				_, _ = w.Write([]byte(fakeBody))
			},
			download: true, status: http.StatusOK, validCL: false, typeOK: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			cfg := &Config{HTTPClient: srv.Client()}
			res, err := cfg.Fetch(context.Background(), srv.URL+"/img", tc.download)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.StatusCode != tc.status {
				t.Errorf("StatusCode = %d, want %d", res.StatusCode, tc.status)
			}
			if res.ValidContentLength != tc.validCL {
				t.Errorf("ValidContentLength = %v, want %v (header %q)", res.ValidContentLength, tc.validCL, res.ContentLength)
			}
			if res.SupportedType != tc.typeOK {
				t.Errorf("SupportedType = %v, want %v", res.SupportedType, tc.typeOK)
			}
			if res.Downloaded || res.Data != nil {
				t.Errorf("body read (%d bytes), want skipped", len(res.Data))
			}
		})
	}
}

func TestFetch_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()

	cfg := &Config{}
	res, err := cfg.Fetch(context.Background(), u+"/gone.jpg", true)
	if !errors.Is(err, ErrFetch) {
		t.Errorf("err = %v, want ErrFetch", err)
	}
	if res != nil {
		t.Errorf("res = %+v, want nil", res)
	}
}

func TestFetch_MaxBytesEnforcement(t *testing.T) {
	const maxBytes = 10
	body := strings.Repeat("X", 100)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	cfg := &Config{HTTPClient: srv.Client(), MaxBytes: maxBytes}
	res, err := cfg.Fetch(context.Background(), srv.URL+"/big.png", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if int64(len(res.Data)) > maxBytes {
		t.Errorf("Data len = %d, want <= %d", len(res.Data), maxBytes)
	}
}

func TestFetch_StealthClientFallback(t *testing.T) {
	// srv is the real server that the fallback HTTPClient will reach.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte(fakeBody))
	}))
	defer srv.Close()

	// stealthSrv always returns 403 to simulate a failed stealth attempt.
	stealthSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer stealthSrv.Close()

	stealthClient := stealthSrv.Client()
	stealthClient.Transport = redirectTransport(stealthSrv.URL)

	regularClient := srv.Client()
	regularClient.Transport = redirectTransport(srv.URL)

	cfg := &Config{
		StealthClient: stealthClient,
		HTTPClient:    regularClient,
	}

	// The URL itself doesn't matter; transports redirect to their respective test servers.
	res, err := cfg.Fetch(context.Background(), "http://example.com/image.png", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusOK || !res.Downloaded {
		t.Errorf("StatusCode=%d Downloaded=%v, want fallback success", res.StatusCode, res.Downloaded)
	}
}

// redirectTransport returns a RoundTripper that rewrites all requests to target.
type redirectTransport string

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.URL.Scheme = "http"
	req2.URL.Host = strings.TrimPrefix(string(rt), "http://")
	return http.DefaultTransport.RoundTrip(req2)
}

func TestFetch_LimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	// Burst 1 consumed up front; the next token is an hour away.
	lim := rate.NewLimiter(rate.Limit(1.0/3600), 1)
	lim.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &Config{HTTPClient: srv.Client(), Limiter: lim}
	if _, err := cfg.Fetch(ctx, srv.URL, true); !errors.Is(err, ErrFetch) {
		t.Errorf("err = %v, want ErrFetch", err)
	}
}

func TestValidContentLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"1024", true},
		{"1", true},
		{"0", false},
		{"", false},
		{"-5", false},
		{"12a", false},
		{" 12", false},
		{"99999999999999999999999", false},
	}

	for _, tc := range tests {
		if got := validContentLength(tc.in); got != tc.want {
			t.Errorf("validContentLength(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
