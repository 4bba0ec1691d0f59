// Package imgqa classifies catalog product photographs fetched from a URL.
//
// The core is a deterministic content-boundary detector: it finds the tight
// bounding box of non-white content, decides whether the photograph is a
// "scene" (content reaching every edge) or a product on white, and derives a
// padding ratio that tells the catalog whether the image must be cropped.
package imgqa

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Catalog resolution rules.
const (
	// MinLongEdge is the minimum resolution: an image whose sides are both
	// shorter than this is low resolution.
	MinLongEdge = 1200

	// MaxMegapixels is the resolution ceiling (width x height / 1e6).
	MaxMegapixels = 100

	// NotImagePaddingRatio flags the result as Not_Image when the padding
	// ratio exceeds it. Ratios rarely pass 5, so the flag almost never fires.
	NotImagePaddingRatio = 20
)

// DefaultSupportedTypes are the accepted Content-Type media types.
var DefaultSupportedTypes = []string{"image/png", "image/jpeg", "image/jpg"}

// AnalysisEvent is emitted through Config.OnAnalysis for every analysed URL.
type AnalysisEvent struct {
	URL      string
	Verdict  Verdict
	Scene    bool
	Padding  float64 // zero when not applicable
	Duration time.Duration
	Err      error
}

// Config holds all dependencies injected by the consumer.
type Config struct {
	StealthClient *http.Client  // optional: TLS-fingerprinted client tried first
	HTTPClient    *http.Client  // optional: default http client (nil = http.DefaultClient)
	UserAgent     string        // default: "Mozilla/5.0 (compatible; go-imgqa/1.0)"
	MaxBytes      int64         // max body size read for decoding (default: 64MB)
	Timeout       time.Duration // per-request timeout (default: 30s)

	// SupportedTypes overrides DefaultSupportedTypes. The webp decoder is
	// registered, so "image/webp" may be added here.
	SupportedTypes []string

	// CropThreshold is the padding ratio above which a product image
	// requires cropping (default: 1.0, i.e. padding larger than the product).
	CropThreshold float64

	// Tolerance is the intensity delta below 255 that counts as content.
	// Nil selects DefaultTolerance; a pointer to 0 treats anything below pure
	// white as content.
	Tolerance *int

	// Limiter throttles outgoing fetches when set.
	Limiter *rate.Limiter

	// Concurrency bounds AnalyzeBatch workers (default: 3).
	Concurrency int

	// Optional callbacks for metrics/logging.
	OnPanic    func(tag string, r any)
	OnAnalysis func(AnalysisEvent)
}

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (compatible; go-imgqa/1.0)"

const (
	defaultMaxBytes    = 64 << 20
	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 3
)

// withDefaults returns a copy of c with zero-value fields filled in. The
// receiver is only read, so one Config may serve concurrent calls.
func (c *Config) withDefaults() *Config {
	cp := *c
	cp.defaults()
	return &cp
}

func (c *Config) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = defaultMaxBytes
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if len(c.SupportedTypes) == 0 {
		c.SupportedTypes = DefaultSupportedTypes
	}
	if c.CropThreshold <= 0 {
		c.CropThreshold = DefaultCropThreshold
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
}
