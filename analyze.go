package imgqa

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// errNotDownloaded is recorded when the response had an empty body.
const errNotDownloaded = "image data not downloaded"

// Point is a pixel coordinate in a bound box corner.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Result is the per-URL record handed to the catalog. JSON keys follow the
// record layout the catalog ingest already consumes.
type Result struct {
	ImageURL              string   `json:"Image_URL"`
	StatusCode            int      `json:"URL_Status_Code"`
	NotImage              bool     `json:"Not_Image"`
	InvalidContentLength  bool     `json:"Invalid_ContentLength"`
	LowResolution         bool     `json:"Low_Resolution"`
	ResolutionTooHigh     *bool    `json:"Resolution_TooHigh"`
	UnsupportedImageType  bool     `json:"Unsupported_ImageType"`
	UnsupportedColorModel bool     `json:"Unsupported_ColorModel"`
	RequireCrop           *bool    `json:"Require_Crop"`
	PaddingPercent        *float64 `json:"Padding_Percent"`
	NonWhiteFraction      *float64 `json:"NonWhite_Fraction,omitempty"` // share of perimeter pixels below white, 0-1
	IsScene               *bool    `json:"is_Scene"`
	ImageDataType         string   `json:"Image_DataType,omitempty"`
	ImageShape            []int    `json:"Image_Shape,omitempty"` // rows, cols, channels
	BoundBox              []Point  `json:"Bound_Box,omitempty"`   // (left, upper), (right, lower)
	Orientation           int      `json:"Orientation,omitempty"`
	Error                 string   `json:"error,omitempty"`
}

// AnalyzeOpts configures a single analysis.
type AnalyzeOpts struct {
	// HeadersOnly skips the body download and pixel analysis; only status,
	// Content-Length and Content-Type are checked.
	HeadersOnly bool
}

// Analyze fetches the image at rawURL and produces its catalog record.
// A transport failure returns ErrFetch and no record. An undecodable body
// returns ErrDecode together with the header-level record.
func (cfg *Config) Analyze(ctx context.Context, rawURL string, opts AnalyzeOpts) (*Result, error) {
	res, _, err := cfg.analyze(ctx, rawURL, opts)
	return res, err
}

// analyze is Analyze that also hands back the decoded image for batch dedup.
func (cfg *Config) analyze(ctx context.Context, rawURL string, opts AnalyzeOpts) (*Result, *Decoded, error) {
	cfg = cfg.withDefaults()
	start := time.Now()

	u := NormalizeURL(rawURL)
	res, dec, err := cfg.run(ctx, u, opts)

	if cfg.OnAnalysis != nil {
		ev := AnalysisEvent{URL: u, Duration: time.Since(start), Err: err}
		if res != nil {
			ev.Verdict = Assess(res).Verdict
			ev.Scene = res.IsScene != nil && *res.IsScene
			if res.PaddingPercent != nil {
				ev.Padding = *res.PaddingPercent
			}
		}
		cfg.OnAnalysis(ev)
	}
	return res, dec, err
}

func (cfg *Config) run(ctx context.Context, u string, opts AnalyzeOpts) (*Result, *Decoded, error) {
	fr, err := cfg.Fetch(ctx, u, !opts.HeadersOnly)
	if fr == nil {
		slog.Debug("imgqa: fetch failed", "url", u, "error", err)
		return nil, nil, err
	}

	res := &Result{
		ImageURL:             u,
		StatusCode:           fr.StatusCode,
		InvalidContentLength: !fr.ValidContentLength,
		UnsupportedImageType: !fr.SupportedType,
		ImageDataType:        fr.ContentType,
	}
	if err != nil {
		res.Error = err.Error()
		return res, nil, err
	}
	if !fr.Downloaded {
		return res, nil, nil
	}
	if len(fr.Data) == 0 {
		res.Error = errNotDownloaded
		return res, nil, nil
	}

	dec, err := DecodeImage(fr.Data)
	if err != nil {
		slog.Debug("imgqa: decode failed", "url", u, "error", err)
		res.Error = err.Error()
		if errors.Is(err, ErrTooLarge) {
			recordSize(res, fr.Data)
		}
		return res, nil, err
	}

	cfg.evaluate(res, dec)
	return res, dec, nil
}

// recordSize fills the resolution fields from the image header alone.
func recordSize(res *Result, data []byte) {
	rows, cols, _, err := ImageSize(data)
	if err != nil {
		return
	}
	res.ImageShape = []int{rows, cols, 3}
	tooHigh := ResolutionTooHigh(rows, cols)
	res.ResolutionTooHigh = &tooHigh
	res.LowResolution = LowResolution(rows, cols)
}

// evaluate fills the pixel-level fields of res from dec.
func (cfg *Config) evaluate(res *Result, dec *Decoded) {
	rows, cols := dec.Rows(), dec.Cols()
	res.ImageShape = []int{rows, cols, 3}
	res.UnsupportedColorModel = dec.CMYK
	if dec.Meta != nil {
		res.Orientation = dec.Meta.Orientation
	}

	det := Detect(dec.Gray, scanTolerance(cfg.Tolerance))
	pad := EvaluateBox(rows, cols, det, cfg.CropThreshold)

	slog.Debug("imgqa: padding evaluated", "url", res.ImageURL,
		"ratio", pad.Ratio, "applicable", pad.Applicable, "scene", det.Scene)

	tooHigh := ResolutionTooHigh(rows, cols)
	res.ResolutionTooHigh = &tooHigh
	res.LowResolution = LowResolution(rows, cols)

	// A non-applicable ratio stays null in the record.
	if pad.Applicable {
		ratio := pad.Ratio
		res.PaddingPercent = &ratio
		res.NotImage = ratio > NotImagePaddingRatio
	}
	res.RequireCrop = &pad.RequireCrop
	res.IsScene = &det.Scene
	frac := det.NonWhiteFraction
	res.NonWhiteFraction = &frac

	res.BoundBox = []Point{
		{X: det.Box.Left, Y: det.Box.Upper},
		{X: det.Box.Right, Y: det.Box.Lower},
	}
}
