package imgqa

import (
	"fmt"
	"net/http"
)

// Verdict is the catalog decision for one image.
type Verdict int

const (
	VerdictAccept Verdict = iota // usable as is
	VerdictCrop                  // usable after cropping the white margin
	VerdictReject                // not usable
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccept:
		return "accept"
	case VerdictCrop:
		return "crop"
	case VerdictReject:
		return "reject"
	default:
		return "unknown"
	}
}

// MarshalText encodes the verdict as its name.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Signal is a single evidence point behind a verdict.
type Signal struct {
	Source  string  `json:"source"` // rule name: "status", "content_length", "content_type", ...
	Detail  string  `json:"detail"`
	Verdict Verdict `json:"verdict"`
}

// Assessment combines every catalog rule into a final verdict.
type Assessment struct {
	Verdict Verdict  `json:"verdict"` // Reject > Crop > Accept
	Signals []Signal `json:"signals"` // contributing evidence (never nil, may be empty)
}

// Assess turns a result record into a verdict. Any rejection signal wins;
// otherwise a required crop yields VerdictCrop.
func Assess(res *Result) Assessment {
	signals := make([]Signal, 0, 4) //nolint:mnd // typical failing-rule count

	reject := func(source, detail string) {
		signals = append(signals, Signal{Source: source, Detail: detail, Verdict: VerdictReject})
	}

	if res == nil {
		reject("fetch", "no response")
		return Assessment{Verdict: VerdictReject, Signals: signals}
	}

	if res.StatusCode != http.StatusOK {
		reject("status", fmt.Sprintf("HTTP status %d", res.StatusCode))
	}
	if res.InvalidContentLength {
		reject("content_length", "missing or invalid Content-Length header")
	}
	if res.UnsupportedImageType {
		reject("content_type", "unsupported image type: "+res.ImageDataType)
	}
	if res.Error != "" {
		reject("error", res.Error)
	}
	if res.UnsupportedColorModel {
		reject("color_model", "CMYK image, RGB required")
	}
	if res.LowResolution {
		reject("resolution", fmt.Sprintf("longer edge below %d px", MinLongEdge))
	}
	if res.ResolutionTooHigh != nil && *res.ResolutionTooHigh {
		reject("resolution", fmt.Sprintf("at least %d Mpx", MaxMegapixels))
	}
	if res.NotImage {
		reject("not_image", "padding ratio above content limit")
	}
	if res.RequireCrop != nil && *res.RequireCrop {
		detail := "white margin exceeds crop threshold"
		if res.IsScene != nil && *res.IsScene {
			detail = "scene image with padding"
		}
		signals = append(signals, Signal{Source: "padding", Detail: detail, Verdict: VerdictCrop})
	}

	final := VerdictAccept
	for _, sig := range signals {
		if sig.Verdict == VerdictReject {
			final = VerdictReject
			break
		}
		if sig.Verdict == VerdictCrop {
			final = VerdictCrop
		}
	}

	return Assessment{Verdict: final, Signals: signals}
}
