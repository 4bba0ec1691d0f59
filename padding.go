package imgqa

// DefaultCropThreshold requires a crop once padding exceeds the product area.
const DefaultCropThreshold = 1.0

// Padding is the padding-ratio decision for one image.
// Applicable is false when the box is not smaller than the image; Ratio is
// then zero and carries no meaning.
type Padding struct {
	RequireCrop bool
	Ratio       float64
	Applicable  bool
}

// EvaluatePadding compares the image area with the content box area.
// The ratio (imageArea-boxArea)/boxArea is rounded to three decimals and a
// crop is required when it exceeds threshold.
func EvaluatePadding(imageArea, boxArea, threshold float64) Padding {
	if boxArea >= imageArea {
		return Padding{}
	}
	ratio := round((imageArea-boxArea)/boxArea, 3)
	return Padding{
		RequireCrop: ratio > threshold,
		Ratio:       ratio,
		Applicable:  true,
	}
}

// EvaluateBox applies EvaluatePadding to a detection on a rows x cols image.
//
// The box is treated as a square on its longer side, so elongated content
// reads as less padded than it is. The image area is (rows-1)*(cols-1) to
// match the inclusive box edges. On scene images any padding at all
// requires a crop.
func EvaluateBox(rows, cols int, d Detection, threshold float64) Padding {
	side := max(d.Box.Width(), d.Box.Height())
	p := EvaluatePadding(float64((rows-1)*(cols-1)), float64(side*side), threshold)
	if d.Scene {
		p.RequireCrop = p.Ratio > 0
	}
	return p
}
