package imgqa

// LowResolution reports whether both sides are below MinLongEdge, i.e. the
// longer edge misses the minimum.
func LowResolution(rows, cols int) bool {
	return rows < MinLongEdge && cols < MinLongEdge
}

// ResolutionTooHigh reports whether the image reaches MaxMegapixels.
func ResolutionTooHigh(rows, cols int) bool {
	return float64(rows)*float64(cols)/1e6 >= MaxMegapixels
}
