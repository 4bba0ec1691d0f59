package imgqa

import "image"

// DefaultTolerance is the intensity delta below pure white that marks a
// row or column as content.
const DefaultTolerance = 1

// minScanDim is the smallest grid side the scanner works on. Below it the
// coarse step would be zero and the full grid is returned unscanned.
const minScanDim = 200

// coarseDivisor sets the estimate-mode step to min(rows, cols)/coarseDivisor.
const coarseDivisor = 100

// Rect is an axis-aligned content rectangle with inclusive bounds.
type Rect struct {
	Left  int `json:"left"`
	Right int `json:"right"`
	Upper int `json:"upper"`
	Lower int `json:"lower"`
}

// Width is the horizontal extent between the inclusive edges (Right - Left).
func (r Rect) Width() int { return r.Right - r.Left }

// Height is the vertical extent between the inclusive edges (Lower - Upper).
func (r Rect) Height() int { return r.Lower - r.Upper }

// fullRect is the degenerate rectangle covering the whole grid.
func fullRect(rows, cols int) Rect {
	return Rect{Left: 0, Right: cols - 1, Upper: 0, Lower: rows - 1}
}

// ScanOpts configures FindBoundingBox.
// Zero values mean "use defaults": fine scan, whole grid, Tolerance 1.
type ScanOpts struct {
	Estimate bool  // coarse scan with step min(rows,cols)/100
	Bounds   *Rect // start each edge walk here instead of at the grid border

	// Tolerance is honoured as given, including 0 (anything below 255 is
	// content). Nil or negative selects DefaultTolerance.
	Tolerance *int
}

func scanTolerance(p *int) int {
	if p == nil || *p < 0 {
		return DefaultTolerance
	}
	return *p
}

// FindBoundingBox locates the rectangle enclosing non-white content in g.
//
// Each edge walks inward from the search region's border and stops at the
// first row or column whose mean intensity, rounded to two decimals, falls
// below 255-Tolerance. The mean always spans the full grid width or height.
// It never fails: tiny grids, blank images and crossed scans all yield the
// full-grid rectangle.
func FindBoundingBox(g *image.Gray, opts ScanOpts) Rect {
	rows, cols := g.Rect.Dy(), g.Rect.Dx()
	if rows < minScanDim || cols < minScanDim {
		return fullRect(rows, cols)
	}

	limit := float64(255 - scanTolerance(opts.Tolerance))

	r := fullRect(rows, cols)
	if opts.Bounds != nil {
		b := *opts.Bounds
		r = Rect{
			Left:  clamp(b.Left, 0, cols-1),
			Right: clamp(b.Right, 0, cols-1),
			Upper: clamp(b.Upper, 0, rows-1),
			Lower: clamp(b.Lower, 0, rows-1),
		}
	}

	step, shift := 1, 0
	if opts.Estimate {
		step = min(rows, cols) / coarseDivisor
		shift = step
	}

	for i := r.Upper; i < rows; i += step {
		if rowMean(g, i) < limit {
			r.Upper = i
			break
		}
	}
	for i := r.Lower; i > 0; i -= step {
		if rowMean(g, i) < limit {
			r.Lower = i
			break
		}
	}
	for j := r.Left; j < cols; j += step {
		if colMean(g, j) < limit {
			r.Left = j
			break
		}
	}
	for j := r.Right; j > 0; j -= step {
		if colMean(g, j) < limit {
			r.Right = j
			break
		}
	}

	// Each edge clamps against the grid, never against the opposite edge.
	if opts.Estimate {
		r.Left = max(r.Left-shift, 0)
		r.Right = min(r.Right+shift, cols-1)
		r.Upper = max(r.Upper-shift, 0)
		r.Lower = min(r.Lower+shift, rows-1)
	}

	r.Left = clamp(r.Left, 0, cols-1)
	r.Right = clamp(r.Right, 0, cols-1)
	r.Upper = clamp(r.Upper, 0, rows-1)
	r.Lower = clamp(r.Lower, 0, rows-1)

	if r.Left >= r.Right || r.Upper >= r.Lower {
		return fullRect(rows, cols)
	}
	return r
}

// FindBounds runs the coarse pass over the whole grid and refines it with a
// single-step pass started from the estimate. A negative tolerance selects
// DefaultTolerance; 0 treats any row or column below pure white as content.
func FindBounds(g *image.Gray, tolerance int) Rect {
	est := FindBoundingBox(g, ScanOpts{Estimate: true, Tolerance: &tolerance})
	return FindBoundingBox(g, ScanOpts{Bounds: &est, Tolerance: &tolerance})
}

// rowMean returns the mean intensity of row y, rounded to two decimals.
func rowMean(g *image.Gray, y int) float64 {
	off := y * g.Stride
	sum := 0
	for _, v := range g.Pix[off : off+g.Rect.Dx()] {
		sum += int(v)
	}
	return round(float64(sum)/float64(g.Rect.Dx()), 2)
}

// colMean returns the mean intensity of column x, rounded to two decimals.
func colMean(g *image.Gray, x int) float64 {
	rows := g.Rect.Dy()
	sum := 0
	for y, off := 0, x; y < rows; y, off = y+1, off+g.Stride {
		sum += int(g.Pix[off])
	}
	return round(float64(sum)/float64(rows), 2)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
