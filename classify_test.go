package imgqa

import (
	"math"
	"testing"
)

func TestIsScene_Threshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hist map[uint8]int
		want bool
	}{
		{name: "exactly 90% non-white", hist: map[uint8]int{255: 10, 0: 90}, want: false},
		{name: "91% non-white", hist: map[uint8]int{255: 9, 0: 91}, want: true},
		{name: "254 counts as white", hist: map[uint8]int{254: 10, 12: 90}, want: false},
		{name: "253 is not white", hist: map[uint8]int{253: 10, 12: 90}, want: true},
		{name: "all white", hist: map[uint8]int{255: 100}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isScene(tc.hist, 100); got != tc.want {
				t.Errorf("isScene(%v) = %v, want %v", tc.hist, got, tc.want)
			}
		})
	}
}

func TestNonWhiteFraction_ZeroTotal(t *testing.T) {
	t.Parallel()

	if got := nonWhiteFraction(map[uint8]int{}, 0); got != 0 {
		t.Errorf("nonWhiteFraction(empty, 0) = %v, want 0", got)
	}
}

func TestPerimeterHistogram_Counts(t *testing.T) {
	t.Parallel()

	g := whiteGrid(10, 10)
	r := Rect{Left: 2, Right: 6, Upper: 1, Lower: 4}

	hist, total := perimeterHistogram(g, r)

	// Nominal perimeter 2*(3+1) + 2*(4+1); sampled 2*3 + 2*4.
	if total != 18 {
		t.Errorf("total = %d, want 18", total)
	}
	if hist[255] != 14 {
		t.Errorf("sampled white = %d, want 14", hist[255])
	}
	// The four unsampled slots read as non-white.
	if got, want := nonWhiteFraction(hist, total), 4.0/18.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("nonWhiteFraction = %v, want %v", got, want)
	}
}

func TestClassifyPerimeter(t *testing.T) {
	t.Parallel()

	t.Run("product on white", func(t *testing.T) {
		t.Parallel()
		g := whiteGrid(400, 400)
		disc(g, 200, 30)
		box := FindBounds(g, DefaultTolerance)

		got, scene := ClassifyPerimeter(g, box)
		if got != box {
			t.Errorf("rect changed: %+v -> %+v", box, got)
		}
		if scene {
			t.Error("disc on white classified as scene")
		}
	})

	t.Run("edge to edge content", func(t *testing.T) {
		t.Parallel()
		g := whiteGrid(400, 400)
		fill(g, Rect{Left: 0, Right: 399, Upper: 0, Lower: 399}, 90)
		box := FindBounds(g, DefaultTolerance)

		if _, scene := ClassifyPerimeter(g, box); !scene {
			t.Error("full-frame content not classified as scene")
		}
	})
}

func TestDetect(t *testing.T) {
	t.Parallel()

	g := whiteGrid(400, 400)
	fill(g, Rect{Left: 40, Right: 359, Upper: 60, Lower: 339}, 70)

	d := Detect(g, DefaultTolerance)
	want := Rect{Left: 40, Right: 359, Upper: 60, Lower: 339}
	if d.Box != want {
		t.Errorf("Box = %+v, want %+v", d.Box, want)
	}
	if !d.Scene {
		t.Errorf("rectangular fill should read as scene, non-white = %v", d.NonWhiteFraction)
	}
	if d.NonWhiteFraction != 1 {
		t.Errorf("NonWhiteFraction = %v, want 1", d.NonWhiteFraction)
	}
}
