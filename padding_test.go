package imgqa

import "testing"

func TestEvaluatePadding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		imageArea float64
		boxArea   float64
		threshold float64
		want      Padding
	}{
		{
			name:      "box equals image",
			imageArea: 10000, boxArea: 10000, threshold: 1,
			want: Padding{},
		},
		{
			name:      "box larger than image",
			imageArea: 10000, boxArea: 12000, threshold: 1,
			want: Padding{},
		},
		{
			name:      "quarter box",
			imageArea: 10000, boxArea: 2500, threshold: 1,
			want: Padding{RequireCrop: true, Ratio: 3, Applicable: true},
		},
		{
			name:      "ratio equal to threshold does not crop",
			imageArea: 10000, boxArea: 5000, threshold: 1,
			want: Padding{RequireCrop: false, Ratio: 1, Applicable: true},
		},
		{
			name:      "rounded to three decimals",
			imageArea: 10000, boxArea: 3000, threshold: 1,
			want: Padding{RequireCrop: true, Ratio: 2.333, Applicable: true},
		},
		{
			name:      "small padding under threshold",
			imageArea: 10000, boxArea: 9000, threshold: 1,
			want: Padding{RequireCrop: false, Ratio: 0.111, Applicable: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := EvaluatePadding(tc.imageArea, tc.boxArea, tc.threshold)
			if got != tc.want {
				t.Errorf("EvaluatePadding(%v, %v, %v) = %+v, want %+v",
					tc.imageArea, tc.boxArea, tc.threshold, got, tc.want)
			}
		})
	}
}

func TestEvaluateBox(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		det  Detection
		want Padding
	}{
		{
			name: "elongated box squared on the longer side",
			// side 199: (399*399 - 199*199) / 199^2 = 3.020
			det:  Detection{Box: Rect{Left: 100, Right: 299, Upper: 180, Lower: 220}},
			want: Padding{RequireCrop: true, Ratio: 3.02, Applicable: true},
		},
		{
			name: "product with small margin",
			// side 359: (159201 - 128881) / 128881 = 0.235
			det:  Detection{Box: Rect{Left: 20, Right: 379, Upper: 20, Lower: 379}},
			want: Padding{RequireCrop: false, Ratio: 0.235, Applicable: true},
		},
		{
			name: "scene with small margin always crops",
			det:  Detection{Box: Rect{Left: 20, Right: 379, Upper: 20, Lower: 379}, Scene: true},
			want: Padding{RequireCrop: true, Ratio: 0.235, Applicable: true},
		},
		{
			name: "full-frame scene has nothing to crop",
			det:  Detection{Box: Rect{Left: 0, Right: 399, Upper: 0, Lower: 399}, Scene: true},
			want: Padding{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := EvaluateBox(400, 400, tc.det, DefaultCropThreshold)
			if got != tc.want {
				t.Errorf("EvaluateBox = %+v, want %+v", got, tc.want)
			}
		})
	}
}
