package imgqa

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when image bytes cannot be turned into a pixel grid.
var ErrDecode = errors.New("imgqa: decode image")

// ErrTooLarge is returned, wrapping ErrDecode, when the declared dimensions
// exceed MaxDecodePixels. The pixel data is never allocated.
var ErrTooLarge = fmt.Errorf("%w: declared size too large", ErrDecode)

// MaxDecodePixels caps width x height for a full decode. It sits above the
// MaxMegapixels ceiling so moderately oversized images are still measured.
const MaxDecodePixels = 2 * MaxMegapixels * 1_000_000

// ImageSize reads the declared dimensions from the image header without
// decoding pixels. Orientation is not applied.
func ImageSize(data []byte) (rows, cols int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return cfg.Height, cfg.Width, format, nil
}

// Decoded is a decoded, orientation-corrected image ready for analysis.
type Decoded struct {
	Image  image.Image
	Gray   *image.Gray
	Format string // decoder name: "jpeg", "png", ...
	CMYK   bool   // stored as CMYK rather than RGB
	Meta   *ImageMetadata
}

// Rows is the pixel height of the grid.
func (d *Decoded) Rows() int { return d.Gray.Rect.Dy() }

// Cols is the pixel width of the grid.
func (d *Decoded) Cols() int { return d.Gray.Rect.Dx() }

// DecodeImage checks the declared size against MaxDecodePixels, decodes
// data, applies its EXIF orientation and builds the grayscale grid.
func DecodeImage(data []byte) (*Decoded, error) {
	rows, cols, _, err := ImageSize(data)
	if err != nil {
		return nil, err
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: empty bounds", ErrDecode)
	}
	if int64(rows)*int64(cols) > MaxDecodePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cols, rows)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty bounds", ErrDecode)
	}

	return newDecoded(img, format, ExtractImageMetadata(data, format)), nil
}

// newDecoded flags CMYK storage, applies meta's orientation and builds the
// luma grid.
func newDecoded(img image.Image, format string, meta *ImageMetadata) *Decoded {
	_, cmyk := img.(*image.CMYK)
	if meta != nil && meta.Orientation > 1 {
		img = Orient(img, meta.Orientation)
	}
	return &Decoded{
		Image:  img,
		Gray:   Grayscale(img),
		Format: format,
		CMYK:   cmyk,
		Meta:   meta,
	}
}

// Grayscale returns a luma grid for img with its origin at (0, 0).
// Gray images are reused, YCbCr images contribute their Y plane, and
// anything else is composited over white so transparent pixels read as
// background.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.Gray:
		if b.Min == (image.Point{}) {
			return src
		}
	case *image.YCbCr:
		return lumaPlane(src)
	}

	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

func lumaPlane(src *image.YCbCr) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		off := src.YOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Y[off:off+b.Dx()])
	}
	return dst
}
