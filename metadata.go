package imgqa

import (
	"bytes"
	"image"

	"github.com/bep/imagemeta"
	"github.com/disintegration/imaging"
)

// ImageMetadata holds the EXIF fields that affect how the pixel grid is read.
type ImageMetadata struct {
	Orientation int // EXIF orientation 1-8, 0 when absent
	ColorSpace  int // EXIF ColorSpace: 1 = sRGB, 65535 = uncalibrated, 0 when absent
}

// wantedTags lists the EXIF tags ExtractImageMetadata reads.
var wantedTags = map[string]bool{
	"Orientation": true,
	"ColorSpace":  true,
}

// metaFormats maps image.Decode format names to imagemeta formats.
var metaFormats = map[string]imagemeta.ImageFormat{
	"jpeg": imagemeta.JPEG,
	"png":  imagemeta.PNG,
	"webp": imagemeta.WebP,
}

// ExtractImageMetadata parses EXIF metadata from raw image bytes of the
// given format ("jpeg", "png", "webp", as named by image.Decode).
// Returns nil if the data is empty, the format carries no EXIF we read, the
// data cannot be parsed, or none of the wanted tags are present.
// Graceful degradation: never returns an error.
func ExtractImageMetadata(data []byte, format string) *ImageMetadata {
	f, ok := metaFormats[format]
	if len(data) == 0 || !ok {
		return nil
	}

	meta := &ImageMetadata{}
	found := false

	_, err := imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: f,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Source == imagemeta.EXIF && wantedTags[ti.Tag]
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			n, ok := tagValueInt(ti.Value)
			if !ok {
				return nil
			}
			switch ti.Tag {
			case "Orientation":
				meta.Orientation = n
			case "ColorSpace":
				meta.ColorSpace = n
			default:
				return nil
			}
			found = true
			return nil
		},
	})

	if err != nil || !found {
		return nil
	}

	return meta
}

// tagValueInt extracts an integer from an EXIF tag value.
// Short and long values may arrive as any integer width or as a one-element slice.
func tagValueInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case uint16:
		return int(val), true
	case uint32:
		return int(val), true
	case uint64:
		return int(val), true
	case uint8:
		return int(val), true
	case []uint16:
		if len(val) > 0 {
			return int(val[0]), true
		}
	case []any:
		if len(val) > 0 {
			return tagValueInt(val[0])
		}
	}
	return 0, false
}

// Orient applies an EXIF orientation to img so rows and columns match what
// a viewer displays. Orientations 5-8 swap width and height.
func Orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
