package imaging

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-edit-mcp/internal/apperrors"
)

// Crop extracts the region [left,right) x [top,bottom) from img. The box is
// given in image coordinates relative to the top-left corner.
func Crop(img image.Image, left, top, right, bottom int) (*image.NRGBA, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if right > w {
		return nil, apperrors.Validation("right", "crop region (%d,%d)-(%d,%d) outside image bounds %dx%d",
			left, top, right, bottom, w, h)
	}
	if bottom > h {
		return nil, apperrors.Validation("bottom", "crop region (%d,%d)-(%d,%d) outside image bounds %dx%d",
			left, top, right, bottom, w, h)
	}
	if left < 0 || top < 0 || left >= right || top >= bottom {
		return nil, apperrors.Validation("left", "invalid crop region (%d,%d)-(%d,%d)", left, top, right, bottom)
	}

	rect := image.Rect(left, top, right, bottom).Add(bounds.Min)
	return imaging.Crop(img, rect), nil
}
