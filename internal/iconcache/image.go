package iconcache

import (
	"image"
	"image/color"
	"image/draw"
)

// Exported constants.
const (
	// PlaceholderSize is the edge length of the synthesized placeholder icons
	PlaceholderSize = 16
	// MaxIconSize bounds decoded icons; larger images are fit into it
	MaxIconSize = 64
)

// Exported variables.
var (
	PlaceholderColor = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	FolderColor      = color.NRGBA{R: 200, G: 180, B: 100, A: 255}
)

// RenderImage is a decoded texture with pixels in BGRA byte order.
type RenderImage struct {
	Width  int
	Height int
	Data   []byte
}

// DefaultPlaceholder returns the generic file icon.
func DefaultPlaceholder() RenderImage {
	return Solid(PlaceholderSize, PlaceholderSize, PlaceholderColor)
}

// DefaultFolder returns the directory icon.
func DefaultFolder() RenderImage {
	return Solid(PlaceholderSize, PlaceholderSize, FolderColor)
}

// Solid returns a width x height image filled with c.
func Solid(width, height int, c color.NRGBA) RenderImage {
	data := make([]byte, 0, width*height*4)
	for range width * height {
		data = append(data, c.B, c.G, c.R, c.A)
	}

	return RenderImage{Width: width, Height: height, Data: data}
}

// FromImage converts img to a RenderImage.
func FromImage(img image.Image) RenderImage {
	bounds := img.Bounds()

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != bounds.Dx()*4 {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	data := make([]byte, len(nrgba.Pix))
	copy(data, nrgba.Pix)
	swapRedBlue(data)

	return RenderImage{Width: bounds.Dx(), Height: bounds.Dy(), Data: data}
}

// At returns the pixel at x, y. Out of range coordinates return transparent.
func (r RenderImage) At(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return color.NRGBA{}
	}

	i := (y*r.Width + x) * 4
	if i+3 >= len(r.Data) {
		return color.NRGBA{}
	}

	return color.NRGBA{R: r.Data[i+2], G: r.Data[i+1], B: r.Data[i], A: r.Data[i+3]}
}

// Average returns the mean colour of all pixels, or transparent for an empty image.
func (r RenderImage) Average() color.NRGBA {
	pixels := len(r.Data) / 4
	if pixels == 0 {
		return color.NRGBA{}
	}

	var sumB, sumG, sumR, sumA int
	for i := 0; i+3 < len(r.Data); i += 4 {
		sumB += int(r.Data[i])
		sumG += int(r.Data[i+1])
		sumR += int(r.Data[i+2])
		sumA += int(r.Data[i+3])
	}

	return color.NRGBA{
		R: uint8(sumR / pixels), //nolint:gosec // Mean of uint8 values fits in uint8
		G: uint8(sumG / pixels), //nolint:gosec // Mean of uint8 values fits in uint8
		B: uint8(sumB / pixels), //nolint:gosec // Mean of uint8 values fits in uint8
		A: uint8(sumA / pixels), //nolint:gosec // Mean of uint8 values fits in uint8
	}
}

// swapRedBlue converts RGBA to BGRA (and back) in place.
func swapRedBlue(data []byte) {
	for i := 0; i+3 < len(data); i += 4 {
		data[i], data[i+2] = data[i+2], data[i]
	}
}
