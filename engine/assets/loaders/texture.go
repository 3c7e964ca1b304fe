package loaders

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxTextureSize bounds either side of a decoded texture; larger images are
// scaled down keeping their aspect ratio.
const MaxTextureSize = 4096

const CheckerboardName string = "checker"

type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	flip := false
	if p, ok := params.(*metadata.ImageResourceParams); ok && p != nil {
		flip = p.FlipY
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open texture %q", path)
	}
	defer file.Close()

	data, err := DecodeImage(file, flip)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %q", path)
	}
	return &metadata.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(data.Pixels)),
		LoadedAt: time.Now(),
		Data:     data,
	}, nil
}

func (tl *TextureLoader) Unload(res *metadata.Resource) error {
	if res == nil {
		return nil
	}
	res.Data = nil
	res.DataSize = 0
	return nil
}

// DecodeImage decodes any registered image format into tightly packed RGBA8.
func DecodeImage(r io.Reader, flipY bool) (*metadata.ImageResourceData, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, errors.New("image has no pixels")
	}
	core.LogDebug("decoded %s image %dx%d", format, b.Dx(), b.Dy())

	w, h := fitWithin(b.Dx(), b.Dy(), MaxTextureSize)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		core.LogWarn("texture %dx%d exceeds %d, scaling to %dx%d", b.Dx(), b.Dy(), MaxTextureSize, w, h)
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	if flipY {
		flipRows(dst)
	}

	return &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        uint32(w),
		Height:       uint32(h),
		Pixels:       dst.Pix,
	}, nil
}

// Checkerboard generates a magenta and white RGBA checkerboard with cells of
// 8x8 pixels, used when a texture is missing or is named "checker".
func Checkerboard(size int) *metadata.ImageResourceData {
	if size <= 0 {
		size = 64
	}
	const cell = 8
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	magenta := color.RGBA{R: 255, B: 255, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, magenta)
			} else {
				img.SetRGBA(x, y, white)
			}
		}
	}
	return &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        uint32(size),
		Height:       uint32(size),
		Pixels:       img.Pix,
	}
}

func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

func flipRows(img *image.RGBA) {
	h := img.Bounds().Dy()
	row := make([]uint8, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}
