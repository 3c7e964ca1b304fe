package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
)

// TextureCreate uploads tightly packed RGBA8 pixels and returns the GPU texture.
func (b *Backend) TextureCreate(name string, width, height uint32, pixels []uint8) (*metadata.Texture, error) {
	if width == 0 || height == 0 {
		return nil, errors.Errorf("texture %q has zero size %dx%d", name, width, height)
	}
	if want := int(width) * int(height) * 4; len(pixels) != want {
		return nil, errors.Errorf("texture %q: expected %d bytes of RGBA data, got %d", name, want, len(pixels))
	}

	t := &metadata.Texture{
		Width:        width,
		Height:       height,
		ChannelCount: 4,
		Name:         name,
	}
	gl.GenTextures(1, &t.ID)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := b.Err(); err != nil {
		gl.DeleteTextures(1, &t.ID)
		return nil, errors.Wrapf(err, "texture %q", name)
	}
	core.LogDebug("texture %q uploaded (%dx%d)", name, width, height)
	return t, nil
}

// TextureUpdate replaces the pixels of an existing texture in place, keeping its ID.
func (b *Backend) TextureUpdate(t *metadata.Texture, width, height uint32, pixels []uint8) error {
	if want := int(width) * int(height) * 4; len(pixels) != want || want == 0 {
		return errors.Errorf("texture %q: expected %d bytes of RGBA data, got %d", t.Name, want, len(pixels))
	}
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	t.Width = width
	t.Height = height
	t.Generation++
	return b.Err()
}

func (b *Backend) TextureDestroy(t *metadata.Texture) {
	if t == nil || t.ID == 0 {
		return
	}
	gl.DeleteTextures(1, &t.ID)
	t.ID = 0
}
