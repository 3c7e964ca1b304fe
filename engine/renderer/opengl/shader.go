package opengl

import (
	_ "embed"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
)

//go:embed shaders/object.vert
var objectVertexShader string

//go:embed shaders/object.frag
var objectFragmentShader string

type Program struct {
	ID                           uint32
	VertexShader, FragmentShader uint32
}

func (p *Program) Delete() {
	gl.DetachShader(p.ID, p.VertexShader)
	gl.DetachShader(p.ID, p.FragmentShader)
	gl.DeleteProgram(p.ID)
	gl.DeleteShader(p.VertexShader)
	gl.DeleteShader(p.FragmentShader)
}

func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// LoadObjectProgram builds the embedded object program and resolves the
// attribute and uniform slots renderable objects draw against.
func LoadObjectProgram() (*Program, *metadata.ProgramLayout, error) {
	p, err := LoadProgram(objectVertexShader, objectFragmentShader)
	if err != nil {
		return nil, nil, err
	}
	layout, err := ResolveLayout(p)
	if err != nil {
		p.Delete()
		return nil, nil, err
	}
	return p, layout, nil
}

// ResolveLayout looks up the builtin attribute and uniform names in a linked program.
func ResolveLayout(p *Program) (*metadata.ProgramLayout, error) {
	layout := &metadata.ProgramLayout{ProgramID: p.ID}

	attribs := []struct {
		name string
		dst  *uint32
	}{
		{metadata.ATTRIBUTE_NAME_POSITION, &layout.PositionAttrib},
		{metadata.ATTRIBUTE_NAME_NORMAL, &layout.NormalAttrib},
		{metadata.ATTRIBUTE_NAME_TEXCOORD, &layout.TexCoordAttrib},
	}
	for _, a := range attribs {
		loc := gl.GetAttribLocation(p.ID, gl.Str(a.name+"\x00"))
		if loc < 0 {
			return nil, errors.Wrapf(core.ErrShaderCompile, "attribute %q is not active", a.name)
		}
		*a.dst = uint32(loc)
	}

	uniforms := []struct {
		name string
		dst  *int32
	}{
		{metadata.UNIFORM_NAME_SAMPLER, &layout.SamplerUniform},
		{metadata.UNIFORM_NAME_MODEL_VIEW, &layout.ModelViewUniform},
		{metadata.UNIFORM_NAME_PROJECTION, &layout.ProjectionUniform},
	}
	for _, u := range uniforms {
		loc := gl.GetUniformLocation(p.ID, gl.Str(u.name+"\x00"))
		if loc < 0 {
			return nil, errors.Wrapf(core.ErrShaderCompile, "uniform %q is not active", u.name)
		}
		*u.dst = loc
	}
	return layout, nil
}

func LoadProgram(vertexShaderText, fragmentShaderText string) (*Program, error) {
	p := &Program{}

	vs, err := LoadShader(gl.VERTEX_SHADER, vertexShaderText)
	if err != nil {
		return nil, errors.Wrap(err, "vertex shader")
	}
	p.VertexShader = vs

	fs, err := LoadShader(gl.FRAGMENT_SHADER, fragmentShaderText)
	if err != nil {
		gl.DeleteShader(p.VertexShader)
		return nil, errors.Wrap(err, "fragment shader")
	}
	p.FragmentShader = fs

	p.ID = gl.CreateProgram()
	gl.AttachShader(p.ID, p.VertexShader)
	gl.AttachShader(p.ID, p.FragmentShader)
	gl.LinkProgram(p.ID)

	var isLinked int32
	gl.GetProgramiv(p.ID, gl.LINK_STATUS, &isLinked)
	if isLinked == gl.FALSE {
		var logSize int32
		gl.GetProgramiv(p.ID, gl.INFO_LOG_LENGTH, &logSize)
		buf := make([]uint8, logSize+1)
		gl.GetProgramInfoLog(p.ID, int32(len(buf)), &logSize, &buf[0])
		errString := string(buf[:logSize])
		core.LogError("failed to link program:\n%s", errString)

		p.Delete()
		return nil, errors.Wrapf(core.ErrShaderCompile, "link: %q", errString)
	}
	return p, nil
}

func LoadShader(xtype uint32, text string) (uint32, error) {
	shader := gl.CreateShader(xtype)

	csource, free := gl.Strs(text + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var success int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &success)
	if success == gl.FALSE {
		var logSize int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logSize)
		buf := make([]uint8, logSize+1)
		gl.GetShaderInfoLog(shader, int32(len(buf)), &logSize, &buf[0])
		errString := string(buf[:logSize])
		core.LogError("failed to compile shader:\n%s", errString)

		gl.DeleteShader(shader)
		return 0, errors.Wrapf(core.ErrShaderCompile, "%q", errString)
	}
	return shader, nil
}
