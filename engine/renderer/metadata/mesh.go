package metadata

import (
	"math"

	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/core"
)

// MeshAsset is the raw geometry of a loaded model. Positions and normals hold
// three floats per vertex; every texture-coordinate channel holds two.
type MeshAsset struct {
	Name          string
	Vertices      []float32
	Normals       []float32
	TextureCoords [][]float32
	Faces         [][]uint32
}

// VertexCount is the number of vertices described by Vertices.
func (m *MeshAsset) VertexCount() int {
	return len(m.Vertices) / 3
}

// FaceCount is the number of faces (triangles) in the mesh.
func (m *MeshAsset) FaceCount() int {
	return len(m.Faces)
}

// Validate checks that the asset can be uploaded as an indexed triangle list
// with 16-bit indices. Errors wrap core.ErrMalformedMesh.
func (m *MeshAsset) Validate() error {
	if m == nil {
		return errors.Wrap(core.ErrMalformedMesh, "nil mesh")
	}
	if len(m.Vertices) == 0 || len(m.Vertices)%3 != 0 {
		return errors.Wrapf(core.ErrMalformedMesh, "mesh %q: %d position floats is not a non-zero multiple of 3", m.Name, len(m.Vertices))
	}
	n := m.VertexCount()
	if len(m.Normals) != len(m.Vertices) {
		return errors.Wrapf(core.ErrMalformedMesh, "mesh %q: %d normal floats for %d vertices", m.Name, len(m.Normals), n)
	}
	if len(m.TextureCoords) == 0 {
		return errors.Wrapf(core.ErrMalformedMesh, "mesh %q: no texture coordinate channel", m.Name)
	}
	if len(m.TextureCoords[0]) != 2*n {
		return errors.Wrapf(core.ErrMalformedMesh, "mesh %q: %d texture coordinate floats for %d vertices", m.Name, len(m.TextureCoords[0]), n)
	}
	if len(m.Faces) == 0 {
		return errors.Wrapf(core.ErrMalformedMesh, "mesh %q: empty face list", m.Name)
	}
	for i, face := range m.Faces {
		if len(face) != 3 {
			return errors.Wrapf(core.ErrMalformedMesh, "mesh %q: face %d has %d indices, only triangles are supported", m.Name, i, len(face))
		}
		for _, idx := range face {
			if idx >= uint32(n) || idx > math.MaxUint16 {
				return errors.Wrapf(core.ErrMalformedMesh, "mesh %q: face %d references vertex %d (vertex count %d)", m.Name, i, idx, n)
			}
		}
	}
	return nil
}

// FlattenFaces validates the asset and returns its faces as one triangle list.
func (m *MeshAsset) FlattenFaces() ([]uint16, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	indices := make([]uint16, 0, 3*len(m.Faces))
	for _, face := range m.Faces {
		for _, idx := range face {
			indices = append(indices, uint16(idx))
		}
	}
	return indices, nil
}
