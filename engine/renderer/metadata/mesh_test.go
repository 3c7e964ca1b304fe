package metadata

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/propengine/engine/core"
)

func triangle() *MeshAsset {
	return &MeshAsset{
		Name:          "triangle",
		Vertices:      []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:       []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		TextureCoords: [][]float32{{0, 0, 1, 0, 0, 1}},
		Faces:         [][]uint32{{0, 1, 2}},
	}
}

func TestMeshValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *MeshAsset)
		wantErr bool
	}{
		{name: "valid", mutate: func(m *MeshAsset) {}},
		{name: "no vertices", mutate: func(m *MeshAsset) { m.Vertices = nil }, wantErr: true},
		{name: "partial vertex", mutate: func(m *MeshAsset) { m.Vertices = m.Vertices[:8] }, wantErr: true},
		{name: "normal count mismatch", mutate: func(m *MeshAsset) { m.Normals = m.Normals[:6] }, wantErr: true},
		{name: "missing texcoord channel", mutate: func(m *MeshAsset) { m.TextureCoords = nil }, wantErr: true},
		{name: "short texcoord channel", mutate: func(m *MeshAsset) { m.TextureCoords[0] = m.TextureCoords[0][:4] }, wantErr: true},
		{name: "extra texcoord channel ignored", mutate: func(m *MeshAsset) {
			m.TextureCoords = append(m.TextureCoords, []float32{1})
		}},
		{name: "empty faces", mutate: func(m *MeshAsset) { m.Faces = nil }, wantErr: true},
		{name: "quad face", mutate: func(m *MeshAsset) { m.Faces = [][]uint32{{0, 1, 2, 0}} }, wantErr: true},
		{name: "index out of range", mutate: func(m *MeshAsset) { m.Faces = [][]uint32{{0, 1, 3}} }, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := triangle()
			test.mutate(m)
			err := m.Validate()
			if test.wantErr {
				if !errors.Is(err, core.ErrMalformedMesh) {
					t.Fatalf("Validate()=%v; expected ErrMalformedMesh", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate()=%v; expected nil", err)
			}
		})
	}
}

func TestMeshValidateNil(t *testing.T) {
	var m *MeshAsset
	if err := m.Validate(); !errors.Is(err, core.ErrMalformedMesh) {
		t.Fatalf("Validate(nil)=%v; expected ErrMalformedMesh", err)
	}
}

func TestFlattenFaces(t *testing.T) {
	m := triangle()
	m.Vertices = append(m.Vertices, 1, 1, 0)
	m.Normals = append(m.Normals, 0, 0, 1)
	m.TextureCoords[0] = append(m.TextureCoords[0], 1, 1)
	m.Faces = append(m.Faces, []uint32{1, 3, 2})

	got, err := m.FlattenFaces()
	if err != nil {
		t.Fatalf("FlattenFaces: %v", err)
	}
	want := []uint16{0, 1, 2, 1, 3, 2}
	if len(got) != len(want) {
		t.Fatalf("FlattenFaces len=%d; expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d=%d; expected %d", i, got[i], want[i])
		}
	}
	if len(got) != 3*m.FaceCount() {
		t.Errorf("index count %d; expected 3*faces=%d", len(got), 3*m.FaceCount())
	}
}
