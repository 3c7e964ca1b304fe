package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
)

const (
	DefaultCubeName  string = "cube"
	DefaultPlaneName string = "plane"
)

// quad is one four-cornered side of a generated mesh. Corners are ordered
// bottom-left, top-right, top-left, bottom-right as seen from outside.
type quad struct {
	corners [4]mgl32.Vec3
	normal  mgl32.Vec3
}

/**
 * @brief Generates a cube mesh centred on the origin.
 *
 * @param width The overall width of the cube. Zero defaults to one.
 * @param height The overall height of the cube. Zero defaults to one.
 * @param depth The overall depth of the cube. Zero defaults to one.
 * @param tileX The number of times the texture tiles across each side on the x-axis.
 * @param tileY The number of times the texture tiles across each side on the y-axis.
 * @param name The name of the generated mesh.
 * @return A mesh asset with 24 vertices and 12 triangles.
 */
func GenerateCube(width, height, depth, tileX, tileY float32, name string) *metadata.MeshAsset {
	width = nonZero(width, "width")
	height = nonZero(height, "height")
	depth = nonZero(depth, "depth")
	tileX = nonZero(tileX, "tileX")
	tileY = nonZero(tileY, "tileY")

	hw, hh, hd := width*0.5, height*0.5, depth*0.5
	minX, minY, minZ := -hw, -hh, -hd
	maxX, maxY, maxZ := hw, hh, hd

	sides := []quad{
		// Front
		{[4]mgl32.Vec3{{minX, minY, maxZ}, {maxX, maxY, maxZ}, {minX, maxY, maxZ}, {maxX, minY, maxZ}}, mgl32.Vec3{0, 0, 1}},
		// Back
		{[4]mgl32.Vec3{{maxX, minY, minZ}, {minX, maxY, minZ}, {maxX, maxY, minZ}, {minX, minY, minZ}}, mgl32.Vec3{0, 0, -1}},
		// Left
		{[4]mgl32.Vec3{{minX, minY, minZ}, {minX, maxY, maxZ}, {minX, maxY, minZ}, {minX, minY, maxZ}}, mgl32.Vec3{-1, 0, 0}},
		// Right
		{[4]mgl32.Vec3{{maxX, minY, maxZ}, {maxX, maxY, minZ}, {maxX, maxY, maxZ}, {maxX, minY, minZ}}, mgl32.Vec3{1, 0, 0}},
		// Bottom
		{[4]mgl32.Vec3{{maxX, minY, maxZ}, {minX, minY, minZ}, {maxX, minY, minZ}, {minX, minY, maxZ}}, mgl32.Vec3{0, -1, 0}},
		// Top
		{[4]mgl32.Vec3{{minX, maxY, maxZ}, {maxX, maxY, minZ}, {minX, maxY, minZ}, {maxX, maxY, maxZ}}, mgl32.Vec3{0, 1, 0}},
	}

	if len(name) == 0 {
		name = DefaultCubeName
	}
	return buildQuads(name, sides, tileX, tileY)
}

/**
 * @brief Generates a flat plane on the XZ axes facing +Y, centred on the origin.
 *
 * @param width The extent along the x-axis. Zero defaults to one.
 * @param depth The extent along the z-axis. Zero defaults to one.
 * @param tileX The number of times the texture tiles along the x-axis.
 * @param tileY The number of times the texture tiles along the z-axis.
 * @param name The name of the generated mesh.
 * @return A mesh asset with 4 vertices and 2 triangles.
 */
func GeneratePlane(width, depth, tileX, tileY float32, name string) *metadata.MeshAsset {
	width = nonZero(width, "width")
	depth = nonZero(depth, "depth")
	tileX = nonZero(tileX, "tileX")
	tileY = nonZero(tileY, "tileY")

	hw, hd := width*0.5, depth*0.5
	top := quad{
		corners: [4]mgl32.Vec3{{-hw, 0, hd}, {hw, 0, -hd}, {-hw, 0, -hd}, {hw, 0, hd}},
		normal:  mgl32.Vec3{0, 1, 0},
	}

	if len(name) == 0 {
		name = DefaultPlaneName
	}
	return buildQuads(name, []quad{top}, tileX, tileY)
}

func buildQuads(name string, sides []quad, tileX, tileY float32) *metadata.MeshAsset {
	uvs := [4]mgl32.Vec2{{0, 0}, {tileX, tileY}, {0, tileY}, {tileX, 0}}

	mesh := &metadata.MeshAsset{
		Name:          name,
		Vertices:      make([]float32, 0, len(sides)*4*3),
		Normals:       make([]float32, 0, len(sides)*4*3),
		TextureCoords: [][]float32{make([]float32, 0, len(sides)*4*2)},
		Faces:         make([][]uint32, 0, len(sides)*2),
	}
	for i, side := range sides {
		for c, corner := range side.corners {
			mesh.Vertices = append(mesh.Vertices, corner.X(), corner.Y(), corner.Z())
			mesh.Normals = append(mesh.Normals, side.normal.X(), side.normal.Y(), side.normal.Z())
			mesh.TextureCoords[0] = append(mesh.TextureCoords[0], uvs[c].X(), uvs[c].Y())
		}
		v := uint32(i * 4)
		mesh.Faces = append(mesh.Faces,
			[]uint32{v + 0, v + 1, v + 2},
			[]uint32{v + 0, v + 3, v + 1},
		)
	}
	return mesh
}

func nonZero(v float32, name string) float32 {
	if v == 0 {
		core.LogWarn("%s must be nonzero. Defaulting to one.", name)
		return 1.0
	}
	return v
}
