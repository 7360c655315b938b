package scene

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/heightview/internal/engine/scene/shaders"
	"github.com/Faultbox/heightview/internal/engine/shader"
	"github.com/Faultbox/heightview/internal/grid"
	"github.com/Faultbox/heightview/internal/terrain"
	"github.com/Faultbox/heightview/pkg/math"
)

type tileMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// TileRenderer draws grid tiles. It implements grid.RenderSurface; all
// methods must run on the GL thread.
type TileRenderer struct {
	program    *shader.Program
	planeScale float32
	log        *zap.Logger

	meshes map[*grid.Tile]*tileMesh
}

// NewTileRenderer compiles the tile shader.
func NewTileRenderer(planeScale float32, log *zap.Logger) (*TileRenderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	program, err := shader.Compile(shaders.TileVertexShader, shaders.TileFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("tile shader: %w", err)
	}
	return &TileRenderer{
		program:    program,
		planeScale: planeScale,
		log:        log,
		meshes:     make(map[*grid.Tile]*tileMesh),
	}, nil
}

// Add uploads the tile's mesh.
func (tr *TileRenderer) Add(t *grid.Tile) {
	if _, ok := tr.meshes[t]; ok {
		return
	}
	mesh := terrain.BuildGridMesh(t.Heights, t.Resolution, tr.planeScale)
	tr.meshes[t] = upload(mesh)
	tr.log.Debug("tile uploaded",
		zap.Int("id", t.ID),
		zap.Int("resolution", t.Resolution),
		zap.Int("vertices", len(mesh.Vertices)),
	)
}

// Remove frees the tile's GPU buffers.
func (tr *TileRenderer) Remove(t *grid.Tile) {
	m, ok := tr.meshes[t]
	if !ok {
		return
	}
	m.delete()
	delete(tr.meshes, t)
}

// Len returns the number of tiles on the GPU.
func (tr *TileRenderer) Len() int {
	return len(tr.meshes)
}

func upload(mesh *terrain.Mesh) *tileMesh {
	m := &tileMesh{indexCount: int32(len(mesh.Indices))}
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return m
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	// VBO
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	vertexSize := int(unsafe.Sizeof(terrain.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*vertexSize, gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)

	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	// EBO
	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return m
}

func (m *tileMesh) delete() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	*m = tileMesh{}
}

// Light is the directional light and surface color used for tiles.
type Light struct {
	Direction [3]float32
	Color     [3]float32
	Ambient   [3]float32
}

// Render draws all tiles back to front so translucent neighbors blend
// over whatever lies behind them.
func (tr *TileRenderer) Render(viewProj math.Mat4, eye math.Vec3, light Light) {
	type drawable struct {
		tile *grid.Tile
		mesh *tileMesh
		dist float32
	}
	list := make([]drawable, 0, len(tr.meshes))
	for t, m := range tr.meshes {
		if m.vao == 0 || t.Opacity <= 0 {
			continue
		}
		d := t.Position.Sub(eye)
		list = append(list, drawable{tile: t, mesh: m, dist: d.Dot(d)})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].dist > list[j].dist })

	tr.program.Use()
	gl.UniformMatrix4fv(tr.program.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.Uniform3fv(tr.program.Uniform("uLightDir"), 1, &light.Direction[0])
	gl.Uniform3fv(tr.program.Uniform("uColor"), 1, &light.Color[0])
	gl.Uniform3fv(tr.program.Uniform("uAmbient"), 1, &light.Ambient[0])
	locModel := tr.program.Uniform("uModel")
	locOpacity := tr.program.Uniform("uOpacity")

	for _, d := range list {
		model := math.Translate(d.tile.Position)
		gl.UniformMatrix4fv(locModel, 1, false, model.Ptr())
		gl.Uniform1f(locOpacity, d.tile.Opacity)

		gl.BindVertexArray(d.mesh.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, d.mesh.indexCount, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
}

// Destroy frees every mesh and the shader.
func (tr *TileRenderer) Destroy() {
	for t, m := range tr.meshes {
		m.delete()
		delete(tr.meshes, t)
	}
	tr.program.Delete()
}
