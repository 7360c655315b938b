package terrain

import "math"

// Vertex is a tile mesh vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Mesh holds tile geometry ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds is an axis-aligned bounding box in tile-local space.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// BuildGridMesh turns a resolution x resolution height grid into a plane of
// side planeScale centred on the origin. Heights become world +Y; grid rows
// run along world Z and grid columns along world X.
func BuildGridMesh(heights []float32, resolution int, planeScale float32) *Mesh {
	if resolution <= 0 || len(heights) < resolution*resolution {
		return &Mesh{}
	}

	vertices := make([]Vertex, resolution*resolution)

	bounds := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}

	var step float32
	if resolution > 1 {
		step = planeScale / float32(resolution-1)
	}
	half := planeScale / 2

	for row := range resolution {
		for col := range resolution {
			i := row*resolution + col
			p := [3]float32{
				-half + float32(col)*step,
				heights[i],
				-half + float32(row)*step,
			}
			vertices[i].Position = p
			updateBounds(&bounds, p)
		}
	}

	// Two triangles per quad, counter-clockwise seen from +Y
	var indices []uint32
	if resolution > 1 {
		indices = make([]uint32, 0, (resolution-1)*(resolution-1)*6)
	}
	for row := 0; row < resolution-1; row++ {
		for col := 0; col < resolution-1; col++ {
			tl := uint32(row*resolution + col)
			tr := tl + 1
			bl := tl + uint32(resolution)
			br := bl + 1
			indices = append(indices,
				tl, bl, tr,
				tr, bl, br,
			)
		}
	}

	computeNormals(vertices, indices)

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Bounds:   bounds,
	}
}

// computeNormals accumulates face normals on shared grid vertices and
// normalizes them, giving smooth shading across the tile.
func computeNormals(vertices []Vertex, indices []uint32) {
	sums := make([][3]float32, len(vertices))

	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		pa, pb, pc := vertices[a].Position, vertices[b].Position, vertices[c].Position

		edge1 := [3]float32{pb[0] - pa[0], pb[1] - pa[1], pb[2] - pa[2]}
		edge2 := [3]float32{pc[0] - pa[0], pc[1] - pa[1], pc[2] - pa[2]}
		n := cross(edge1, edge2)

		for _, idx := range [3]uint32{a, b, c} {
			sums[idx][0] += n[0]
			sums[idx][1] += n[1]
			sums[idx][2] += n[2]
		}
	}

	for i := range vertices {
		vertices[i].Normal = normalize(sums[i])
	}
}

func updateBounds(b *Bounds, p [3]float32) {
	for axis := range 3 {
		if p[axis] < b.Min[axis] {
			b.Min[axis] = p[axis]
		}
		if p[axis] > b.Max[axis] {
			b.Max[axis] = p[axis]
		}
	}
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// normalize returns +Y for degenerate vectors (flat or single-vertex tiles).
func normalize(v [3]float32) [3]float32 {
	l := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
