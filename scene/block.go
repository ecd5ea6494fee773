package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/spellbook/core"
)

// Index is a stable block number inside a Document. Links hold Indexes.
type Index int

const NoIndex Index = -1

func (i Index) Valid() bool {
	return i >= 0
}

// GeometryData is the vertex payload of a geometry leaf.
// Normals is either empty or parallel to Vertices.
type GeometryData struct {
	Vertices  []mgl32.Vec3
	Normals   []mgl32.Vec3
	Center    mgl32.Vec3
	Radius    float32
	Triangles []uint32
}

func (g *GeometryData) HasNormals() bool {
	return len(g.Normals) > 0
}

// UpdateBounds recomputes Center as the bounding box centre and Radius as the
// largest vertex distance from it.
func (g *GeometryData) UpdateBounds() {
	if len(g.Vertices) == 0 {
		g.Center = mgl32.Vec3{}
		g.Radius = 0
		return
	}
	lo, hi := g.Vertices[0], g.Vertices[0]
	for _, v := range g.Vertices[1:] {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], v[a])
			hi[a] = max(hi[a], v[a])
		}
	}
	g.Center = lo.Add(hi).Mul(0.5)
	g.Radius = 0
	for _, v := range g.Vertices {
		g.Radius = max(g.Radius, v.Sub(g.Center).Len())
	}
}

// Block is one record of the document. Which sections are populated depends
// on Type: AV objects carry Transform, nodes carry Children, geometry carries
// a Data link, data blocks carry Geometry.
type Block struct {
	Type string
	Name string

	Transform    *core.Transform
	Children     []Index
	Data         Index
	Controller   Index
	SkinInstance Index

	// Matrix is a generic 4x4 "Transform" field for blocks that store their
	// placement as a raw matrix.
	Matrix *mgl32.Mat4

	Geometry *GeometryData
}

// NewBlock returns a block of typ with all links unset.
func NewBlock(typ, name string) *Block {
	return &Block{
		Type:         typ,
		Name:         name,
		Data:         NoIndex,
		Controller:   NoIndex,
		SkinInstance: NoIndex,
	}
}

func NewNode(name string, t core.Transform, children ...Index) *Block {
	b := NewBlock(TypeNode, name)
	b.Transform = &t
	b.Children = children
	return b
}

func NewTriShape(name string, t core.Transform, data Index) *Block {
	b := NewBlock(TypeTriShape, name)
	b.Transform = &t
	b.Data = data
	return b
}

func NewTriShapeData(g GeometryData) *Block {
	b := NewBlock(TypeTriShapeData, "")
	b.Geometry = &g
	return b
}
