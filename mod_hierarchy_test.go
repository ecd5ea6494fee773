package spellbook

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/spellbook/core"
	"github.com/gekko3d/spellbook/scene"
)

const tolerance = 1e-4

func parentTransform() core.Transform {
	return core.Transform{
		Translation: mgl32.Vec3{10, 0, 0},
		Rotation:    mgl32.Rotate3DY(mgl32.DegToRad(90)),
		Scale:       2,
	}
}

func TestPropagate_GroupingNode(t *testing.T) {
	doc := scene.NewDocument(nil)

	c1 := core.Transform{Translation: mgl32.Vec3{5, 0, 0}, Rotation: mgl32.Ident3(), Scale: 1}
	c2 := core.Transform{Translation: mgl32.Vec3{0, 1, 2}, Rotation: mgl32.Rotate3DZ(0.3), Scale: 0.5}
	child1 := doc.AddBlock(scene.NewNode("child1", c1))
	child2 := doc.AddBlock(scene.NewTriShape("child2", c2, scene.NoIndex))
	skin := doc.AddBlock(scene.NewBlock(scene.TypeSkinInstance, ""))
	parent := doc.AddRoot(scene.NewNode("parent", parentTransform(), child1, child2, skin, scene.Index(77)))

	require.True(t, Propagate(doc, parent))

	assert.True(t, doc.LocalTransform(parent).Value().IsIdentity())
	assert.True(t, doc.LocalTransform(child1).Value().ApproxEqual(parentTransform().Mul(c1), tolerance))
	assert.True(t, doc.LocalTransform(child2).Value().ApproxEqual(parentTransform().Mul(c2), tolerance))

	// Parent at (10, 0, 0), RotY 90, scale 2. Child local (5, 0, 0).
	// (10, 0, 0) + RotY(90) * (10, 0, 0) = (10, 0, -10)
	assert.True(t, core.NearVec3(doc.LocalTransform(child1).Value().Translation, mgl32.Vec3{10, 0, -10}, tolerance))
}

func TestPropagate_GroupingNodeKeepsWorldPositions(t *testing.T) {
	doc := scene.NewDocument(nil)
	c := core.Transform{Translation: mgl32.Vec3{1, 2, 3}, Rotation: mgl32.Rotate3DX(0.7), Scale: 3}
	child := doc.AddBlock(scene.NewNode("child", c))
	parent := doc.AddRoot(scene.NewNode("parent", parentTransform(), child))

	p := mgl32.Vec3{0.5, -1, 4}
	before := parentTransform().Apply(c.Apply(p))

	Propagate(doc, parent)

	after := doc.LocalTransform(parent).Value().Apply(doc.LocalTransform(child).Value().Apply(p))
	assert.True(t, core.NearVec3(after, before, tolerance), "before %v after %v", before, after)
}

func TestPropagate_NoTransformableChildrenIsNoop(t *testing.T) {
	doc := scene.NewDocument(nil)
	data := doc.AddBlock(scene.NewTriShapeData(scene.GeometryData{}))
	parent := doc.AddRoot(scene.NewNode("parent", parentTransform(), data, scene.NoIndex))
	rev := doc.Revision()

	assert.False(t, Propagate(doc, parent))
	assert.Equal(t, parentTransform(), doc.LocalTransform(parent).Value())
	assert.Equal(t, rev, doc.Revision())

	empty := doc.AddRoot(scene.NewNode("empty", parentTransform()))
	assert.False(t, Propagate(doc, empty))
	assert.Equal(t, parentTransform(), doc.LocalTransform(empty).Value())
}

func geometryLeaf(t *testing.T, leafType, dataType string, tr core.Transform) (*scene.Document, scene.Index, scene.Index) {
	t.Helper()
	doc := scene.NewDocument(nil)
	dataBlock := scene.NewBlock(dataType, "")
	dataBlock.Geometry = &scene.GeometryData{
		Vertices: []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Normals:  []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Center:   mgl32.Vec3{0.5, 0.5, 0},
		Radius:   1.5,
	}
	data := doc.AddBlock(dataBlock)
	leaf := scene.NewBlock(leafType, "leaf")
	leaf.Transform = &tr
	leaf.Data = data
	return doc, doc.AddRoot(leaf), data
}

func TestPropagate_GeometryLeafBakesTransform(t *testing.T) {
	for leafType, dataType := range geometryLeafData {
		t.Run(leafType, func(t *testing.T) {
			tr := parentTransform()
			doc, leaf, data := geometryLeaf(t, leafType, dataType, tr)
			orig := *doc.Blocks[data].Geometry
			orig.Vertices = append([]mgl32.Vec3(nil), orig.Vertices...)
			orig.Normals = append([]mgl32.Vec3(nil), orig.Normals...)

			require.True(t, Propagate(doc, leaf))

			g := doc.Blocks[data].Geometry
			for i := range orig.Vertices {
				assert.True(t, core.NearVec3(g.Vertices[i], tr.Apply(orig.Vertices[i]), tolerance))
				assert.True(t, core.NearVec3(g.Normals[i], tr.Rotation.Mul3x1(orig.Normals[i]), tolerance))
			}
			assert.True(t, core.NearVec3(g.Center, tr.Apply(orig.Center), tolerance))
			assert.InDelta(t, 3.0, g.Radius, tolerance)
			assert.True(t, doc.LocalTransform(leaf).Value().IsIdentity())
		})
	}
}

func TestPropagate_GeometryLeafWithoutNormals(t *testing.T) {
	doc, leaf, data := geometryLeaf(t, scene.TypeTriShape, scene.TypeTriShapeData, parentTransform())
	doc.Blocks[data].Geometry.Normals = nil

	require.True(t, Propagate(doc, leaf))
	assert.Empty(t, doc.Blocks[data].Geometry.Normals)
}

func TestBakeTransform_NormalsWithoutVerticesStay(t *testing.T) {
	g := &scene.GeometryData{Normals: []mgl32.Vec3{{1, 0, 0}}}
	bakeTransform(g, parentTransform())
	assert.Equal(t, []mgl32.Vec3{{1, 0, 0}}, g.Normals)

	g = &scene.GeometryData{Vertices: []mgl32.Vec3{{0, 0, 0}}, Normals: []mgl32.Vec3{{1, 0, 0}}}
	bakeTransform(g, parentTransform())
	assert.True(t, core.NearVec3(parentTransform().ApplyDir(mgl32.Vec3{1, 0, 0}), g.Normals[0], tolerance))
}

func TestPropagate_GeometryLeafWithMismatchedDataIsNoop(t *testing.T) {
	// a NiTriShape pointing at strips data does not resolve
	doc, leaf, data := geometryLeaf(t, scene.TypeTriShape, scene.TypeTriStripsData, parentTransform())
	before := doc.Blocks[data].Geometry.Vertices[0]

	assert.False(t, Propagate(doc, leaf))
	assert.Equal(t, parentTransform(), doc.LocalTransform(leaf).Value())
	assert.Equal(t, before, doc.Blocks[data].Geometry.Vertices[0])
}

func TestPropagate_GeometryLeafWithoutData(t *testing.T) {
	doc := scene.NewDocument(nil)
	leaf := doc.AddRoot(scene.NewTriShape("leaf", parentTransform(), scene.NoIndex))

	assert.False(t, Propagate(doc, leaf))
	assert.Equal(t, parentTransform(), doc.LocalTransform(leaf).Value())
}

func TestCanPropagate(t *testing.T) {
	doc := scene.NewDocument(nil)
	node := doc.AddBlock(scene.NewNode("n", core.IdentityTransform()))
	fade := doc.AddBlock(scene.NewBlock("BSFadeNode", ""))
	shape := doc.AddBlock(scene.NewTriShape("s", core.IdentityTransform(), scene.NoIndex))
	strips := doc.AddBlock(scene.NewBlock(scene.TypeTriStrips, ""))
	data := doc.AddBlock(scene.NewTriShapeData(scene.GeometryData{}))
	geom := doc.AddBlock(scene.NewBlock(scene.TypeGeometry, ""))

	assert.True(t, CanPropagate(doc, node))
	assert.True(t, CanPropagate(doc, fade))
	assert.True(t, CanPropagate(doc, shape))
	assert.True(t, CanPropagate(doc, strips))
	assert.False(t, CanPropagate(doc, data))
	assert.False(t, CanPropagate(doc, geom))
	assert.False(t, CanPropagate(doc, scene.Index(100)))
}

func unitCube() *scene.GeometryData {
	g := &scene.GeometryData{}
	for _, x := range []float32{-1, 1} {
		for _, y := range []float32{-1, 1} {
			for _, z := range []float32{-1, 1} {
				v := mgl32.Vec3{x, y, z}
				g.Vertices = append(g.Vertices, v)
				g.Normals = append(g.Normals, v.Normalize())
			}
		}
	}
	return g
}

func TestScaleVertices(t *testing.T) {
	g := unitCube()
	orig := *unitCube()

	ScaleVertices(g, mgl32.Vec3{2, 1, 1}, false)
	for i, v := range g.Vertices {
		assert.Equal(t, orig.Vertices[i].X()*2, v.X())
		assert.Equal(t, orig.Vertices[i].Y(), v.Y())
		assert.Equal(t, orig.Vertices[i].Z(), v.Z())
	}
	assert.Equal(t, orig.Normals, g.Normals)

	g = unitCube()
	ScaleVertices(g, mgl32.Vec3{2, 1, 1}, true)
	for i, n := range g.Normals {
		assert.Equal(t, mgl32.Vec3{orig.Normals[i].X() * 2, orig.Normals[i].Y(), orig.Normals[i].Z()}, n)
	}
}
