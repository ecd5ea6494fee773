package spellbook

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/spellbook/core"
	"github.com/gekko3d/spellbook/scene"
)

// geometryLeafData maps the leaf types Propagate can bake to the data block
// type their Data link must resolve to.
var geometryLeafData = map[string]string{
	scene.TypeTriShape:  scene.TypeTriShapeData,
	scene.TypeTriStrips: scene.TypeTriStripsData,
}

// CanPropagate reports whether index is a grouping node or a bakeable geometry leaf.
func CanPropagate(doc *scene.Document, index scene.Index) bool {
	if doc.Inherits(index, scene.TypeNode) {
		return true
	}
	_, ok := geometryLeafData[doc.TypeOf(index)]
	return ok
}

// Propagate pushes the local transform of index down one level and resets it
// to identity. Grouping nodes hand it to their positionable children; geometry
// leaves bake it into their vertex data. It reports whether anything changed.
func Propagate(doc *scene.Document, index scene.Index) bool {
	if doc.Inherits(index, scene.TypeNode) {
		return propagateToChildren(doc, index)
	}
	return bakeIntoGeometry(doc, index)
}

func propagateToChildren(doc *scene.Document, index scene.Index) bool {
	tp := doc.LocalTransform(index)
	if !tp.HasValue() {
		return false
	}

	ok := false
	for _, link := range doc.ChildLinks(index) {
		child := doc.Positionable(link)
		if !child.HasValue() {
			continue
		}
		// child' = parent * child
		tc := child.Value().LocalTransform()
		child.Value().SetLocalTransform(tp.Value().Mul(tc))
		ok = true
	}

	if ok {
		doc.SetLocalTransform(index, core.IdentityTransform())
	}
	return ok
}

func bakeIntoGeometry(doc *scene.Document, index scene.Index) bool {
	b, found := doc.Block(index)
	if !found {
		return false
	}
	dataType, isLeaf := geometryLeafData[b.Type]
	t := doc.LocalTransform(index)
	if !isLeaf || !t.HasValue() {
		return false
	}

	baked := doc.UpdateGeometry(b.Data, dataType, func(g *scene.GeometryData) {
		bakeTransform(g, t.Value())
	})
	if !baked {
		return false
	}
	doc.SetLocalTransform(index, core.IdentityTransform())
	return true
}

// bakeTransform moves geometry into its parent's space. Normals only rotate:
// scale is uniform so no inverse-transpose is needed.
func bakeTransform(g *scene.GeometryData, t core.Transform) {
	for i, v := range g.Vertices {
		g.Vertices[i] = t.Apply(v)
	}
	if len(g.Vertices) > 0 {
		for i, n := range g.Normals {
			g.Normals[i] = t.ApplyDir(n)
		}
	}
	g.Center = t.Apply(g.Center)
	g.Radius = t.Scale * g.Radius
}

// ScaleVertices multiplies every vertex per axis, and the normals too when
// normals is set. Normals are scaled component-wise without renormalizing.
func ScaleVertices(g *scene.GeometryData, factors mgl32.Vec3, normals bool) {
	scale := func(vs []mgl32.Vec3) {
		for i := range vs {
			for a := 0; a < 3; a++ {
				vs[i][a] *= factors[a]
			}
		}
	}
	scale(g.Vertices)
	if normals {
		scale(g.Normals)
	}
}
