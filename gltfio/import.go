// Package gltfio converts between glTF 2.0 assets and scene documents.
package gltfio

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/gekko3d/spellbook/core"
	"github.com/gekko3d/spellbook/scene"
)

// Importer maps glTF nodes onto scene blocks.
type Importer struct {
	// Warnf receives lossy-conversion warnings. Nil discards them.
	Warnf func(format string, args ...any)
}

func Import(path string) (*scene.Document, error) {
	return (&Importer{}).Import(path)
}

func (im *Importer) Import(path string) (*scene.Document, error) {
	gd, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open gltf '%s'", path)
	}
	doc, err := im.FromDocument(gd)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't import '%s'", path)
	}
	return doc, nil
}

type importState struct {
	im  *Importer
	gd  *gltf.Document
	doc *scene.Document

	nodes       []scene.Index
	skins       []scene.Index
	controllers map[uint32]scene.Index
}

// FromDocument builds a scene document from an already decoded glTF asset.
// A node without a mesh becomes an NiNode. A node with a single primitive and
// no children becomes the geometry leaf itself; otherwise every primitive
// becomes an identity leaf under the node.
func (im *Importer) FromDocument(gd *gltf.Document) (*scene.Document, error) {
	st := &importState{
		im:          im,
		gd:          gd,
		doc:         scene.NewDocument(nil),
		nodes:       make([]scene.Index, len(gd.Nodes)),
		controllers: make(map[uint32]scene.Index),
	}

	for _, skin := range gd.Skins {
		b := scene.NewBlock(scene.TypeSkinInstance, skin.Name)
		st.skins = append(st.skins, st.doc.AddBlock(b))
	}
	for _, anim := range gd.Animations {
		for _, ch := range anim.Channels {
			if ch.Target.Node == nil {
				continue
			}
			n := *ch.Target.Node
			if _, ok := st.controllers[n]; ok {
				continue
			}
			b := scene.NewBlock(scene.TypeTransformController, anim.Name)
			st.controllers[n] = st.doc.AddBlock(b)
		}
	}

	for i, node := range gd.Nodes {
		idx, err := st.node(uint32(i), node)
		if err != nil {
			return nil, errors.Wrapf(err, "Node %d '%s'", i, node.Name)
		}
		st.nodes[i] = idx
	}
	for i, node := range gd.Nodes {
		b, _ := st.doc.Block(st.nodes[i])
		for _, c := range node.Children {
			if int(c) >= len(st.nodes) {
				return nil, errors.Errorf("Node %d has invalid child %d", i, c)
			}
			b.Children = append(b.Children, st.nodes[c])
		}
	}

	for _, r := range st.roots() {
		st.doc.Roots = append(st.doc.Roots, st.nodes[r])
	}

	if err := st.doc.Validate(); err != nil {
		return nil, err
	}
	return st.doc, nil
}

func (st *importState) roots() []uint32 {
	if len(st.gd.Scenes) > 0 {
		sc := uint32(0)
		if st.gd.Scene != nil {
			sc = *st.gd.Scene
		}
		if int(sc) < len(st.gd.Scenes) && len(st.gd.Scenes[sc].Nodes) > 0 {
			return st.gd.Scenes[sc].Nodes
		}
	}

	hasParent := make([]bool, len(st.gd.Nodes))
	for _, node := range st.gd.Nodes {
		for _, c := range node.Children {
			if int(c) < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []uint32
	for i, p := range hasParent {
		if !p {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func (st *importState) node(i uint32, node *gltf.Node) (scene.Index, error) {
	t := st.transform(node)

	var prims []*gltf.Primitive
	if node.Mesh != nil {
		if int(*node.Mesh) >= len(st.gd.Meshes) {
			return scene.NoIndex, errors.Errorf("Invalid mesh %d", *node.Mesh)
		}
		prims = st.gd.Meshes[*node.Mesh].Primitives
	}

	var holder *scene.Block
	if len(prims) == 1 && len(node.Children) == 0 {
		leaf, err := st.leaf(node.Name, prims[0])
		if err != nil {
			return scene.NoIndex, err
		}
		*leaf.Transform = t
		holder = leaf
	} else {
		holder = scene.NewNode(node.Name, t)
		for pi, p := range prims {
			leaf, err := st.leaf(fmt.Sprintf("%s:%d", node.Name, pi), p)
			if err != nil {
				return scene.NoIndex, err
			}
			st.attach(node, leaf)
			holder.Children = append(holder.Children, st.doc.AddBlock(leaf))
		}
	}

	if c, ok := st.controllers[i]; ok {
		holder.Controller = c
	}
	st.attach(node, holder)
	return st.doc.AddBlock(holder), nil
}

func (st *importState) attach(node *gltf.Node, b *scene.Block) {
	if node.Skin != nil && int(*node.Skin) < len(st.skins) && st.doc.Schema.Inherits(b.Type, scene.TypeGeometry) {
		b.SkinInstance = st.skins[*node.Skin]
	}
}

func (st *importState) leaf(name string, p *gltf.Primitive) (*scene.Block, error) {
	leafType, dataType := scene.TypeTriShape, scene.TypeTriShapeData
	switch p.Mode {
	case gltf.PrimitiveTriangles:
	case gltf.PrimitiveTriangleStrip:
		leafType, dataType = scene.TypeTriStrips, scene.TypeTriStripsData
	default:
		return nil, errors.Errorf("Unsupported primitive mode %v", p.Mode)
	}

	g, err := st.geometry(p)
	if err != nil {
		return nil, err
	}
	if leafType == scene.TypeTriStrips {
		g.Triangles = unstrip(g.Triangles)
	}

	data := scene.NewBlock(dataType, name)
	data.Geometry = g

	leaf := scene.NewBlock(leafType, name)
	identity := core.IdentityTransform()
	leaf.Transform = &identity
	leaf.Data = st.doc.AddBlock(data)
	return leaf, nil
}

func (st *importState) accessor(idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(st.gd.Accessors) {
		return nil, errors.Errorf("Invalid accessor %d", idx)
	}
	return st.gd.Accessors[idx], nil
}

func (st *importState) geometry(p *gltf.Primitive) (*scene.GeometryData, error) {
	g := &scene.GeometryData{}

	if idx, ok := p.Attributes[gltf.POSITION]; ok {
		acr, err := st.accessor(idx)
		if err != nil {
			return nil, err
		}
		pos, err := modeler.ReadPosition(st.gd, acr, nil)
		if err != nil {
			return nil, errors.Wrap(err, "Can't read positions")
		}
		g.Vertices = toVecs(pos)
	}
	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		acr, err := st.accessor(idx)
		if err != nil {
			return nil, err
		}
		nrm, err := modeler.ReadNormal(st.gd, acr, nil)
		if err != nil {
			return nil, errors.Wrap(err, "Can't read normals")
		}
		if len(nrm) == len(g.Vertices) {
			g.Normals = toVecs(nrm)
		} else {
			st.warnf("dropping %d normals for %d vertices", len(nrm), len(g.Vertices))
		}
	}

	if p.Indices != nil {
		acr, err := st.accessor(*p.Indices)
		if err != nil {
			return nil, err
		}
		ind, err := modeler.ReadIndices(st.gd, acr, nil)
		if err != nil {
			return nil, errors.Wrap(err, "Can't read indices")
		}
		g.Triangles = ind
	} else {
		g.Triangles = make([]uint32, len(g.Vertices))
		for i := range g.Triangles {
			g.Triangles[i] = uint32(i)
		}
	}

	g.UpdateBounds()
	return g, nil
}

// transform converts node TRS or matrix into a uniformly scaled transform.
// Zero scale and zero quaternion are treated as unset.
func (st *importState) transform(node *gltf.Node) core.Transform {
	m := mgl32.Mat4(node.Matrix)
	if m != (mgl32.Mat4{}) && m != mgl32.Ident4() {
		t := core.TransformFromMat4(m)
		sx, sy, sz := m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()
		if !uniform(sx, sy, sz) {
			st.warnf("node %q: non-uniform scale (%g, %g, %g) collapsed to %g", node.Name, sx, sy, sz, t.Scale)
		}
		return t
	}

	t := core.IdentityTransform()
	t.Translation = mgl32.Vec3(node.Translation)

	if r := node.Rotation; r != ([4]float32{}) {
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize()
		t.Rotation = q.Mat4().Mat3()
	}

	if s := node.Scale; s != ([3]float32{}) {
		t.Scale = (s[0] + s[1] + s[2]) / 3
		if !uniform(s[0], s[1], s[2]) {
			st.warnf("node %q: non-uniform scale %v collapsed to %g", node.Name, s, t.Scale)
		}
	}
	return t
}

func (st *importState) warnf(format string, args ...any) {
	if st.im != nil && st.im.Warnf != nil {
		st.im.Warnf(format, args...)
	}
}

func uniform(x, y, z float32) bool {
	const eps = 1e-5
	return mgl32.FloatEqualThreshold(x, y, eps) && mgl32.FloatEqualThreshold(y, z, eps)
}

// unstrip expands a triangle strip into a triangle list, flipping every odd
// triangle to keep winding and dropping degenerate ones.
func unstrip(strip []uint32) []uint32 {
	var out []uint32
	for i := 0; i+2 < len(strip); i++ {
		a, b, c := strip[i], strip[i+1], strip[i+2]
		if a == b || b == c || a == c {
			continue
		}
		if i%2 == 1 {
			a, b = b, a
		}
		out = append(out, a, b, c)
	}
	return out
}

func toVecs(in [][3]float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
