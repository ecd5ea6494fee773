package gltfio

import (
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/gekko3d/spellbook/core"
	"github.com/gekko3d/spellbook/scene"
)

// Export writes doc as glTF. A ".glb" extension selects the binary container.
func Export(doc *scene.Document, path string) error {
	gd, err := ToDocument(doc)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(gd, path)
	} else {
		err = gltf.Save(gd, path)
	}
	return errors.Wrapf(err, "Can't save gltf '%s'", path)
}

type exportState struct {
	doc  *scene.Document
	gd   *gltf.Document
	seen map[scene.Index]uint32
}

// ToDocument converts the positionable hierarchy below doc.Roots. Controllers
// and skin instances are not carried over. Blocks reachable through more
// than one parent are emitted once, under the first.
func ToDocument(doc *scene.Document) (*gltf.Document, error) {
	st := &exportState{
		doc:  doc,
		gd:   gltf.NewDocument(),
		seen: make(map[scene.Index]uint32),
	}

	for _, r := range doc.Roots {
		n, ok, err := st.node(r)
		if err != nil {
			return nil, err
		}
		if ok {
			st.gd.Scenes[0].Nodes = append(st.gd.Scenes[0].Nodes, n)
		}
	}
	return st.gd, nil
}

func (st *exportState) node(i scene.Index) (uint32, bool, error) {
	if _, dup := st.seen[i]; dup {
		return 0, false, nil
	}
	t := st.doc.LocalTransform(i)
	if !t.HasValue() {
		return 0, false, nil
	}
	b, _ := st.doc.Block(i)

	node := &gltf.Node{Name: b.Name}
	setTRS(node, t.Value())

	idx := uint32(len(st.gd.Nodes))
	st.gd.Nodes = append(st.gd.Nodes, node)
	st.seen[i] = idx

	if st.doc.Inherits(i, scene.TypeGeometry) {
		if mesh, ok := st.mesh(b); ok {
			node.Mesh = gltf.Index(mesh)
		}
	}

	for _, c := range st.doc.ChildLinks(i) {
		ci, ok, err := st.node(c)
		if err != nil {
			return 0, false, errors.Wrapf(err, "Child of block %d", i)
		}
		if ok {
			node.Children = append(node.Children, ci)
		}
	}
	return idx, true, nil
}

func (st *exportState) mesh(b *scene.Block) (uint32, bool) {
	g := st.doc.GeometryData(b.Data, scene.TypeGeometryData)
	if !g.HasValue() || len(g.Value().Vertices) == 0 {
		return 0, false
	}
	data := g.Value()

	attrs := map[string]uint32{
		gltf.POSITION: modeler.WritePosition(st.gd, fromVecs(data.Vertices)),
	}
	if data.HasNormals() {
		attrs[gltf.NORMAL] = modeler.WriteNormal(st.gd, fromVecs(data.Normals))
	}
	prim := &gltf.Primitive{
		Attributes: attrs,
		Mode:       gltf.PrimitiveTriangles,
	}
	if len(data.Triangles) > 0 {
		prim.Indices = gltf.Index(modeler.WriteIndices(st.gd, data.Triangles))
	}

	st.gd.Meshes = append(st.gd.Meshes, &gltf.Mesh{
		Name:       b.Name,
		Primitives: []*gltf.Primitive{prim},
	})
	return uint32(len(st.gd.Meshes) - 1), true
}

func setTRS(node *gltf.Node, t core.Transform) {
	q := mgl32.Mat4ToQuat(t.Rotation.Mat4()).Normalize()
	node.Translation = t.Translation
	node.Rotation = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
	node.Scale = [3]float32{t.Scale, t.Scale, t.Scale}
	node.Matrix = mgl32.Ident4()
}

func fromVecs(in []mgl32.Vec3) [][3]float32 {
	out := make([][3]float32, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
