package scene

import (
	"bytes"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gekko3d/spellbook/core"
)

type transformData struct {
	Translation [3]float32    `yaml:"translation,flow"`
	Rotation    [3][3]float32 `yaml:"rotation,flow"`
	Scale       float32       `yaml:"scale"`
}

type geometryData struct {
	Vertices  [][3]float32 `yaml:"vertices,flow"`
	Normals   [][3]float32 `yaml:"normals,omitempty,flow"`
	Center    [3]float32   `yaml:"center,flow"`
	Radius    float32      `yaml:"radius"`
	Triangles []uint32     `yaml:"triangles,omitempty,flow"`
}

type blockData struct {
	Type         string         `yaml:"type"`
	Name         string         `yaml:"name,omitempty"`
	Transform    *transformData `yaml:"transform,omitempty"`
	Children     []int          `yaml:"children,omitempty,flow"`
	Data         *int           `yaml:"data,omitempty"`
	Controller   *int           `yaml:"controller,omitempty"`
	SkinInstance *int           `yaml:"skin_instance,omitempty"`
	Matrix       *[4][4]float32 `yaml:"matrix,omitempty,flow"`
	Geometry     *geometryData  `yaml:"geometry,omitempty"`
}

type documentData struct {
	ID     string            `yaml:"id"`
	Types  map[string]string `yaml:"types,omitempty"`
	Roots  []int             `yaml:"roots,flow"`
	Blocks []blockData       `yaml:"blocks"`
}

func Load(filename string) (*Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open scene %q", filename)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to load scene %q", filename)
	}
	return doc, nil
}

func Save(doc *Document, filename string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(filename, buf.Bytes(), 0644), "Failed to write scene %q", filename)
}

// Decode reads a YAML scene. Types listed under "types" extend the default schema.
func Decode(r io.Reader) (*Document, error) {
	var dd documentData
	if err := yaml.NewDecoder(r).Decode(&dd); err != nil {
		return nil, errors.Wrap(err, "Failed to decode yaml")
	}

	schema := DefaultSchema()
	for typ, parent := range dd.Types {
		schema.Define(typ, parent)
	}

	doc := NewDocument(schema)
	if dd.ID != "" {
		id, err := uuid.Parse(dd.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid document id %q", dd.ID)
		}
		doc.ID = id
	}

	for _, bd := range dd.Blocks {
		doc.Blocks = append(doc.Blocks, bd.block(schema))
	}
	for _, r := range dd.Roots {
		doc.Roots = append(doc.Roots, Index(r))
	}

	if err := doc.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid scene")
	}
	return doc, nil
}

func Encode(w io.Writer, doc *Document) error {
	dd := documentData{
		ID:     doc.ID.String(),
		Roots:  make([]int, 0, len(doc.Roots)),
		Blocks: make([]blockData, 0, len(doc.Blocks)),
	}
	defaults := DefaultSchema()
	for _, typ := range doc.Schema.Types() {
		parent := doc.Schema.parents[typ]
		if !defaults.Known(typ) || defaults.parents[typ] != parent {
			if dd.Types == nil {
				dd.Types = make(map[string]string)
			}
			dd.Types[typ] = parent
		}
	}
	for _, r := range doc.Roots {
		dd.Roots = append(dd.Roots, int(r))
	}
	for _, b := range doc.Blocks {
		dd.Blocks = append(dd.Blocks, newBlockData(b))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&dd); err != nil {
		return errors.Wrap(err, "Failed to encode yaml")
	}
	return enc.Close()
}

func (bd *blockData) block(schema *Schema) *Block {
	b := NewBlock(bd.Type, bd.Name)
	b.Data = linkFrom(bd.Data)
	b.Controller = linkFrom(bd.Controller)
	b.SkinInstance = linkFrom(bd.SkinInstance)
	for _, c := range bd.Children {
		b.Children = append(b.Children, Index(c))
	}

	if bd.Transform != nil {
		t := bd.Transform.transform()
		b.Transform = &t
	} else if schema.Inherits(bd.Type, TypeAVObject) {
		t := core.IdentityTransform()
		b.Transform = &t
	}

	if bd.Matrix != nil {
		var m mgl32.Mat4
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				m.Set(row, col, bd.Matrix[row][col])
			}
		}
		b.Matrix = &m
	}

	if g := bd.Geometry; g != nil {
		b.Geometry = &GeometryData{
			Vertices:  vecsFrom(g.Vertices),
			Normals:   vecsFrom(g.Normals),
			Center:    mgl32.Vec3(g.Center),
			Radius:    g.Radius,
			Triangles: g.Triangles,
		}
	}
	return b
}

func newBlockData(b *Block) blockData {
	bd := blockData{
		Type:         b.Type,
		Name:         b.Name,
		Data:         linkTo(b.Data),
		Controller:   linkTo(b.Controller),
		SkinInstance: linkTo(b.SkinInstance),
	}
	for _, c := range b.Children {
		bd.Children = append(bd.Children, int(c))
	}
	if b.Transform != nil {
		td := newTransformData(*b.Transform)
		bd.Transform = &td
	}
	if b.Matrix != nil {
		var rows [4][4]float32
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				rows[row][col] = b.Matrix.At(row, col)
			}
		}
		bd.Matrix = &rows
	}
	if g := b.Geometry; g != nil {
		bd.Geometry = &geometryData{
			Vertices:  vecsTo(g.Vertices),
			Normals:   vecsTo(g.Normals),
			Center:    [3]float32(g.Center),
			Radius:    g.Radius,
			Triangles: g.Triangles,
		}
	}
	return bd
}

func newTransformData(t core.Transform) transformData {
	td := transformData{
		Translation: [3]float32(t.Translation),
		Scale:       t.Scale,
	}
	for row := 0; row < 3; row++ {
		td.Rotation[row] = [3]float32(t.Rotation.Row(row))
	}
	return td
}

func (td *transformData) transform() core.Transform {
	return core.Transform{
		Translation: mgl32.Vec3(td.Translation),
		Rotation: mgl32.Mat3FromRows(
			mgl32.Vec3(td.Rotation[0]),
			mgl32.Vec3(td.Rotation[1]),
			mgl32.Vec3(td.Rotation[2]),
		),
		Scale: td.Scale,
	}
}

func linkFrom(p *int) Index {
	if p == nil {
		return NoIndex
	}
	return Index(*p)
}

func linkTo(i Index) *int {
	if i == NoIndex {
		return nil
	}
	v := int(i)
	return &v
}

func vecsFrom(in [][3]float32) []mgl32.Vec3 {
	if len(in) == 0 {
		return nil
	}
	out := make([]mgl32.Vec3, len(in))
	for i, v := range in {
		out[i] = mgl32.Vec3(v)
	}
	return out
}

func vecsTo(in []mgl32.Vec3) [][3]float32 {
	if len(in) == 0 {
		return nil
	}
	out := make([][3]float32, len(in))
	for i, v := range in {
		out[i] = [3]float32(v)
	}
	return out
}
