package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/sourcenetwork/immutable"

	"github.com/gekko3d/spellbook/core"
)

// Positionable is anything with a local transform: nodes and geometry leaves.
type Positionable interface {
	Index() Index
	LocalTransform() core.Transform
	SetLocalTransform(t core.Transform)
}

// Document is an in-memory scene: a flat table of blocks linked by Index.
// It is not safe for concurrent use.
type Document struct {
	ID     uuid.UUID
	Schema *Schema
	Blocks []*Block
	Roots  []Index

	revision uint64
}

func NewDocument(schema *Schema) *Document {
	if schema == nil {
		schema = DefaultSchema()
	}
	return &Document{
		ID:     uuid.New(),
		Schema: schema,
	}
}

// AddBlock appends b and returns its index.
func (d *Document) AddBlock(b *Block) Index {
	d.Blocks = append(d.Blocks, b)
	d.revision++
	return Index(len(d.Blocks) - 1)
}

func (d *Document) AddRoot(b *Block) Index {
	i := d.AddBlock(b)
	d.Roots = append(d.Roots, i)
	return i
}

func (d *Document) Len() int {
	return len(d.Blocks)
}

// Revision advances on every mutation made through the document.
func (d *Document) Revision() uint64 {
	return d.revision
}

// Touch records an external mutation of block data.
func (d *Document) Touch() {
	d.revision++
}

func (d *Document) Block(i Index) (*Block, bool) {
	if i < 0 || int(i) >= len(d.Blocks) || d.Blocks[i] == nil {
		return nil, false
	}
	return d.Blocks[i], true
}

func (d *Document) TypeOf(i Index) string {
	if b, ok := d.Block(i); ok {
		return b.Type
	}
	return ""
}

func (d *Document) Inherits(i Index, ancestor string) bool {
	b, ok := d.Block(i)
	return ok && d.Schema.Inherits(b.Type, ancestor)
}

// BlockOfType resolves link and checks the target derives from ancestor.
func (d *Document) BlockOfType(link Index, ancestor string) immutable.Option[*Block] {
	b, ok := d.Block(link)
	if !ok || !d.Schema.Inherits(b.Type, ancestor) {
		return immutable.None[*Block]()
	}
	return immutable.Some(b)
}

func (d *Document) ChildLinks(i Index) []Index {
	if b, ok := d.Block(i); ok {
		return b.Children
	}
	return nil
}

// HasTransform reports whether the block carries a translation/rotation/scale triple.
func (d *Document) HasTransform(i Index) bool {
	b, ok := d.Block(i)
	return ok && b.Transform != nil
}

func (d *Document) LocalTransform(i Index) immutable.Option[core.Transform] {
	b, ok := d.Block(i)
	if !ok || b.Transform == nil {
		return immutable.None[core.Transform]()
	}
	return immutable.Some(*b.Transform)
}

func (d *Document) SetLocalTransform(i Index, t core.Transform) bool {
	b, ok := d.Block(i)
	if !ok || b.Transform == nil {
		return false
	}
	*b.Transform = t
	d.revision++
	return true
}

// Positionable resolves i to a transformable AV object.
func (d *Document) Positionable(i Index) immutable.Option[Positionable] {
	if !d.Inherits(i, TypeAVObject) || !d.HasTransform(i) {
		return immutable.None[Positionable]()
	}
	return immutable.Some[Positionable](&avObject{doc: d, index: i})
}

// GeometryData resolves a data link whose target derives from ancestor.
func (d *Document) GeometryData(link Index, ancestor string) immutable.Option[*GeometryData] {
	b := d.BlockOfType(link, ancestor)
	if !b.HasValue() || b.Value().Geometry == nil {
		return immutable.None[*GeometryData]()
	}
	return immutable.Some(b.Value().Geometry)
}

// UpdateGeometry runs fn on the data block behind link. It reports false if
// the link does not resolve.
func (d *Document) UpdateGeometry(link Index, ancestor string, fn func(g *GeometryData)) bool {
	g := d.GeometryData(link, ancestor)
	if !g.HasValue() {
		return false
	}
	fn(g.Value())
	d.revision++
	return true
}

func (d *Document) Matrix(i Index) immutable.Option[mgl32.Mat4] {
	b, ok := d.Block(i)
	if !ok || b.Matrix == nil {
		return immutable.None[mgl32.Mat4]()
	}
	return immutable.Some(*b.Matrix)
}

func (d *Document) SetMatrix(i Index, m mgl32.Mat4) bool {
	b, ok := d.Block(i)
	if !ok || b.Matrix == nil {
		return false
	}
	*b.Matrix = m
	d.revision++
	return true
}

// Parent returns the first node listing i as a child.
func (d *Document) Parent(i Index) Index {
	for p, b := range d.Blocks {
		if b == nil {
			continue
		}
		for _, c := range b.Children {
			if c == i {
				return Index(p)
			}
		}
	}
	return NoIndex
}

// Validate checks that every link points inside the block table and that
// geometry arrays are consistent.
func (d *Document) Validate() error {
	inRange := func(i Index) bool {
		return i == NoIndex || (i >= 0 && int(i) < len(d.Blocks))
	}
	for idx, b := range d.Blocks {
		if b == nil {
			return fmt.Errorf("block %d is empty", idx)
		}
		if !d.Schema.Known(b.Type) {
			return fmt.Errorf("block %d: unknown type %q", idx, b.Type)
		}
		for _, link := range append([]Index{b.Data, b.Controller, b.SkinInstance}, b.Children...) {
			if !inRange(link) {
				return fmt.Errorf("block %d (%s): link %d out of range", idx, b.Type, link)
			}
		}
		if g := b.Geometry; g != nil && g.HasNormals() && len(g.Normals) != len(g.Vertices) {
			return fmt.Errorf("block %d (%s): %d normals for %d vertices", idx, b.Type, len(g.Normals), len(g.Vertices))
		}
	}
	for _, r := range d.Roots {
		if !inRange(r) || r == NoIndex {
			return fmt.Errorf("root %d out of range", r)
		}
	}
	return nil
}

type avObject struct {
	doc   *Document
	index Index
}

func (o *avObject) Index() Index {
	return o.index
}

func (o *avObject) LocalTransform() core.Transform {
	if t := o.doc.LocalTransform(o.index); t.HasValue() {
		return t.Value()
	}
	return core.IdentityTransform()
}

func (o *avObject) SetLocalTransform(t core.Transform) {
	o.doc.SetLocalTransform(o.index, t)
}
