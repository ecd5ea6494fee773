package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/spellbook/core"
	"github.com/gekko3d/spellbook/scene"
)

// Field is one editable value bound to the document. String always reflects
// the current document state and Set writes straight through. Check reports
// the error Set would return without writing anything.
type Field interface {
	Label() string
	String() string
	Check(text string) error
	Set(text string) error
}

// Assignment is one "Label=value" edit.
type Assignment struct {
	Label, Value string
}

func ParseAssignment(kv string) (Assignment, error) {
	label, value, ok := strings.Cut(kv, "=")
	if !ok || strings.TrimSpace(label) == "" {
		return Assignment{}, fmt.Errorf("invalid edit %q, want Label=value", kv)
	}
	return Assignment{Label: strings.TrimSpace(label), Value: value}, nil
}

func ParseAssignments(kvs []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(kvs))
	for _, kv := range kvs {
		a, err := ParseAssignment(kv)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// BlockEditor groups the fields edited for one block.
type BlockEditor struct {
	doc    *scene.Document
	index  scene.Index
	fields []Field
}

func NewBlockEditor(doc *scene.Document, index scene.Index) *BlockEditor {
	return &BlockEditor{doc: doc, index: index}
}

func (e *BlockEditor) Add(f Field) *BlockEditor {
	e.fields = append(e.fields, f)
	return e
}

func (e *BlockEditor) Index() scene.Index {
	return e.index
}

func (e *BlockEditor) Fields() []Field {
	return e.fields
}

func (e *BlockEditor) Title() string {
	b, ok := e.doc.Block(e.index)
	if !ok {
		return fmt.Sprintf("[%d]", e.index)
	}
	if b.Name != "" {
		return fmt.Sprintf("[%d] %s %q", e.index, b.Type, b.Name)
	}
	return fmt.Sprintf("[%d] %s", e.index, b.Type)
}

func (e *BlockEditor) Field(label string) (Field, bool) {
	for _, f := range e.fields {
		if strings.EqualFold(f.Label(), label) {
			return f, true
		}
	}
	return nil, false
}

func (e *BlockEditor) Set(label, text string) error {
	f, ok := e.Field(label)
	if !ok {
		return fmt.Errorf("%s has no field %q", e.Title(), label)
	}
	return f.Set(text)
}

// SetAll checks every assignment first, so either all of them are written
// or none is.
func (e *BlockEditor) SetAll(as []Assignment) error {
	fields := make([]Field, len(as))
	for i, a := range as {
		f, ok := e.Field(a.Label)
		if !ok {
			return fmt.Errorf("%s has no field %q", e.Title(), a.Label)
		}
		if err := f.Check(a.Value); err != nil {
			return fmt.Errorf("%s: %w", f.Label(), err)
		}
		fields[i] = f
	}
	for i, a := range as {
		if err := fields[i].Set(a.Value); err != nil {
			return fmt.Errorf("%s: %w", fields[i].Label(), err)
		}
	}
	return nil
}

// transformField shares the read-modify-write cycle of the three transform edits.
type transformField struct {
	doc   *scene.Document
	index scene.Index
}

func (f transformField) get() (core.Transform, error) {
	t := f.doc.LocalTransform(f.index)
	if !t.HasValue() {
		return core.Transform{}, fmt.Errorf("block %d has no transform", f.index)
	}
	return t.Value(), nil
}

func (f transformField) check(text string, n int) error {
	if _, err := f.get(); err != nil {
		return err
	}
	_, err := parseFloats(text, n)
	return err
}

func (f transformField) update(fn func(t *core.Transform)) error {
	t, err := f.get()
	if err != nil {
		return err
	}
	fn(&t)
	f.doc.SetLocalTransform(f.index, t)
	return nil
}

// VectorEdit edits the translation.
type VectorEdit struct{ transformField }

func NewVectorEdit(doc *scene.Document, index scene.Index) *VectorEdit {
	return &VectorEdit{transformField{doc, index}}
}

func (e *VectorEdit) Label() string { return "Translation" }

func (e *VectorEdit) Value() mgl32.Vec3 {
	t, _ := e.get()
	return t.Translation
}

func (e *VectorEdit) String() string {
	v := e.Value()
	return formatFloats(v[:])
}

func (e *VectorEdit) Check(text string) error {
	return e.check(text, 3)
}

func (e *VectorEdit) Set(text string) error {
	v, err := parseFloats(text, 3)
	if err != nil {
		return err
	}
	return e.update(func(t *core.Transform) {
		t.Translation = mgl32.Vec3{v[0], v[1], v[2]}
	})
}

// RotationEdit edits the rotation as yaw, pitch and roll in degrees.
type RotationEdit struct{ transformField }

func NewRotationEdit(doc *scene.Document, index scene.Index) *RotationEdit {
	return &RotationEdit{transformField{doc, index}}
}

func (e *RotationEdit) Label() string { return "Rotation" }

func (e *RotationEdit) Degrees() [3]float32 {
	t, _ := e.get()
	yaw, pitch, roll := core.Mat3ToEuler(t.Rotation)
	return [3]float32{mgl32.RadToDeg(yaw), mgl32.RadToDeg(pitch), mgl32.RadToDeg(roll)}
}

func (e *RotationEdit) String() string {
	d := e.Degrees()
	return formatFloats(d[:])
}

func (e *RotationEdit) Check(text string) error {
	return e.check(text, 3)
}

func (e *RotationEdit) Set(text string) error {
	v, err := parseFloats(text, 3)
	if err != nil {
		return err
	}
	return e.update(func(t *core.Transform) {
		t.Rotation = core.RotationFromEuler(mgl32.DegToRad(v[0]), mgl32.DegToRad(v[1]), mgl32.DegToRad(v[2]))
	})
}

// FloatEdit edits the uniform scale.
type FloatEdit struct{ transformField }

func NewFloatEdit(doc *scene.Document, index scene.Index) *FloatEdit {
	return &FloatEdit{transformField{doc, index}}
}

func (e *FloatEdit) Label() string { return "Scale" }

func (e *FloatEdit) String() string {
	t, _ := e.get()
	return formatFloats([]float32{t.Scale})
}

func (e *FloatEdit) Check(text string) error {
	return e.check(text, 1)
}

func (e *FloatEdit) Set(text string) error {
	v, err := parseFloats(text, 1)
	if err != nil {
		return err
	}
	return e.update(func(t *core.Transform) {
		t.Scale = v[0]
	})
}

// Matrix4Edit edits a raw 4x4 matrix field, written as 16 row-major values.
type Matrix4Edit struct {
	doc   *scene.Document
	index scene.Index
}

func NewMatrix4Edit(doc *scene.Document, index scene.Index) *Matrix4Edit {
	return &Matrix4Edit{doc: doc, index: index}
}

func (e *Matrix4Edit) Label() string { return "Matrix" }

func (e *Matrix4Edit) Value() mgl32.Mat4 {
	m := e.doc.Matrix(e.index)
	if !m.HasValue() {
		return mgl32.Ident4()
	}
	return m.Value()
}

func (e *Matrix4Edit) String() string {
	m := e.Value()
	rows := make([]string, 4)
	for r := 0; r < 4; r++ {
		row := m.Row(r)
		rows[r] = formatFloats(row[:])
	}
	return strings.Join(rows, "; ")
}

func (e *Matrix4Edit) Check(text string) error {
	if !e.doc.Matrix(e.index).HasValue() {
		return fmt.Errorf("block %d has no matrix", e.index)
	}
	_, err := parseFloats(text, 16)
	return err
}

func (e *Matrix4Edit) Set(text string) error {
	v, err := parseFloats(text, 16)
	if err != nil {
		return err
	}
	var m mgl32.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, v[r*4+c])
		}
	}
	if !e.doc.SetMatrix(e.index, m) {
		return fmt.Errorf("block %d has no matrix", e.index)
	}
	return nil
}

func parseFloats(text string, n int) ([]float32, error) {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d values, got %d in %q", n, len(parts), text)
	}
	out := make([]float32, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func formatFloats(values []float32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(float64(v), 'g', 6, 32)
	}
	return strings.Join(parts, ", ")
}
