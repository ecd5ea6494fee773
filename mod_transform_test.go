package spellbook

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/spellbook/clipboard"
	"github.com/gekko3d/spellbook/core"
	"github.com/gekko3d/spellbook/editor"
	"github.com/gekko3d/spellbook/scene"
	"github.com/gekko3d/spellbook/settings"
)

type recordingPrompter struct {
	StaticPrompter
	confirms  []string
	scaleReqs []ScaleVerticesRequest
}

func (p *recordingPrompter) Confirm(title, text string) bool {
	p.confirms = append(p.confirms, title)
	return p.StaticPrompter.Confirm(title, text)
}

func (p *recordingPrompter) ScaleVertices(req ScaleVerticesRequest) (ScaleVerticesRequest, bool) {
	p.scaleReqs = append(p.scaleReqs, req)
	return p.StaticPrompter.ScaleVertices(req)
}

type testHost struct {
	app      *App
	clip     *clipboard.Memory
	settings *settings.Memory
	doc      *scene.Document

	root, shape, data, skin, matrix scene.Index
}

func newTestHost(t *testing.T) *testHost {
	t.Helper()
	h := &testHost{
		clip:     clipboard.NewMemory(),
		settings: settings.NewMemory(),
		doc:      scene.NewDocument(nil),
	}
	h.app = NewAppBuilder().UseModule(TransformModule{}).Build()
	h.app.addResources(h.clip, h.settings)

	cube := unitCube()
	h.data = h.doc.AddBlock(scene.NewTriShapeData(*cube))
	h.shape = h.doc.AddBlock(scene.NewTriShape("cube", parentTransform(), h.data))
	h.skin = h.doc.AddBlock(scene.NewBlock(scene.TypeSkinInstance, ""))
	h.root = h.doc.AddRoot(scene.NewNode("root", parentTransform(), h.shape))

	mb := scene.NewBlock(scene.TypeConvexTransform, "shape")
	m := mgl32.Translate3D(1, 2, 3)
	mb.Matrix = &m
	h.matrix = h.doc.AddBlock(mb)
	require.NoError(t, h.doc.Validate())
	return h
}

func spellNames(spells []*Spell) []string {
	var out []string
	for _, s := range spells {
		out = append(out, s.Name)
	}
	return out
}

func TestTransformSpells_Applicability(t *testing.T) {
	h := newTestHost(t)

	assert.ElementsMatch(t, []string{"Apply", "Clear", "Copy", "Edit"}, spellNames(h.app.ApplicableSpells(h.doc, h.root)))
	assert.ElementsMatch(t, []string{"Apply", "Clear", "Copy", "Edit", "Scale Vertices"}, spellNames(h.app.ApplicableSpells(h.doc, h.shape)))
	assert.ElementsMatch(t, []string{"Edit"}, spellNames(h.app.ApplicableSpells(h.doc, h.matrix)))
	assert.Empty(t, h.app.ApplicableSpells(h.doc, h.data))
	assert.Empty(t, h.app.ApplicableSpells(h.doc, h.skin))
}

func TestApplyTransformation_Node(t *testing.T) {
	h := newTestHost(t)

	got, err := h.app.Cast(h.doc, ApplyTransformationId, h.root)
	require.NoError(t, err)
	assert.Equal(t, h.root, got)
	assert.True(t, h.doc.LocalTransform(h.root).Value().IsIdentity())
	assert.True(t, h.doc.LocalTransform(h.shape).Value().ApproxEqual(parentTransform().Mul(parentTransform()), tolerance))
}

func TestApplyTransformation_SkinnedNodeAsksFirst(t *testing.T) {
	h := newTestHost(t)
	h.doc.Blocks[h.shape].SkinInstance = h.skin
	before := h.doc.Blocks[h.data].Geometry.Vertices[0]

	declined := &recordingPrompter{}
	_, err := h.app.Cast(h.doc, ApplyTransformationId, h.shape, WithPrompter(declined))
	require.NoError(t, err)
	assert.Equal(t, []string{"Apply Transformation"}, declined.confirms)
	assert.Equal(t, before, h.doc.Blocks[h.data].Geometry.Vertices[0])
	assert.Equal(t, parentTransform(), h.doc.LocalTransform(h.shape).Value())

	accepted := &recordingPrompter{StaticPrompter: StaticPrompter{Confirmed: true}}
	_, err = h.app.Cast(h.doc, ApplyTransformationId, h.shape, WithPrompter(accepted))
	require.NoError(t, err)
	assert.Len(t, accepted.confirms, 1)
	assert.True(t, h.doc.LocalTransform(h.shape).Value().IsIdentity())
	assert.True(t, core.NearVec3(h.doc.Blocks[h.data].Geometry.Vertices[0], parentTransform().Apply(before), tolerance))
}

func TestApplyTransformation_AnimatedNodeUsesAppPrompter(t *testing.T) {
	h := newTestHost(t)
	ctrl := h.doc.AddBlock(scene.NewBlock(scene.TypeTransformController, ""))
	h.doc.Blocks[h.root].Controller = ctrl

	// no prompter installed: the default declines
	_, err := h.app.Cast(h.doc, ApplyTransformationId, h.root)
	require.NoError(t, err)
	assert.Equal(t, parentTransform(), h.doc.LocalTransform(h.root).Value())
}

func TestClearTransformation(t *testing.T) {
	h := newTestHost(t)

	for _, idx := range []scene.Index{h.root, h.shape} {
		_, err := h.app.Cast(h.doc, ClearTransformationId, idx)
		require.NoError(t, err)
		assert.Equal(t, core.IdentityTransform(), h.doc.LocalTransform(idx).Value())
	}

	_, err := h.app.Cast(h.doc, ClearTransformationId, h.data)
	assert.ErrorIs(t, err, ErrNotApplicable)
}

func TestCopyPasteTransformation(t *testing.T) {
	h := newTestHost(t)
	src := core.Transform{
		Translation: mgl32.Vec3{0.1, -7.25, 3.3333},
		Rotation:    core.RotationFromEuler(0.2, -0.4, 1.1),
		Scale:       1.75,
	}
	h.doc.SetLocalTransform(h.shape, src)

	_, err := h.app.Cast(h.doc, PasteTransformationId, h.root)
	assert.ErrorIs(t, err, ErrNotApplicable, "nothing on the clipboard yet")

	_, err = h.app.Cast(h.doc, CopyTransformationId, h.shape)
	require.NoError(t, err)
	assert.Equal(t, []string{TransformFormat}, h.clip.Formats())

	_, err = h.app.Cast(h.doc, PasteTransformationId, h.root)
	require.NoError(t, err)
	assert.Equal(t, src, h.doc.LocalTransform(h.root).Value())
}

func TestPasteTransformation_ForeignFormat(t *testing.T) {
	h := newTestHost(t)
	require.NoError(t, h.clip.SetData("text/plain", []byte("hello")))

	assert.NotContains(t, spellNames(h.app.ApplicableSpells(h.doc, h.root)), "Paste")
}

func TestPasteTransformation_CorruptPayloadIsNoop(t *testing.T) {
	h := newTestHost(t)
	require.NoError(t, h.clip.SetData(TransformFormat, []byte{1, 2, 3}))

	_, err := h.app.Cast(h.doc, PasteTransformationId, h.root)
	require.NoError(t, err)
	assert.Equal(t, parentTransform(), h.doc.LocalTransform(h.root).Value())
}

func TestEditTransformation(t *testing.T) {
	h := newTestHost(t)
	spell, ok := h.app.Spell(EditTransformationId)
	require.True(t, ok)
	assert.True(t, spell.Instant)
	require.NotNil(t, spell.Icon)

	var shown *editor.BlockEditor
	presenter := PresenterFunc(func(e *editor.BlockEditor) error {
		shown = e
		return nil
	})

	_, err := h.app.Cast(h.doc, EditTransformationId, h.root, WithPresenter(presenter))
	require.NoError(t, err)
	require.NotNil(t, shown)

	var labels []string
	for _, f := range shown.Fields() {
		labels = append(labels, f.Label())
	}
	assert.Equal(t, []string{"Translation", "Rotation", "Scale"}, labels)

	require.NoError(t, shown.Set("Translation", "4 5 6"))
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, h.doc.LocalTransform(h.root).Value().Translation)

	_, err = h.app.Cast(h.doc, EditTransformationId, h.matrix, WithPresenter(presenter))
	require.NoError(t, err)
	require.Len(t, shown.Fields(), 1)
	assert.Equal(t, "Matrix", shown.Fields()[0].Label())
}

func TestScaleVertices_Spell(t *testing.T) {
	h := newTestHost(t)
	orig := *unitCube()
	noNormals := false

	p := &recordingPrompter{StaticPrompter: StaticPrompter{
		Factors:      &mgl32.Vec3{2, 1, 1},
		ScaleNormals: &noNormals,
	}}
	_, err := h.app.Cast(h.doc, ScaleVerticesId, h.shape, WithPrompter(p))
	require.NoError(t, err)

	require.Len(t, p.scaleReqs, 1)
	assert.Equal(t, ScaleVerticesRequest{Factors: mgl32.Vec3{1, 1, 1}, ScaleNormals: true}, p.scaleReqs[0])

	g := h.doc.Blocks[h.data].Geometry
	for i, v := range g.Vertices {
		assert.Equal(t, mgl32.Vec3{orig.Vertices[i].X() * 2, orig.Vertices[i].Y(), orig.Vertices[i].Z()}, v)
	}
	assert.Equal(t, orig.Normals, g.Normals)

	group := settings.Group("spells", "Transform", "Scale Vertices")
	assert.False(t, h.settings.Bool(group, "scale normals", true), "toggle is persisted")

	// the next dialog starts from the persisted toggle
	_, err = h.app.Cast(h.doc, ScaleVerticesId, h.shape, WithPrompter(p))
	require.NoError(t, err)
	assert.False(t, p.scaleReqs[1].ScaleNormals)
}

func TestScaleVertices_WithNormals(t *testing.T) {
	h := newTestHost(t)
	orig := *unitCube()

	_, err := h.app.Cast(h.doc, ScaleVerticesId, h.shape, WithPrompter(StaticPrompter{Factors: &mgl32.Vec3{2, 1, 1}}))
	require.NoError(t, err)

	g := h.doc.Blocks[h.data].Geometry
	for i, n := range g.Normals {
		assert.Equal(t, mgl32.Vec3{orig.Normals[i].X() * 2, orig.Normals[i].Y(), orig.Normals[i].Z()}, n)
	}
}

func TestScaleVertices_CancelLeavesEverything(t *testing.T) {
	h := newTestHost(t)
	require.NoError(t, h.settings.SetBool(settings.Group("spells", "Transform", "Scale Vertices"), "scale normals", true))
	rev := h.doc.Revision()

	_, err := h.app.Cast(h.doc, ScaleVerticesId, h.shape, WithPrompter(StaticPrompter{Cancel: true, Factors: &mgl32.Vec3{5, 5, 5}}))
	require.NoError(t, err)
	assert.Equal(t, rev, h.doc.Revision())
	assert.Equal(t, unitCube().Vertices, h.doc.Blocks[h.data].Geometry.Vertices)
}

func TestScaleVerticesRequest_Normalize(t *testing.T) {
	r := ScaleVerticesRequest{Factors: mgl32.Vec3{1.234567, 2e6, -3e6}}.Normalize()
	assert.InDelta(t, 1.2346, r.Factors.X(), 1e-6)
	assert.Equal(t, float32(MaxScaleFactor), r.Factors.Y())
	assert.Equal(t, float32(-MaxScaleFactor), r.Factors.Z())
}

func TestCopyPasteTransformation_NonFinite(t *testing.T) {
	h := newTestHost(t)
	src := parentTransform()
	src.Translation[0] = float32(math.NaN())
	src.Scale = float32(math.Inf(1))
	h.doc.SetLocalTransform(h.shape, src)

	_, err := h.app.Cast(h.doc, CopyTransformationId, h.shape)
	require.NoError(t, err)
	_, err = h.app.Cast(h.doc, PasteTransformationId, h.root)
	require.NoError(t, err)

	got := h.doc.LocalTransform(h.root).Value()
	assert.Equal(t, math.Float32bits(src.Translation[0]), math.Float32bits(got.Translation[0]))
	assert.Equal(t, src.Translation[1:], got.Translation[1:])
	assert.Equal(t, src.Rotation, got.Rotation)
	assert.True(t, math.IsInf(float64(got.Scale), 1))
}
