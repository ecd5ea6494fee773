package spellbook

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/spellbook/clipboard"
	"github.com/gekko3d/spellbook/core"
	"github.com/gekko3d/spellbook/editor"
	"github.com/gekko3d/spellbook/scene"
	"github.com/gekko3d/spellbook/settings"
)

const (
	TransformPage = "Transform"

	// TransformFormat tags transform payloads on the clipboard.
	TransformFormat = "app/transform"

	scaleNormalsKey = "scale normals"
)

var (
	ApplyTransformationId = SpellId{Page: TransformPage, Name: "Apply"}
	ClearTransformationId = SpellId{Page: TransformPage, Name: "Clear"}
	CopyTransformationId  = SpellId{Page: TransformPage, Name: "Copy"}
	PasteTransformationId = SpellId{Page: TransformPage, Name: "Paste"}
	EditTransformationId  = SpellId{Page: TransformPage, Name: "Edit"}
	ScaleVerticesId       = SpellId{Page: TransformPage, Name: "Scale Vertices"}
)

// TransformModule registers the transform spells.
type TransformModule struct{}

func (TransformModule) Install(app *App, cmd *Commands) {
	cmd.RegisterSpells(
		&Spell{
			Name:         ApplyTransformationId.Name,
			Page:         TransformPage,
			IsApplicable: canApplyTransformation,
			Cast:         applyTransformation,
		},
		&Spell{
			Name:         ClearTransformationId.Name,
			Page:         TransformPage,
			IsApplicable: hasTransform,
			Cast:         clearTransformation,
		},
		&Spell{
			Name:         CopyTransformationId.Name,
			Page:         TransformPage,
			IsApplicable: hasTransform,
			Cast:         copyTransformation,
		},
		&Spell{
			Name:         PasteTransformationId.Name,
			Page:         TransformPage,
			IsApplicable: canPasteTransformation,
			Cast:         pasteTransformation,
		},
		&Spell{
			Name:         EditTransformationId.Name,
			Page:         TransformPage,
			Instant:      true,
			Icon:         TransformIcon,
			IsApplicable: canEditTransformation,
			Cast:         editTransformation,
		},
		&Spell{
			Name:         ScaleVerticesId.Name,
			Page:         TransformPage,
			IsApplicable: isGeometry,
			Cast:         scaleVertices,
		},
	)
}

func hasTransform(cmd *Commands, doc *scene.Document, index scene.Index) bool {
	return doc.HasTransform(index)
}

func isGeometry(cmd *Commands, doc *scene.Document, index scene.Index) bool {
	return doc.Inherits(index, scene.TypeGeometry)
}

func canApplyTransformation(cmd *Commands, doc *scene.Document, index scene.Index) bool {
	return CanPropagate(doc, index)
}

func applyTransformation(cmd *Commands, doc *scene.Document, index scene.Index) scene.Index {
	b, _ := doc.Block(index)
	if b.Controller != scene.NoIndex || b.SkinInstance != scene.NoIndex {
		if !cmd.Prompter().Confirm("Apply Transformation",
			"On animated and or skinned nodes Apply Transformation most likely won't work the way you expected it.") {
			return index
		}
	}

	if !Propagate(doc, index) {
		cmd.Logger().Debugf("apply transformation: nothing to propagate from block %d", index)
	}
	return index
}

func clearTransformation(cmd *Commands, doc *scene.Document, index scene.Index) scene.Index {
	doc.SetLocalTransform(index, core.IdentityTransform())
	return index
}

func copyTransformation(cmd *Commands, doc *scene.Document, index scene.Index) scene.Index {
	t := doc.LocalTransform(index)
	if !t.HasValue() {
		return index
	}
	data, err := t.Value().MarshalBinary()
	if err != nil {
		cmd.Logger().Warnf("copy transformation: %v", err)
		return index
	}
	if err := cmd.Clipboard().SetData(TransformFormat, data); err != nil {
		cmd.Logger().Warnf("copy transformation: %v", err)
	}
	return index
}

func canPasteTransformation(cmd *Commands, doc *scene.Document, index scene.Index) bool {
	return doc.HasTransform(index) && clipboard.HasFormat(cmd.Clipboard(), TransformFormat)
}

func pasteTransformation(cmd *Commands, doc *scene.Document, index scene.Index) scene.Index {
	data, ok := cmd.Clipboard().Data(TransformFormat)
	if !ok {
		return index
	}
	var t core.Transform
	if err := t.UnmarshalBinary(data); err != nil {
		cmd.Logger().Debugf("paste transformation: %v", err)
		return index
	}
	doc.SetLocalTransform(index, t)
	return index
}

func canEditTransformation(cmd *Commands, doc *scene.Document, index scene.Index) bool {
	return doc.HasTransform(index) || doc.Matrix(index).HasValue()
}

func editTransformation(cmd *Commands, doc *scene.Document, index scene.Index) scene.Index {
	e := editor.NewBlockEditor(doc, index)
	if doc.HasTransform(index) {
		e.Add(editor.NewVectorEdit(doc, index)).
			Add(editor.NewRotationEdit(doc, index)).
			Add(editor.NewFloatEdit(doc, index))
	} else {
		e.Add(editor.NewMatrix4Edit(doc, index))
	}

	if err := cmd.Presenter().Show(e); err != nil {
		cmd.Logger().Warnf("edit transformation: %v", err)
	}
	return index
}

func scaleVertices(cmd *Commands, doc *scene.Document, index scene.Index) scene.Index {
	group := settings.Group("spells", ScaleVerticesId.Page, ScaleVerticesId.Name)
	req := ScaleVerticesRequest{
		Factors:      mgl32.Vec3{1, 1, 1},
		ScaleNormals: cmd.Settings().Bool(group, scaleNormalsKey, true),
	}

	req, ok := cmd.Prompter().ScaleVertices(req)
	if !ok {
		return index
	}
	req = req.Normalize()

	if err := cmd.Settings().SetBool(group, scaleNormalsKey, req.ScaleNormals); err != nil {
		cmd.Logger().Warnf("scale vertices: %v", err)
	}

	b, _ := doc.Block(index)
	if !doc.UpdateGeometry(b.Data, scene.TypeGeometryData, func(g *scene.GeometryData) {
		ScaleVertices(g, req.Factors, req.ScaleNormals)
	}) {
		cmd.Logger().Debugf("scale vertices: block %d has no geometry data", index)
	}
	return index
}
