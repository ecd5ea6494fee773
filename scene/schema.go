package scene

import "sort"

// Block type names used by the default schema.
const (
	TypeObject              = "NiObject"
	TypeObjectNET           = "NiObjectNET"
	TypeAVObject            = "NiAVObject"
	TypeNode                = "NiNode"
	TypeGeometry            = "NiGeometry"
	TypeTriBasedGeom        = "NiTriBasedGeom"
	TypeTriShape            = "NiTriShape"
	TypeTriStrips           = "NiTriStrips"
	TypeGeometryData        = "NiGeometryData"
	TypeTriBasedGeomData    = "NiTriBasedGeomData"
	TypeTriShapeData        = "NiTriShapeData"
	TypeTriStripsData       = "NiTriStripsData"
	TypeSkinInstance        = "NiSkinInstance"
	TypeTimeController      = "NiTimeController"
	TypeTransformController = "NiTransformController"
	TypeShape               = "bhkShape"
	TypeConvexTransform     = "bhkConvexTransformShape"
)

// Schema is a block type inheritance table: type name -> parent type name.
// Roots map to "".
type Schema struct {
	parents map[string]string
}

func NewSchema() *Schema {
	return &Schema{parents: make(map[string]string)}
}

// DefaultSchema covers the block types the transform spells work with.
func DefaultSchema() *Schema {
	s := NewSchema()
	s.Define(TypeObject, "")
	s.Define(TypeObjectNET, TypeObject)
	s.Define(TypeAVObject, TypeObjectNET)
	s.Define(TypeNode, TypeAVObject)
	s.Define("BSFadeNode", TypeNode)
	s.Define("NiBillboardNode", TypeNode)
	s.Define("BSOrderedNode", TypeNode)
	s.Define(TypeGeometry, TypeAVObject)
	s.Define(TypeTriBasedGeom, TypeGeometry)
	s.Define(TypeTriShape, TypeTriBasedGeom)
	s.Define(TypeTriStrips, TypeTriBasedGeom)
	s.Define(TypeGeometryData, TypeObject)
	s.Define(TypeTriBasedGeomData, TypeGeometryData)
	s.Define(TypeTriShapeData, TypeTriBasedGeomData)
	s.Define(TypeTriStripsData, TypeTriBasedGeomData)
	s.Define(TypeSkinInstance, TypeObject)
	s.Define(TypeTimeController, TypeObject)
	s.Define(TypeTransformController, TypeTimeController)
	s.Define(TypeShape, TypeObject)
	s.Define(TypeConvexTransform, TypeShape)
	return s
}

// Define registers typ as a subtype of parent. Redefinition replaces the parent.
func (s *Schema) Define(typ, parent string) {
	s.parents[typ] = parent
}

func (s *Schema) Known(typ string) bool {
	_, ok := s.parents[typ]
	return ok
}

// Inherits reports whether typ is ancestor or derives from it.
func (s *Schema) Inherits(typ, ancestor string) bool {
	for depth := 0; typ != "" && depth <= len(s.parents); depth++ {
		if typ == ancestor {
			return true
		}
		typ = s.parents[typ]
	}
	return false
}

func (s *Schema) Types() []string {
	types := make([]string, 0, len(s.parents))
	for t := range s.parents {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
