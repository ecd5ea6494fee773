package spellbook

import (
	"image"
	"strings"

	"github.com/pkg/errors"

	"github.com/gekko3d/spellbook/scene"
)

// SpellId names a spell by its menu page and display name.
type SpellId struct {
	Page string
	Name string
}

func (id SpellId) String() string {
	return id.Page + "/" + id.Name
}

// ParseSpellId reads the "Page/Name" form.
func ParseSpellId(s string) (SpellId, error) {
	page, name, ok := strings.Cut(s, "/")
	if !ok || page == "" || name == "" {
		return SpellId{}, errors.Errorf("Invalid spell id %q, want Page/Name", s)
	}
	return SpellId{Page: page, Name: name}, nil
}

// Spell is one editor command. IsApplicable must not mutate the document.
type Spell struct {
	Name string
	Page string

	// Instant spells skip any confirmation step in the host UI.
	Instant bool
	// Icon renders the spell's icon at size x size pixels; nil when the spell has none.
	Icon func(size int) image.Image

	IsApplicable func(cmd *Commands, doc *scene.Document, index scene.Index) bool
	Cast         func(cmd *Commands, doc *scene.Document, index scene.Index) scene.Index
}

func (s *Spell) Id() SpellId {
	return SpellId{Page: s.Page, Name: s.Name}
}
