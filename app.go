package spellbook

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/pkg/errors"

	"github.com/gekko3d/spellbook/clipboard"
	"github.com/gekko3d/spellbook/scene"
	"github.com/gekko3d/spellbook/settings"
)

var (
	ErrUnknownSpell  = errors.New("unknown spell")
	ErrNotApplicable = errors.New("spell not applicable")
)

type Module interface {
	Install(app *App, cmd *Commands)
}

// App owns the spell registry and the host collaborators spells talk to.
// The registry is frozen once the AppBuilder has installed every module.
type App struct {
	modules   []Module
	resources []any
	types     map[reflect.Type]struct{}

	spells map[SpellId]*Spell
	frozen bool

	fallbackClipboard clipboard.Exchange
	fallbackSettings  settings.Store
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.types[resourceType]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.types[resourceType] = struct{}{}
		app.resources = append(app.resources, resource)
	}
	return app
}

func (app *App) registerSpells(spells ...*Spell) {
	if app.frozen {
		panic("spells can only be registered while the app is being built")
	}
	for _, spell := range spells {
		id := spell.Id()
		if _, ok := app.spells[id]; ok {
			panic(fmt.Sprintf("spell %s is already registered", id))
		}
		if spell.IsApplicable == nil || spell.Cast == nil {
			panic(fmt.Sprintf("spell %s is incomplete", id))
		}
		app.spells[id] = spell
	}
}

func (app *App) Spell(id SpellId) (*Spell, bool) {
	spell, ok := app.spells[id]
	return spell, ok
}

// Spells lists every registered spell ordered by page, then name.
func (app *App) Spells() []*Spell {
	out := make([]*Spell, 0, len(app.spells))
	for _, spell := range app.spells {
		out = append(out, spell)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ApplicableSpells returns the spells that can be cast on index right now.
func (app *App) ApplicableSpells(doc *scene.Document, index scene.Index, opts ...CastOption) []*Spell {
	cmd := app.Commands().with(opts)
	var out []*Spell
	for _, spell := range app.Spells() {
		if spell.IsApplicable(cmd, doc, index) {
			out = append(out, spell)
		}
	}
	return out
}

// Cast runs one spell on index. Spells never fail once dispatched: problems
// inside the document degrade to no-ops. The returned index is the spell's result.
func (app *App) Cast(doc *scene.Document, id SpellId, index scene.Index, opts ...CastOption) (scene.Index, error) {
	spell, ok := app.Spell(id)
	if !ok {
		return index, errors.Wrapf(ErrUnknownSpell, "%s", id)
	}

	cmd := app.Commands().with(opts)
	if !spell.IsApplicable(cmd, doc, index) {
		return index, errors.Wrapf(ErrNotApplicable, "%s on block %d (%s)", id, index, doc.TypeOf(index))
	}

	rev := doc.Revision()
	result := spell.Cast(cmd, doc, index)
	if doc.Revision() != rev {
		cmd.Logger().Debugf("%s on block %d changed document %s", id, index, doc.ID)
	} else {
		cmd.Logger().Debugf("%s on block %d left document %s untouched", id, index, doc.ID)
	}
	return result, nil
}

func (app *App) Clipboard() clipboard.Exchange {
	for _, r := range app.resources {
		if ex, ok := r.(clipboard.Exchange); ok {
			return ex
		}
	}
	return app.fallbackClipboard
}

func (app *App) Settings() settings.Store {
	for _, r := range app.resources {
		if s, ok := r.(settings.Store); ok {
			return s
		}
	}
	return app.fallbackSettings
}

func (app *App) Prompter() Prompter {
	for _, r := range app.resources {
		if p, ok := r.(Prompter); ok {
			return p
		}
	}
	return DenyPrompter{}
}

func (app *App) Presenter() Presenter {
	for _, r := range app.resources {
		if p, ok := r.(Presenter); ok {
			return p
		}
	}
	return discardPresenter{}
}
