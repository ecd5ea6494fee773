package spellbook

import (
	"reflect"

	"github.com/gekko3d/spellbook/clipboard"
	"github.com/gekko3d/spellbook/settings"
)

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: &App{
		types:             make(map[reflect.Type]struct{}),
		spells:            make(map[SpellId]*Spell),
		fallbackClipboard: clipboard.NewMemory(),
		fallbackSettings:  settings.NewMemory(),
	}}
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build installs every module in order and freezes the spell registry.
func (b *AppBuilder) Build() *App {
	app := b.app
	commands := &Commands{app: app}

	for _, module := range b.modules {
		module.Install(app, commands)
	}
	app.modules = append(app.modules, b.modules...)
	app.frozen = true

	return app
}
