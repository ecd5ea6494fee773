package spellbook

import (
	"github.com/gekko3d/spellbook/clipboard"
	"github.com/gekko3d/spellbook/settings"
)

// ClipboardModule installs the exchange medium. An empty Path keeps the
// clipboard in memory; otherwise it lives in a file shared between processes.
type ClipboardModule struct {
	Path string
}

func (m ClipboardModule) Install(app *App, cmd *Commands) {
	if m.Path == "" {
		app.addResources(clipboard.NewMemory())
		return
	}
	app.addResources(clipboard.NewFile(m.Path))
}

// SettingsModule installs the preference store. An unreadable settings file
// is logged and replaced by an in-memory store.
type SettingsModule struct {
	Path string
}

func (m SettingsModule) Install(app *App, cmd *Commands) {
	if m.Path == "" {
		app.addResources(settings.NewMemory())
		return
	}
	store, err := settings.OpenFile(m.Path)
	if err != nil {
		app.Logger().Errorf("settings: %v; falling back to defaults", err)
		app.addResources(settings.NewMemory())
		return
	}
	app.addResources(store)
}
