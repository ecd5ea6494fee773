package spellbook

import (
	"github.com/gekko3d/spellbook/clipboard"
	"github.com/gekko3d/spellbook/settings"
)

// Commands is the handle modules and spells use to reach the app. During a
// cast it may carry per-call overrides of the prompter and presenter.
type Commands struct {
	app *App

	prompter  Prompter
	presenter Presenter
}

type CastOption func(cmd *Commands)

// WithPrompter answers questions for a single cast.
func WithPrompter(p Prompter) CastOption {
	return func(cmd *Commands) {
		cmd.prompter = p
	}
}

// WithPresenter shows editors for a single cast.
func WithPresenter(p Presenter) CastOption {
	return func(cmd *Commands) {
		cmd.presenter = p
	}
}

func (cmd *Commands) with(opts []CastOption) *Commands {
	for _, opt := range opts {
		opt(cmd)
	}
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) RegisterSpells(spells ...*Spell) *Commands {
	cmd.app.registerSpells(spells...)
	return cmd
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

func (cmd *Commands) Clipboard() clipboard.Exchange {
	return cmd.app.Clipboard()
}

func (cmd *Commands) Settings() settings.Store {
	return cmd.app.Settings()
}

func (cmd *Commands) Prompter() Prompter {
	if cmd.prompter != nil {
		return cmd.prompter
	}
	return cmd.app.Prompter()
}

func (cmd *Commands) Presenter() Presenter {
	if cmd.presenter != nil {
		return cmd.presenter
	}
	return cmd.app.Presenter()
}
