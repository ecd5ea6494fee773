package spellbook

import "testing"

type MockModule struct {
	installed bool
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
}

type spellModule struct {
	spells []*Spell
}

func (m spellModule) Install(app *App, cmd *Commands) {
	cmd.RegisterSpells(m.spells...)
}

func TestAppBuilder_Empty(t *testing.T) {
	app := NewAppBuilder().Build()

	if len(app.Spells()) != 0 {
		t.Errorf("Expected no spells, got %v", len(app.Spells()))
	}
	if !app.frozen {
		t.Errorf("Expected the registry to be frozen after Build")
	}
	if app.Clipboard() == nil || app.Settings() == nil {
		t.Errorf("Expected fallback clipboard and settings")
	}
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	mockModule := &MockModule{}
	builder.UseModule(mockModule)

	if len(builder.modules) != 1 {
		t.Errorf("Expected modules to contain 1 module, got %v", len(builder.modules))
	}
}

func TestAppBuilder_Build_WithMultipleModules(t *testing.T) {
	module1 := &MockModule{}
	module2 := &MockModule{}

	builder := NewAppBuilder()
	builder.UseModule(module1)
	builder.UseModule(module2)

	app := builder.Build()

	if len(app.modules) != 2 {
		t.Errorf("Expected 2 modules, got %v", len(app.modules))
	}
	if !module1.installed {
		t.Errorf("Expected Install to be called on the module 1, but it was not")
	}
	if !module2.installed {
		t.Errorf("Expected Install to be called on the module 2, but it was not")
	}
}

func TestAppBuilder_Build_RegistersSpells(t *testing.T) {
	app := NewAppBuilder().UseModule(TransformModule{}).Build()

	if len(app.Spells()) != 6 {
		t.Fatalf("Expected 6 transform spells, got %v", len(app.Spells()))
	}
	if _, ok := app.Spell(ScaleVerticesId); !ok {
		t.Errorf("Expected %s to be registered", ScaleVerticesId)
	}
}
