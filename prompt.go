package spellbook

import (
	"math"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/spellbook/editor"
)

const (
	MaxScaleFactor      = 100000
	ScaleFactorDecimals = 4
)

// Prompter answers the questions a spell asks before it mutates anything.
// Returning false always means "cancel".
type Prompter interface {
	Confirm(title, text string) bool
	ScaleVertices(req ScaleVerticesRequest) (ScaleVerticesRequest, bool)
}

// ScaleVerticesRequest carries the per-axis factors and the normals toggle.
type ScaleVerticesRequest struct {
	Factors      mgl32.Vec3
	ScaleNormals bool
}

// Normalize clamps each factor to ±MaxScaleFactor and rounds it to
// ScaleFactorDecimals places.
func (r ScaleVerticesRequest) Normalize() ScaleVerticesRequest {
	pow := math.Pow(10, ScaleFactorDecimals)
	for a := 0; a < 3; a++ {
		f := float64(r.Factors[a])
		if math.IsNaN(f) {
			f = 1
		}
		f = math.Max(-MaxScaleFactor, math.Min(MaxScaleFactor, f))
		r.Factors[a] = float32(math.Round(f*pow) / pow)
	}
	return r
}

// DenyPrompter declines everything. It is the default when the host installs
// no prompter, so nothing happens without someone saying yes.
type DenyPrompter struct{}

func (DenyPrompter) Confirm(title, text string) bool { return false }

func (DenyPrompter) ScaleVertices(req ScaleVerticesRequest) (ScaleVerticesRequest, bool) {
	return req, false
}

// StaticPrompter gives preset answers. Nil fields keep the values the spell
// proposed.
type StaticPrompter struct {
	Confirmed    bool
	Cancel       bool
	Factors      *mgl32.Vec3
	ScaleNormals *bool
}

func (p StaticPrompter) Confirm(title, text string) bool {
	return p.Confirmed
}

func (p StaticPrompter) ScaleVertices(req ScaleVerticesRequest) (ScaleVerticesRequest, bool) {
	if p.Cancel {
		return req, false
	}
	if p.Factors != nil {
		req.Factors = *p.Factors
	}
	if p.ScaleNormals != nil {
		req.ScaleNormals = *p.ScaleNormals
	}
	return req, true
}

// Presenter shows a live editor to the user.
type Presenter interface {
	Show(e *editor.BlockEditor) error
}

type PresenterFunc func(e *editor.BlockEditor) error

func (f PresenterFunc) Show(e *editor.BlockEditor) error {
	return f(e)
}

type discardPresenter struct{}

func (discardPresenter) Show(e *editor.BlockEditor) error { return nil }

// HostModule installs the interactive collaborators of a host application.
// One value may serve as both.
type HostModule struct {
	Prompter  Prompter
	Presenter Presenter
}

func (m HostModule) Install(app *App, cmd *Commands) {
	if m.Prompter != nil {
		app.addResources(m.Prompter)
	}
	if m.Presenter != nil && !sameResource(m.Prompter, m.Presenter) {
		app.addResources(m.Presenter)
	}
}

func sameResource(a, b any) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
