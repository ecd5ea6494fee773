package web

import (
	"bytes"
	"image/png"
	"net/http"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/gekko3d/spellbook"
	"github.com/gekko3d/spellbook/core"
	"github.com/gekko3d/spellbook/editor"
	"github.com/gekko3d/spellbook/scene"
)

var spewConfig = &spew.ConfigState{Indent: "  ", DisableCapacities: true, DisablePointerAddresses: true, SortKeys: true}

type spellJSON struct {
	Id      string `json:"id"`
	Page    string `json:"page"`
	Name    string `json:"name"`
	Instant bool   `json:"instant"`
	HasIcon bool   `json:"hasIcon"`
}

type transformJSON struct {
	Translation [3]float32 `json:"translation"`
	Rotation    [3]float32 `json:"rotation"`
	Scale       float32    `json:"scale"`
}

type nodeJSON struct {
	Index        scene.Index    `json:"index"`
	Type         string         `json:"type"`
	Name         string         `json:"name,omitempty"`
	Transform    *transformJSON `json:"transform,omitempty"`
	Children     []scene.Index  `json:"children,omitempty"`
	Data         scene.Index    `json:"data"`
	Controller   scene.Index    `json:"controller"`
	SkinInstance scene.Index    `json:"skinInstance"`
	Spells       []string       `json:"spells,omitempty"`
}

type actionJSON struct {
	Index    scene.Index       `json:"index"`
	Revision uint64            `json:"revision"`
	Changed  bool              `json:"changed"`
	Editor   string            `json:"editor,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

type clipboardJSON struct {
	Formats   []string `json:"formats"`
	Transform string   `json:"transform,omitempty"`
}

func newSpellJSON(s *spellbook.Spell) spellJSON {
	return spellJSON{
		Id:      s.Id().String(),
		Page:    s.Page,
		Name:    s.Name,
		Instant: s.Instant,
		HasIcon: s.Icon != nil,
	}
}

func (s *Server) node(i scene.Index) nodeJSON {
	b, _ := s.Doc.Block(i)
	n := nodeJSON{
		Index:        i,
		Type:         b.Type,
		Name:         b.Name,
		Children:     b.Children,
		Data:         b.Data,
		Controller:   b.Controller,
		SkinInstance: b.SkinInstance,
	}
	if t := s.Doc.LocalTransform(i); t.HasValue() {
		tv := t.Value()
		yaw, pitch, roll := core.Mat3ToEuler(tv.Rotation)
		n.Transform = &transformJSON{
			Translation: tv.Translation,
			Rotation:    [3]float32{mgl32.RadToDeg(yaw), mgl32.RadToDeg(pitch), mgl32.RadToDeg(roll)},
			Scale:       tv.Scale,
		}
	}
	for _, sp := range s.App.ApplicableSpells(s.Doc, i) {
		n.Spells = append(n.Spells, sp.Id().String())
	}
	return n
}

func (s *Server) index(r *http.Request) (scene.Index, error) {
	param := mux.Vars(r)["index"]
	v, err := strconv.Atoi(param)
	if err != nil {
		return scene.NoIndex, errors.Errorf("Index '%s' is not integer", param)
	}
	i := scene.Index(v)
	if _, ok := s.Doc.Block(i); !ok {
		return scene.NoIndex, errors.Errorf("Block %d not found", i)
	}
	return i, nil
}

func (s *Server) HandlerAjaxSpells(w http.ResponseWriter, r *http.Request) {
	spells := s.App.Spells()
	res := make([]spellJSON, 0, len(spells))
	for _, sp := range spells {
		res = append(res, newSpellJSON(sp))
	}
	s.writeJson(w, res)
}

func (s *Server) HandlerAjaxNodes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]nodeJSON, 0, s.Doc.Len())
	for i := 0; i < s.Doc.Len(); i++ {
		res = append(res, s.node(scene.Index(i)))
	}
	s.writeJson(w, res)
}

func (s *Server) HandlerAjaxNode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.index(r)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJson(w, s.node(i))
}

func (s *Server) HandlerDumpNode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.index(r)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	b, _ := s.Doc.Block(i)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	spewConfig.Fdump(w, b)
}

func (s *Server) HandlerAjaxClipboard(w http.ResponseWriter, r *http.Request) {
	ex := s.App.Clipboard()
	res := clipboardJSON{Formats: ex.Formats()}
	if data, ok := ex.Data(spellbook.TransformFormat); ok {
		var t core.Transform
		if err := t.UnmarshalBinary(data); err == nil {
			res.Transform = t.String()
		}
	}
	if res.Formats == nil {
		res.Formats = []string{}
	}
	s.writeJson(w, res)
}

func (s *Server) HandlerIcon(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sp, ok := s.App.Spell(spellbook.SpellId{Page: vars["page"], Name: vars["name"]})
	if !ok || sp.Icon == nil {
		s.writeError(w, http.StatusNotFound, errors.Errorf("No icon for %s/%s", vars["page"], vars["name"]))
		return
	}
	size := 0
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > spellbook.MaxIconSize {
			s.writeError(w, http.StatusBadRequest, errors.Errorf("Icon size '%s' out of range 1..%d", v, spellbook.MaxIconSize))
			return
		}
		size = n
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sp.Icon(size)); err != nil {
		s.writeError(w, http.StatusInternalServerError, errors.Wrap(err, "Failed to encode icon"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	s.writeResult(w, buf.Bytes())
}

// HandlerAction casts a spell. Prompter answers come from the query:
// confirm, x, y, z and normals. The set=Label=value edits are applied to the
// editor an instant spell presents, all of them or none.
func (s *Server) HandlerAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := spellbook.SpellId{Page: vars["page"], Name: vars["name"]}

	q := r.URL.Query()
	prompter, err := queryPrompter(q.Get)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	sets, err := editor.ParseAssignments(q["set"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.index(r)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	var shown *editor.BlockEditor
	var showErr error
	presenter := spellbook.PresenterFunc(func(e *editor.BlockEditor) error {
		shown = e
		showErr = e.SetAll(sets)
		return showErr
	})

	rev := s.Doc.Revision()
	result, err := s.App.Cast(s.Doc, id, i, spellbook.WithPrompter(prompter), spellbook.WithPresenter(presenter))
	switch {
	case errors.Is(err, spellbook.ErrUnknownSpell):
		s.writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, spellbook.ErrNotApplicable):
		s.writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if showErr != nil {
		s.writeError(w, http.StatusBadRequest, showErr)
		return
	}

	res := actionJSON{
		Index:    result,
		Revision: s.Doc.Revision(),
		Changed:  s.Doc.Revision() != rev,
	}
	if shown != nil {
		res.Editor = shown.Title()
		res.Fields = make(map[string]string)
		for _, f := range shown.Fields() {
			res.Fields[f.Label()] = f.String()
		}
	}

	if res.Changed && s.OnChange != nil {
		if err := s.OnChange(s.Doc); err != nil {
			s.writeError(w, http.StatusInternalServerError, errors.Wrap(err, "Failed to store document"))
			return
		}
	}
	s.writeJson(w, res)
}

func queryPrompter(get func(string) string) (spellbook.StaticPrompter, error) {
	p := spellbook.StaticPrompter{}
	if v := get("confirm"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, errors.Errorf("Invalid confirm '%s'", v)
		}
		p.Confirmed = b
	}

	factors := mgl32.Vec3{1, 1, 1}
	anyFactor := false
	for a, key := range []string{"x", "y", "z"} {
		v := get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return p, errors.Errorf("Invalid %s factor '%s'", key, v)
		}
		factors[a] = float32(f)
		anyFactor = true
	}
	if anyFactor {
		p.Factors = &factors
	}

	if v := get("normals"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, errors.Errorf("Invalid normals '%s'", v)
		}
		p.ScaleNormals = &b
	}
	return p, nil
}
