package main

import (
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/gekko3d/spellbook"
	"github.com/gekko3d/spellbook/editor"
	"github.com/gekko3d/spellbook/gltfio"
	"github.com/gekko3d/spellbook/scene"
	"github.com/gekko3d/spellbook/web"
)

type stringList []string

func (l *stringList) String() string { return strings.Join(*l, " ") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type options struct {
	in, out       string
	spell         string
	node          int
	yes           bool
	scale         string
	normals       string
	sets          stringList
	clipboardPath string
	settingsPath  string
	list          bool
	dump          bool
	serve         string
	icon          string
	iconSize      int
	debug         bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("spellbook", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.in, "in", "", "Scene to load (.yaml, .gltf or .glb)")
	fs.StringVar(&o.out, "out", "", "Where to save a changed scene, defaults to -in")
	fs.StringVar(&o.spell, "spell", "", "Spell to cast, as Page/Name")
	fs.IntVar(&o.node, "node", -1, "Block index to work on, defaults to the first root")
	fs.BoolVar(&o.yes, "yes", false, "Answer yes to confirmations")
	fs.StringVar(&o.scale, "scale", "", "Per axis factors for Scale Vertices, as x,y,z")
	fs.StringVar(&o.normals, "normals", "", "Scale normals too (true/false), defaults to the stored preference")
	fs.Var(&o.sets, "set", "Label=value applied to the editor of an instant spell, repeatable")
	fs.StringVar(&o.clipboardPath, "clipboard", defaultPath("clipboard.yaml"), "Clipboard file shared between runs")
	fs.StringVar(&o.settingsPath, "settings", defaultPath("settings.toml"), "Settings file")
	fs.BoolVar(&o.list, "list", false, "List spells applicable to -node, or all spells without -in")
	fs.BoolVar(&o.dump, "dump", false, "Dump -node")
	fs.StringVar(&o.serve, "serve", "", "Serve the scene over http on this address")
	fs.StringVar(&o.icon, "icon", "", "Write the Edit spell icon as png")
	fs.IntVar(&o.iconSize, "iconsize", 64, "Icon size in pixels")
	fs.BoolVar(&o.debug, "debug", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.out == "" {
		o.out = o.in
	}
	if o.iconSize < 1 || o.iconSize > spellbook.MaxIconSize {
		return nil, errors.Errorf("Invalid -iconsize %d, want 1..%d", o.iconSize, spellbook.MaxIconSize)
	}
	return &o, nil
}

func defaultPath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "spellbook", name)
}

func (o *options) prompter() (spellbook.StaticPrompter, error) {
	p := spellbook.StaticPrompter{Confirmed: o.yes}
	if o.scale != "" {
		parts := strings.Split(o.scale, ",")
		if len(parts) != 3 {
			return p, errors.Errorf("Invalid -scale '%s', want x,y,z", o.scale)
		}
		var f mgl32.Vec3
		for i, s := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
			if err != nil {
				return p, errors.Wrapf(err, "Invalid -scale '%s'", o.scale)
			}
			f[i] = float32(v)
		}
		p.Factors = &f
	}
	if o.normals != "" {
		b, err := strconv.ParseBool(o.normals)
		if err != nil {
			return p, errors.Wrapf(err, "Invalid -normals '%s'", o.normals)
		}
		p.ScaleNormals = &b
	}
	return p, nil
}

// textPresenter applies the -set edits and prints the editor. Spells log and
// swallow presenter errors, so the last one is kept for run to report.
type textPresenter struct {
	out  io.Writer
	sets []editor.Assignment
	err  error
}

func (p *textPresenter) Show(e *editor.BlockEditor) error {
	if p.err = e.SetAll(p.sets); p.err != nil {
		return p.err
	}
	fmt.Fprintln(p.out, e.Title())
	for _, f := range e.Fields() {
		fmt.Fprintf(p.out, "  %s: %s\n", f.Label(), f.String())
	}
	return nil
}

func isGltf(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return true
	}
	return false
}

func load(app *spellbook.App, path string) (*scene.Document, error) {
	if isGltf(path) {
		im := &gltfio.Importer{Warnf: app.Logger().Warnf}
		return im.Import(path)
	}
	return scene.Load(path)
}

func save(doc *scene.Document, path string) error {
	if isGltf(path) {
		return gltfio.Export(doc, path)
	}
	return scene.Save(doc, path)
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	prompter, err := o.prompter()
	if err != nil {
		return err
	}
	sets, err := editor.ParseAssignments(o.sets)
	if err != nil {
		return errors.Wrap(err, "Invalid -set")
	}
	presenter := &textPresenter{out: stdout, sets: sets}

	app := spellbook.NewAppBuilder().
		UseModule(spellbook.LoggingModule{Prefix: "spellbook", Debug: o.debug, Out: stderr}).
		UseModule(spellbook.ClipboardModule{Path: o.clipboardPath}).
		UseModule(spellbook.SettingsModule{Path: o.settingsPath}).
		UseModule(spellbook.HostModule{Prompter: prompter, Presenter: presenter}).
		UseModule(spellbook.TransformModule{}).
		Build()

	if o.icon != "" {
		if err := writeIcon(app, o.icon, o.iconSize); err != nil {
			return err
		}
	}

	if o.in == "" {
		if o.list {
			for _, s := range app.Spells() {
				fmt.Fprintln(stdout, s.Id())
			}
			return nil
		}
		if o.icon != "" {
			return nil
		}
		return errors.New("Nothing to do: -in is required")
	}

	doc, err := load(app, o.in)
	if err != nil {
		return err
	}

	index := scene.Index(o.node)
	if o.node < 0 {
		if len(doc.Roots) == 0 {
			return errors.Errorf("'%s' has no roots", o.in)
		}
		index = doc.Roots[0]
	}
	b, ok := doc.Block(index)
	if !ok {
		return errors.Errorf("Block %d not found in '%s'", index, o.in)
	}

	if o.list {
		for _, s := range app.ApplicableSpells(doc, index) {
			fmt.Fprintln(stdout, s.Id())
		}
	}
	if o.dump {
		spew.Fdump(stdout, b)
	}

	if o.spell != "" {
		id, err := spellbook.ParseSpellId(o.spell)
		if err != nil {
			return err
		}
		rev := doc.Revision()
		if _, err := app.Cast(doc, id, index); err != nil {
			return errors.Wrapf(err, "Can't cast %s on block %d", id, index)
		}
		if presenter.err != nil {
			return errors.Wrapf(presenter.err, "Can't edit block %d", index)
		}
		if doc.Revision() != rev {
			if err := save(doc, o.out); err != nil {
				return err
			}
			app.Logger().Infof("saved %s", o.out)
		}
	}

	if o.serve != "" {
		s := web.NewServer(app, doc)
		s.OnChange = func(doc *scene.Document) error {
			return save(doc, o.out)
		}
		return s.ListenAndServe(o.serve)
	}
	return nil
}

func writeIcon(app *spellbook.App, path string, size int) error {
	s, ok := app.Spell(spellbook.EditTransformationId)
	if !ok || s.Icon == nil {
		return errors.New("Edit spell has no icon")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Can't create '%s'", path)
	}
	defer f.Close()
	return errors.Wrapf(png.Encode(f, s.Icon(size)), "Can't write '%s'", path)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
