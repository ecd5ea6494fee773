package settings

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// File is a Store backed by a TOML document. Each group path segment becomes
// a nested table. The file is rewritten on every SetBool.
type File struct {
	mu   sync.Mutex
	path string
	tree map[string]any
}

// OpenFile reads path if it exists. A missing file starts an empty store.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, tree: make(map[string]any)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, errors.Wrapf(err, "Failed to read settings %q", path)
	}
	if err := toml.Unmarshal(raw, &f.tree); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse settings %q", path)
	}
	return f, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Bool(group, key string, def bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := f.table(group, false)
	if table == nil {
		return def
	}
	if v, ok := table[key].(bool); ok {
		return v
	}
	return def
}

func (f *File) SetBool(group, key string, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.table(group, true)[key] = value
	return f.flush()
}

// table walks to the table for group, creating missing levels when create is set.
func (f *File) table(group string, create bool) map[string]any {
	cur := f.tree
	for _, seg := range splitGroup(group) {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			if !create {
				return nil
			}
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	return cur
}

func (f *File) flush() error {
	out, err := toml.Marshal(f.tree)
	if err != nil {
		return errors.Wrap(err, "Failed to marshal settings")
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "Failed to create settings directory %q", dir)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0644); err != nil {
		return errors.Wrapf(err, "Failed to write settings %q", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, f.path), "Failed to replace settings %q", f.path)
}
