package clipboard

import (
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File keeps the clipboard in a YAML file so separate processes can copy and
// paste. A missing file is an empty clipboard.
type File struct {
	path string
}

type fileContent struct {
	Payloads map[string]string `yaml:"payloads"`
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) SetData(format string, data []byte) error {
	content := fileContent{Payloads: map[string]string{
		format: base64.StdEncoding.EncodeToString(data),
	}}
	out, err := yaml.Marshal(&content)
	if err != nil {
		return errors.Wrap(err, "Failed to marshal clipboard")
	}

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "Failed to create clipboard directory %q", dir)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0644); err != nil {
		return errors.Wrapf(err, "Failed to write clipboard %q", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, f.path), "Failed to replace clipboard %q", f.path)
}

func (f *File) Data(format string) ([]byte, bool) {
	payloads, err := f.read()
	if err != nil {
		return nil, false
	}
	encoded, ok := payloads[format]
	if !ok {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (f *File) Formats() []string {
	payloads, err := f.read()
	if err != nil {
		return nil
	}
	keys := make(map[string][]byte, len(payloads))
	for k := range payloads {
		keys[k] = nil
	}
	return sortedKeys(keys)
}

func (f *File) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "Failed to read clipboard %q", f.path)
	}
	var content fileContent
	if err := yaml.Unmarshal(raw, &content); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse clipboard %q", f.path)
	}
	return content.Payloads, nil
}
