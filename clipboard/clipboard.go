// Package clipboard provides the format-tagged exchange medium spells use to
// pass data between documents.
package clipboard

import (
	"sort"
	"sync"
)

// Exchange holds at most one set of payloads at a time. SetData replaces
// whatever was there before.
type Exchange interface {
	SetData(format string, data []byte) error
	Data(format string) ([]byte, bool)
	Formats() []string
}

// HasFormat reports whether ex currently offers format.
func HasFormat(ex Exchange, format string) bool {
	if ex == nil {
		return false
	}
	for _, f := range ex.Formats() {
		if f == format {
			return true
		}
	}
	return false
}

type Memory struct {
	mu       sync.Mutex
	payloads map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{payloads: make(map[string][]byte)}
}

func (m *Memory) SetData(format string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = map[string][]byte{format: append([]byte(nil), data...)}
	return nil
}

func (m *Memory) Data(format string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.payloads[format]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

func (m *Memory) Formats() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.payloads)
}

func sortedKeys(payloads map[string][]byte) []string {
	formats := make([]string, 0, len(payloads))
	for f := range payloads {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
