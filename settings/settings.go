// Package settings persists small user preferences between invocations.
//
// Keys live in groups addressed by a slash separated path such as
// "spells/Transform/Scale Vertices".
package settings

import (
	"strings"
	"sync"
)

type Store interface {
	Bool(group, key string, def bool) bool
	SetBool(group, key string, value bool) error
}

// Memory is a Store that forgets everything when the process exits.
type Memory struct {
	mu     sync.Mutex
	values map[string]bool
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]bool)}
}

func (m *Memory) Bool(group, key string, def bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[group+"/"+key]; ok {
		return v
	}
	return def
}

func (m *Memory) SetBool(group, key string, value bool) error {
	m.mu.Lock()
	m.values[group+"/"+key] = value
	m.mu.Unlock()
	return nil
}

// Group joins path segments into a group name.
func Group(segments ...string) string {
	return strings.Join(segments, "/")
}

func splitGroup(group string) []string {
	var out []string
	for _, s := range strings.Split(group, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
