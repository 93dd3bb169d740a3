package roster

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"BioSentinel/internal/model"
)

var (
	ErrUnknownPerson  = errors.New("unknown person")
	ErrPresetReadOnly = errors.New("preset people cannot be changed")
	ErrInvalidName    = errors.New("name must not be empty")
)

// Manager holds the read-only preset table plus custom people persisted to disk.
type Manager struct {
	mu       sync.Mutex
	presets  []model.Person
	state    *State
	filePath string
}

// NewManager creates a Manager with the given presets, loading custom people from filePath.
// An empty filePath keeps custom people in memory only.
func NewManager(presets []model.Person, filePath string) (*Manager, error) {
	state := &State{}
	if filePath != "" {
		var err error
		if state, err = LoadState(filePath); err != nil {
			return nil, fmt.Errorf("load roster state: %w", err)
		}
	}

	fixed := make([]model.Person, 0, len(presets))
	for _, p := range presets {
		if err := p.Birthdate.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		p.Preset = true
		fixed = append(fixed, p)
	}

	// Drop persisted entries shadowed by a preset added to config later.
	m := &Manager{presets: fixed, filePath: filePath}
	kept := state.Custom[:0]
	for _, p := range state.Custom {
		if _, ok := m.findPreset(p.Name); ok {
			log.Warn().Str("name", p.Name).Msg("custom person shadowed by preset, dropping")
			continue
		}
		p.Preset = false
		kept = append(kept, p)
	}
	state.Custom = kept
	m.state = state
	return m, nil
}

// List returns presets in configured order followed by custom people sorted by name.
func (m *Manager) List() []model.Person {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Person, 0, len(m.presets)+len(m.state.Custom))
	out = append(out, m.presets...)
	custom := append([]model.Person(nil), m.state.Custom...)
	sort.Slice(custom, func(i, j int) bool {
		return strings.ToLower(custom[i].Name) < strings.ToLower(custom[j].Name)
	})
	return append(out, custom...)
}

// Lookup finds a person by name, case-insensitively.
func (m *Manager) Lookup(name string) (model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.findPreset(name); ok {
		return p, nil
	}
	if i := m.findCustom(name); i >= 0 {
		return m.state.Custom[i], nil
	}
	return model.Person{}, fmt.Errorf("%w: %q", ErrUnknownPerson, name)
}

// AddCustom stores or replaces a custom person.
func (m *Manager) AddCustom(name string, birthdate model.Date) (model.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, model.CustomPerson) {
		return model.Person{}, ErrInvalidName
	}
	if err := birthdate.Validate(); err != nil {
		return model.Person{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.findPreset(name); ok {
		return model.Person{}, fmt.Errorf("%w: %q", ErrPresetReadOnly, name)
	}
	p := model.Person{Name: name, Birthdate: birthdate}
	if i := m.findCustom(name); i >= 0 {
		m.state.Custom[i] = p
	} else {
		m.state.Custom = append(m.state.Custom, p)
	}
	m.save()
	return p, nil
}

// RemoveCustom deletes a custom person.
func (m *Manager) RemoveCustom(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.findPreset(name); ok {
		return fmt.Errorf("%w: %q", ErrPresetReadOnly, name)
	}
	i := m.findCustom(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownPerson, name)
	}
	m.state.Custom = append(m.state.Custom[:i], m.state.Custom[i+1:]...)
	m.save()
	return nil
}

func (m *Manager) findPreset(name string) (model.Person, bool) {
	for _, p := range m.presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return model.Person{}, false
}

func (m *Manager) findCustom(name string) int {
	for i, p := range m.state.Custom {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

// save must be called with mu held.
func (m *Manager) save() {
	if m.filePath == "" {
		return
	}
	if err := SaveState(m.filePath, m.state); err != nil {
		log.Error().Err(err).Str("path", m.filePath).Msg("failed to save roster state")
	}
}
