package roster

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BioSentinel/internal/model"
)

func presets() []model.Person {
	return []model.Person{
		{Name: "Scott", Birthdate: model.MustDate(1957, time.April, 11)},
		{Name: "Patty", Birthdate: model.MustDate(1963, time.April, 30)},
	}
}

func TestManager_LookupPreset(t *testing.T) {
	m, err := NewManager(presets(), "")
	require.NoError(t, err)

	p, err := m.Lookup("scott")
	require.NoError(t, err)
	assert.Equal(t, "Scott", p.Name)
	assert.True(t, p.Preset)
	assert.Equal(t, "1957-04-11", p.Birthdate.String())

	_, err = m.Lookup("nobody")
	assert.ErrorIs(t, err, ErrUnknownPerson)
}

func TestManager_PresetsAreReadOnly(t *testing.T) {
	m, err := NewManager(presets(), "")
	require.NoError(t, err)

	_, err = m.AddCustom("Patty", model.MustDate(2000, time.January, 1))
	assert.ErrorIs(t, err, ErrPresetReadOnly)
	assert.ErrorIs(t, m.RemoveCustom("Patty"), ErrPresetReadOnly)

	p, err := m.Lookup("Patty")
	require.NoError(t, err)
	assert.Equal(t, "1963-04-30", p.Birthdate.String())
}

func TestManager_AddCustomValidation(t *testing.T) {
	m, err := NewManager(nil, "")
	require.NoError(t, err)

	_, err = m.AddCustom("  ", model.MustDate(2000, time.January, 1))
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = m.AddCustom("custom", model.MustDate(2000, time.January, 1))
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = m.AddCustom("Ann", model.Date{})
	assert.ErrorIs(t, err, model.ErrInvalidDate)
}

func TestManager_PersistsCustomPeople(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "roster.json")

	m, err := NewManager(presets(), path)
	require.NoError(t, err)
	_, err = m.AddCustom("Marina", model.MustDate(1989, time.January, 19))
	require.NoError(t, err)
	_, err = m.AddCustom("Drake", model.MustDate(1991, time.June, 6))
	require.NoError(t, err)
	_, err = m.AddCustom("drake", model.MustDate(1991, time.June, 7))
	require.NoError(t, err)

	reloaded, err := NewManager(presets(), path)
	require.NoError(t, err)

	var names []string
	for _, p := range reloaded.List() {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"Scott", "Patty", "drake", "Marina"}, names); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	p, err := reloaded.Lookup("DRAKE")
	require.NoError(t, err)
	assert.Equal(t, "1991-06-07", p.Birthdate.String())
	assert.False(t, p.Preset)

	require.NoError(t, reloaded.RemoveCustom("marina"))
	assert.ErrorIs(t, reloaded.RemoveCustom("marina"), ErrUnknownPerson)
}

func TestManager_PresetShadowsPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	require.NoError(t, SaveState(path, &State{Custom: []model.Person{
		{Name: "Scott", Birthdate: model.MustDate(2001, time.January, 1)},
	}}))

	m, err := NewManager(presets(), path)
	require.NoError(t, err)
	p, err := m.Lookup("Scott")
	require.NoError(t, err)
	assert.True(t, p.Preset)
	assert.Len(t, m.List(), 2)
}

func TestNewManager_InvalidPreset(t *testing.T) {
	_, err := NewManager([]model.Person{{Name: "Nobody"}}, "")
	assert.ErrorIs(t, err, model.ErrInvalidDate)
}
