package devices

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const faultyPumpProfile = `
profile:
  id: faulty-pump
  vendor: Simulated
  description: Pump valve sticks on release
pump:
  fail_on: [release]
  liters_per_kg: 5.5
engine:
  spin_rpm: 1000
detector:
  dirt_degree: 50
  dirt_by_material:
    JEANS: 75
`

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestProfileLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "faulty-pump.yaml", faultyPumpProfile)

	loader, err := NewProfileLoader([]string{filepath.Join(dir, "missing"), dir})
	require.NoError(t, err)

	profile, err := loader.Load("faulty-pump")
	require.NoError(t, err)

	assert.Equal(t, "faulty-pump", profile.Profile.ID)
	assert.Equal(t, []string{OpRelease}, profile.Pump.FailOn)
	assert.Equal(t, 5.5, profile.Pump.LitersPerKg)
	assert.Equal(t, 1000, profile.Engine.SpinRPM)
	assert.Equal(t, 50.0, profile.Detector.DirtDegree)
	assert.Equal(t, 75.0, profile.Detector.DirtByMaterial[types.MaterialJeans])

	// Second load is served from the cache even after the file is gone.
	require.NoError(t, os.Remove(filepath.Join(dir, "faulty-pump.yaml")))
	cached, err := loader.Load("faulty-pump")
	require.NoError(t, err)
	assert.Same(t, profile, cached)

	loader.ClearCache()
	_, err = loader.Load("faulty-pump")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfileLoaderRejectsNamesOutsideSearchPaths(t *testing.T) {
	root := t.TempDir()
	profiles := filepath.Join(root, "profiles")
	require.NoError(t, os.Mkdir(profiles, 0o755))
	writeProfile(t, root, "outside.yaml", faultyPumpProfile)

	loader, err := NewProfileLoader([]string{profiles})
	require.NoError(t, err)

	for _, name := range []string{"../outside", "/etc/passwd", "Faulty", "", ".hidden", "a/b"} {
		_, err := loader.Load(name)
		assert.ErrorIs(t, err, ErrInvalidProfileName, "name %q", name)
		assert.NotContains(t, err.Error(), root)
	}
}

func TestProfileLoaderYmlExtension(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "short.yml", "profile:\n  id: short\n")

	loader, err := NewProfileLoader([]string{dir})
	require.NoError(t, err)

	profile, err := loader.Load("short")
	require.NoError(t, err)
	assert.Equal(t, "short", profile.Profile.ID)
}

func TestProfileLoaderRejectsInvalid(t *testing.T) {
	loader, err := NewProfileLoader(nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		doc  string
	}{
		{"missing profile", "pump:\n  fail_on: [pour]\n"},
		{"unknown pump op", "profile:\n  id: x\npump:\n  fail_on: [spin]\n"},
		{"dirt out of range", "profile:\n  id: x\ndetector:\n  dirt_degree: 120\n"},
		{"unknown material", "profile:\n  id: x\ndetector:\n  dirt_by_material:\n    SILK: 10\n"},
		{"unknown field", "profile:\n  id: x\nheater: {}\n"},
		{"bad duration", "profile:\n  id: x\nsimulation:\n  minute_duration: soon\n"},
		{"not yaml", "profile: [unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestValidatorAcceptsDefaultProfile(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.NoError(t, v.ValidateProfile(DefaultProfile()))
}

func TestProfileLoaderList(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeProfile(t, first, "faulty-pump.yaml", faultyPumpProfile)
	writeProfile(t, second, "faulty-pump.yml", faultyPumpProfile)
	writeProfile(t, second, "dirty.yaml", "profile:\n  id: dirty\n")
	writeProfile(t, second, "README.md", "not a profile")
	require.NoError(t, os.Mkdir(filepath.Join(second, "nested.yaml"), 0o755))

	loader, err := NewProfileLoader([]string{first, filepath.Join(first, "missing"), second})
	require.NoError(t, err)

	names, err := loader.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"dirty", "faulty-pump"}, names)
}

func TestShippedProfilesAreValid(t *testing.T) {
	loader, err := NewProfileLoader([]string{filepath.Join("..", "..", "configs", "profiles")})
	require.NoError(t, err)

	names, err := loader.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "dirty", "faulty-engine", "faulty-pump"}, names)

	for _, name := range names {
		profile, err := loader.Load(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, profile.Profile.ID)
	}
}
