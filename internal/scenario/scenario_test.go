package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalog(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 5)
	assert.Equal(t, "At a restaurant ordering food", all[0].Description)
	assert.Equal(t, "Job interview practice", all[4].Description)

	assert.Equal(t, "Asking for directions in a new city", c.Resolve("directions"))
	assert.Equal(t, "At the doctor's office", c.Resolve("  At the doctor's office "))
}

func TestParseExtendsAndOverrides(t *testing.T) {
	c, err := Parse([]byte(`
scenarios:
  - id: doctor
    title: Doctor
    description: Describing symptoms to a doctor
  - id: restaurant
    description: Ordering tapas at a busy bar
`))
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 6)
	assert.Equal(t, "Ordering tapas at a busy bar", all[0].Description, "override keeps position")
	assert.Equal(t, "Ordering tapas at a busy bar", all[0].Title, "title defaults to description")
	assert.Equal(t, "doctor", all[5].ID)
}

func TestParseReplace(t *testing.T) {
	c, err := Parse([]byte(`
replace: true
scenarios:
  - id: airport
    description: Checking in at the airport
`))
	require.NoError(t, err)
	require.Len(t, c.All(), 1)

	_, ok := c.Get("restaurant")
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"bad yaml":          "scenarios: [",
		"missing id":        "scenarios:\n  - description: x\n",
		"missing desc":      "scenarios:\n  - id: x\n",
		"empty replacement": "replace: true\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenarios:\n  - id: cafe\n    description: Ordering coffee\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.All(), 6)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
