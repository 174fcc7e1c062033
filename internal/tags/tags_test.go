package tags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalogue = `
tags:
  - name: car
    accent: "#f00"
    highlight: "#0f0"
    noColor: "#fff"
  - name: wheel
    accent: "#00f"
    highlight: "#0ff"
    noColor: "#fff"
  - name: rear light
    accent: "#ff0"
    highlight: "#f0f"
    noColor: "#fff"
`

func TestDescriptorString(t *testing.T) {
	var nilDesc *Descriptor
	assert.Equal(t, "", nilDesc.String())

	car := Record{Name: "car"}
	assert.Equal(t, "car", NewDescriptor(&car).String())
	assert.Equal(t, "car, a, b", NewDescriptor(&car, Record{Name: "a"}, Record{Name: "b"}).String())
	assert.Equal(t, "a", NewDescriptor(nil, Record{Name: "a"}).String())
}

func TestNilDescriptorAccessors(t *testing.T) {
	var d *Descriptor
	assert.False(t, d.HasPrimary())
	assert.Empty(t, d.SecondaryTags())
}

func TestUpdateOptionsResolve(t *testing.T) {
	var o *UpdateOptions
	assert.True(t, o.Resolve().ShowRegionBackground)
	assert.False(t, (&UpdateOptions{}).Resolve().ShowRegionBackground)
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "secondaryTag-wheel", ClassName("wheel"))
	assert.Equal(t, "secondaryTag-rear_20_light", ClassName("rear light"))
	assert.Equal(t, "secondaryTag-a_2e_b", ClassName("a.b"))
	assert.Equal(t, "secondaryTag-snake_5f_case", ClassName("snake_case"))
	assert.Equal(t, "secondaryTag-_e9_t_e9_", ClassName("été"))
}

func TestClassNameIsUnique(t *testing.T) {
	names := []string{"a b", "a-b", "a_b", "a.b", "a_20_b", "a__b", "ab"}
	seen := make(map[string]string)
	for _, n := range names {
		c := ClassName(n)
		if prev, ok := seen[c]; ok {
			t.Errorf("%q and %q both map to %q", prev, n, c)
		}
		seen[c] = n
		assert.NotContains(t, c, ".")
		assert.NotContains(t, c, ":")
		assert.NotContains(t, c, " ")
	}
}

func TestParseCatalogue(t *testing.T) {
	c, err := Parse([]byte(sampleCatalogue))
	require.NoError(t, err)
	require.Len(t, c.Tags, 3)

	r, ok := c.Lookup("car")
	require.True(t, ok)
	assert.Equal(t, Record{Name: "car", ColorAccent: "#f00", ColorHighlight: "#0f0", ColorNoColor: "#fff"}, r)

	d, err := c.Descriptor("car", "wheel", "rear light")
	require.NoError(t, err)
	assert.Equal(t, "car", d.Primary.Name)
	assert.Equal(t, "car, wheel, rear light", d.String())

	d, err = c.Descriptor("", "wheel")
	require.NoError(t, err)
	assert.False(t, d.HasPrimary())

	_, err = c.Descriptor("bus")
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestParseCatalogueJSON(t *testing.T) {
	c, err := Parse([]byte(`{"tags": [{"name": "car", "accent": "#f00"}]}`))
	require.NoError(t, err)
	r, ok := c.Lookup("car")
	require.True(t, ok)
	assert.Equal(t, "#f00", r.ColorAccent)
}

func TestParseCatalogueRejectsBadTags(t *testing.T) {
	_, err := Parse([]byte("tags:\n  - accent: \"#f00\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("tags:\n  - name: a\n  - name: a\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("tags: [\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalogue), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Tags, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultCatalogue(t *testing.T) {
	c := Default()
	require.NotEmpty(t, c.Tags)
	for _, r := range c.Tags {
		got, ok := c.Lookup(r.Name)
		assert.True(t, ok)
		assert.NotEmpty(t, got.ColorAccent, r.Name)
	}
}
