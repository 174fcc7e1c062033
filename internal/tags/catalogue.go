package tags

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnknownTag is returned when a descriptor references a tag that is
// not in the catalogue.
var ErrUnknownTag = errors.New("unknown tag")

// Catalogue is the set of tags a host offers for assignment.
type Catalogue struct {
	Tags []Record `yaml:"tags"`

	byName map[string]int
}

// Load reads a YAML (or JSON) tag catalogue from disk.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag catalogue: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a tag catalogue. Tag names must be non-empty and unique.
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse tag catalogue: %w", err)
	}
	c.byName = make(map[string]int, len(c.Tags))
	for i, t := range c.Tags {
		if t.Name == "" {
			return nil, fmt.Errorf("tag %d has no name", i)
		}
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tag %q", t.Name)
		}
		c.byName[t.Name] = i
	}
	return &c, nil
}

// Lookup returns the record with the given name.
func (c *Catalogue) Lookup(name string) (Record, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Record{}, false
	}
	return c.Tags[i], true
}

// Descriptor builds a descriptor from tag names. An empty primary name
// leaves the primary tag unset.
func (c *Catalogue) Descriptor(primary string, secondary ...string) (*Descriptor, error) {
	d := &Descriptor{}
	if primary != "" {
		r, ok := c.Lookup(primary)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTag, primary)
		}
		d.Primary = &r
	}
	for _, name := range secondary {
		r, ok := c.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTag, name)
		}
		d.Secondary = append(d.Secondary, r)
	}
	return d, nil
}

//go:embed default.yaml
var defaultCatalogue []byte

// Default returns the built-in catalogue used when no tag file is configured.
func Default() *Catalogue {
	c, err := Parse(defaultCatalogue)
	if err != nil {
		panic(fmt.Sprintf("tags: built-in catalogue: %v", err))
	}
	return c
}
