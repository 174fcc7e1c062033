// Package app provides application state, the annotation project file, and events.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"region-annotator/internal/image"
	"region-annotator/internal/tags"
	"region-annotator/pkg/geometry"
)

// projectVersion is written to new project files.
const projectVersion = 1

// State holds the application state including the current project, the
// background image, and the tag catalogue.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	Modified    bool

	// Background image
	Image *image.Layer

	// Tag catalogue
	TagsPath  string
	Catalogue *tags.Catalogue

	// Annotations by host ID, in creation order
	annotations []*Annotation

	// Event listeners
	listeners map[EventType][]EventListener
}

// Annotation is the persisted form of one region.
type Annotation struct {
	ID        string             `json:"id"`
	Points    []geometry.Point2D `json:"points"`
	Primary   string             `json:"primary,omitempty"`
	Secondary []string           `json:"secondary,omitempty"`
}

// ProjectFile is the on-disk project format. Paths are relative to the
// project file.
type ProjectFile struct {
	Version     int           `json:"version"`
	ImagePath   string        `json:"image_path,omitempty"`
	TagsPath    string        `json:"tags_path,omitempty"`
	Annotations []*Annotation `json:"annotations"`
}

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventImageLoaded
	EventTagsLoaded
	EventAnnotationsChanged
	EventModified
	EventSelectionChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state.
func NewState() *State {
	return &State{
		Catalogue: tags.Default(),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// LoadImage loads the background image.
func (s *State) LoadImage(path string) error {
	layer, err := image.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Image = layer
	s.mu.Unlock()

	s.Emit(EventImageLoaded, layer)
	return nil
}

// LoadTags loads the tag catalogue. On failure the current catalogue is kept.
func (s *State) LoadTags(path string) error {
	c, err := tags.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.TagsPath = path
	s.Catalogue = c
	s.mu.Unlock()

	s.Emit(EventTagsLoaded, c)
	return nil
}

// Descriptor resolves an annotation's tag names against the catalogue.
// An annotation without tags yields nil.
func (s *State) Descriptor(a *Annotation) (*tags.Descriptor, error) {
	if a.Primary == "" && len(a.Secondary) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	c := s.Catalogue
	s.mu.RUnlock()

	d, err := c.Descriptor(a.Primary, a.Secondary...)
	if err != nil {
		return nil, fmt.Errorf("annotation %s: %w", a.ID, err)
	}
	return d, nil
}

// Annotations returns the annotations in creation order.
func (s *State) Annotations() []*Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Annotation(nil), s.annotations...)
}

// Annotation returns the annotation with the given ID.
func (s *State) Annotation(id string) (*Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.annotations {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// AddAnnotation appends a, replacing any annotation with the same ID.
func (s *State) AddAnnotation(a *Annotation) {
	s.mu.Lock()
	replaced := false
	for i, cur := range s.annotations {
		if cur.ID == a.ID {
			s.annotations[i] = a
			replaced = true
			break
		}
	}
	if !replaced {
		s.annotations = append(s.annotations, a)
	}
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventAnnotationsChanged, a)
}

// MoveAnnotation records new points for an annotation.
func (s *State) MoveAnnotation(id string, points []geometry.Point2D) error {
	s.mu.Lock()
	var found *Annotation
	for _, a := range s.annotations {
		if a.ID == id {
			a.Points = append([]geometry.Point2D(nil), points...)
			found = a
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return fmt.Errorf("no annotation %q", id)
	}
	s.SetModified(true)
	s.Emit(EventAnnotationsChanged, found)
	return nil
}

// RemoveAnnotation deletes an annotation. It reports whether one was removed.
func (s *State) RemoveAnnotation(id string) bool {
	s.mu.Lock()
	removed := false
	for i, a := range s.annotations {
		if a.ID == id {
			s.annotations = append(s.annotations[:i], s.annotations[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.SetModified(true)
		s.Emit(EventAnnotationsChanged, id)
	}
	return removed
}

// LoadProject loads a project from the specified path.
func (s *State) LoadProject(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var proj ProjectFile
	if err := json.Unmarshal(data, &proj); err != nil {
		return fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	if proj.Version > projectVersion {
		return fmt.Errorf("project %s has unsupported version %d", path, proj.Version)
	}

	projectDir := filepath.Dir(path)
	if proj.TagsPath != "" {
		if err := s.LoadTags(filepath.Join(projectDir, proj.TagsPath)); err != nil {
			return err
		}
	}
	if proj.ImagePath != "" {
		if err := s.LoadImage(filepath.Join(projectDir, proj.ImagePath)); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.annotations = nil
	for _, a := range proj.Annotations {
		if a == nil || len(a.Points) == 0 {
			continue
		}
		s.annotations = append(s.annotations, a)
	}
	s.mu.Unlock()

	s.Emit(EventProjectLoaded, path)
	return nil
}

// SaveProject saves the project to the specified path.
func (s *State) SaveProject(path string) error {
	projectDir := filepath.Dir(path)

	s.mu.RLock()
	proj := ProjectFile{
		Version:     projectVersion,
		Annotations: append([]*Annotation{}, s.annotations...),
	}
	if s.Image != nil && s.Image.Path != "" {
		proj.ImagePath, _ = filepath.Rel(projectDir, s.Image.Path)
	}
	if s.TagsPath != "" {
		proj.TagsPath, _ = filepath.Rel(projectDir, s.TagsPath)
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	return nil
}
