package hubs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/handii-app/volunteer-directory/internal/domain"
)

// Package hubs groups volunteer skills into themed service hubs.

// Hub is a themed grouping of volunteer skills (administrative, transportation, ...).
type Hub struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Name        string   `json:"name" yaml:"name" validate:"required"`
	Theme       string   `json:"theme" yaml:"theme" validate:"required"`
	Description string   `json:"description" yaml:"description"`
	Skills      []string `json:"skills" yaml:"skills" validate:"required,min=1,dive,required"`
}

// Matches reports whether the volunteer carries any of the hub's skills.
func (h Hub) Matches(v domain.Volunteer) bool {
	for _, skill := range h.Skills {
		if domain.HasTag(v.Skills, skill) {
			return true
		}
	}
	return false
}

type catalogFile struct {
	Hubs []Hub `json:"hubs" yaml:"hubs"`
}

// Catalog is a validated set of hubs. It is not modified after NewCatalog,
// so concurrent reads need no locking.
type Catalog struct {
	hubs []Hub
	idx  map[string]Hub
}

var validate = validator.New()

// LoadCatalog loads hubs from a YAML or JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("hubs file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hubs file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read hubs file: %w", err)
	}

	parsed, err := parseCatalog(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewCatalog(parsed.Hubs)
}

// NewCatalog validates hubs and builds a catalog.
func NewCatalog(hubs []Hub) (*Catalog, error) {
	if len(hubs) == 0 {
		return nil, errors.New("hubs catalog contains no hubs entries")
	}

	c := &Catalog{
		hubs: make([]Hub, 0, len(hubs)),
		idx:  make(map[string]Hub, len(hubs)),
	}
	for i, h := range hubs {
		h = sanitizeHub(h)
		if err := validate.Struct(h); err != nil {
			return nil, fmt.Errorf("hubs[%d]: %w", i, err)
		}
		if _, exists := c.idx[h.ID]; exists {
			return nil, fmt.Errorf("duplicate hub id %q", h.ID)
		}
		c.hubs = append(c.hubs, h)
		c.idx[h.ID] = h
	}
	return c, nil
}

func parseCatalog(data []byte, ext string) (catalogFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: sonic.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out catalogFile
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}
	return catalogFile{}, errors.New("hubs file format not recognized (expected YAML or JSON)")
}

func sanitizeHub(h Hub) Hub {
	h.ID = strings.ToLower(strings.TrimSpace(h.ID))
	h.Name = strings.TrimSpace(h.Name)
	h.Theme = strings.TrimSpace(h.Theme)
	h.Description = strings.TrimSpace(h.Description)

	skills := make([]string, 0, len(h.Skills))
	for _, s := range h.Skills {
		skills = append(skills, strings.TrimSpace(s))
	}
	h.Skills = skills
	return h
}

// All returns the hubs in file order.
func (c *Catalog) All() []Hub {
	if c == nil {
		return nil
	}

	out := make([]Hub, len(c.hubs))
	for i, h := range c.hubs {
		h.Skills = append([]string(nil), h.Skills...)
		out[i] = h
	}
	return out
}

// ByID returns the hub for id (case-insensitive).
func (c *Catalog) ByID(id string) (Hub, bool) {
	if c == nil {
		return Hub{}, false
	}
	h, ok := c.idx[strings.ToLower(strings.TrimSpace(id))]
	h.Skills = append([]string(nil), h.Skills...)
	return h, ok
}

// MatchingIDs returns the ids of hubs the volunteer belongs to.
func (c *Catalog) MatchingIDs(v domain.Volunteer) []string {
	var ids []string
	for _, h := range c.All() {
		if h.Matches(v) {
			ids = append(ids, h.ID)
		}
	}
	return ids
}
