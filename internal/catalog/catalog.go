// Package catalog holds the static registry of project artifact definitions
// grouped by category, with an optional YAML override file.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Category names. General categories apply to every analysis; project-type
// categories apply only when the matching type is selected.
const (
	CategoryGeneral    = "general"
	CategoryTechnical  = "technical"
	CategoryOperations = "operations"
	CategoryTesting    = "testing"
	CategoryChanges    = "changes"
)

// baseCategories are always in scope, in report order.
var baseCategories = []string{
	CategoryGeneral,
	CategoryTechnical,
	CategoryOperations,
	CategoryTesting,
	CategoryChanges,
}

// Definition describes one artifact the analysis looks for.
type Definition struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description,omitempty"`
	SearchHints []string `yaml:"search_hints,omitempty"`
}

// ProjectType is a selectable project kind; its code doubles as a category
// name for type-specific artifact definitions.
type ProjectType struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// catalogFile is the YAML override file layout.
type catalogFile struct {
	ProjectTypes []ProjectType `yaml:"project_types"`
	Artifacts    []Definition  `yaml:"artifacts"`
}

// Registry is the artifact catalog. Safe for concurrent use; Reload swaps the
// definition set atomically.
type Registry struct {
	mu    sync.RWMutex
	types []ProjectType
	defs  []Definition
	byID  map[string]Definition
}

// NewRegistry returns a registry with the built-in definitions.
func NewRegistry() *Registry {
	r := &Registry{}
	r.replace(builtinProjectTypes, builtinDefinitions)
	return r
}

// LoadFile replaces the registry content with definitions from a YAML file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Artifacts) == 0 {
		return fmt.Errorf("catalog %s contains no artifacts", path)
	}
	seen := make(map[string]bool, len(f.Artifacts))
	for _, d := range f.Artifacts {
		if d.ID == "" || d.Name == "" || d.Category == "" {
			return fmt.Errorf("catalog %s: artifact missing id, name, or category", path)
		}
		if seen[d.ID] {
			return fmt.Errorf("catalog %s: duplicate artifact id %q", path, d.ID)
		}
		seen[d.ID] = true
	}
	types := f.ProjectTypes
	if len(types) == 0 {
		types = builtinProjectTypes
	}
	r.replace(types, f.Artifacts)
	return nil
}

func (r *Registry) replace(types []ProjectType, defs []Definition) {
	byID := make(map[string]Definition, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}
	r.mu.Lock()
	r.types = types
	r.defs = defs
	r.byID = byID
	r.mu.Unlock()
}

// ProjectTypes returns the selectable project types in catalog order.
func (r *Registry) ProjectTypes() []ProjectType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ProjectType, len(r.types))
	copy(out, r.types)
	return out
}

// TypeName returns the display name for a project type code, or the code
// itself when unknown.
func (r *Registry) TypeName(code string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.types {
		if t.Code == code {
			return t.Name
		}
	}
	return code
}

// ValidType reports whether code is a known project type.
func (r *Registry) ValidType(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.types {
		if t.Code == code {
			return true
		}
	}
	return false
}

// Lookup returns the definition for an artifact id.
func (r *Registry) Lookup(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	return d, ok
}

// Categories returns the category order for a report: the base categories
// followed by the selected project types in selection order.
func (r *Registry) Categories(selected []string) []string {
	out := make([]string, 0, len(baseCategories)+len(selected))
	out = append(out, baseCategories...)
	for _, code := range selected {
		out = append(out, categoryForType(code))
	}
	return out
}

// ForSelection returns the definitions in scope for the selected project
// types: all base-category artifacts plus each selected type's own category.
// The result is ordered by category (report order), preserving catalog order
// within a category.
func (r *Registry) ForSelection(selected []string) []Definition {
	wanted := make(map[string]int)
	for i, c := range r.Categories(selected) {
		if _, ok := wanted[c]; !ok {
			wanted[c] = i
		}
	}
	r.mu.RLock()
	defs := r.defs
	r.mu.RUnlock()

	out := make([]Definition, 0, len(defs))
	for _, d := range defs {
		if _, ok := wanted[d.Category]; ok {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return wanted[out[i].Category] < wanted[out[j].Category]
	})
	return out
}

// categoryForType maps a project type code to its artifact category.
func categoryForType(code string) string {
	switch code {
	case "BI":
		return "bi"
	case "DWH":
		return "dwh"
	case "RPA":
		return "rpa"
	case "MDM":
		return "mdm"
	default:
		return code
	}
}
