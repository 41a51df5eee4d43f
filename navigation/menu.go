package navigation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/careerverse/backend/models"
)

//go:embed navigation.yaml
var defaultTable []byte

// Item is one sidebar entry
type Item struct {
	Name  string        `yaml:"name" json:"name" example:"Job Listings"`
	Icon  string        `yaml:"icon" json:"icon" example:"briefcase"`
	Path  string        `yaml:"path" json:"path" example:"/jobs"`
	Roles []models.Role `yaml:"roles" json:"-"`
}

// Menu is the ordered navigation table
type Menu struct {
	items []Item
}

type table struct {
	Items []Item `yaml:"items"`
}

// Default returns the built-in menu
func Default() *Menu {
	menu, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("embedded navigation table: %v", err))
	}
	return menu
}

// LoadFile reads a menu from a YAML file, or returns Default when path is empty
func LoadFile(path string) (*Menu, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read navigation file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML navigation table
func Parse(data []byte) (*Menu, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse navigation table: %w", err)
	}

	seen := make(map[string]bool, len(t.Items))
	for i, item := range t.Items {
		if item.Name == "" || !strings.HasPrefix(item.Path, "/") {
			return nil, fmt.Errorf("navigation item %d: name and absolute path are required", i)
		}
		if seen[item.Path] {
			return nil, fmt.Errorf("navigation item %q: duplicate path %s", item.Name, item.Path)
		}
		seen[item.Path] = true
		for _, r := range item.Roles {
			if models.ParseRole(string(r)) == models.RoleNone {
				return nil, fmt.Errorf("navigation item %q: unknown role %q", item.Name, r)
			}
		}
	}
	return &Menu{items: t.Items}, nil
}

// Visible returns the items shown to role, in table order.
// Nothing is shown while the role is loading or when there is no role.
func (m *Menu) Visible(role models.Role, loading bool) []Item {
	items := []Item{}
	if loading || role == models.RoleNone {
		return items
	}
	for _, item := range m.items {
		if item.allows(role) {
			items = append(items, item)
		}
	}
	return items
}

// Allows reports whether role may open path. Paths outside the table are
// not gated by the menu.
func (m *Menu) Allows(role models.Role, path string) bool {
	for _, item := range m.items {
		if item.Path == path {
			return item.allows(role)
		}
	}
	return role != models.RoleNone
}

func (i Item) allows(role models.Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
