// internal/cards/catalog.go
package cards

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Catalog is the immutable process-wide card catalogue, loaded once at
// startup. Read/parse failures are fatal to the process by contract.
type Catalog struct {
	templates []Template
	byID      map[string]Template
	deckSize  int
}

// Load reads a JSON array of templates from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card catalogue %s: %w", path, err)
	}
	var templates []Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("parse card catalogue %s: %w", path, err)
	}
	return NewCatalog(templates)
}

// NewCatalog builds a catalogue from in-memory templates. Duplicate ids
// and non-positive counts are rejected.
func NewCatalog(templates []Template) (*Catalog, error) {
	byID := make(map[string]Template, len(templates))
	size := 0
	for _, tpl := range templates {
		if tpl.ID == "" {
			return nil, fmt.Errorf("card template %q has no id", tpl.Name)
		}
		if _, dup := byID[tpl.ID]; dup {
			return nil, fmt.Errorf("duplicate card template id %q", tpl.ID)
		}
		if tpl.Count <= 0 {
			return nil, fmt.Errorf("card template %q has non-positive count %d", tpl.ID, tpl.Count)
		}
		byID[tpl.ID] = tpl
		size += tpl.Count
	}
	sorted := make([]Template, len(templates))
	copy(sorted, templates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &Catalog{templates: sorted, byID: byID, deckSize: size}, nil
}

// LootTemplates returns the templates in a stable order.
func (c *Catalog) LootTemplates() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Template looks up one template by id.
func (c *Catalog) Template(id string) (Template, bool) {
	tpl, ok := c.byID[id]
	return tpl, ok
}

// DeckSize is the total number of card instances a full deck expands to.
func (c *Catalog) DeckSize() int { return c.deckSize }
