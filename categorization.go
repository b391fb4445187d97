package swara

import (
	"fmt"
	"sort"
)

// Categorization holds analytical labels as flags grouped by category, plus
// free-form labels. Sections additionally carry a single top-level label.
type Categorization struct {
	Categories map[string]map[string]bool `json:"categories" yaml:"categories"`
	TopLevel   string                     `json:"topLevel,omitempty" yaml:"topLevel,omitempty"`
	AdHoc      []string                   `json:"adHoc,omitempty" yaml:"adHoc,omitempty"`
}

var (
	phraseCategories = map[string][]string{
		"Phrase":                    {"Mohra", "Mukra", "Asthai", "Antara", "Manjha", "Abhog", "Sanchari", "Jhala"},
		"Elaboration":               {"Vistar", "Barhat", "Prastar", "Bol Banao", "Bol Alap", "Bol Bandt", "Behlava", "Gat-kari", "Tan (Sapat)", "Tan (Gamak)", "Laykari", "Tihai", "Chakradar Tihai", "Tan", "Alap"},
		"Vocal Articulation":        {"Bol", "Non-Tom", "Tarana", "Aakar", "Sargam"},
		"Instrumental Articulation": {"Bol", "Non-Bol"},
		"Incidental":                {"Talk/Conversation", "Praise ('Vah')", "Tuning", "Pause"},
	}
	sectionCategories = map[string][]string{
		"Pre-Chiz Alap":       {"Pre-Chiz Alap"},
		"Alap":                {"Alap", "Jor", "Alap-Jhala"},
		"Composition Type":    {"Dhrupad", "Bandish", "Thumri", "Ghazal", "Qawwali", "Dhun", "Tappa", "Bhajan", "Kirtan", "Kriti", "Masitkhani Gat", "Razakhani Gat", "Ferozkhani Gat"},
		"Comp.-section/Tempo": {"Ati-vilambit", "Vilambit", "Madhya", "Drut", "Ati-drut", "Jhala"},
		"Tala":                {"Ektal", "Tintal", "Rupak"},
		"Improvisation":       {"Improvisation"},
		"Other":               {"Other"},
	}
)

func newCategorization(table map[string][]string) Categorization {
	c := Categorization{Categories: make(map[string]map[string]bool, len(table))}
	for group, names := range table {
		c.Categories[group] = make(map[string]bool, len(names))
		for _, n := range names {
			c.Categories[group][n] = false
		}
	}
	return c
}

func DefaultPhraseCategorization() Categorization {
	return newCategorization(phraseCategories)
}

func DefaultSectionCategorization() Categorization {
	c := newCategorization(sectionCategories)
	c.TopLevel = "None"
	return c
}

// Set turns a label on or off. Unknown labels are an error.
func (c *Categorization) Set(category, label string, on bool) error {
	labels, ok := c.Categories[category]
	if !ok {
		return fmt.Errorf("category %q: %w", category, ErrNotFound)
	}
	if _, ok := labels[label]; !ok {
		return fmt.Errorf("label %q in category %q: %w", label, category, ErrNotFound)
	}
	labels[label] = on
	return nil
}

// Selected lists the labels that are on as "Category: Label", sorted, then
// the ad hoc labels.
func (c Categorization) Selected() []string {
	var ret []string
	for group, labels := range c.Categories {
		for label, on := range labels {
			if on {
				ret = append(ret, group+": "+label)
			}
		}
	}
	sort.Strings(ret)
	return append(ret, c.AdHoc...)
}

func (c Categorization) Copy() Categorization {
	ret := Categorization{TopLevel: c.TopLevel, AdHoc: append([]string(nil), c.AdHoc...)}
	if c.Categories != nil {
		ret.Categories = make(map[string]map[string]bool, len(c.Categories))
		for group, labels := range c.Categories {
			ret.Categories[group] = make(map[string]bool, len(labels))
			for k, v := range labels {
				ret.Categories[group][k] = v
			}
		}
	}
	return ret
}
