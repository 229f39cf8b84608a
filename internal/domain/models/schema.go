package models

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SectionDef describes one slot of a document type's static schema.
type SectionDef struct {
	ID       SectionID `yaml:"id" json:"id"`
	Title    string    `yaml:"title" json:"title"`
	Required bool      `yaml:"required" json:"required"`
}

// Schema is the ordered section-definition table for one document type. The
// order is the canonical section order used for context assembly, flattening
// and export.
type Schema []SectionDef

//go:embed sections.yaml
var sectionsYAML []byte

var schemas map[DocType]Schema

func init() {
	if err := yaml.Unmarshal(sectionsYAML, &schemas); err != nil {
		panic(fmt.Sprintf("models: invalid embedded section schema: %v", err))
	}
	for _, t := range DocTypes {
		if len(schemas[t]) == 0 {
			panic(fmt.Sprintf("models: embedded section schema missing type %q", t))
		}
	}
}

// SchemaFor returns the section table for a document type. The returned
// slice must not be modified.
func SchemaFor(t DocType) Schema {
	return schemas[t]
}

// Contains reports whether id is a defined section of the schema.
func (s Schema) Contains(id SectionID) bool {
	for _, def := range s {
		if def.ID == id {
			return true
		}
	}
	return false
}

// Title returns the display title for a section id, or the id itself when
// unknown.
func (s Schema) Title(id SectionID) string {
	for _, def := range s {
		if def.ID == id {
			return def.Title
		}
	}
	return string(id)
}

// Required returns the ids of all required sections, in schema order.
func (s Schema) Required() []SectionID {
	var ids []SectionID
	for _, def := range s {
		if def.Required {
			ids = append(ids, def.ID)
		}
	}
	return ids
}
