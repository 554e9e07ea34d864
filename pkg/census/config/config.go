// Package config loads the dictionaries the resolver is built from.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Synonyms maps a natural-language phrase to the canonical dataset attribute
// it stands for. Multiple phrases may target the same attribute.
type Synonyms map[string]string

// synonymsFile is the on-disk YAML shape:
//
//	synonyms:
//	  - phrase: male literates
//	    attribute: Literates Population Male
//	  - phrase: households
//	    attribute: No of Households
type synonymsFile struct {
	Synonyms []struct {
		Phrase    string `yaml:"phrase"`
		Attribute string `yaml:"attribute"`
	} `yaml:"synonyms"`
}

// LoadSynonyms loads a synonym table from a YAML file. Whether every target
// names a real attribute is checked later, when the resolver is constructed
// against the loaded dataset's columns.
func LoadSynonyms(path string) (Synonyms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load synonyms: %w", err)
	}

	var file synonymsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("load synonyms: %w", err)
	}

	syn := make(Synonyms, len(file.Synonyms))
	for _, entry := range file.Synonyms {
		syn[entry.Phrase] = entry.Attribute
	}
	return syn, nil
}

// DefaultSynonyms returns the built-in phrase table for the standard census
// dataset. Used when no synonyms file is given.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		"male population":      "Total Population Male",
		"female population":    "Total Population Female",
		"total population":     "Total Population Person",
		"population person":    "Total Population Person",
		"males":                "Total Population Male",
		"male":                 "Total Population Male",
		"females":              "Total Population Female",
		"female":               "Total Population Female",
		"population":           "Total Population Person",
		"households":           "No of Households",
		"household":            "No of Households",
		"number of households": "No of Households",
		"literates population": "Literates Population Person",
		"literates":            "Literates Population Person",
		"literacy":             "Literates Population Person",
		"literate population":  "Literates Population Person",
		"male literates":       "Literates Population Male",
		"female literates":     "Literates Population Female",
		"illiterates":          "Illiterate Persons",
		"illiterate population": "Illiterate Persons",
		"illiteracy":            "Illiterate Persons",
		"illiterate persons":    "Illiterate Persons",
		"male illiterates":      "Illiterate Male",
		"female illiterates":    "Illiterate Female",
		"workers":               "Total Worker Population Person",
		"worker":                "Total Worker Population Person",
		"male workers":          "Total Worker Population Male",
		"female workers":        "Total Worker Population Female",
	}
}
