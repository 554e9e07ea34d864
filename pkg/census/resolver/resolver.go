// Package resolver maps free-text queries onto the closed catalogs of region
// names and dataset attributes.
//
// Matching is tiered: cheap unambiguous checks first (exact equality, then
// substring containment), an approximate similarity score last. Ties inside a
// tier always resolve to catalog order, never to score magnitude, so
// resolution is deterministic for a fixed catalog.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/censusqa/pkg/census/internalerr"
	"github.com/cognicore/censusqa/pkg/census/similarity"
)

// Score thresholds for the approximate tier. Both are strict: a score equal
// to the threshold does not match. Tuned for the partial-ratio metric.
const (
	regionScoreThreshold    = 60
	attributeScoreThreshold = 50
)

// Resolved is the resolver's output. Either field may be empty when no
// confident match was found; absence is not an error.
type Resolved struct {
	Region    string
	Attribute string
}

type synonym struct {
	phrase    string // lowercase
	canonical string
}

// Resolver resolves query fragments against a region catalog, an attribute
// catalog and a synonym table. It is immutable after construction and safe
// for concurrent use.
type Resolver struct {
	regions      []string // catalog order, original casing
	regionsLower []string
	attrs        []string // catalog order, original casing
	attrsLower   []string
	synonyms     []synonym // sorted by phrase length, longest first
}

// New builds a Resolver. Synonym phrases map to canonical attribute names;
// a synonym whose target is not in the attribute catalog is a configuration
// error and fails construction.
func New(regions, attributes []string, synonyms map[string]string) (*Resolver, error) {
	r := &Resolver{
		regions:      regions,
		regionsLower: make([]string, len(regions)),
		attrs:        attributes,
		attrsLower:   make([]string, len(attributes)),
	}
	for i, name := range regions {
		r.regionsLower[i] = strings.ToLower(name)
	}

	known := make(map[string]struct{}, len(attributes))
	for i, name := range attributes {
		r.attrsLower[i] = strings.ToLower(name)
		known[name] = struct{}{}
	}

	r.synonyms = make([]synonym, 0, len(synonyms))
	for phrase, canonical := range synonyms {
		if _, ok := known[canonical]; !ok {
			return nil, fmt.Errorf("synonym %q targets %q which is not a dataset attribute: %w",
				phrase, canonical, internalerr.ErrInvalidConfig)
		}
		r.synonyms = append(r.synonyms, synonym{
			phrase:    strings.ToLower(phrase),
			canonical: canonical,
		})
	}

	// Longest phrase first so "male literates" wins over "literates" when
	// both occur in a query. Equal lengths fall back to lexicographic order
	// to keep iteration deterministic across map ordering.
	sort.Slice(r.synonyms, func(i, j int) bool {
		a, b := r.synonyms[i], r.synonyms[j]
		if len(a.phrase) != len(b.phrase) {
			return len(a.phrase) > len(b.phrase)
		}
		return a.phrase < b.phrase
	})

	return r, nil
}

// Resolve matches a raw query against both catalogs independently.
func (r *Resolver) Resolve(query string) Resolved {
	region, _ := r.ResolveRegion(query)
	attr, _ := r.ResolveAttribute(query)
	return Resolved{Region: region, Attribute: attr}
}

// ResolveRegion finds the catalog region the query refers to.
//
// Tiers, first hit wins:
//  1. exact lowercase equality
//  2. substring containment either way, in catalog order
//  3. best partial-ratio score, accepted only above 60
func (r *Resolver) ResolveRegion(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}

	for i, name := range r.regionsLower {
		if q == name {
			return r.regions[i], true
		}
	}

	for i, name := range r.regionsLower {
		if strings.Contains(q, name) || strings.Contains(name, q) {
			return r.regions[i], true
		}
	}

	if idx, score := bestMatch(q, r.regionsLower); score > regionScoreThreshold {
		return r.regions[idx], true
	}
	return "", false
}

// ResolveAttribute finds the dataset attribute the query refers to.
//
// Tiers, first hit wins:
//  1. longest synonym phrase contained in the query
//  2. exact lowercase equality against a column name
//  3. best partial-ratio score, accepted only above 50
func (r *Resolver) ResolveAttribute(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}

	for _, syn := range r.synonyms {
		if strings.Contains(q, syn.phrase) {
			return syn.canonical, true
		}
	}

	for i, name := range r.attrsLower {
		if q == name {
			return r.attrs[i], true
		}
	}

	if idx, score := bestMatch(q, r.attrsLower); score > attributeScoreThreshold {
		return r.attrs[idx], true
	}
	return "", false
}

// bestMatch scores the query against every candidate and returns the index
// of the single best one. Earlier candidates win ties.
func bestMatch(query string, candidates []string) (int, float64) {
	bestIdx, bestScore := -1, 0.0
	for i, cand := range candidates {
		if score := similarity.PartialRatio(query, cand); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx, bestScore
}
