// Package source holds the static catalog of regulatory sites that regwatch
// scrapes, grouped by category.
package source

import (
	"github.com/JakeFAU/regwatch/internal/crawler"
)

// Category names used by the default catalog. Categories are an open set;
// callers match them by exact name.
const (
	CategoryCentral     = "central"
	CategoryMaharashtra = "maharashtra"
	CategoryRegulators  = "regulators"
)

// PrioritySources lists the sources that reliably yield items and are used by
// the scheduled scrape and the items endpoint.
var PrioritySources = []string{
	"Income Tax Notifications",
	"RBI Notifications",
	"CBIC GST",
	"SEBI Circulars",
	"Maharashtra GST Notifications",
}

type group struct {
	category string
	sources  []crawler.DataSource
}

// Registry is a read-only, ordered catalog of data sources.
type Registry struct {
	groups []group
}

// New builds a Registry from sources, grouping by category in first-seen order.
func New(sources ...crawler.DataSource) *Registry {
	r := &Registry{}
	index := make(map[string]int)
	for _, src := range sources {
		i, ok := index[src.Category]
		if !ok {
			i = len(r.groups)
			index[src.Category] = i
			r.groups = append(r.groups, group{category: src.Category})
		}
		r.groups[i].sources = append(r.groups[i].sources, src)
	}
	return r
}

// Default returns the built-in catalog.
func Default() *Registry {
	return New(defaultSources...)
}

// All returns every source flattened in declaration order.
func (r *Registry) All() []crawler.DataSource {
	var out []crawler.DataSource
	for _, g := range r.groups {
		out = append(out, g.sources...)
	}
	return out
}

// ByCategory returns the sources for category, or an empty slice when the
// category is unknown.
func (r *Registry) ByCategory(category string) []crawler.DataSource {
	for _, g := range r.groups {
		if g.category == category {
			return append([]crawler.DataSource{}, g.sources...)
		}
	}
	return []crawler.DataSource{}
}

// Categories lists category names in declaration order.
func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g.category)
	}
	return out
}

// ByNames returns the sources whose names appear in names, keeping the
// registry's declaration order rather than the order of names.
func (r *Registry) ByNames(names []string) []crawler.DataSource {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	out := []crawler.DataSource{}
	for _, src := range r.All() {
		if _, ok := wanted[src.Name]; ok {
			out = append(out, src)
		}
	}
	return out
}

// Select narrows the catalog for a run to the sources in any of categories
// or named in names, in catalog order and without duplicates. With neither
// filter every source is returned.
func (r *Registry) Select(categories, names []string) []crawler.DataSource {
	if len(categories) == 0 && len(names) == 0 {
		return r.All()
	}
	inCategory := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		inCategory[c] = struct{}{}
	}
	named := make(map[string]struct{}, len(names))
	for _, n := range names {
		named[n] = struct{}{}
	}
	out := []crawler.DataSource{}
	for _, g := range r.groups {
		_, wholeGroup := inCategory[g.category]
		for _, src := range g.sources {
			if _, ok := named[src.Name]; wholeGroup || ok {
				out = append(out, src)
			}
		}
	}
	return out
}

// All returns every source of the default catalog.
func All() []crawler.DataSource {
	return Default().All()
}

// ByCategory returns the default catalog's sources for category.
func ByCategory(category string) []crawler.DataSource {
	return Default().ByCategory(category)
}
