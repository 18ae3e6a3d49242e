package model

import "fmt"

// OSMID identifies an OSM element by kind and numeric id
type OSMID struct {
	Kind string `json:"kind"` // "node", "way" or "relation"
	ID   int64  `json:"id"`
}

// String returns the short form used as a map key and patch feature id,
// e.g. "n5819321" for node 5819321.
func (id OSMID) String() string {
	if id.Kind == "" {
		return fmt.Sprintf("?%d", id.ID)
	}
	return fmt.Sprintf("%c%d", id.Kind[0], id.ID)
}

// PlaceTags is the subset of OSM tags the pipeline considers
type PlaceTags struct {
	Name             string `json:"name,omitempty"`
	Wikidata         string `json:"wikidata"` // always present on fetched places
	Wikipedia        string `json:"wikipedia,omitempty"`
	Population       string `json:"population,omitempty"`
	PopulationSource string `json:"source:population,omitempty"`
	PopulationDate   string `json:"population:date,omitempty"`
}

// Place is a point feature from OSM under reconciliation.
// Immutable once fetched; unique within a run by its OSMID.
type Place struct {
	OSM  OSMID     `json:"osm"`
	Lat  float64   `json:"lat"`
	Lon  float64   `json:"lon"`
	Tags PlaceTags `json:"tags"`
}
