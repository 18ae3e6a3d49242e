package model

// PatchFile is the osmPatch GeoJSON payload handed to a human reviewer.
// Features carry only the changed tags, never the unchanged base state.
type PatchFile struct {
	Type     string         `json:"type"` // "FeatureCollection"
	Size     string         `json:"size"` // editor hint
	Features []PatchFeature `json:"features"`
}

// PatchFeature is one proposed edit
type PatchFeature struct {
	Type       string            `json:"type"` // "Feature"
	ID         string            `json:"id"`   // OSMID short form
	Name       string            `json:"__name,omitempty"`
	Geometry   Geometry          `json:"geometry"`
	Properties map[string]string `json:"properties"` // __action plus changed tags
}

// Geometry is a GeoJSON point or polygon. Coordinates are [lng, lat].
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}
