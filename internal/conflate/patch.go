package conflate

import "github.com/nzgeo/popmatch/internal/model"

// diamondRadius is the half-diagonal, in degrees, of the marker polygon
// drawn around each point so the proposed edit is visible in an editor.
const diamondRadius = 0.0005

// BuildPatch converts the interesting entries into the osmPatch GeoJSON
// payload. Features carry only the changed tags.
func BuildPatch(interesting []model.Entry) model.PatchFile {
	features := make([]model.PatchFeature, 0, len(interesting))
	for _, e := range interesting {
		name := e.Base.Name
		if e.Changes != nil && e.Changes.Name != "" {
			name = e.Changes.Name
		}

		features = append(features, model.PatchFeature{
			Type: "Feature",
			ID:   e.OSM.String(),
			Name: name,
			Geometry: model.Geometry{
				Type:        "Polygon",
				Coordinates: diamond(e.Lat, e.Lon),
			},
			Properties: properties(e),
		})
	}

	return model.PatchFile{
		Type:     "FeatureCollection",
		Size:     "large",
		Features: features,
	}
}

// properties maps an entry's changes onto real OSM tag keys, plus the
// action marker the review tooling expects.
func properties(e model.Entry) map[string]string {
	props := map[string]string{"__action": "edit"}
	if e.Changes == nil {
		return props
	}

	if e.Changes.Name != "" {
		props["name"] = e.Changes.Name
	}
	if e.Changes.Population != "" {
		props["population"] = e.Changes.Population
	}
	if e.Changes.PopulationDate != "" {
		props["population:date"] = e.Changes.PopulationDate
	}
	if e.Changes.PopulationSource != "" {
		props["source:population"] = e.Changes.PopulationSource
	}
	if e.Changes.Wikipedia != "" {
		props["wikipedia"] = e.Changes.Wikipedia
	}
	return props
}

// diamond builds a small closed diamond ring around a coordinate.
// Coordinates are [lng, lat] per GeoJSON.
func diamond(lat, lon float64) [][][]float64 {
	return [][][]float64{{
		{lon, lat + diamondRadius},
		{lon + diamondRadius, lat},
		{lon, lat - diamondRadius},
		{lon - diamondRadius, lat},
		{lon, lat + diamondRadius},
	}}
}
