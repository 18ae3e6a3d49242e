package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nzgeo/popmatch/internal/model"
)

// overpassResponse mirrors the subset of the Overpass JSON schema we read
type overpassResponse struct {
	Remark   string `json:"remark,omitempty"`
	Elements []struct {
		Type string            `json:"type"`
		ID   int64             `json:"id"`
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// FetchPlaces queries Overpass for every place node with a wikidata tag
// inside the configured bounding box.
func (c *Client) FetchPlaces(ctx context.Context, cfg model.OverpassConfig) ([]model.Place, error) {
	query := fmt.Sprintf(`
		[out:json][timeout:60];
		(
		  node[place][wikidata](%s);
		);
		out meta;
	`, cfg.BBox)

	var resp overpassResponse
	u := cfg.Endpoint + "?data=" + url.QueryEscape(query)
	if err := c.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("overpass query: %w", err)
	}
	if resp.Remark != "" {
		// Overpass reports timeouts and memory exhaustion in-band
		return nil, fmt.Errorf("overpass remark: %s", resp.Remark)
	}

	places := make([]model.Place, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		places = append(places, model.Place{
			OSM: model.OSMID{Kind: el.Type, ID: el.ID},
			Lat: el.Lat,
			Lon: el.Lon,
			Tags: model.PlaceTags{
				Name:             el.Tags["name"],
				Wikidata:         el.Tags["wikidata"],
				Wikipedia:        el.Tags["wikipedia"],
				Population:       el.Tags["population"],
				PopulationSource: el.Tags["source:population"],
				PopulationDate:   el.Tags["population:date"],
			},
		})
	}
	return places, nil
}
