// Package conflate diffs extracted population facts against each place's
// current OSM tags, classifies every place as error, boring or interesting,
// and builds the reviewable osmPatch payload.
package conflate

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/nzgeo/popmatch/internal/api"
	"github.com/nzgeo/popmatch/internal/model"
	"github.com/nzgeo/popmatch/internal/wikitext"
)

// Conflator holds the run-constant conflation inputs
type Conflator struct {
	// PopulationSource is the value proposed for source:population
	PopulationSource string
}

// New creates a Conflator
func New(populationSource string) *Conflator {
	return &Conflator{PopulationSource: populationSource}
}

// Run produces the classified report. Every place lands in exactly one
// bucket; a place with no article and no population is boring by
// definition, never an error. Returned warnings are advisory notes for the
// operator (e.g. a proposed population of zero).
func (c *Conflator) Run(places []model.Place, facts model.Facts, links api.Sitelinks, pages api.Pages) (*model.Report, []string) {
	report := &model.Report{}
	var warnings []string

	for _, place := range places {
		fact := facts[place.OSM.String()]
		entry := model.Entry{
			OSM: place.OSM,
			QID: place.Tags.Wikidata,
			Lat: place.Lat,
			Lon: place.Lon,
			Base: model.TagState{
				Name:             place.Tags.Name,
				Wikipedia:        place.Tags.Wikipedia,
				Population:       place.Tags.Population,
				PopulationSource: place.Tags.PopulationSource,
				PopulationDate:   place.Tags.PopulationDate,
			},
		}

		switch fact.Kind {
		case model.FactNoPopulation, model.FactNoWikipedia:
			report.Boring = append(report.Boring, entry)

		case model.FactError:
			entry.Error = fact.Error
			report.Error = append(report.Error, entry)

		case model.FactOkay:
			changes := c.diff(place, fact, links, pages)
			if changes.Empty() {
				// the facts agree with OSM, nothing actionable
				report.Boring = append(report.Boring, entry)
				break
			}

			if changes.Population == "0" && entry.Base.Population == "" {
				warnings = append(warnings,
					fmt.Sprintf("proposing population=0 for %q - please verify", place.Tags.Name))
			}

			entry.Changes = &changes
			report.Interesting = append(report.Interesting, entry)
		}
	}

	// most information-dense discrepancies first for manual review
	sort.SliceStable(report.Interesting, func(i, j int) bool {
		return report.Interesting[i].Richness() > report.Interesting[j].Richness()
	})

	return report, warnings
}

// diff computes the minimal tag changes for a place with resolved facts
func (c *Conflator) diff(place model.Place, fact model.Fact, links api.Sitelinks, pages api.Pages) model.TagState {
	var changes model.TagState

	title := api.ArticleTitle(place, links)
	page := pages[title]

	// propose an updated wikipedia tag if the title we reached is not the
	// one the current tag points at
	switch {
	case page.RedirectTarget != "":
		changes.Wikipedia = "en:" + page.RedirectTarget
	case wikitext.ValidateWikipediaTag(place.Tags.Wikipedia) == "":
		changes.Wikipedia = "en:" + title
	}

	if pop := strconv.Itoa(fact.Population); place.Tags.Population != pop {
		changes.Population = pop
	}
	if place.Tags.PopulationSource != c.PopulationSource {
		changes.PopulationSource = c.PopulationSource
	}
	if fact.Year != 0 {
		if year := strconv.Itoa(fact.Year); place.Tags.PopulationDate != year {
			changes.PopulationDate = year
		}
	}

	return changes
}
