// Package extract implements the per-place population decision procedure:
// given the cached article content, the Wikidata sitelinks and the template
// database, it classifies every place into exactly one population fact.
package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nzgeo/popmatch/internal/api"
	"github.com/nzgeo/popmatch/internal/model"
	"github.com/nzgeo/popmatch/internal/templatedb"
	"github.com/nzgeo/popmatch/internal/wikitext"
)

// Extractor holds the extraction rules for one run
type Extractor struct {
	templates  []string
	sourceYear int

	// manualYears maps raw popdate values none of the heuristics
	// understand to a hand-verified year
	manualYears map[string]int
}

// New creates an Extractor from the wiki configuration
func New(cfg model.WikiConfig) *Extractor {
	return &Extractor{
		templates:  cfg.Templates,
		sourceYear: cfg.SourceYear,
		manualYears: map[string]int{
			"March 2018": 2018,
		},
	}
}

// Run classifies every place. The returned table has exactly one fact per
// place, keyed by OSMID short form.
func (e *Extractor) Run(places []model.Place, links api.Sitelinks, pages api.Pages, db templatedb.DB) model.Facts {
	facts := make(model.Facts, len(places))
	for _, p := range places {
		facts[p.OSM.String()] = e.place(p, links, pages, db)
	}
	return facts
}

// place runs the ordered decision procedure; the first matching branch wins
func (e *Extractor) place(p model.Place, links api.Sitelinks, pages api.Pages, db templatedb.DB) model.Fact {
	title := api.ArticleTitle(p, links)
	if title == "" {
		return model.Fact{Kind: model.FactNoWikipedia}
	}

	page, ok := pages[title]
	if !ok {
		return model.ErrorFact(fmt.Sprintf("article '%s' was never fetched", title))
	}
	if page.Error != "" {
		return model.ErrorFact(page.Error)
	}
	if wikitext.IsRedirect(page.Content) {
		target, _ := wikitext.ParseRedirect(page.Content)
		return model.ErrorFact(fmt.Sprintf("Wikipedia page redirects to '%s'", target))
	}

	// preferred branch: the page invokes one of the tracked templates
	if uses := wikitext.FindPopulationUses(page.Content, e.templates); len(uses) > 0 {
		best, _ := wikitext.BestUse(uses)
		name := best.Arg
		if name == "" {
			// bare invocation, the article title is the place name
			name = title
		}

		key := wikitext.NormalizeName(name)
		pop, found := db[key]
		if !found {
			return model.ErrorFact(fmt.Sprintf(
				"Wiki article uses template, but the place name is not in the template ('%s')", key))
		}
		return model.Fact{Kind: model.FactOkay, Population: pop, Year: e.sourceYear, Source: model.SourceTemplate}
	}

	// fallback: a literal infobox population value
	rawPop, ok := wikitext.FindRawPopulation(page.Content)
	if !ok || rawPop == "" {
		return model.Fact{Kind: model.FactNoPopulation}
	}

	year := 0
	if rawDate, hasDate := wikitext.FindRawPopulationDate(page.Content); hasDate {
		parsed, understood := wikitext.ParseWikiDate(rawDate, e.templates, e.sourceYear)
		if !understood {
			if manual, ok := e.manualYears[rawDate]; ok {
				parsed, understood = manual, true
			}
		}
		if !understood {
			return model.ErrorFact(fmt.Sprintf("Didn't understand date '%s' (%s)", rawDate, title))
		}
		year = parsed
	}

	cleaned := wikitext.CleanPopulation(rawPop)

	// a value still holding template braces is a summation of sub-areas
	if strings.Contains(cleaned, "{{") {
		return e.sum(cleaned, year, db)
	}

	pop, err := strconv.Atoi(cleaned)
	if err != nil {
		return model.ErrorFact(fmt.Sprintf("raw population is not a number (%s)", cleaned))
	}
	return model.Fact{Kind: model.FactOkay, Population: pop, Year: year, Source: model.SourceRaw}
}

// sum adds up every nested tracked-template invocation. One unknown name
// invalidates the whole sum.
func (e *Extractor) sum(cleaned string, year int, db templatedb.DB) model.Fact {
	args := wikitext.FindSummationArgs(cleaned, e.templates)
	if len(args) == 0 {
		return model.ErrorFact(fmt.Sprintf("raw population is an invalid summation (%s)", cleaned))
	}

	total := 0
	for _, arg := range args {
		pop, ok := db[wikitext.NormalizeName(arg)]
		if !ok {
			return model.ErrorFact(fmt.Sprintf("raw population is an invalid summation (%s)", cleaned))
		}
		total += pop
	}
	return model.Fact{Kind: model.FactOkay, Population: total, Year: year, Source: model.SourceRawSummation}
}

// Stats counts facts by kind for the stage summary line
func Stats(facts model.Facts) map[model.FactKind]int {
	counts := map[model.FactKind]int{}
	for _, f := range facts {
		counts[f.Kind]++
	}
	return counts
}
