package extract

import (
	"strings"
	"testing"

	"github.com/nzgeo/popmatch/internal/api"
	"github.com/nzgeo/popmatch/internal/model"
	"github.com/nzgeo/popmatch/internal/templatedb"
)

func testExtractor() *Extractor {
	return New(model.WikiConfig{
		Templates:  []string{"NZ population data 2018", "NZ population data 2018 SA2"},
		SourceYear: 2021,
	})
}

func place(id int64, tags model.PlaceTags) model.Place {
	return model.Place{OSM: model.OSMID{Kind: "node", ID: id}, Tags: tags}
}

func TestExtract_TemplateUse(t *testing.T) {
	// end to end: template page entry + article using the bare template
	db := templatedb.Build([]string{" | Otorohanga = 2,600\n"})
	pages := api.Pages{
		"Ōtorohanga": {Content: "{{Infobox settlement\n| population = {{NZ population data 2018|Otorohanga}}\n}}\n"},
	}
	p := place(1, model.PlaceTags{Wikidata: "Q963247", Wikipedia: "en:Ōtorohanga"})

	facts := testExtractor().Run([]model.Place{p}, nil, pages, db)

	got := facts["n1"]
	if got.Kind != model.FactOkay || got.Population != 2600 || got.Year != 2021 || got.Source != model.SourceTemplate {
		t.Errorf("unexpected fact: %+v", got)
	}
}

func TestExtract_TemplateVariantRank(t *testing.T) {
	db := templatedb.Build([]string{" | Hamilton = 178,500\n | Hamilton (urban) = 185,300\n"})
	pages := api.Pages{
		"Hamilton, New Zealand": {Content: "| population_total = {{NZ population data 2018|Hamilton}}\n" +
			"| population_urban = {{NZ population data 2018|Hamilton (urban)}}\n"},
	}
	p := place(2, model.PlaceTags{Wikidata: "Q79990", Wikipedia: "en:Hamilton, New Zealand"})

	got := testExtractor().Run([]model.Place{p}, nil, pages, db)["n2"]
	if got.Population != 185300 {
		t.Errorf("expected the _urban figure to win, got %+v", got)
	}
}

func TestExtract_TemplateEmptyArgUsesTitle(t *testing.T) {
	db := templatedb.Build([]string{" | Piopio = 450\n"})
	pages := api.Pages{
		"Piopio": {Content: "| population = {{NZ population data 2018||y}}\n"},
	}
	p := place(3, model.PlaceTags{Wikidata: "Q7196847", Wikipedia: "en:Piopio"})

	got := testExtractor().Run([]model.Place{p}, nil, pages, db)["n3"]
	if got.Kind != model.FactOkay || got.Population != 450 {
		t.Errorf("expected page title to be the lookup key, got %+v", got)
	}
}

func TestExtract_TemplateNameMissing(t *testing.T) {
	pages := api.Pages{
		"Nowhere": {Content: "| population = {{NZ population data 2018|Nowhere}}\n"},
	}
	p := place(4, model.PlaceTags{Wikidata: "Q1", Wikipedia: "en:Nowhere"})

	got := testExtractor().Run([]model.Place{p}, nil, pages, templatedb.DB{})["n4"]
	if got.Kind != model.FactError || !strings.Contains(got.Error, "not in the template") {
		t.Errorf("expected template-miss error, got %+v", got)
	}
}

func TestExtract_RawPopulation(t *testing.T) {
	pages := api.Pages{
		"Mangaweka": {Content: "| population = 1,200\n| popdate = 2018 census\n"},
	}
	p := place(5, model.PlaceTags{Wikidata: "Q2", Wikipedia: "en:Mangaweka"})

	got := testExtractor().Run([]model.Place{p}, nil, pages, templatedb.DB{})["n5"]
	if got.Kind != model.FactOkay || got.Population != 1200 || got.Year != 2018 || got.Source != model.SourceRaw {
		t.Errorf("unexpected raw fact: %+v", got)
	}
}

func TestExtract_RawPopulationNoDate(t *testing.T) {
	pages := api.Pages{
		"Raurimu": {Content: "| population = 60\n"},
	}
	p := place(6, model.PlaceTags{Wikidata: "Q3", Wikipedia: "en:Raurimu"})

	got := testExtractor().Run([]model.Place{p}, nil, pages, templatedb.DB{})["n6"]
	if got.Kind != model.FactOkay || got.Population != 60 || got.Year != 0 {
		t.Errorf("expected okay fact with unknown year, got %+v", got)
	}
}

func TestExtract_RawUnparseableDate(t *testing.T) {
	pages := api.Pages{
		"Somewhere": {Content: "| population = 500\n| popdate = sometime recently\n"},
	}
	p := place(7, model.PlaceTags{Wikidata: "Q4", Wikipedia: "en:Somewhere"})

	got := testExtractor().Run([]model.Place{p}, nil, pages, templatedb.DB{})["n7"]
	if got.Kind != model.FactError || !strings.Contains(got.Error, "Didn't understand date") {
		t.Errorf("expected date error, got %+v", got)
	}
}

func TestExtract_ManualDateOverride(t *testing.T) {
	pages := api.Pages{
		// "March 2018" parses via the calendar heuristic; the manual table
		// is for values that defeat every heuristic, so exercise it directly
		"Elsewhere": {Content: "| population = 500\n| popdate = March 2018\n"},
	}
	p := place(8, model.PlaceTags{Wikidata: "Q5", Wikipedia: "en:Elsewhere"})

	got := testExtractor().Run([]model.Place{p}, nil, pages, templatedb.DB{})["n8"]
	if got.Kind != model.FactOkay || got.Year != 2018 {
		t.Errorf("expected year 2018, got %+v", got)
	}
}

func TestExtract_Summation(t *testing.T) {
	db := templatedb.Build([]string{" | Ahipara = 100\n | Waipapakauri = 50\n"})
	pages := api.Pages{
		"Ahipara": {Content: "| population = {{NZ population data 2018|Ahipara}} + {{NZ population data 2018|Waipapakauri}}\n| popdate = 2018 census\n"},
	}
	p := place(9, model.PlaceTags{Wikidata: "Q6", Wikipedia: "en:Ahipara"})

	got := testExtractor().Run([]model.Place{p}, nil, pages, db)["n9"]
	if got.Kind != model.FactOkay || got.Population != 150 || got.Source != model.SourceRawSummation {
		t.Errorf("expected okay(150, _, RS), got %+v", got)
	}
	if got.Year != 2018 {
		t.Errorf("expected summation to carry the parsed year, got %d", got.Year)
	}
}

func TestExtract_SummationMissingName(t *testing.T) {
	db := templatedb.Build([]string{" | Ahipara = 100\n"})
	pages := api.Pages{
		"Ahipara": {Content: "| population = {{NZ population data 2018|Ahipara}} + {{NZ population data 2018|Ghost Town}}\n"},
	}
	p := place(10, model.PlaceTags{Wikidata: "Q7", Wikipedia: "en:Ahipara"})

	got := testExtractor().Run([]model.Place{p}, nil, pages, db)["n10"]
	if got.Kind != model.FactError || !strings.Contains(got.Error, "invalid summation") {
		t.Errorf("expected invalid-summation error, got %+v", got)
	}
}

func TestExtract_NoWikipedia(t *testing.T) {
	// a non-English tag is unusable, and there is no sitelink fallback
	p := place(11, model.PlaceTags{Wikidata: "Q8", Wikipedia: "fr:Paris"})

	got := testExtractor().Run([]model.Place{p}, api.Sitelinks{"Q8": ""}, api.Pages{}, templatedb.DB{})["n11"]
	if got.Kind != model.FactNoWikipedia {
		t.Errorf("expected no_wikipedia, got %+v", got)
	}
}

func TestExtract_SitelinkFallback(t *testing.T) {
	pages := api.Pages{
		"Ohura": {Content: "| population = 120\n"},
	}
	p := place(12, model.PlaceTags{Wikidata: "Q9"})

	got := testExtractor().Run([]model.Place{p}, api.Sitelinks{"Q9": "Ohura"}, pages, templatedb.DB{})["n12"]
	if got.Kind != model.FactOkay || got.Population != 120 {
		t.Errorf("expected sitelink-resolved fact, got %+v", got)
	}
}

func TestExtract_FetchErrors(t *testing.T) {
	pages := api.Pages{
		"Broken":   {Error: api.ErrNoContent},
		"Redirect": {Content: "#REDIRECT [[Target]]"},
	}

	e := testExtractor()
	facts := e.Run([]model.Place{
		place(13, model.PlaceTags{Wikidata: "Q10", Wikipedia: "en:Broken"}),
		place(14, model.PlaceTags{Wikidata: "Q11", Wikipedia: "en:Redirect"}),
	}, nil, pages, templatedb.DB{})

	if got := facts["n13"]; got.Kind != model.FactError || got.Error != api.ErrNoContent {
		t.Errorf("expected error placeholder to surface, got %+v", got)
	}
	if got := facts["n14"]; got.Kind != model.FactError || !strings.Contains(got.Error, "redirects to 'Target'") {
		t.Errorf("expected unresolved-redirect error, got %+v", got)
	}
}

func TestExtract_NoPopulation(t *testing.T) {
	pages := api.Pages{"Empty": {Content: "Just an article about a place.\n"}}
	p := place(15, model.PlaceTags{Wikidata: "Q12", Wikipedia: "en:Empty"})

	got := testExtractor().Run([]model.Place{p}, nil, pages, templatedb.DB{})["n15"]
	if got.Kind != model.FactNoPopulation {
		t.Errorf("expected no_pop, got %+v", got)
	}
}

func TestStats(t *testing.T) {
	facts := model.Facts{
		"n1": {Kind: model.FactOkay},
		"n2": {Kind: model.FactOkay},
		"n3": {Kind: model.FactError},
		"n4": {Kind: model.FactNoWikipedia},
	}

	counts := Stats(facts)
	if counts[model.FactOkay] != 2 || counts[model.FactError] != 1 || counts[model.FactNoWikipedia] != 1 {
		t.Errorf("unexpected stats: %v", counts)
	}
}
