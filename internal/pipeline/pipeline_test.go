package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nzgeo/popmatch/internal/model"
)

// fakeServices serves Overpass, Wikipedia and Wikidata lookalikes from
// fixed fixtures and counts every request it answers
type fakeServices struct {
	srv      *httptest.Server
	requests atomic.Int64

	articles  map[string]string
	sitelinks map[string]string
}

func newFakeServices(t *testing.T) *fakeServices {
	t.Helper()

	f := &fakeServices{
		articles: map[string]string{
			"Alpha":      "{{Infobox settlement\n| population = {{NZ population data 2018|Alpha}}\n}}",
			"Beta":       "{{Infobox settlement\n| population = 230\n| population_as_of = 2018 census\n}}",
			"Gamma":      "#REDIRECT [[Gamma Town]]",
			"Gamma Town": "{{Infobox settlement\n| population = {{NZ population data 2018|Gamma Town}}\n}}",
		},
		sitelinks: map[string]string{
			"Q2": "Beta",
			"Q3": "Gamma",
		},
	}
	f.articles["Template:NZ population data 2018"] =
		"{{#switch: {{{1}}}\n | Alpha = 120\n | Beta = 230\n | Gamma Town = 340\n}}"

	mux := http.NewServeMux()
	mux.HandleFunc("/overpass", f.overpass)
	mux.HandleFunc("/wiki", f.wiki)
	mux.HandleFunc("/wikidata", f.wikidata)
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServices) overpass(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	resp := map[string]any{
		"elements": []map[string]any{
			{
				"type": "node", "id": 1, "lat": -38.0, "lon": 175.2,
				"tags": map[string]string{
					"name": "Alpha", "wikidata": "Q1",
					"wikipedia": "en:Alpha", "population": "100",
				},
			},
			{
				"type": "node", "id": 2, "lat": -38.1, "lon": 175.3,
				"tags": map[string]string{"name": "Beta", "wikidata": "Q2"},
			},
			{
				"type": "node", "id": 3, "lat": -38.2, "lon": 175.4,
				"tags": map[string]string{"name": "Gamma", "wikidata": "Q3"},
			},
		},
	}
	json.NewEncoder(w).Encode(resp)
}

func (f *fakeServices) wiki(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	var pages []map[string]any
	for _, title := range strings.Split(r.URL.Query().Get("titles"), "|") {
		page := map[string]any{"title": title}
		if content, ok := f.articles[title]; ok {
			page["revisions"] = []map[string]any{
				{"slots": map[string]any{"main": map[string]any{"content": content}}},
			}
		}
		pages = append(pages, page)
	}
	json.NewEncoder(w).Encode(map[string]any{"query": map[string]any{"pages": pages}})
}

func (f *fakeServices) wikidata(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	entities := map[string]any{}
	for _, qid := range strings.Split(r.URL.Query().Get("ids"), "|") {
		title, ok := f.sitelinks[qid]
		if !ok {
			continue
		}
		entities[qid] = map[string]any{
			"sitelinks": map[string]any{
				"enwiki": map[string]string{"site": "enwiki", "title": title},
			},
		}
	}
	json.NewEncoder(w).Encode(map[string]any{"entities": entities})
}

func testConfig(f *fakeServices, cacheDir string) *model.Config {
	cfg := model.DefaultConfig()
	cfg.HTTP.CheckRobots = false
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Cache.Dir = cacheDir
	cfg.Overpass.Endpoint = f.srv.URL + "/overpass"
	cfg.Wiki.WikipediaEndpoint = f.srv.URL + "/wiki"
	cfg.Wiki.WikidataEndpoint = f.srv.URL + "/wikidata"
	cfg.Wiki.Templates = []string{"NZ population data 2018"}
	cfg.Batch.Size = 2
	cfg.Batch.Delay = 0
	cfg.Output.Verbose = false
	return cfg
}

func findEntry(t *testing.T, entries []model.Entry, id int64) model.Entry {
	t.Helper()
	for _, e := range entries {
		if e.OSM.ID == id {
			return e
		}
	}
	t.Fatalf("no entry for node %d in %+v", id, entries)
	return model.Entry{}
}

func TestPipelineRunEndToEnd(t *testing.T) {
	f := newFakeServices(t)
	res, err := New(testConfig(f, t.TempDir())).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	report := res.Report
	if len(report.Interesting) != 3 || len(report.Boring) != 0 || len(report.Error) != 0 {
		t.Fatalf("buckets = %d/%d/%d, want 3/0/0",
			len(report.Interesting), len(report.Boring), len(report.Error))
	}

	// tag present and agreeing: only population, source and date change
	alpha := findEntry(t, report.Interesting, 1)
	if alpha.Changes.Population != "120" || alpha.Changes.PopulationDate != "2021" {
		t.Errorf("alpha changes = %+v", alpha.Changes)
	}
	if alpha.Changes.Wikipedia != "" {
		t.Errorf("alpha should keep its wikipedia tag, got %q", alpha.Changes.Wikipedia)
	}

	// article found through the sitelink: the missing tag is proposed
	beta := findEntry(t, report.Interesting, 2)
	if beta.Changes.Wikipedia != "en:Beta" || beta.Changes.Population != "230" {
		t.Errorf("beta changes = %+v", beta.Changes)
	}
	if beta.Changes.PopulationDate != "2018" {
		t.Errorf("beta date = %q, want 2018 from the infobox as-of field", beta.Changes.PopulationDate)
	}

	// redirect followed one hop: the target title is proposed
	gamma := findEntry(t, report.Interesting, 3)
	if gamma.Changes.Wikipedia != "en:Gamma Town" || gamma.Changes.Population != "340" {
		t.Errorf("gamma changes = %+v", gamma.Changes)
	}

	// alpha carries the most populated tags, so it reviews first
	if report.Interesting[0].OSM.ID != 1 {
		t.Errorf("first entry = node %d, want the richest (node 1)", report.Interesting[0].OSM.ID)
	}

	if len(res.Patch.Features) != 3 {
		t.Fatalf("patch features = %d, want 3", len(res.Patch.Features))
	}
	for _, feat := range res.Patch.Features {
		if feat.Properties["__action"] != "edit" {
			t.Errorf("feature %s action = %q", feat.ID, feat.Properties["__action"])
		}
	}
}

func TestPipelineResumesWithoutRefetching(t *testing.T) {
	f := newFakeServices(t)
	cacheDir := t.TempDir()

	first, err := New(testConfig(f, cacheDir)).Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	afterFirst := f.requests.Load()
	if afterFirst == 0 {
		t.Fatal("first run made no requests")
	}

	second, err := New(testConfig(f, cacheDir)).Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := f.requests.Load(); got != afterFirst {
		t.Errorf("second run made %d extra requests, want 0", got-afterFirst)
	}

	if len(second.Report.Interesting) != len(first.Report.Interesting) {
		t.Errorf("second run report differs: %d vs %d interesting",
			len(second.Report.Interesting), len(first.Report.Interesting))
	}
}

func TestPipelineWithCacheDisabled(t *testing.T) {
	f := newFakeServices(t)

	cfg := testConfig(f, t.TempDir())
	cfg.Cache.Enabled = false

	res, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Report.Interesting) != 3 {
		t.Errorf("interesting = %d, want 3", len(res.Report.Interesting))
	}
}
