// Package pipeline orchestrates the checkpointed stages: fetch places,
// resolve sitelinks, fetch articles, build the template database, extract
// population facts and conflate them into the final report and patch.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/nzgeo/popmatch/internal/api"
	"github.com/nzgeo/popmatch/internal/checkpoint"
	"github.com/nzgeo/popmatch/internal/conflate"
	"github.com/nzgeo/popmatch/internal/extract"
	"github.com/nzgeo/popmatch/internal/model"
	"github.com/nzgeo/popmatch/internal/templatedb"
	"github.com/nzgeo/popmatch/internal/wikitext"
)

// Checkpoint keys, one per stage
const (
	keyPlaces     = "osm-places"
	keyTemplates  = "wiki-templates"
	keyTemplateDB = "template-db"
	keySitelinks  = "wikidata-links"
	keyPages      = "wiki-pages"
	keyFacts      = "population-facts"
)

// Pipeline runs the complete conflation process. Single-threaded and
// sequential: the checkpoint store is the only state shared between
// stages, so an interrupted run resumes by rerunning and losing at most
// one in-flight batch.
type Pipeline struct {
	cfg    *model.Config
	store  *checkpoint.Store
	client *api.Client
}

// New creates a Pipeline with the given configuration
func New(cfg *model.Config) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		store:  checkpoint.New(cfg.Cache.Dir, cfg.Cache.Enabled),
		client: api.NewClient(cfg.HTTP, cfg.Batch.Delay),
	}
}

// Result is the complete outcome of one run
type Result struct {
	Report   *model.Report
	Patch    model.PatchFile
	Facts    model.Facts
	Warnings []string
}

// Run executes every stage in order
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	places, err := checkpoint.Do(p.store, keyPlaces, func() ([]model.Place, error) {
		p.logf("Fetching places from OSM...")
		return p.client.FetchPlaces(ctx, p.cfg.Overpass)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch places: %w", err)
	}

	templates, err := checkpoint.Do(p.store, keyTemplates, func() ([]string, error) {
		p.logf("Fetching Wikipedia templates...")
		return p.client.FetchTemplatePages(ctx, p.cfg.Wiki.WikipediaEndpoint, p.cfg.Wiki.Templates)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch templates: %w", err)
	}

	links, err := p.resolveSitelinks(ctx, places)
	if err != nil {
		return nil, fmt.Errorf("resolve sitelinks: %w", err)
	}

	pages, err := p.fetchArticles(ctx, places, links)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}

	db, err := checkpoint.Do(p.store, keyTemplateDB, func() (templatedb.DB, error) {
		return templatedb.Build(templates), nil
	})
	if err != nil {
		return nil, fmt.Errorf("build template db: %w", err)
	}

	facts := extract.New(p.cfg.Wiki).Run(places, links, pages, db)

	// persisted for later inspection regardless of what conflation does
	if err := p.store.Put(keyFacts, facts); err != nil {
		return nil, fmt.Errorf("store facts: %w", err)
	}

	counts := extract.Stats(facts)
	fmt.Printf("Extraction stats. OK: %d. Error: %d. No Pop: %d. No wikipedia: %d\n",
		counts[model.FactOkay], counts[model.FactError],
		counts[model.FactNoPopulation], counts[model.FactNoWikipedia])

	report, warnings := conflate.New(p.cfg.Wiki.PopulationSource).Run(places, facts, links, pages)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	return &Result{
		Report:   report,
		Patch:    conflate.BuildPatch(report.Interesting),
		Facts:    facts,
		Warnings: warnings,
	}, nil
}

// resolveSitelinks queries Wikidata for every place that lacks a usable
// wikipedia tag. The checkpoint is updated after every batch, so a crash
// loses at most one batch of remote calls.
func (p *Pipeline) resolveSitelinks(ctx context.Context, places []model.Place) (api.Sitelinks, error) {
	links := api.Sitelinks{}
	p.store.Get(keySitelinks, &links)

	var missing []string
	seen := map[string]bool{}
	for _, pl := range places {
		if wikitext.ValidateWikipediaTag(pl.Tags.Wikipedia) != "" {
			continue
		}
		qid := pl.Tags.Wikidata
		if qid == "" || seen[qid] {
			continue
		}
		seen[qid] = true
		if _, done := links[qid]; done {
			continue
		}
		missing = append(missing, qid)
	}

	if len(missing) == 0 {
		p.logf("No need to query Wikidata.")
		return links, nil
	}

	p.logf("Need to query Wikidata for %d places.", len(missing))
	for i, batch := range chunk(missing, p.cfg.Batch.Size) {
		p.logf("\tFetching items %d-%d...", i*p.cfg.Batch.Size, i*p.cfg.Batch.Size+len(batch)-1)

		resolved, err := p.client.ResolveSitelinks(ctx, p.cfg.Wiki.WikidataEndpoint, batch)
		if err != nil {
			return nil, err
		}
		for qid, title := range resolved {
			links[qid] = title
		}

		if err := p.store.Put(keySitelinks, links); err != nil {
			return nil, err
		}
	}
	return links, nil
}

// fetchArticles retrieves the article markup for every resolvable title
// not already checkpointed, then follows redirects one hop.
func (p *Pipeline) fetchArticles(ctx context.Context, places []model.Place, links api.Sitelinks) (api.Pages, error) {
	pages := api.Pages{}
	p.store.Get(keyPages, &pages)

	var lookups []string
	seen := map[string]bool{}
	for _, pl := range places {
		title := api.ArticleTitle(pl, links)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		if _, done := pages[title]; done {
			continue
		}
		lookups = append(lookups, title)
	}

	if len(lookups) == 0 {
		p.logf("No need to query Wikipedia for pages.")
	} else {
		p.logf("Need to query Wikipedia for %d pages.", len(lookups))
		for i, batch := range chunk(lookups, p.cfg.Batch.Size) {
			p.logf("\tFetching items %d-%d...", i*p.cfg.Batch.Size, i*p.cfg.Batch.Size+len(batch)-1)

			fetched, err := p.client.FetchPageBatch(ctx, p.cfg.Wiki.WikipediaEndpoint, batch)
			if err != nil {
				return nil, err
			}
			for title, content := range fetched {
				if content == "" {
					pages[title] = api.Page{Error: api.ErrNoContent}
				} else {
					pages[title] = api.Page{Content: content}
				}
			}

			if err := p.store.Put(keyPages, pages); err != nil {
				return nil, err
			}
		}
	}

	if err := p.followRedirects(ctx, pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// followRedirects overwrites every redirect-stub entry with its target's
// content, one hop only. A target that is itself a redirect stays as-is
// and surfaces later as a per-place error.
func (p *Pipeline) followRedirects(ctx context.Context, pages api.Pages) error {
	// target title -> the looked-up titles that redirect to it
	sources := map[string][]string{}
	for title, page := range pages {
		if page.Error != "" || page.RedirectTarget != "" || !wikitext.IsRedirect(page.Content) {
			continue
		}

		target, ok := wikitext.ParseRedirect(page.Content)
		if !ok {
			pages[title] = api.Page{Error: api.ErrUnparseableRedirect}
			continue
		}
		sources[target] = append(sources[target], title)
	}

	if len(sources) == 0 {
		return nil
	}

	targets := make([]string, 0, len(sources))
	for target := range sources {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	p.logf("\tFetching %d redirect pages...", len(targets))
	for _, batch := range chunk(targets, p.cfg.Batch.Size) {
		fetched, err := p.client.FetchPageBatch(ctx, p.cfg.Wiki.WikipediaEndpoint, batch)
		if err != nil {
			return err
		}

		for target, content := range fetched {
			for _, source := range sources[target] {
				if content == "" {
					pages[source] = api.Page{Error: api.ErrNoContentAfterTarget}
				} else {
					pages[source] = api.Page{Content: content, RedirectTarget: target}
				}
			}
		}

		if err := p.store.Put(keyPages, pages); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

func chunk[T any](list []T, size int) [][]T {
	var out [][]T
	for len(list) > size {
		out = append(out, list[:size])
		list = list[size:]
	}
	if len(list) > 0 {
		out = append(out, list)
	}
	return out
}

