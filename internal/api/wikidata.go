package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nzgeo/popmatch/internal/model"
	"github.com/nzgeo/popmatch/internal/wikitext"
)

// Sitelinks maps a Wikidata QID to its English Wikipedia article title.
// An empty string means the id was queried and confirmed to have no
// article; a missing key means it was never queried. The pipeline relies
// on that distinction to resume without re-querying.
type Sitelinks map[string]string

// wikidataResponse mirrors the wbgetentities sitelinks schema
type wikidataResponse struct {
	Entities map[string]struct {
		Sitelinks map[string]struct {
			Site  string `json:"site"`
			Title string `json:"title"`
		} `json:"sitelinks"`
	} `json:"entities"`
}

// ResolveSitelinks queries one batch of QIDs for their enwiki sitelink.
// Every requested id gets an answer: the title, or "" for confirmed-absent.
func (c *Client) ResolveSitelinks(ctx context.Context, endpoint string, qids []string) (Sitelinks, error) {
	u := endpoint + "?action=wbgetentities&ids=" + url.QueryEscape(strings.Join(qids, "|")) +
		"&props=sitelinks&format=json"

	var resp wikidataResponse
	if err := c.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("wikidata sitelinks: %w", err)
	}

	links := make(Sitelinks, len(qids))
	for qid, entity := range resp.Entities {
		links[qid] = entity.Sitelinks["enwiki"].Title
	}
	// ids the API dropped entirely (deleted or malformed) are still
	// answered, as confirmed-absent
	for _, qid := range qids {
		if _, ok := links[qid]; !ok {
			links[qid] = ""
		}
	}
	return links, nil
}

// ArticleTitle resolves the canonical article title for a place: a valid
// wikipedia tag wins, then the Wikidata sitelink. Empty means the place has
// no known article.
func ArticleTitle(p model.Place, links Sitelinks) string {
	if title := wikitext.ValidateWikipediaTag(p.Tags.Wikipedia); title != "" {
		return title
	}
	return links[p.Tags.Wikidata]
}
