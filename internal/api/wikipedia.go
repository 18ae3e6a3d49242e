package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Terminal error tags stored on a Page instead of content
const (
	ErrNoContent            = "No page content"
	ErrNoContentAfterTarget = "No page content after redirect"
	ErrUnparseableRedirect  = "Couldn't parse redirect"
)

// Page is the cached article content for one looked-up title: either raw
// wikitext or a terminal error tag. When the title was a redirect that has
// been followed, Content holds the target's markup and RedirectTarget
// records where it came from, so the conflation step can propose the
// updated tag and diagnostics can show both titles.
type Page struct {
	Content        string `json:"content,omitempty"`
	Error          string `json:"error,omitempty"`
	RedirectTarget string `json:"redirect_target,omitempty"`
}

// Pages caches article content by the title used to look it up
type Pages map[string]Page

// wikipediaResponse mirrors the revisions query schema (formatversion=2)
type wikipediaResponse struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Revisions []struct {
				Slots struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// FetchPageBatch fetches the latest revision of up to one batch of titles.
// The result is keyed by the title as returned by the API; titles with no
// retrievable content map to an empty string.
func (c *Client) FetchPageBatch(ctx context.Context, endpoint string, titles []string) (map[string]string, error) {
	u := endpoint + "?action=query&prop=revisions&titles=" + url.QueryEscape(strings.Join(titles, "|")) +
		"&rvslots=*&rvprop=content&formatversion=2&format=json"

	var resp wikipediaResponse
	if err := c.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("wikipedia revisions: %w", err)
	}

	out := make(map[string]string, len(resp.Query.Pages))
	for _, page := range resp.Query.Pages {
		content := ""
		if len(page.Revisions) > 0 {
			content = page.Revisions[0].Slots.Main.Content
		}
		out[page.Title] = content
	}
	return out, nil
}

// FetchTemplatePages retrieves the bodies of the named templates, in the
// order they were configured. Order matters: a later template overrides an
// earlier one for duplicate place names, and the API does not guarantee
// response ordering.
func (c *Client) FetchTemplatePages(ctx context.Context, endpoint string, names []string) ([]string, error) {
	titles := make([]string, len(names))
	for i, name := range names {
		titles[i] = "Template:" + name
	}

	fetched, err := c.FetchPageBatch(ctx, endpoint, titles)
	if err != nil {
		return nil, err
	}

	bodies := make([]string, 0, len(names))
	for _, title := range titles {
		if content := fetched[title]; content != "" {
			bodies = append(bodies, content)
		}
	}
	return bodies, nil
}
