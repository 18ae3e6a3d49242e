// Package wikitext holds the pure text utilities for working with raw
// MediaWiki markup: OSM tag validation, place-name normalization, infobox
// value cleaning and the wiki-date heuristics.
package wikitext

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	refRe         = regexp.MustCompile(`<ref>.+</ref>|<ref.+ />`)
	dateRefRe     = regexp.MustCompile(`<ref[^>]*>.+</ref>|<ref.+/>`)
	parentheticRe = regexp.MustCompile(`\(\w+\)([^|]|$)`)
	estimateRe    = regexp.MustCompile(`(?i) estimate`)
	censusYearRe  = regexp.MustCompile(`(?i)(\d{4}) (census|New Zealand)`)
	redirectRe    = regexp.MustCompile(`#REDIRECT \[\[(.+)\]\]`)

	rawPopulationRe = regexp.MustCompile(`population(_total|_urban)? *= *(.+)\n`)
	rawPopDateRe    = regexp.MustCompile(`(popdate|population_as_of) *= *(.+)\n`)
	firstCensusRe   = regexp.MustCompile(`(?i) census`)

	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
)

// ValidateWikipediaTag returns the article title from an OSM wikipedia tag,
// or "" if the tag is unusable. Only `en:<title>` values without a page
// fragment are usable; everything else (other languages, broken values,
// section links) is silently skipped, never an error.
func ValidateWikipediaTag(tag string) string {
	if tag == "" {
		return ""
	}

	lang, title, found := strings.Cut(tag, ":")
	if !found || lang != "en" || title == "" {
		return ""
	}
	if strings.Contains(title, "#") {
		return ""
	}
	return title
}

// NormalizeName normalizes a place name for template lookups. Wikipedians
// are inconsistent with macrons and capitalization, so two differently
// accented spellings of the same place must collide on the same key.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return folded
}

// CleanPopulation strips wiki syntax that commonly pollutes a raw infobox
// population value: <ref> footnotes, and single-word parentheticals like
// "(estimate)" unless immediately followed by a template-argument separator
// (which would mean we are inside a nested template).
func CleanPopulation(raw string) string {
	s := refRe.ReplaceAllString(raw, "")
	s = parentheticRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// dateLayouts are tried in order for the calendar-date heuristic
var dateLayouts = []string{
	"2 January 2006",
	"January 2, 2006",
	"January 2006",
	"2 Jan 2006",
	"Jan 2006",
	"2006-01-02",
	"2006",
}

// ParseWikiDate extracts the as-of year from a raw popdate value. Three
// heuristics are tried in order: a calendar date (or bare year), the
// template self-reference marker `{{<template>|||y}}` which means "use the
// template's source year", and a "<year> census" / "<year> New Zealand"
// pattern. Returns (0, false) when none match; the caller must treat that
// as needing manual review, never as year zero.
func ParseWikiDate(raw string, templates []string, sourceYear int) (int, bool) {
	s := dateRefRe.ReplaceAllString(raw, "")
	s = estimateRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), true
		}
	}

	lower := strings.ToLower(s)
	for _, t := range templates {
		if lower == "{{"+strings.ToLower(t)+"|||y}}" {
			return sourceYear, true
		}
	}

	if m := censusYearRe.FindStringSubmatch(s); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil {
			return year, true
		}
	}

	return 0, false
}

// ParseRedirect returns the redirect target of a page, if the content is a
// redirect stub. Ok is false when the marker is present but the target
// cannot be parsed.
func ParseRedirect(content string) (target string, ok bool) {
	m := redirectRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsRedirect reports whether the content carries a redirect marker
func IsRedirect(content string) bool {
	return strings.Contains(content, "#REDIRECT")
}

// FindRawPopulation returns the literal value of a `population` or
// `population_total`/`population_urban` infobox field, with thousands
// separators removed.
func FindRawPopulation(content string) (string, bool) {
	m := rawPopulationRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(strings.ReplaceAll(m[2], ",", "")), true
}

// FindRawPopulationDate returns the parallel `popdate` or
// `population_as_of` field value, with separators and a leading " census"
// suffix removed, ready for ParseWikiDate.
func FindRawPopulationDate(content string) (string, bool) {
	m := rawPopDateRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	s := strings.ReplaceAll(m[2], ",", "")
	if loc := firstCensusRe.FindStringIndex(s); loc != nil {
		s = s[:loc[0]] + s[loc[1]:]
	}
	return strings.TrimSpace(s), true
}
