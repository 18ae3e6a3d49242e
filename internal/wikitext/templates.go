package wikitext

import (
	"regexp"
	"strings"
)

// Invocation is one discovered use of a tracked population template in a
// page, reduced to the parts the extractor ranks and looks up.
type Invocation struct {
	// Variant is the infobox key suffix the template was assigned to:
	// "_total", "_urban", "_metro" or "" for a bare `population` key.
	Variant string

	// Arg is the template's first argument (the place name as the
	// statistics agency spells it). May be empty, in which case the page
	// title itself is the lookup key.
	Arg string
}

// variantRank orders invocation variants by preference. Urban population is
// the figure OSM wants; the gross "_total" is the least preferred.
var variantRank = map[string]int{
	"_urban": 3,
	"_metro": 2,
	"":       1,
	"_total": 0,
}

// Rank returns the selection preference of this invocation's variant
func (i Invocation) Rank() int {
	if r, ok := variantRank[i.Variant]; ok {
		return r
	}
	return -10
}

// compiled patterns are reused across pages; the template list is fixed
// for the lifetime of a run
var reCache = map[string]*regexp.Regexp{}

func cachedRe(pattern string) *regexp.Regexp {
	if re, ok := reCache[pattern]; ok {
		return re
	}
	re := regexp.MustCompile(pattern)
	reCache[pattern] = re
	return re
}

// popFieldRe matches any population infobox field and captures its value
var popFieldRe = regexp.MustCompile(`population(_total|_urban|_metro)? *= *(.+)`)

// FindPopulationUses scans page content for infobox population fields whose
// value is exactly one invocation of a tracked template (optionally inside
// {{formatnum:}}), producing a typed list the ranking step can work on
// without re-touching the markup. A value that merely contains invocations
// among other text is not a direct use; it belongs to the summation path.
func FindPopulationUses(content string, templates []string) []Invocation {
	var uses []Invocation
	for _, line := range strings.Split(content, "\n") {
		m := popFieldRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])

		for _, t := range templates {
			re := cachedRe(`^(?:\{\{formatnum:)?\{\{` + regexp.QuoteMeta(t) + `\|([^{}]*)\}\}(?:\}\})? *$`)
			mm := re.FindStringSubmatch(value)
			if mm == nil {
				continue
			}
			arg, _, _ := strings.Cut(mm[1], "|")
			uses = append(uses, Invocation{Variant: m[1], Arg: arg})
			break
		}
	}
	return uses
}

// BestUse picks the highest-ranked invocation. Ties keep the earlier
// discovery so the choice is deterministic regardless of page layout.
func BestUse(uses []Invocation) (Invocation, bool) {
	if len(uses) == 0 {
		return Invocation{}, false
	}

	best := uses[0]
	for _, u := range uses[1:] {
		if u.Rank() > best.Rank() {
			best = u
		}
	}
	return best, true
}

// FindSummationArgs extracts the first argument of every tracked-template
// invocation nested inside a raw infobox value, e.g.
// "{{NZ population data 2018|A}} + {{NZ population data 2018|B}}".
func FindSummationArgs(s string, templates []string) []string {
	var args []string
	for _, t := range templates {
		re := cachedRe(`\{\{` + regexp.QuoteMeta(t) + `\|([^|}]+)`)
		for _, m := range re.FindAllStringSubmatch(s, -1) {
			args = append(args, m[1])
		}
	}
	return args
}
