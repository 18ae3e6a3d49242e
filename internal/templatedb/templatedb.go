// Package templatedb builds the name→population lookup table from the
// tracked Wikipedia template pages.
package templatedb

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nzgeo/popmatch/internal/wikitext"
)

// DB maps a normalized place name to its population figure
type DB map[string]int

// entryRe matches one "| <name> = <value>" line of a template body
var entryRe = regexp.MustCompile(` \| (.+) = (.+)\n`)

// Build parses the template bodies into one lookup table. Bodies must be
// given in configured order: when the same normalized name appears in more
// than one template, the last write wins.
func Build(bodies []string) DB {
	db := DB{}
	for _, body := range bodies {
		for _, m := range entryRe.FindAllStringSubmatch(body, -1) {
			value := strings.ReplaceAll(m[2], ",", "")
			pop, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				continue
			}
			db[wikitext.NormalizeName(m[1])] = pop
		}
	}
	return db
}
