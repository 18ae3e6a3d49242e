package model

// FactKind discriminates the population-fact variants
type FactKind string

const (
	FactNoWikipedia  FactKind = "no_wikipedia" // no usable tag and no Wikidata sitelink
	FactError        FactKind = "error"        // data-quality failure, see Fact.Error
	FactNoPopulation FactKind = "no_pop"       // article exists but holds no population
	FactOkay         FactKind = "okay"
)

// Provenance labels for resolved facts, for diagnostics
const (
	SourceTemplate     = "T"  // population came from a tracked template
	SourceRaw          = "R"  // literal infobox value
	SourceRawSummation = "RS" // sum of nested template invocations
)

// Fact is the classified population extracted for one place.
// Population, Year and Source are only meaningful when Kind is FactOkay;
// Year 0 means the article gave a population with no usable as-of date.
type Fact struct {
	Kind       FactKind `json:"type"`
	Error      string   `json:"error,omitempty"`
	Population int      `json:"pop,omitempty"`
	Year       int      `json:"year,omitempty"`
	Source     string   `json:"source,omitempty"`
}

// Facts maps an OSMID short form to its extracted fact.
// Every place in a run has exactly one entry.
type Facts map[string]Fact

// ErrorFact builds an error-classified fact
func ErrorFact(reason string) Fact {
	return Fact{Kind: FactError, Error: reason}
}
