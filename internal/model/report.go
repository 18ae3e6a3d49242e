package model

// TagState holds the reconciled tag values for a place, either its current
// state in OSM or the proposed changes. Empty string means absent.
type TagState struct {
	Name             string `json:"name,omitempty"`
	Wikipedia        string `json:"wp,omitempty"`
	Population       string `json:"pop,omitempty"`
	PopulationSource string `json:"popSrc,omitempty"`
	PopulationDate   string `json:"popDate,omitempty"`
}

// Count returns how many fields are populated
func (t TagState) Count() int {
	n := 0
	for _, v := range [...]string{t.Name, t.Wikipedia, t.Population, t.PopulationSource, t.PopulationDate} {
		if v != "" {
			n++
		}
	}
	return n
}

// Empty reports whether no field is set
func (t TagState) Empty() bool { return t.Count() == 0 }

// Entry is one place's conflation result
type Entry struct {
	OSM     OSMID     `json:"osm"`
	QID     string    `json:"q"`
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lng"`
	Base    TagState  `json:"base"`
	Changes *TagState `json:"changes,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// Richness measures how information-dense an entry is: populated current
// tags plus proposed changes. The report sorts interesting entries by it.
func (e Entry) Richness() int {
	n := e.Base.Count()
	if e.Changes != nil {
		n += e.Changes.Count()
	}
	return n
}

// Report groups every place's entry by classification.
// Invariant: each place lands in exactly one bucket.
type Report struct {
	Error       []Entry `json:"error"`
	Interesting []Entry `json:"interesting"`
	Boring      []Entry `json:"boring"`
}
