package model

import "time"

// Config holds the complete popmatch configuration
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Cache     CacheConfig     `yaml:"cache"`
	Overpass  OverpassConfig  `yaml:"overpass"`
	Wiki      WikiConfig      `yaml:"wiki"`
	Batch     BatchConfig     `yaml:"batch"`
	Output    OutputConfig    `yaml:"output"`
	LLM       LLMConfig       `yaml:"llm"`
}

// HTTPConfig controls the shared HTTP client
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	CheckRobots  bool          `yaml:"check_robots"`
}

// CacheConfig controls the checkpoint store
type CacheConfig struct {
	Dir     string `yaml:"dir"`
	Enabled bool   `yaml:"enabled"`
}

// OverpassConfig controls the OSM place source
type OverpassConfig struct {
	Endpoint string `yaml:"endpoint"`
	BBox     string `yaml:"bbox"` // south,west,north,east
}

// WikiConfig controls the Wikipedia/Wikidata sources and extraction rules
type WikiConfig struct {
	WikipediaEndpoint string `yaml:"wikipedia_endpoint"`
	WikidataEndpoint  string `yaml:"wikidata_endpoint"`

	// Templates are the tracked population templates, in priority order:
	// for duplicate place names, a later template overwrites an earlier one.
	Templates []string `yaml:"templates"`

	// SourceYear is the year the tracked templates were last updated. Used
	// whenever the population comes from a template rather than a raw
	// infobox value.
	SourceYear int `yaml:"source_year"`

	// PopulationSource is the value proposed for the source:population tag.
	PopulationSource string `yaml:"population_source"`
}

// BatchConfig controls remote batching and pacing
type BatchConfig struct {
	Size  int           `yaml:"size"`
	Delay time.Duration `yaml:"delay"`
}

// OutputConfig controls the produced artifacts
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Verbose bool   `yaml:"verbose"`
}

// LLMConfig holds the optional triage summarizer configuration
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"`
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      60 * time.Second,
			UserAgent:    "popmatch/0.2 (+https://github.com/nzgeo/popmatch)",
			MaxBodyBytes: 50_000_000,
			CheckRobots:  true,
		},
		Cache: CacheConfig{
			Dir:     "out/cache",
			Enabled: true,
		},
		Overpass: OverpassConfig{
			Endpoint: "https://overpass-api.de/api/interpreter",
			// mainland New Zealand
			BBox: "-47.960502,164.081757,-32.805745,179.635359",
		},
		Wiki: WikiConfig{
			WikipediaEndpoint: "https://en.wikipedia.org/w/api.php",
			WikidataEndpoint:  "https://www.wikidata.org/w/api.php",
			Templates: []string{
				"NZ population data 2018",
				"NZ population data 2018 SA2",
			},
			SourceYear:       2021,
			PopulationSource: "Statistics NZ via Wikipedia",
		},
		Batch: BatchConfig{
			Size:  50,
			Delay: 500 * time.Millisecond,
		},
		Output: OutputConfig{
			Dir: "out",
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 1000,
		},
	}
}
