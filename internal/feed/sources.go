package feed

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Sources is the YAML source configuration:
//
//	feed: https://www.techmeme.com/feed.xml
//	source_name: techmeme
//	aggregator_hosts:
//	  - techmeme.com
//	  - www.techmeme.com
type Sources struct {
	Feed            string   `yaml:"feed"`
	SourceName      string   `yaml:"source_name"`
	AggregatorHosts []string `yaml:"aggregator_hosts"`
}

// DefaultSources covers the stock Techmeme setup when no YAML file exists.
func DefaultSources() *Sources {
	return &Sources{
		Feed:            "https://www.techmeme.com/feed.xml",
		SourceName:      "techmeme",
		AggregatorHosts: []string{"techmeme.com", "www.techmeme.com"},
	}
}

// LoadSources reads the source configuration from a YAML file.
func LoadSources(path string) (*Sources, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src Sources
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&src); err != nil {
		return nil, err
	}

	defaults := DefaultSources()
	if src.Feed == "" {
		src.Feed = defaults.Feed
	}
	if src.SourceName == "" {
		src.SourceName = defaults.SourceName
	}
	if len(src.AggregatorHosts) == 0 {
		src.AggregatorHosts = defaults.AggregatorHosts
	}
	return &src, nil
}
