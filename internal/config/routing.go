package config

import (
	"fmt"
	"os"
	"strings"

	"mindcare-rag-be/pkg/rag/intent"
	"mindcare-rag-be/pkg/rag/router"

	"gopkg.in/yaml.v3"
)

// Routing is the tunable part of the chat pipeline. Any section missing from
// the YAML file keeps its compiled-in default.
type Routing struct {
	Table         router.Table
	Keywords      intent.Keywords
	CrisisPhrases []string // nil means the built-in list
}

type yamlRouting struct {
	Routes        map[string][]string `yaml:"routes"`
	Keywords      map[string][]string `yaml:"keywords"`
	CrisisPhrases []string            `yaml:"crisis_phrases"`
}

func DefaultRouting() *Routing {
	return &Routing{
		Table:    router.DefaultTable(),
		Keywords: intent.DefaultKeywords(),
	}
}

// LoadRouting reads the override at path. An empty path returns the defaults.
func LoadRouting(path string) (*Routing, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRouting(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routing file: %w", err)
	}
	return ParseRouting(data)
}

func ParseRouting(data []byte) (*Routing, error) {
	var raw yamlRouting
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse routing file: %w", err)
	}

	out := DefaultRouting()

	if len(raw.Routes) > 0 {
		table := router.Table{}
		for name, collections := range raw.Routes {
			in, err := intent.ParseIntent(name)
			if err != nil {
				return nil, fmt.Errorf("routes: %w", err)
			}
			table[in] = collections
		}
		if err := table.Validate(); err != nil {
			return nil, fmt.Errorf("routes: %w", err)
		}
		out.Table = table
	}

	if len(raw.Keywords) > 0 {
		keywords := intent.Keywords{}
		for name, words := range raw.Keywords {
			in, err := intent.ParseIntent(name)
			if err != nil {
				return nil, fmt.Errorf("keywords: %w", err)
			}
			keywords[in] = words
		}
		out.Keywords = keywords
	}

	if len(raw.CrisisPhrases) > 0 {
		out.CrisisPhrases = raw.CrisisPhrases
	}

	return out, nil
}
