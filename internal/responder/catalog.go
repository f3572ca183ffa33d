// internal/responder/catalog.go
package responder

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed replies.yaml
var defaultCatalogYAML []byte

// KeywordRule maps a category to the substrings that trigger it.
type KeywordRule struct {
	Category Category `yaml:"category" json:"category"`
	Triggers []string `yaml:"triggers" json:"triggers"`
}

// QuickReply is a canned user message offered as a shortcut button.
type QuickReply struct {
	Label string `yaml:"label" json:"label"`
	Text  string `yaml:"text" json:"text"`
}

// Catalog is the static reply configuration: rules in priority order and
// one template per category.
type Catalog struct {
	Rules        []KeywordRule       `yaml:"rules"`
	Templates    map[Category]string `yaml:"templates"`
	QuickReplies []QuickReply        `yaml:"quick_replies"`
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(bytes.NewReader(defaultCatalogYAML))
}

// LoadCatalog reads a catalog file, or the built-in one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reply catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

func ParseCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode reply catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that rules follow the fixed category priority and that
// every category has a template.
func (c *Catalog) Validate() error {
	var errs []error

	last := -1
	seen := make(map[Category]bool)
	for i, rule := range c.Rules {
		if !rule.Category.Valid() || rule.Category == Default {
			errs = append(errs, fmt.Errorf("rule %d: invalid category %q", i, rule.Category))
			continue
		}
		if seen[rule.Category] {
			errs = append(errs, fmt.Errorf("rule %d: duplicate category %q", i, rule.Category))
		}
		seen[rule.Category] = true

		if p := priority(rule.Category); p < last {
			errs = append(errs, fmt.Errorf("rule %d: category %q out of priority order", i, rule.Category))
		} else {
			last = p
		}

		if len(rule.Triggers) == 0 {
			errs = append(errs, fmt.Errorf("rule %d: no triggers", i))
		}
		for _, trigger := range rule.Triggers {
			if strings.TrimSpace(trigger) == "" {
				errs = append(errs, fmt.Errorf("rule %d: empty trigger", i))
			}
		}
	}

	for _, category := range Categories {
		if strings.TrimSpace(c.Templates[category]) == "" {
			errs = append(errs, fmt.Errorf("missing template for %q", category))
		}
	}

	return errors.Join(errs...)
}
