package service

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"

	"catalogo-armazones/templates"

	"gopkg.in/yaml.v3"
)

// Anchor is one entry of the field -> anchor table as written in anchors.yaml
type Anchor struct {
	Name    string `yaml:"name"`
	Field   string `yaml:"field"`
	Pattern string `yaml:"pattern"`
	Render  string `yaml:"render"`
	Limit   int    `yaml:"limit"`
}

// AnchorSet is the versioned anchor table for both target documents
type AnchorSet struct {
	Version int      `yaml:"version"`
	Page    []Anchor `yaml:"page"`
	Card    []Anchor `yaml:"card"`
}

// CompiledAnchor is an Anchor with its pattern and render template parsed
type CompiledAnchor struct {
	Anchor
	re     *regexp.Regexp
	render *template.Template
}

// CompiledAnchors holds the compiled page and card tables
type CompiledAnchors struct {
	Version int
	Page    []CompiledAnchor
	Card    []CompiledAnchor
}

var renderFuncs = template.FuncMap{
	"upper": strings.ToUpper,
	"js":    jsString,
}

var jsReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

// jsString escapes a value for a double-quoted JavaScript string literal
func jsString(s string) string {
	return jsReplacer.Replace(s)
}

// ParseAnchorSet decodes and compiles an anchor table
func ParseAnchorSet(data []byte) (*CompiledAnchors, error) {
	var set AnchorSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to decode anchors: %w", err)
	}
	if len(set.Page) == 0 && len(set.Card) == 0 {
		return nil, fmt.Errorf("anchor table is empty")
	}

	page, err := compileAnchors("page", set.Page)
	if err != nil {
		return nil, err
	}
	card, err := compileAnchors("card", set.Card)
	if err != nil {
		return nil, err
	}

	return &CompiledAnchors{Version: set.Version, Page: page, Card: card}, nil
}

// LoadAnchorSet reads the anchor table from path, or the embedded default when path is ""
func LoadAnchorSet(path string) (*CompiledAnchors, error) {
	if path == "" {
		return ParseAnchorSet(templates.Anchors)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read anchors %s: %w", path, err)
	}
	return ParseAnchorSet(data)
}

// DefaultAnchors returns the compiled embedded anchor table. It panics if the
// embedded file is invalid, which only a broken build can cause.
func DefaultAnchors() *CompiledAnchors {
	set, err := ParseAnchorSet(templates.Anchors)
	if err != nil {
		panic(fmt.Sprintf("embedded anchors.yaml: %v", err))
	}
	return set
}

func compileAnchors(table string, anchors []Anchor) ([]CompiledAnchor, error) {
	compiled := make([]CompiledAnchor, 0, len(anchors))
	seen := make(map[string]bool, len(anchors))
	for i, a := range anchors {
		if a.Name == "" {
			return nil, fmt.Errorf("%s anchor #%d has no name", table, i+1)
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("%s anchor %q is duplicated", table, a.Name)
		}
		seen[a.Name] = true
		if a.Limit < 0 {
			return nil, fmt.Errorf("%s anchor %q has negative limit", table, a.Name)
		}

		re, err := regexp.Compile(a.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%s anchor %q: invalid pattern: %w", table, a.Name, err)
		}
		tmpl, err := template.New(a.Name).Funcs(renderFuncs).Option("missingkey=zero").Parse(a.Render)
		if err != nil {
			return nil, fmt.Errorf("%s anchor %q: invalid render: %w", table, a.Name, err)
		}
		compiled = append(compiled, CompiledAnchor{Anchor: a, re: re, render: tmpl})
	}
	return compiled, nil
}
