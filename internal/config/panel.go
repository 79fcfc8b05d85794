package config

import (
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/report"
)

// PanelKind discriminates panels. Charts panels are further split into
// lens, multi_layer and esql by which of chart, layers and esql is set.
type PanelKind string

const (
	PanelMarkdown   PanelKind = "markdown"
	PanelSearch     PanelKind = "search"
	PanelLinks      PanelKind = "links"
	PanelImage      PanelKind = "image"
	PanelMap        PanelKind = "map"
	PanelLens       PanelKind = "lens"
	PanelMultiLayer PanelKind = "multi_layer"
	PanelESQL       PanelKind = "esql"
)

// PanelFields are carried by every panel.
type PanelFields struct {
	ID          string `yaml:"id,omitempty"`
	Title       string `yaml:"title,omitempty"`
	HideTitle   *bool  `yaml:"hide_title,omitempty"`
	Description string `yaml:"description,omitempty"`
	Grid        Grid   `yaml:"grid"`
	Type        string `yaml:"type"`
}

// Panel is one dashboard panel. Exactly one variant pointer is set.
type Panel struct {
	PanelFields `yaml:",inline"`

	Markdown *MarkdownPanel `yaml:"-"`
	Search   *SearchPanel   `yaml:"-"`
	Links    *LinksPanel    `yaml:"-"`
	Image    *ImagePanel    `yaml:"-"`
	Map      *MapPanel      `yaml:"-"`
	Charts   *ChartsPanel   `yaml:"-"`
}

type MarkdownPanel struct {
	Content       string `yaml:"content"`
	FontSize      *int   `yaml:"font_size,omitempty"`
	LinksInNewTab *bool  `yaml:"links_in_new_tab,omitempty"`
}

type SearchPanel struct {
	SavedSearchID string `yaml:"saved_search_id"`
}

type LinksPanel struct {
	Layout string     `yaml:"layout,omitempty"`
	Items  []LinkItem `yaml:"items"`
}

// LinkItem links to a dashboard by id or to an external URL.
type LinkItem struct {
	ID          string `yaml:"id,omitempty"`
	Dashboard   string `yaml:"dashboard,omitempty"`
	URL         string `yaml:"url,omitempty"`
	Label       string `yaml:"label,omitempty"`
	NewTab      *bool  `yaml:"new_tab,omitempty"`
	WithFilters *bool  `yaml:"with_filters,omitempty"`
	WithTime    *bool  `yaml:"with_time,omitempty"`
	Encode      *bool  `yaml:"encode,omitempty"`
}

func (l *LinkItem) UnmarshalYAML(node *yaml.Node) error {
	type plain LinkItem
	if err := decodeMapping(node, (*plain)(l)); err != nil {
		return err
	}
	switch {
	case l.Dashboard == "" && l.URL == "":
		return report.Configf("", "link must set one of dashboard or url")
	case l.Dashboard != "" && l.URL != "":
		return report.Configf("", "ambiguous link: both dashboard and url are set")
	case l.Dashboard != "" && l.Encode != nil:
		return report.Configf("encode", "encode is only valid for url links")
	case l.URL != "" && (l.WithFilters != nil || l.WithTime != nil):
		return report.Configf("", "with_filters and with_time are only valid for dashboard links")
	}
	return nil
}

type ImagePanel struct {
	FromURL         string `yaml:"from_url"`
	AltText         string `yaml:"alt_text,omitempty"`
	Fit             string `yaml:"fit,omitempty"`
	BackgroundColor string `yaml:"background_color,omitempty"`
}

// MapPanel is recognised so that it can be reported as unsupported; its
// body is not interpreted.
type MapPanel struct {
	Body map[string]any `yaml:",inline"`
}

// ChartsPanel carries exactly one of a Lens chart, a stack of Lens layers or
// an ES|QL chart.
type ChartsPanel struct {
	Chart  *Chart  `yaml:"chart,omitempty"`
	Layers []Chart `yaml:"layers,omitempty"`
	ESQL   *Chart  `yaml:"esql,omitempty"`
}

var (
	panelCommon  = []string{"id", "title", "hide_title", "description", "grid", "type"}
	chartsShapes = []struct {
		key  string
		kind PanelKind
	}{{"chart", PanelLens}, {"layers", PanelMultiLayer}, {"esql", PanelESQL}}
)

func panelKind(typ string, has func(string) bool) (PanelKind, error) {
	switch typ {
	case "markdown", "search", "links", "image", "map":
		return PanelKind(typ), nil
	case "charts":
	case "":
		return "", report.Configf("type", "required")
	default:
		return "", report.Configf("type", "unknown panel type %q", typ)
	}

	var found []PanelKind
	for _, s := range chartsShapes {
		if has(s.key) {
			found = append(found, s.kind)
		}
	}
	switch len(found) {
	case 0:
		return "", report.Configf("", "charts panel must set one of chart, layers or esql")
	case 1:
		return found[0], nil
	}
	return "", report.Configf("", "ambiguous charts panel: only one of chart, layers or esql may be set")
}

// ClassifyPanel returns the kind of a panel given as a raw decoded tree.
func ClassifyPanel(raw map[string]any) (PanelKind, error) {
	typ, _ := raw["type"].(string)
	return panelKind(typ, func(k string) bool { _, ok := raw[k]; return ok })
}

// Kind returns the kind of p.
func (p Panel) Kind() (PanelKind, error) {
	return panelKind(p.Type, func(k string) bool {
		if p.Charts == nil {
			return false
		}
		switch k {
		case "chart":
			return p.Charts.Chart != nil
		case "layers":
			return p.Charts.Layers != nil
		case "esql":
			return p.Charts.ESQL != nil
		}
		return false
	})
}

func (p *Panel) UnmarshalYAML(node *yaml.Node) error {
	typ, err := scalarAt(node, "type")
	if err != nil {
		return err
	}
	present, err := keys(node)
	if err != nil {
		return err
	}
	kind, err := panelKind(typ, func(k string) bool { return present[k] })
	if err != nil {
		return err
	}
	if !present["grid"] {
		return report.Configf("grid", "required")
	}

	*p = Panel{}
	var variant any
	switch kind {
	case PanelMarkdown:
		p.Markdown = &MarkdownPanel{}
		variant = p.Markdown
	case PanelSearch:
		p.Search = &SearchPanel{}
		variant = p.Search
	case PanelLinks:
		p.Links = &LinksPanel{}
		variant = p.Links
	case PanelImage:
		p.Image = &ImagePanel{}
		variant = p.Image
	case PanelMap:
		p.Map = &MapPanel{Body: map[string]any{}}
		return decodeMap(node, &p.PanelFields, &p.Map.Body)
	default:
		p.Charts = &ChartsPanel{}
		variant = p.Charts
	}
	if err := decodeMapping(node, &p.PanelFields, variant); err != nil {
		return err
	}
	return p.validate(kind)
}

// Validate classifies p and checks that the body its kind needs is set and
// satisfies the rules decoding enforces.
func (p *Panel) Validate() (PanelKind, error) {
	kind, err := p.Kind()
	if err != nil {
		return "", err
	}
	var missing bool
	switch kind {
	case PanelMarkdown:
		missing = p.Markdown == nil
	case PanelSearch:
		missing = p.Search == nil
	case PanelLinks:
		missing = p.Links == nil
	case PanelImage:
		missing = p.Image == nil
	case PanelMap:
		return kind, nil
	}
	if missing {
		return "", report.Configf("type", "%s panel has no %s body", kind, kind)
	}
	return kind, p.validate(kind)
}

func (p *Panel) validate(kind PanelKind) error {
	switch kind {
	case PanelMarkdown:
		if p.Markdown.FontSize != nil && *p.Markdown.FontSize <= 0 {
			return report.Configf("font_size", "font_size must be positive")
		}
	case PanelSearch:
		if p.Search.SavedSearchID == "" {
			return report.Configf("saved_search_id", "required")
		}
	case PanelLinks:
		if len(p.Links.Items) == 0 {
			return report.Configf("items", "at least one link is required")
		}
		return oneOf("layout", p.Links.Layout, "horizontal", "vertical")
	case PanelImage:
		if p.Image.FromURL == "" {
			return report.Configf("from_url", "required")
		}
		return oneOf("fit", p.Image.Fit, "contain", "cover", "fill", "none")
	case PanelLens, PanelESQL:
		c := p.Charts.Chart
		path := "chart"
		if kind == PanelESQL {
			c, path = p.Charts.ESQL, "esql"
		}
		if c.Type == ChartReferenceLine {
			return report.Configf(path+".type", "reference_line is only valid inside layers")
		}
	case PanelMultiLayer:
		if len(p.Charts.Layers) == 0 {
			return report.Configf("layers", "at least one layer is required")
		}
	}
	return nil
}

// decodeMap decodes the common panel fields strictly and keeps every other
// key of the mapping in body.
func decodeMap(node *yaml.Node, common *PanelFields, body *map[string]any) error {
	pairs, err := mappingPairs(resolve(node))
	if err != nil {
		return err
	}
	rest := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	known := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, pr := range pairs {
		k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pr.key}
		if slices.Contains(panelCommon, pr.key) {
			known.Content = append(known.Content, k, pr.value)
		} else {
			rest.Content = append(rest.Content, k, pr.value)
		}
	}
	if err := decodeMapping(known, common); err != nil {
		return err
	}
	return decodeScalar(rest, body)
}

func (p Panel) MarshalYAML() (any, error) {
	var variant any
	switch {
	case p.Markdown != nil:
		variant = p.Markdown
	case p.Search != nil:
		variant = p.Search
	case p.Links != nil:
		variant = p.Links
	case p.Image != nil:
		variant = p.Image
	case p.Map != nil:
		variant = p.Map.Body
	case p.Charts != nil:
		variant = p.Charts
	}
	return mergeNodes(p.PanelFields, variant)
}
