// Package panels compiles authored panels into panel envelopes and their
// panel-scoped references.
package panels

import (
	"github.com/samber/lo"

	"github.com/foundry-zero/kbdash/internal/charts"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/ids"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/report"
)

// Options carries the dashboard-wide settings panels inherit.
type Options struct {
	SyncColors   bool
	SyncCursor   bool
	SyncTooltips bool
}

// Result is one compiled panel.
type Result struct {
	Panel kbn.Panel
	// References are namespaced with the panel index.
	References []kbn.Reference
	// ESQL is set when the panel reads from an ES|QL query.
	ESQL bool
}

// Index returns the panel index of p: the author id, else a hash of its
// type, title and grid.
func Index(p config.Panel) string {
	if p.ID != "" {
		return p.ID
	}
	return ids.Stable(p.Type, p.Title, p.Grid.String())
}

// Namespace prefixes every reference name with "{panelIndex}:".
func Namespace(panelIndex string, refs []kbn.Reference) []kbn.Reference {
	return lo.Map(refs, func(r kbn.Reference, _ int) kbn.Reference {
		r.Name = panelIndex + ":" + r.Name
		return r
	})
}

// Compile compiles p.
func Compile(p config.Panel, opts Options) (*Result, error) {
	kind, err := p.Validate()
	if err != nil {
		return nil, err
	}
	index := Index(p)
	base := kbn.EmbeddableBase{
		Title:           p.Title,
		Description:     p.Description,
		HidePanelTitles: defaults.IsTrue(p.HideTitle),
		Enhancements:    map[string]any{},
	}
	out := &Result{Panel: kbn.Panel{
		PanelIndex: index,
		GridData:   kbn.GridData{X: p.Grid.X, Y: p.Grid.Y, W: p.Grid.W, H: p.Grid.H, I: index},
	}}

	var refs []kbn.Reference
	switch kind {
	case config.PanelMarkdown:
		out.Panel.Type = "visualization"
		out.Panel.EmbeddableConfig = markdown(base, p)
	case config.PanelSearch:
		name := "panel_" + index
		out.Panel.Type = "search"
		out.Panel.PanelRefName = name
		out.Panel.EmbeddableConfig = kbn.SearchEmbeddable{EmbeddableBase: base}
		refs = []kbn.Reference{{Type: "search", ID: p.Search.SavedSearchID, Name: name}}
	case config.PanelLinks:
		out.Panel.Type = "links"
		out.Panel.EmbeddableConfig, refs = links(base, p.Links)
	case config.PanelImage:
		out.Panel.Type = "image"
		out.Panel.EmbeddableConfig = image(base, p.Image)
	case config.PanelMap:
		return nil, report.Unsupportedf("type", "map panels are not supported")
	case config.PanelLens, config.PanelMultiLayer, config.PanelESQL:
		res, err := chart(kind, p.Charts)
		if err != nil {
			return nil, err
		}
		out.Panel.Type = "lens"
		out.Panel.EmbeddableConfig = kbn.LensEmbeddable{
			EmbeddableBase: base,
			Attributes: kbn.LensAttributes{
				Title:             p.Title,
				Description:       p.Description,
				VisualizationType: res.VisualizationType,
				Type:              "lens",
				References:        res.References(),
				State:             res.State(),
			},
			SyncColors:   opts.SyncColors,
			SyncCursor:   opts.SyncCursor,
			SyncTooltips: opts.SyncTooltips,
		}
		refs = res.References()
		out.ESQL = res.ESQL()
	default:
		return nil, report.Unsupportedf("type", "panel kind %q", kind)
	}
	out.References = Namespace(index, refs)
	return out, nil
}

func chart(kind config.PanelKind, c *config.ChartsPanel) (*charts.Result, error) {
	switch kind {
	case config.PanelLens:
		res, err := charts.Lens(c.Chart)
		return res, report.AtPath("chart", err)
	case config.PanelESQL:
		res, err := charts.ESQL(c.ESQL)
		return res, report.AtPath("esql", err)
	}
	res, err := charts.MultiLayer(c.Layers)
	return res, report.AtPath("layers", err)
}

func markdown(base kbn.EmbeddableBase, p config.Panel) kbn.MarkdownEmbeddable {
	return kbn.MarkdownEmbeddable{
		EmbeddableBase: base,
		SavedVis: kbn.SavedVis{
			ID:          "",
			Title:       p.Title,
			Description: p.Description,
			Type:        "markdown",
			Params: kbn.MarkdownParams{
				FontSize:          defaults.Value(p.Markdown.FontSize, 12),
				OpenLinksInNewTab: defaults.Or(p.Markdown.LinksInNewTab, true),
				Markdown:          p.Markdown.Content,
			},
			UIState: map[string]any{},
			Data: kbn.SavedVisData{
				Aggs: []any{},
				SearchSource: kbn.SearchSource{
					Filter: []kbn.Filter{},
					Query:  kbn.Query{Query: "", Language: "kuery"},
				},
			},
		},
	}
}

func links(base kbn.EmbeddableBase, l *config.LinksPanel) (kbn.LinksEmbeddable, []kbn.Reference) {
	out := kbn.LinksEmbeddable{
		EmbeddableBase: base,
		Attributes: kbn.LinksAttributes{
			Layout: defaults.String(&l.Layout, "horizontal"),
			Links:  make([]kbn.Link, 0, len(l.Items)),
		},
	}
	var refs []kbn.Reference
	for i, item := range l.Items {
		id := item.ID
		if id == "" {
			id = ids.Random()
		}
		link := kbn.Link{
			ID:    id,
			Order: i,
			Label: item.Label,
			Options: kbn.LinkOptions{
				OpenInNewTab: defaults.IsTrue(item.NewTab),
			},
		}
		if item.Dashboard != "" {
			name := "link_" + id + "_dashboard"
			link.Type = "dashboardLink"
			link.DestinationRefName = name
			link.Options.UseCurrentFilters = defaults.Bool(defaults.Or(item.WithFilters, true))
			link.Options.UseCurrentDateRange = defaults.Bool(defaults.Or(item.WithTime, true))
			refs = append(refs, kbn.Reference{Type: "dashboard", ID: item.Dashboard, Name: name})
		} else {
			link.Type = "externalLink"
			link.Destination = item.URL
			link.Options.EncodeURL = defaults.Bool(defaults.Or(item.Encode, true))
		}
		out.Attributes.Links = append(out.Attributes.Links, link)
	}
	return out, refs
}

func image(base kbn.EmbeddableBase, img *config.ImagePanel) kbn.ImageEmbeddable {
	return kbn.ImageEmbeddable{
		EmbeddableBase: base,
		ImageConfig: kbn.ImageConfig{
			Src:             kbn.ImageSrc{Type: "url", URL: img.FromURL},
			AltText:         img.AltText,
			Sizing:          kbn.ImageSizing{ObjectFit: defaults.String(&img.Fit, "contain")},
			BackgroundColor: img.BackgroundColor,
		},
	}
}
