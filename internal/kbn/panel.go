package kbn

// Panel is one entry of attributes.panelsJSON.
type Panel struct {
	PanelIndex       string           `json:"panelIndex"`
	GridData         GridData         `json:"gridData"`
	Type             string           `json:"type"`
	PanelRefName     string           `json:"panelRefName,omitempty"`
	EmbeddableConfig EmbeddableConfig `json:"embeddableConfig"`
}

type GridData struct {
	X int    `json:"x"`
	Y int    `json:"y"`
	W int    `json:"w"`
	H int    `json:"h"`
	I string `json:"i"`
}

// EmbeddableConfig is implemented by every panel kind's embeddable block.
type EmbeddableConfig interface {
	embeddable()
}

// EmbeddableBase holds the fields shared by every embeddable block.
type EmbeddableBase struct {
	Title           string         `json:"title,omitempty"`
	Description     string         `json:"description,omitempty"`
	HidePanelTitles bool           `json:"hidePanelTitles,omitempty"`
	Enhancements    map[string]any `json:"enhancements"`
}

func (EmbeddableBase) embeddable() {}

type MarkdownEmbeddable struct {
	EmbeddableBase
	SavedVis SavedVis `json:"savedVis"`
}

// SavedVis is a by-value legacy visualization, used for markdown panels.
type SavedVis struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Params      MarkdownParams `json:"params"`
	UIState     map[string]any `json:"uiState"`
	Data        SavedVisData   `json:"data"`
}

type MarkdownParams struct {
	FontSize          int    `json:"fontSize"`
	OpenLinksInNewTab bool   `json:"openLinksInNewTab"`
	Markdown          string `json:"markdown"`
}

type SavedVisData struct {
	Aggs         []any        `json:"aggs"`
	SearchSource SearchSource `json:"searchSource"`
}

type SearchEmbeddable struct {
	EmbeddableBase
}

type LinksEmbeddable struct {
	EmbeddableBase
	Attributes LinksAttributes `json:"attributes"`
}

type LinksAttributes struct {
	Layout string `json:"layout"`
	Links  []Link `json:"links"`
}

// Link is a dashboard link or an external URL link.
type Link struct {
	ID                 string      `json:"id"`
	Type               string      `json:"type"`
	Order              int         `json:"order"`
	Label              string      `json:"label,omitempty"`
	DestinationRefName string      `json:"destinationRefName,omitempty"`
	Destination        string      `json:"destination,omitempty"`
	Options            LinkOptions `json:"options"`
}

type LinkOptions struct {
	OpenInNewTab        bool  `json:"openInNewTab"`
	UseCurrentFilters   *bool `json:"useCurrentFilters,omitempty"`
	UseCurrentDateRange *bool `json:"useCurrentDateRange,omitempty"`
	EncodeURL           *bool `json:"encodeUrl,omitempty"`
}

type ImageEmbeddable struct {
	EmbeddableBase
	ImageConfig ImageConfig `json:"imageConfig"`
}

type ImageConfig struct {
	Src             ImageSrc    `json:"src"`
	AltText         string      `json:"altText,omitempty"`
	Sizing          ImageSizing `json:"sizing"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
}

type ImageSrc struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type ImageSizing struct {
	ObjectFit string `json:"objectFit"`
}

// LensEmbeddable is a by-value Lens visualization.
type LensEmbeddable struct {
	EmbeddableBase
	Attributes   LensAttributes `json:"attributes"`
	SyncColors   bool           `json:"syncColors"`
	SyncCursor   bool           `json:"syncCursor"`
	SyncTooltips bool           `json:"syncTooltips"`
}
