package semantic

import (
	"fmt"
	"strings"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/report"
)

// CheckWarnings detects authoring mistakes that still compile. All findings
// have Severity=SeverityWarning.
func CheckWarnings(d *config.Dashboard) []report.Finding {
	var findings []report.Finding

	findings = checkNoPanels(findings, d)
	findings = checkEmptyMarkdown(findings, d)
	findings = checkHiddenMissingTitle(findings, d)
	findings = checkUnusedControlDataView(findings, d)

	return findings
}

// WARN-NO-PANELS: a dashboard without panels imports as an empty page.
func checkNoPanels(findings []report.Finding, d *config.Dashboard) []report.Finding {
	if len(d.Panels) == 0 {
		findings = append(findings, report.NewWarning("WARN-NO-PANELS",
			fmt.Sprintf("dashboard %q has no panels", d.Name), report.Location{Path: "panels"}))
	}
	return findings
}

// WARN-EMPTY-MARKDOWN: markdown panel with blank content.
func checkEmptyMarkdown(findings []report.Finding, d *config.Dashboard) []report.Finding {
	for i, p := range d.Panels {
		if p.Markdown != nil && strings.TrimSpace(p.Markdown.Content) == "" {
			findings = append(findings, report.NewWarning("WARN-EMPTY-MARKDOWN",
				"markdown panel has no content", report.Location{Path: panelPath(i) + ".content"}))
		}
	}
	return findings
}

// WARN-HIDE-UNTITLED: hide_title on a panel that has no title.
func checkHiddenMissingTitle(findings []report.Finding, d *config.Dashboard) []report.Finding {
	for i, p := range d.Panels {
		if defaults.IsTrue(p.HideTitle) && p.Title == "" {
			findings = append(findings, report.NewWarning("WARN-HIDE-UNTITLED",
				"hide_title is set but the panel has no title", report.Location{Path: panelPath(i) + ".hide_title"}))
		}
	}
	return findings
}

// WARN-CONTROL-DATA-VIEW: a field control filters a data view no chart
// reads from.
func checkUnusedControlDataView(findings []report.Finding, d *config.Dashboard) []report.Finding {
	used := map[string]bool{}
	for _, p := range d.Panels {
		if p.Charts == nil {
			continue
		}
		for _, c := range chartsOf(p.Charts) {
			if c.DataView != "" {
				used[c.DataView] = true
			}
		}
	}
	if len(used) == 0 {
		return findings
	}
	for i, c := range d.Controls {
		if c.DataView == "" || used[c.DataView] {
			continue
		}
		findings = append(findings, report.NewWarning("WARN-CONTROL-DATA-VIEW",
			fmt.Sprintf("control reads data view %q which no chart uses", c.DataView),
			report.Location{Path: fmt.Sprintf("controls[%d].data_view", i)}))
	}
	return findings
}

func chartsOf(p *config.ChartsPanel) []*config.Chart {
	var out []*config.Chart
	if p.Chart != nil {
		out = append(out, p.Chart)
	}
	for i := range p.Layers {
		out = append(out, &p.Layers[i])
	}
	return out
}
