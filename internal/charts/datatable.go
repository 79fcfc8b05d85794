package charts

import (
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/report"
)

// Datatable compiles a table. Rows come first, then split-by columns,
// then metrics.
func Datatable(src source, layerID string, c *config.DatatableChart) (*kbn.DatatableVisualization, error) {
	if len(c.Metrics) == 0 && len(c.Rows) == 0 {
		return nil, report.Configf("metrics", "a table needs at least one metric or row")
	}
	refs, err := metrics(src, "metrics", c.Metrics)
	if err != nil {
		return nil, err
	}
	rows, err := dimensions(src, "rows", c.Rows, refs)
	if err != nil {
		return nil, err
	}
	splits, err := dimensions(src, "split_by", c.SplitBy, refs)
	if err != nil {
		return nil, err
	}

	vis := &kbn.DatatableVisualization{
		LayerID:              layerID,
		LayerType:            kbn.LayerTypeData,
		Columns:              []kbn.DatatableColumn{},
		RowHeight:            omitDefault(c.Appearance.RowHeight, "auto"),
		RowHeightLines:       c.Appearance.RowHeightLines,
		HeaderRowHeight:      omitDefault(c.Appearance.HeaderRowHeight, "auto"),
		HeaderRowHeightLines: c.Appearance.HeaderRowHeightLines,
		Density:              omitDefault(c.Appearance.Density, "normal"),
	}
	index := map[string]int{}
	add := func(col kbn.DatatableColumn) {
		index[col.ColumnID] = len(vis.Columns)
		vis.Columns = append(vis.Columns, col)
	}
	for _, id := range rows {
		add(kbn.DatatableColumn{ColumnID: id})
	}
	for _, id := range splits {
		add(kbn.DatatableColumn{ColumnID: id, IsTransposed: true})
	}
	for _, id := range accessors(refs) {
		add(kbn.DatatableColumn{ColumnID: id, IsMetric: true})
	}

	for i, o := range c.Columns {
		at, ok := index[o.ColumnID]
		if !ok {
			return nil, report.Configf(indexed("columns", i)+".column_id", "no column with id %q in this chart", o.ColumnID)
		}
		col := &vis.Columns[at]
		col.Width = o.Width
		col.Hidden = defaults.IsTrue(o.Hidden)
		col.Alignment = o.Alignment
		col.ColorMode = o.ColorMode
		col.SummaryRow = o.SummaryRow
		col.SummaryLabel = o.SummaryLabel
	}

	if s := c.Sorting; s != nil {
		if _, ok := index[s.ColumnID]; !ok {
			return nil, report.Configf("sorting.column_id", "no column with id %q in this chart", s.ColumnID)
		}
		dir := defaults.String(&s.Direction, "asc")
		if dir != "asc" && dir != "desc" {
			return nil, report.Configf("sorting.direction", "must be asc or desc, got %q", dir)
		}
		vis.Sorting = &kbn.Sorting{ColumnID: s.ColumnID, Direction: dir}
	}
	if p := c.Paging; p != nil {
		size := p.Size
		if size <= 0 {
			size = 10
		}
		vis.Paging = &kbn.Paging{Size: size, Enabled: defaults.Or(p.Enabled, true)}
	}
	return vis, nil
}

// omitDefault returns "" when v is the platform default, so the field is
// left out.
func omitDefault(v, def string) string {
	if v == def {
		return ""
	}
	return v
}
