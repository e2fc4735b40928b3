package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"beehive/backend/internal/journal"
)

// handleHiveChart renders the grid as a scatter colored by cell state, plus
// the revealed-cell growth curve when a journal is attached.
func (s *Server) handleHiveChart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.hive.Snapshot()
	var (
		growth []journal.GrowthPoint
		err    error
	)
	if s.journal != nil {
		growth, err = s.journal.GrowthSeries(EventCellRevealed)
	}
	s.mu.Unlock()
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read journal: %v", err), http.StatusInternalServerError)
		return
	}

	data := make([]opts.ScatterData, 0, len(snap.Cells))
	for _, c := range snap.Cells {
		data = append(data, opts.ScatterData{Value: []interface{}{c.X, c.Y, int(c.State)}})
	}
	pad := float64(max(snap.Rows, snap.Columns))*snap.CellSize*0.5 + snap.CellSize

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Hive", Theme: "dark", Width: "720px", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: "Hive cells", Subtitle: fmt.Sprintf("stage=%d revealed=%d open=%d", snap.Stage, snap.Revealed, len(snap.Open))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(false),
			Min:        0,
			Max:        3,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#303030", "#c8a24a", "#ffd700", "#8b4513"}},
		}),
	)
	scatter.AddSeries("cells", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 18}))

	page := components.NewPage()
	page.AddCharts(scatter)

	if len(growth) > 0 {
		ticks := make([]int64, len(growth))
		counts := make([]opts.LineData, len(growth))
		for i, g := range growth {
			ticks[i] = g.Tick
			counts[i] = opts.LineData{Value: g.Revealed}
		}
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "720px", Height: "360px"}),
			charts.WithTitleOpts(opts.Title{Title: "Hive growth"}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Name: "tick"}),
		)
		line.SetXAxis(ticks).AddSeries("revealed", counts)
		page.AddCharts(line)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
