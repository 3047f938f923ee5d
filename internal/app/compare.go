package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"volsim/internal/model"
)

// RenderComparison prints a side-by-side metric table for any number of
// runs. The first run is the baseline; later columns carry a percentage
// difference against it where that is meaningful.
func RenderComparison(w io.Writer, reports []model.RunReport) {
	if len(reports) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprint(tw, "METRIC")
	for _, r := range reports {
		fmt.Fprintf(tw, "\t%s", r.Name)
	}
	fmt.Fprintln(tw)

	type row struct {
		label string
		pick  func(model.RunMetrics) float64
		fmt   string
	}
	rows := []row{
		{"total_pnl", func(m model.RunMetrics) float64 { return m.TotalPnL }, "%.4f"},
		{"mean_pnl_per_bar", func(m model.RunMetrics) float64 { return m.MeanPnLPerBar }, "%.6f"},
		{"std_pnl_per_bar", func(m model.RunMetrics) float64 { return m.StdPnLPerBar }, "%.6f"},
		{"sharpe_ratio", func(m model.RunMetrics) float64 { return m.SharpeRatio }, "%.4f"},
		{"inventory_variance", func(m model.RunMetrics) float64 { return m.InventoryVariance }, "%.4f"},
		{"max_abs_inventory", func(m model.RunMetrics) float64 { return float64(m.MaxAbsInventory) }, "%.0f"},
		{"n_trades", func(m model.RunMetrics) float64 { return float64(m.TradeCount) }, "%.0f"},
	}

	base := reports[0].Metrics
	for _, r := range rows {
		fmt.Fprint(tw, r.label)
		baseVal := r.pick(base)
		for i, report := range reports {
			v := r.pick(report.Metrics)
			cell := fmt.Sprintf(r.fmt, v)
			if i > 0 && baseVal != 0 {
				diff := (v - baseVal) / abs(baseVal) * 100
				cell += fmt.Sprintf(" (%+.1f%%)", diff)
			}
			fmt.Fprintf(tw, "\t%s", cell)
		}
		fmt.Fprintln(tw)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
