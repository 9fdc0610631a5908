package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/trevorKirkby/network-routing-simulation/internal/metrics"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

// errUnsupportedFormat is returned when --format names neither table nor
// json.
var errUnsupportedFormat = errors.New("unsupported output format")

// reportView is the JSON projection of a single algorithm's report.
type reportView struct {
	Algorithm      string  `json:"algorithm"`
	Ticks          int     `json:"ticks"`
	LossRate       float64 `json:"loss_rate"`
	DataLossRate   float64 `json:"data_loss_rate"`
	MeanLatency    float64 `json:"mean_latency"`
	TailLatency    float64 `json:"tail_latency"`
	MeanThroughput float64 `json:"mean_throughput"`
	Error          string  `json:"error,omitempty"`
}

func reportToView(algorithm string, ticks int, r metrics.Report) reportView {
	return reportView{
		Algorithm:      algorithm,
		Ticks:          ticks,
		LossRate:       r.LossRate,
		DataLossRate:   r.DataLossRate,
		MeanLatency:    r.MeanLatency,
		TailLatency:    r.TailLatency,
		MeanThroughput: r.MeanThroughput,
	}
}

// printReport renders a single run's report in the requested format.
func printReport(w io.Writer, algorithm string, ticks int, report metrics.Report, format string) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(reportToView(algorithm, ticks, report), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report to JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	case formatTable, "":
		fmt.Fprintf(w, "algorithm: %s (ticks: %d)\n", algorithm, ticks)
		report.Print(w)
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

// compareResult is one algorithm's outcome in a netsim compare run.
type compareResult struct {
	algorithm string
	ticks     int
	report    metrics.Report
	err       error
}

// printCompare renders every algorithm's result side by side.
func printCompare(w io.Writer, results []compareResult, format string) error {
	switch format {
	case formatJSON:
		return printCompareJSON(w, results)
	case formatTable, "":
		return printCompareTable(w, results)
	default:
		return fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func printCompareTable(w io.Writer, results []compareResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tTICKS\tLOSS\tDATA-LOSS\tMEAN-LATENCY\tMAX-LATENCY\tTHROUGHPUT")

	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(tw, "%s\t-\tERROR: %s\t\t\t\t\n", r.algorithm, r.err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%.2f\t%.2f\t%.2f\n",
			r.algorithm, r.ticks, r.report.LossRate, r.report.DataLossRate,
			r.report.MeanLatency, r.report.TailLatency, r.report.MeanThroughput)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush tabwriter: %w", err)
	}
	return nil
}

func printCompareJSON(w io.Writer, results []compareResult) error {
	views := make([]reportView, 0, len(results))
	for _, r := range results {
		v := reportToView(r.algorithm, r.ticks, r.report)
		if r.err != nil {
			v.Error = r.err.Error()
		}
		views = append(views, v)
	}

	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal comparison to JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
