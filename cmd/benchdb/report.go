package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"chainBench/internal/config"
	"chainBench/internal/sysstat"
	"chainBench/internal/workload"
)

func printReport(out io.Writer, report *workload.Report) {
	fmt.Fprintf(out, "\nrun %s  driver=%s protocol=%s seed=%d  %s\n\n",
		report.RunID, report.Driver, report.Protocol, report.Seed,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "pattern\tresult\tdetail\tresources")

	if r := report.Bulk; r != nil {
		if r.Failed() {
			fmt.Fprintf(w, "bulk\tFAILED\t%s\t%s\n", r.Error.Message, usage(r.Resources))
		} else {
			res := r.Result
			fmt.Fprintf(w, "bulk\t%s records/s\t%s records in %s batches (%s), %s\t%s\n",
				rate(res.Rate), humanize.Comma(res.Records), humanize.Comma(int64(res.Batches)),
				res.Strategy, res.Elapsed.Round(time.Millisecond), usage(r.Resources))
		}
	}
	printPass(w, "single", report.Single)
	printPass(w, "mixed", report.Mixed)

	if r := report.Range; r != nil {
		if r.Failed() {
			fmt.Fprintf(w, "range\tFAILED\t%s\t%s\n", r.Error.Message, usage(r.Resources))
		} else {
			for _, res := range *r.Result {
				fmt.Fprintf(w, "range %s\t%s\t%s rows\t%s\n",
					config.FormatWindow(res.Window), res.Latency.Round(time.Microsecond),
					humanize.Comma(int64(res.Rows)), usage(r.Resources))
			}
		}
	}
	w.Flush()

	if len(report.Warnings) > 0 {
		fmt.Fprintln(out, "\nwarnings:")
		for _, warning := range report.Warnings {
			fmt.Fprintf(out, "  %s\n", warning)
		}
	}
	fmt.Fprintln(out)
}

func printPass(w io.Writer, name string, r *workload.PatternReport[workload.WorkloadResult]) {
	if r == nil {
		return
	}
	if r.Failed() {
		fmt.Fprintf(w, "%s\tFAILED\t%s\t%s\n", name, r.Error.Message, usage(r.Resources))
		return
	}
	res := r.Result
	fmt.Fprintf(w, "%s\t%s steps/s\t%s ops (%s inserts, %s reads), p50 %s p99 %s\t%s\n",
		name, rate(res.Rate), humanize.Comma(int64(res.Ops)),
		humanize.Comma(int64(res.Inserts)), humanize.Comma(int64(res.Reads)),
		res.Latency.P50, res.Latency.P99, usage(r.Resources))
}

func rate(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func usage(u *sysstat.Usage) string {
	if u == nil {
		return "-"
	}
	return fmt.Sprintf("cpu %.0f%% rss %s io %s/%s",
		u.CPUPercent, humanize.IBytes(u.RSSBytes), humanize.IBytes(u.ReadBytes), humanize.IBytes(u.WriteBytes))
}
