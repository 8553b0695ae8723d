package workload

import (
	"time"

	"chainBench/internal/sysstat"
)

// PatternReport carries either a pattern's result or its failure.
type PatternReport[T any] struct {
	Result    *T             `json:"result,omitempty"`
	Error     *PatternError  `json:"error,omitempty"`
	Resources *sysstat.Usage `json:"resources,omitempty"`
}

// Failed reports whether the pattern ran and failed.
func (p *PatternReport[T]) Failed() bool {
	return p != nil && p.Error != nil
}

// Report is the outcome of a whole run. Patterns that were not selected are nil.
type Report struct {
	RunID      string    `json:"run_id"`
	Driver     string    `json:"driver"`
	Protocol   string    `json:"protocol"`
	Seed       uint64    `json:"seed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Bulk   *PatternReport[BulkResult]     `json:"bulk,omitempty"`
	Single *PatternReport[WorkloadResult] `json:"single,omitempty"`
	Mixed  *PatternReport[WorkloadResult] `json:"mixed,omitempty"`
	Range  *PatternReport[[]RangeResult]  `json:"range,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// Errors returns the recorded pattern failures in execution order.
func (r *Report) Errors() []*PatternError {
	var errs []*PatternError
	if r.Bulk.Failed() {
		errs = append(errs, r.Bulk.Error)
	}
	if r.Single.Failed() {
		errs = append(errs, r.Single.Error)
	}
	if r.Mixed.Failed() {
		errs = append(errs, r.Mixed.Error)
	}
	if r.Range.Failed() {
		errs = append(errs, r.Range.Error)
	}
	return errs
}

// BulkRate, SingleRate and MixedRate are 0 for patterns that failed or were skipped.
func (r *Report) BulkRate() float64 {
	if r.Bulk == nil || r.Bulk.Result == nil {
		return 0
	}
	return r.Bulk.Result.Rate
}

func (r *Report) SingleRate() float64 {
	if r.Single == nil || r.Single.Result == nil {
		return 0
	}
	return r.Single.Result.Rate
}

func (r *Report) MixedRate() float64 {
	if r.Mixed == nil || r.Mixed.Result == nil {
		return 0
	}
	return r.Mixed.Result.Rate
}

// RangeLatencies returns the scan latencies in window order.
func (r *Report) RangeLatencies() []time.Duration {
	if r.Range == nil || r.Range.Result == nil {
		return nil
	}
	out := make([]time.Duration, len(*r.Range.Result))
	for i, res := range *r.Range.Result {
		out[i] = res.Latency
	}
	return out
}
