// Package sysstat samples the resource usage of the benchmark process.
package sysstat

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Usage is the resource consumption of the process over one interval.
type Usage struct {
	Wall       time.Duration `json:"wall"`
	CPUTime    time.Duration `json:"cpu_time"`
	CPUPercent float64       `json:"cpu_percent"`
	RSSBytes   uint64        `json:"rss_bytes"`
	ReadBytes  uint64        `json:"read_bytes"`
	WriteBytes uint64        `json:"write_bytes"`
}

// Sampler reads counters of the current process.
type Sampler struct {
	proc *process.Process
}

func NewSampler() (*Sampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open process: %w", err)
	}
	return &Sampler{proc: proc}, nil
}

type snapshot struct {
	at    time.Time
	cpu   float64
	read  uint64
	write uint64
}

func (s *Sampler) snapshot() snapshot {
	snap := snapshot{at: time.Now()}
	if times, err := s.proc.Times(); err == nil {
		snap.cpu = times.User + times.System
	}
	// IO counters are unavailable on some platforms; deltas stay zero there.
	if io, err := s.proc.IOCounters(); err == nil {
		snap.read = io.ReadBytes
		snap.write = io.WriteBytes
	}
	return snap
}

// Span is an interval being measured.
type Span struct {
	sampler *Sampler
	start   snapshot
}

// Start begins measuring an interval.
func (s *Sampler) Start() *Span {
	return &Span{sampler: s, start: s.snapshot()}
}

// Stop ends the interval and returns the usage accumulated since Start. RSS
// is the resident size at Stop.
func (sp *Span) Stop() Usage {
	end := sp.sampler.snapshot()
	usage := Usage{
		Wall:       end.at.Sub(sp.start.at),
		CPUTime:    time.Duration((end.cpu - sp.start.cpu) * float64(time.Second)),
		ReadBytes:  delta(end.read, sp.start.read),
		WriteBytes: delta(end.write, sp.start.write),
	}
	if usage.Wall > 0 {
		usage.CPUPercent = usage.CPUTime.Seconds() / usage.Wall.Seconds() * 100
	}
	if mem, err := sp.sampler.proc.MemoryInfo(); err == nil {
		usage.RSSBytes = mem.RSS
	}
	return usage
}

func delta(end, start uint64) uint64 {
	if end < start {
		return 0
	}
	return end - start
}
