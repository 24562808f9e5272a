package util

import (
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Progress counts finished work items and runs a report callback at most once
// per interval, plus once for the first item.
type Progress struct {
	total int64
	done  atomic.Int64
	every rate.Sometimes
}

func NewProgress(total int, interval time.Duration) *Progress {
	return &Progress{
		total: int64(total),
		every: rate.Sometimes{First: 1, Interval: interval},
	}
}

// Step records one finished item and maybe calls report with the counts so far.
func (p *Progress) Step(report func(done, total int64)) {
	n := p.done.Add(1)
	p.every.Do(func() { report(n, p.total) })
}

// Done returns the number of finished items.
func (p *Progress) Done() int64 {
	return p.done.Load()
}

// HeapAllocMB returns the current heap allocation in MB.
func HeapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc / 1024 / 1024
}
