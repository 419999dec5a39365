// File: internal/loadgen/sampler.go
package loadgen

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
)

// hostSampler runs as its own goroutine alongside the worker pool,
// taking one host-metric sample per second for the lifetime of a run
// and folding it into a running average.
type hostSampler struct {
	cpuSum      float64
	diskUtilSum float64
	diskWriteKB float64
	samples     int

	prevWrite      uint64
	haveIOBaseline bool
	prevIoTime     map[string]uint64
}

// run samples once per second until ctx is done, then returns and
// closes done. It is meant to be started in its own goroutine and
// stopped by canceling ctx once the timed portion of the test ends;
// the caller must wait on done before reading averages(), since the
// sampler's fields are unsynchronized and only safe to read once this
// goroutine has actually returned.
func (s *hostSampler) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sampleOnce()
		}
	}
}

func (s *hostSampler) sampleOnce() {
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		s.cpuSum += pcts[0]
	}

	counters, err := disk.IOCounters()
	if err != nil {
		s.samples++
		return
	}

	var writeTotal uint64
	var busyMax float64
	if s.prevIoTime == nil {
		s.prevIoTime = make(map[string]uint64)
	}
	for name, c := range counters {
		if isExcludedDevice(name) {
			continue
		}
		writeTotal += c.WriteBytes
		// IoTime is cumulative milliseconds spent on I/O; approximate
		// utilization as the fraction of the last second spent busy.
		prev, seen := s.prevIoTime[name]
		s.prevIoTime[name] = c.IoTime
		if seen && c.IoTime >= prev {
			if busy := float64(c.IoTime-prev) / 1000.0 * 100.0; busy > busyMax {
				busyMax = busy
			}
		}
	}

	if s.haveIOBaseline {
		deltaWrite := writeTotal - s.prevWrite
		s.diskWriteKB += float64(deltaWrite) / 1024.0
	}
	s.prevWrite = writeTotal
	s.haveIOBaseline = true
	s.diskUtilSum += busyMax

	s.samples++
}

func isExcludedDevice(name string) bool {
	return strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram")
}

func (s *hostSampler) averages() (cpuPercent, diskUtil, diskWriteKBps float64) {
	if s.samples == 0 {
		return 0, 0, 0
	}
	return s.cpuSum / float64(s.samples), s.diskUtilSum / float64(s.samples), s.diskWriteKB / float64(s.samples)
}
