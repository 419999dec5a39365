// File: internal/loadgen/result.go
package loadgen

import (
	"math"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// Result is one completed run's summary row, shaped to match the
// fixed schema the original client wrote to results.json: threads,
// workload_type, duration_sec, requests, errors, throughput,
// avg_response_ms, avg_cpu_percent, avg_disk_util, avg_disk_write_kbps.
// Percentile latencies are reported to the console only (see report.go)
// and intentionally never added to this struct.
type Result struct {
	Threads          int     `json:"threads"`
	WorkloadType     string  `json:"workload_type"`
	DurationSec      float64 `json:"duration_sec"`
	Requests         int64   `json:"requests"`
	Errors           int64   `json:"errors"`
	Throughput       float64 `json:"throughput"`
	AvgResponseMs    float64 `json:"avg_response_ms"`
	AvgCPUPercent    float64 `json:"avg_cpu_percent"`
	AvgDiskUtil      float64 `json:"avg_disk_util"`
	AvgDiskWriteKBps float64 `json:"avg_disk_write_kbps"`
}

// AppendResult appends r as one more element of the JSON array stored
// at path, creating the file if absent. Float fields are rounded to two
// decimal places before encoding. It ports the byte-surgery
// approach of the original client's append_result_to_file rather than
// decoding and re-encoding the whole array: read the existing bytes,
// trim trailing whitespace, and splice the new object in just before
// the final ']'. Any file that is missing, empty, or doesn't start
// with '[' after trimming leading whitespace is treated as absent and
// overwritten with a fresh single-element array.
func AppendResult(path string, r Result) error {
	round2 := func(f float64) float64 { return math.Round(f*100) / 100 }
	r.DurationSec, r.Throughput, r.AvgResponseMs = round2(r.DurationSec), round2(r.Throughput), round2(r.AvgResponseMs)
	r.AvgCPUPercent, r.AvgDiskUtil, r.AvgDiskWriteKBps = round2(r.AvgCPUPercent), round2(r.AvgDiskUtil), round2(r.AvgDiskWriteKBps)

	obj, err := json.Marshal(r)
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		return os.WriteFile(path, freshArray(obj), 0o644)
	}

	content := strings.TrimRight(string(existing), " \t\r\n")
	if content == "" {
		return os.WriteFile(path, freshArray(obj), 0o644)
	}

	firstNonWS := strings.TrimLeft(content, " \t\r\n")
	if firstNonWS == "" || firstNonWS[0] != '[' {
		return os.WriteFile(path, freshArray(obj), 0o644)
	}

	lastBracket := strings.LastIndexByte(content, ']')
	if lastBracket == -1 {
		return os.WriteFile(path, freshArray(obj), 0o644)
	}

	inner := strings.TrimSpace(content[strings.IndexByte(content, '[')+1 : lastBracket])

	var out strings.Builder
	if inner == "" {
		out.WriteByte('[')
		out.Write(obj)
		out.WriteString("]\n")
	} else {
		out.WriteString(content[:lastBracket])
		out.WriteString(",\n")
		out.Write(obj)
		out.WriteString("]\n")
	}
	return os.WriteFile(path, []byte(out.String()), 0o644)
}

func freshArray(obj []byte) []byte {
	var b strings.Builder
	b.WriteByte('[')
	b.Write(obj)
	b.WriteString("]\n")
	return []byte(b.String())
}
