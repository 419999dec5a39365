// File: cmd/loadgen/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/alanaman/KvServerLoadTest/internal/config"
	"github.com/alanaman/KvServerLoadTest/internal/loadgen"
)

// usage documents `<program> <host> <port> <threads> <duration_sec>
// <workload_type> [seed]`, plus this repository's -prepare addition,
// which may appear in any position among the trailing arguments.
const usage = "usage: %s <host> <port> <threads> <duration_sec> <workload_type> [seed] [-prepare]\n" +
	"workload_type: put_all | get_all | get_popular | mixed\n"

func main() {
	_ = godotenv.Load()

	cfg, resultsPath, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		log.Fatalf("[LOADGEN] %v", err)
	}

	fmt.Printf("Starting load test...\n")
	fmt.Printf("  Target:   http://%s:%d\n", cfg.Host, cfg.Port)
	fmt.Printf("  Threads:  %d\n", cfg.Threads)
	fmt.Printf("  Duration: %s\n", cfg.Duration)
	fmt.Printf("  Workload: %s\n", cfg.Workload.Name())
	fmt.Printf("  Seed:     %d (0 = non-deterministic)\n", cfg.Seed)
	fmt.Printf("  Prepare:  %v\n\n", cfg.Prepare)

	result, latencies, err := loadgen.Run(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[LOADGEN] run failed: %v", err)
	}

	loadgen.PrintReport(result, latencies)

	if err := loadgen.AppendResult(resultsPath, result); err != nil {
		log.Printf("[LOADGEN] failed to write %s: %v", resultsPath, err)
	} else {
		log.Printf("[LOADGEN] appended result to %s", resultsPath)
	}
}

func parseArgs(args []string) (loadgen.Config, string, error) {
	var cfg loadgen.Config
	resultsPath := config.Getenv("RESULTS_PATH", "results.json")

	positional := make([]string, 0, len(args))
	for _, a := range args {
		if a == "-prepare" {
			cfg.Prepare = true
			continue
		}
		positional = append(positional, a)
	}

	if len(positional) != 5 && len(positional) != 6 {
		return cfg, resultsPath, fmt.Errorf("expected 5 or 6 positional arguments, got %d", len(positional))
	}

	cfg.Host = positional[0]

	port, err := strconv.Atoi(positional[1])
	if err != nil {
		return cfg, resultsPath, fmt.Errorf("invalid port %q: %w", positional[1], err)
	}
	cfg.Port = port

	threads, err := strconv.Atoi(positional[2])
	if err != nil {
		return cfg, resultsPath, fmt.Errorf("invalid thread count %q: %w", positional[2], err)
	}
	cfg.Threads = threads

	durationSec, err := strconv.Atoi(positional[3])
	if err != nil {
		return cfg, resultsPath, fmt.Errorf("invalid duration %q: %w", positional[3], err)
	}
	cfg.Duration = time.Duration(durationSec) * time.Second

	workload, err := loadgen.New(positional[4])
	if err != nil {
		return cfg, resultsPath, err
	}
	cfg.Workload = workload

	if len(positional) == 6 {
		seed, err := strconv.ParseInt(positional[5], 10, 64)
		if err != nil {
			return cfg, resultsPath, fmt.Errorf("invalid seed %q: %w", positional[5], err)
		}
		cfg.Seed = seed
	}

	return cfg, resultsPath, nil
}
