package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"iterati/pkg/driver"
)

func main() {
	var (
		dirPath = flag.String("path", "", "Directory to scan for fixture files")
		pattern = flag.String("pattern", "*.yaml", "File pattern within -path")
		jobs    = flag.Int("jobs", runtime.NumCPU(), "Max scenarios in flight per file")
		verbose = flag.Bool("verbose", false, "Print passing scenarios too")
	)
	flag.Parse()

	files := flag.Args()
	if *dirPath != "" {
		matches, err := filepath.Glob(filepath.Join(*dirPath, *pattern))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: bad pattern %q: %v\n", *pattern, err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-path dir] [fixture.yaml ...]\n", os.Args[0])
		os.Exit(1)
	}

	start := time.Now()
	total := 0
	failed := 0
	for _, path := range files {
		results, err := driver.RunFile(context.Background(), path, *jobs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, result := range results {
			total++
			if result.Err != nil {
				failed++
				fmt.Printf("FAIL %s: %s\n     %v\n", path, result.Scenario, result.Err)
			} else if *verbose {
				fmt.Printf("PASS %s: %s\n", path, result.Scenario)
			}
		}
	}

	fmt.Printf("\n%d/%d scenarios passed in %v\n", total-failed, total, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		os.Exit(1)
	}
}
