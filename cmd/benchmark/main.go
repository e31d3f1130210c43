package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/mlorentedev/productai/internal/client"
	"github.com/mlorentedev/productai/internal/completion"
	"github.com/mlorentedev/productai/internal/prompt"
)

type result struct {
	Sample       string `json:"sample"`
	Type         string `json:"type"`
	Chars        int    `json:"chars"`
	Run          int    `json:"run"`
	FirstChunkMs int64  `json:"first_chunk_ms"`
	TotalMs      int64  `json:"total_ms"`
	Chunks       int    `json:"chunks"`
	OutChars     int    `json:"out_chars"`
	Error        string `json:"error,omitempty"`
}

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	headColor = color.New(color.FgCyan, color.Bold)
	dimColor  = color.New(color.Faint)
)

func main() {
	url := flag.String("url", "http://localhost:9000", "Backend base URL")
	apiKey := flag.String("api-key", "", "API key (optional)")
	path := flag.String("path", client.DefaultPath, "Completion endpoint path")
	runs := flag.Int("runs", 3, "Number of runs per sample")
	typ := flag.String("type", string(prompt.FixWriting), "Prompt type to benchmark, or \"all\"")
	quality := flag.Bool("quality", false, "Quality mode: show input/output for each sample (1 run, no timing table)")
	jsonOut := flag.String("json", "", "Write results to JSON file (e.g. results.json)")
	warmup := flag.Bool("warmup", false, "Run one warmup request per sample before measuring")
	timeout := flag.Duration("timeout", 3*time.Minute, "Per-request timeout")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	if *noColor {
		color.NoColor = true
	}

	types, err := selectTypes(*typ)
	if err != nil {
		failColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	c := client.New(*url, *apiKey)
	c.Path = *path

	model := describeModel(c)

	if *quality {
		runQualityMode(c, types, model, *timeout)
		return
	}

	headColor.Printf("Benchmarking %s%s using %s (%d runs per sample", strings.TrimRight(*url, "/"), c.Path, model, *runs)
	if *warmup {
		headColor.Print(", warmup enabled")
	}
	headColor.Println(")")

	var results []result
	var failures int
	for _, t := range types {
		for _, sample := range Samples {
			if *warmup {
				fmt.Printf("  Warming up %s/%s...", t, sample.Name)
				w := benchmark(c, t, sample, 0, *timeout)
				if w.Error != "" {
					failColor.Printf(" FAILED (%s)\n", w.Error)
				} else {
					dimColor.Printf(" %dms (discarded)\n", w.TotalMs)
				}
			}
			for run := 1; run <= *runs; run++ {
				fmt.Printf("  Running %s/%s (run %d/%d)...", t, sample.Name, run, *runs)
				r := benchmark(c, t, sample, run, *timeout)
				results = append(results, r)
				if r.Error != "" {
					failColor.Printf(" FAILED (%s)\n", r.Error)
					failures++
				} else {
					okColor.Printf(" %dms (first chunk %dms)\n", r.TotalMs, r.FirstChunkMs)
				}
			}
		}
	}

	fmt.Println()
	printTable(results)
	printSummary(results)

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, results, *url, model); err != nil {
			failColor.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
		} else {
			fmt.Printf("\nResults written to %s\n", *jsonOut)
		}
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func selectTypes(s string) ([]prompt.Type, error) {
	if s == "all" {
		return prompt.Types(), nil
	}
	t, err := prompt.Parse(s)
	if err != nil {
		return nil, err
	}
	return []prompt.Type{t}, nil
}

// describeModel names the first model the backend reports. The endpoint
// serves whichever adapter is active, so this is informational only.
func describeModel(c *client.Client) string {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	models, err := c.Models(ctx)
	if err != nil {
		failColor.Fprintf(os.Stderr, "Error fetching models: %v\n", err)
		os.Exit(1)
	}
	if len(models) == 0 {
		return "unknown model"
	}
	return models[0].Name
}

func benchmark(c *client.Client, t prompt.Type, sample Sample, run int, timeout time.Duration) result {
	r := result{Sample: sample.Name, Type: string(t), Chars: utf8.RuneCountInString(sample.Text), Run: run}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	out, first, chunks, err := stream(ctx, c, t, sample)
	r.TotalMs = time.Since(start).Milliseconds()
	if first > 0 {
		r.FirstChunkMs = first.Milliseconds()
	}
	r.Chunks = chunks
	r.OutChars = utf8.RuneCountInString(out)
	if err != nil {
		r.Error = shortError(err)
	}
	return r
}

// stream runs one completion and reports the text, the time to the first
// chunk and the chunk count.
func stream(ctx context.Context, c *client.Client, t prompt.Type, sample Sample) (string, time.Duration, int, error) {
	start := time.Now()
	s, err := c.Stream(ctx, completion.Request{
		Type:        string(t),
		Description: sample.Text,
		Keyword:     sample.Keyword,
		Messages:    []completion.Message{{Role: completion.RoleSystem, Content: prompt.SystemPrompt}},
	})
	if err != nil {
		return "", 0, 0, err
	}
	defer s.Close()

	var (
		b      strings.Builder
		first  time.Duration
		chunks int
	)
	for s.Next() {
		if chunks == 0 {
			first = time.Since(start)
		}
		chunks++
		b.WriteString(s.Chunk())
	}
	return b.String(), first, chunks, s.Err()
}

func shortError(err error) string {
	var se *client.StatusError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("HTTP %d: %s", se.Code, se.Message)
	case errors.Is(err, client.ErrTruncated):
		return "truncated"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return err.Error()
	}
}

func printTable(results []result) {
	fmt.Println("| Sample | Type | Chars | Run | First chunk (ms) | Total (ms) | Chunks | Out Chars | Ratio |")
	fmt.Println("|--------|------|-------|-----|------------------|------------|--------|-----------|-------|")
	for _, r := range results {
		if r.Error != "" {
			fmt.Printf("| %-6s | %-12s | %5d | %d | %16s | %10s | %6s | %9s | %5s |\n",
				r.Sample, r.Type, r.Chars, r.Run, failColor.Sprint("FAIL"), "-", "-", "-", "-")
			continue
		}
		ratio := float64(r.OutChars) / float64(r.Chars)
		fmt.Printf("| %-6s | %-12s | %5d | %d | %16d | %10d | %6d | %9d | %5.2f |\n",
			r.Sample, r.Type, r.Chars, r.Run, r.FirstChunkMs, r.TotalMs, r.Chunks, r.OutChars, ratio)
	}
}

func runQualityMode(c *client.Client, types []prompt.Type, model string, timeout time.Duration) {
	headColor.Printf("Quality test using %s\n", model)
	fmt.Println(strings.Repeat("=", 72))

	total := len(types) * len(QualitySamples)
	var failures, n int
	for _, t := range types {
		for _, sample := range QualitySamples {
			n++
			headColor.Printf("\n--- %d/%d: %s/%s (%d chars) ---\n", n, total, t, sample.Name, utf8.RuneCountInString(sample.Text))
			fmt.Printf("IN:  %s\n", sample.Text)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			start := time.Now()
			out, first, _, err := stream(ctx, c, t, sample)
			cancel()
			if err != nil {
				failColor.Printf("ERR: %s\n", shortError(err))
				failures++
				continue
			}

			okColor.Printf("OUT: %s\n", out)
			dimColor.Printf("     [first chunk %dms, total %dms, %d->%d chars]\n",
				first.Milliseconds(), time.Since(start).Milliseconds(),
				utf8.RuneCountInString(sample.Text), utf8.RuneCountInString(out))
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 72))
	fmt.Printf("Done: %d/%d passed\n", total-failures, total)
	if failures > 0 {
		os.Exit(1)
	}
}

func printSummary(results []result) {
	var ok []result
	for _, r := range results {
		if r.Error == "" {
			ok = append(ok, r)
		}
	}

	failed := len(results) - len(ok)

	if len(ok) == 0 {
		failColor.Printf("\nSummary: all %d runs failed\n", len(results))
		return
	}

	var totalMs, totalFirst int64
	var totalChars int
	minTotal, maxTotal := ok[0], ok[0]

	for _, r := range ok {
		totalMs += r.TotalMs
		totalFirst += r.FirstChunkMs
		totalChars += r.Chars
		if r.TotalMs < minTotal.TotalMs {
			minTotal = r
		}
		if r.TotalMs > maxTotal.TotalMs {
			maxTotal = r
		}
	}

	headColor.Printf("\nSummary:\n")
	fmt.Printf("- Avg first chunk: %dms\n", totalFirst/int64(len(ok)))
	fmt.Printf("- Avg ms/char: %.2f\n", float64(totalMs)/float64(totalChars))
	fmt.Printf("- Min total: %dms (%s/%s)\n", minTotal.TotalMs, minTotal.Type, minTotal.Sample)
	fmt.Printf("- Max total: %dms (%s/%s)\n", maxTotal.TotalMs, maxTotal.Type, maxTotal.Sample)
	fmt.Printf("- Total runs: %d (%s, %s)\n", len(results),
		okColor.Sprintf("%d ok", len(ok)), failColor.Sprintf("%d failed", failed))
}

type jsonReport struct {
	Timestamp string   `json:"timestamp"`
	URL       string   `json:"url"`
	Model     string   `json:"model"`
	Results   []result `json:"results"`
}

func writeJSON(path string, results []result, baseURL, model string) error {
	report := jsonReport{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       baseURL,
		Model:     model,
		Results:   results,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
