// Command logpress compresses plain-text logs into a columnar container
// and answers selective queries against one without full decompression.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"logpress/internal/config"
	"logpress/internal/pipeline"
	"logpress/pkg/container"
	"logpress/pkg/entropy"
	"logpress/pkg/errors"
	"logpress/pkg/query"
	"logpress/pkg/types"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "compress":
		runCompress(os.Args[2:])
	case "query":
		runQuery(os.Args[2:])
	case "stats":
		runStats(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: logpress <compress|query|stats> [flags]")
}

// fatal logs err and exits. *errors.AppError values are unpacked into
// structured fields (code, component, severity, ...) instead of a single
// opaque message, and a critical AppError is called out with its own field
// so the surrounding infrastructure that scrapes these logs can page on it.
func fatal(logger *logrus.Logger, err error, msg string) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		logger.WithError(err).Fatal(msg)
		return
	}
	logger.WithFields(logrus.Fields(appErr.ToMap())).WithField("critical", appErr.IsCritical()).Fatal(msg)
}

func newLogger(cfg types.AppConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func runCompress(args []string) {
	fs := flag.NewFlagSet("compress", flag.ExitOnError)
	configFile := fs.String("config", "", "path to YAML config file")
	input := fs.String("input", "", "path to the plain-text log file (default: stdin)")
	output := fs.String("output", "", "path to write the compressed container (overrides container.output_path)")
	fs.Parse(args)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.App)

	outputPath := cfg.Container.OutputPath
	if *output != "" {
		outputPath = *output
	}

	lines, err := readLines(*input)
	if err != nil {
		fatal(logger, err, "failed to read input")
	}

	enc := pipeline.NewEncoder(cfg.Pipeline, logger)
	if err := enc.ExtractTemplates(lines); err != nil {
		fatal(logger, err, "template extraction failed")
	}
	if err := enc.EncodeLines(); err != nil {
		fatal(logger, err, "line encoding failed")
	}
	if err := enc.FinalizeColumns(pipeline.FinalizeOptions{
		BinaryIP:         cfg.Pipeline.BinaryIP,
		WordDictionaries: cfg.Pipeline.WordDictionaries,
		WordDictMinFreq:  cfg.Pipeline.WordDictMinFreq,
	}); err != nil {
		fatal(logger, err, "column finalization failed")
	}
	compressed, err := enc.Serialize()
	if err != nil {
		fatal(logger, err, "serialization failed")
	}

	writeOpts := container.WriteOptions{
		EntropyAlgorithm: entropy.Algorithm(cfg.Entropy.Algorithm),
		BWT:              cfg.Pipeline.BWT,
		BWTBlockSize:     cfg.Pipeline.BWTBlockSizeBytes,
	}
	if cfg.Entropy.DictPath != "" {
		dictBytes, err := os.ReadFile(cfg.Entropy.DictPath)
		if err != nil {
			fatal(logger, err, "failed to read entropy dictionary")
		}
		writeOpts.EntropyDict = &entropy.Dictionary{ID: cfg.Entropy.DictID, Bytes: dictBytes}
	}

	if err := container.Write(compressed, outputPath, writeOpts); err != nil {
		fatal(logger, err, "failed to write container")
	}

	logger.WithFields(logrus.Fields{
		"input_lines": len(lines),
		"templates":   len(compressed.Templates),
		"output":      outputPath,
	}).Info("compression complete")
}

func runQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configFile := fs.String("config", "", "path to YAML config file")
	input := fs.String("input", "", "path to the compressed container")
	severity := fs.String("severity", "", "comma-separated severity values")
	ip := fs.String("ip", "", "exact IP address match")
	startMs := fs.Int64("start-ms", 0, "range start, epoch milliseconds")
	endMs := fs.Int64("end-ms", 0, "range end, epoch milliseconds")
	hasRange := fs.Bool("range", false, "enable the time-range predicate")
	materialize := fs.Bool("materialize", false, "print matched lines instead of just indices")
	fs.Parse(args)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.App)

	path := *input
	if path == "" {
		path = cfg.Container.OutputPath
	}

	engine, err := query.Open(path, container.DefaultReadOptions())
	if err != nil {
		fatal(logger, err, "failed to open container")
	}
	defer engine.Close()

	var predicates query.Predicates
	if *severity != "" {
		predicates.Severities = strings.Split(*severity, ",")
	}
	predicates.IP = *ip
	predicates.HasRange = *hasRange
	predicates.StartMs = *startMs
	predicates.EndMs = *endMs

	result, err := engine.QueryCompound(predicates)
	if err != nil {
		fatal(logger, err, "query failed")
	}

	if !*materialize {
		fmt.Printf("matched %d of %d lines (scanned %d)\n", result.MatchedCount, engine.Count(), result.ScanCount)
		for _, idx := range result.MatchedLineIndices {
			fmt.Println(idx)
		}
		return
	}

	lines, err := engine.Materialize(result.MatchedLineIndices)
	if err != nil {
		fatal(logger, err, "materialization failed")
	}
	for _, line := range lines {
		fmt.Println(line)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configFile := fs.String("config", "", "path to YAML config file")
	input := fs.String("input", "", "path to the compressed container")
	fs.Parse(args)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.App)

	path := *input
	if path == "" {
		path = cfg.Container.OutputPath
	}

	engine, err := query.Open(path, container.DefaultReadOptions())
	if err != nil {
		fatal(logger, err, "failed to open container")
	}
	defer engine.Close()

	stats, err := engine.Stats()
	if err != nil {
		fatal(logger, err, "stats failed")
	}

	fmt.Printf("total_logs=%d templates=%d unique_severities=%d unique_ips=%d unique_messages=%d\n",
		stats.TotalLogs, stats.Templates, stats.UniqueSeverities, stats.UniqueIPs, stats.UniqueMessages)
	for _, sev := range stats.TopSeverities {
		fmt.Printf("  severity=%s count=%d\n", sev.Value, sev.Count)
	}
}

func readLines(path string) ([]string, error) {
	var f *os.File
	if path == "" {
		f = os.Stdin
	} else {
		opened, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer opened.Close()
		f = opened
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
