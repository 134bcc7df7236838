package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"remap/internal/config"
	"remap/internal/metrics"
	"remap/internal/metrics/datadog"
	"remap/internal/metrics/prompush"

	// register all backends with the audit factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "remap/internal/audit/all"
)

// main is the entry point for the remap binary. It assembles the job from an
// optional config file plus flags, optionally initializes a metrics backend,
// and executes the run.
func main() {
	var (
		cfgPath           string
		jobName           string
		inputPath         string
		keyName           string
		outputPath        string
		mappingPath       string
		oldColumn         string
		newColumn         string
		comma             string
		foldKeys          bool
		logFile           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		datadogAddrFlg    string
		auditKind         string
		auditDSN          string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "job config JSON path (flags override its fields)")
	flag.StringVar(&jobName, "job", "", "job name used in logs, metrics, and the audit trail")
	flag.StringVar(&inputPath, "input", "", "JSON array file (or URL) to rewrite")
	flag.StringVar(&keyName, "key", "", "record field to rewrite")
	flag.StringVar(&outputPath, "output", "", "destination JSON file")
	flag.StringVar(&mappingPath, "mapping", "", "two-column CSV mapping file (or URL)")
	flag.StringVar(&oldColumn, "old-col", "", "mapping CSV column holding current values (default \"old\")")
	flag.StringVar(&newColumn, "new-col", "", "mapping CSV column holding replacement values (default \"new\")")
	flag.StringVar(&comma, "comma", "", "mapping CSV field delimiter (default \",\")")
	flag.BoolVar(&foldKeys, "fold-keys", false, "strip diacritics before mapping lookups")
	flag.StringVar(&logFile, "log-file", "", "append run logs to this file as well as the console (default \"remap.log\")")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&datadogAddrFlg, "datadog-addr", "", "dogstatsd address (overrides env DD_AGENT_ADDR)")
	flag.StringVar(&auditKind, "audit-backend", "", "run-history store kind (sqlite, postgres)")
	flag.StringVar(&auditDSN, "audit-dsn", "", "run-history store DSN")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	var job config.Job
	if cfgPath != "" {
		var err error
		job, err = config.LoadJob(cfgPath)
		if err != nil {
			fatalf("%v", err)
		}
	}

	// Flags override config file fields.
	overrideString(&job.Name, jobName)
	overrideString(&job.Input.Path, inputPath)
	overrideString(&job.Input.Key, keyName)
	overrideString(&job.Output.Path, outputPath)
	overrideString(&job.Mapping.Path, mappingPath)
	overrideString(&job.Mapping.OldColumn, oldColumn)
	overrideString(&job.Mapping.NewColumn, newColumn)
	overrideString(&job.Mapping.Comma, comma)
	overrideString(&job.Logging.LogFile, logFile)
	overrideString(&job.Metrics.Backend, metricsBackendFlg)
	overrideString(&job.Metrics.PushgatewayURL, pushGatewayURLFlg)
	overrideString(&job.Metrics.DatadogAddr, datadogAddrFlg)
	overrideString(&job.Audit.Kind, auditKind)
	overrideString(&job.Audit.DSN, auditDSN)
	if foldKeys {
		job.Mapping.FoldKeys = true
	}
	job.ApplyDefaults()

	// Validate job config.
	issues := config.ValidateJob(job)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid")
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid")
		os.Exit(0)
	}

	closeLog, err := setupLogging(job.Logging.LogFile)
	if err != nil {
		fatalf("open log file: %v", err)
	}
	defer closeLog()

	// Decide metrics backend: flag → config → env.
	backendName := job.Metrics.Backend
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		// Decide Pushgateway URL: flag/config → env → default.
		gwURL := job.Metrics.PushgatewayURL
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(metricsJobName(job.Name), gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, metricsJobName(job.Name))
			metrics.SetBackend(b)
			defer flushMetrics()
		}

	case "datadog":
		addr := job.Metrics.DatadogAddr
		if addr == "" {
			addr = os.Getenv("DD_AGENT_ADDR")
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}

		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			GlobalTags: []string{"job:" + metricsJobName(job.Name)},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: addr=%v, backend=%v, job_name=%v", addr, backendName, metricsJobName(job.Name))
			metrics.SetBackend(b)
			defer flushMetrics()
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("job: input=%s key=%s mapping=%s output=%s",
			job.Input.Path, job.Input.Key, job.Mapping.Path, job.Output.Path)
	}

	if err := run(ctx, job); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// setupLogging mirrors every log line to the console and, when path is
// non-empty, appends it to the given file. It returns a cleanup func.
func setupLogging(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

func flushMetrics() {
	if err := metrics.Flush(); err != nil {
		log.Printf("metrics: flush error: %v", err)
	}
}

func metricsJobName(name string) string {
	if name == "" {
		return "remap_job"
	}
	return name
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
