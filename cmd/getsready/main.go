package main

import (
	"fmt"
	"os"

	"github.com/cgast/getsready/internal/config"
	"github.com/cgast/getsready/internal/events"
	"github.com/cgast/getsready/internal/server"
	"github.com/cgast/getsready/internal/store"
	"github.com/cgast/getsready/pkg/gets"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = handleServe(os.Args[2:])
	case "analyze":
		err = handleAnalyze(os.Args[2:])
	case "validate-schema":
		err = handleValidateSchema(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `getsready - e-invoicing readiness analyzer

Usage:
  getsready serve [-config path]           Start the analysis API server
  getsready analyze [flags] <file>         Analyze a CSV/JSON file and print the report
  getsready validate-schema [path]         Validate a GETS schema artifact

Analyze flags:
  -country <name>   Country context (default Unknown)
  -erp <name>       ERP context (default Unknown)
  -webhooks         Posture: webhooks enabled
  -sandbox          Posture: sandbox environment enabled
  -retries          Posture: retries enabled
`)
}

func handleServe(args []string) error {
	path := "getsready.yaml"
	for i := 0; i < len(args); i++ {
		if args[i] == "-config" && i+1 < len(args) {
			path = args[i+1]
			i++
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	schema, err := gets.Load()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	bus := events.NewMemoryBus()
	suggester, err := buildSuggester(cfg)
	if err != nil {
		return err
	}

	srv := server.New(cfg, st, bus, suggester, schema)
	fmt.Fprintf(os.Stderr, "getsready: serving on :%d (schema v%s, ai=%v)\n",
		cfg.Server.Port, schema.Version, cfg.AI.Enabled)
	return srv.Start()
}

func handleValidateSchema(args []string) error {
	var (
		schema gets.Schema
		err    error
	)
	if len(args) > 0 {
		schema, err = gets.LoadFile(args[0])
	} else {
		schema, err = gets.Load()
	}
	if err != nil {
		return err
	}

	fmt.Printf("schema v%s OK: %d fields, %d required\n",
		schema.Version, len(schema.Fields), schema.RequiredCount())
	return nil
}
