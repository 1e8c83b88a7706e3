package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/cgast/getsready/internal/config"
	"github.com/cgast/getsready/pkg/gets"
	"github.com/cgast/getsready/pkg/invoice"
	"github.com/cgast/getsready/pkg/report"
	"github.com/cgast/getsready/pkg/scoring"
	"github.com/cgast/getsready/pkg/suggest"
)

// handleAnalyze runs the readiness pipeline over a local file and
// prints the report as JSON, without touching the store.
func handleAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	country := fs.String("country", "Unknown", "country context")
	erp := fs.String("erp", "Unknown", "erp context")
	webhooks := fs.Bool("webhooks", false, "posture: webhooks enabled")
	sandbox := fs.Bool("sandbox", false, "posture: sandbox environment enabled")
	retries := fs.Bool("retries", false, "posture: retries enabled")
	configPath := fs.String("config", "getsready.yaml", "config file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("analyze: expected exactly one input file")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	schema, err := gets.Load()
	if err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	rows, err := invoice.Parse(f)
	if err != nil {
		return err
	}

	suggester, err := buildSuggester(cfg)
	if err != nil {
		return err
	}

	rep := report.Build(context.Background(), report.BuildInput{
		Rows:   rows,
		Schema: schema,
		Questionnaire: scoring.Questionnaire{
			Webhooks:   *webhooks,
			SandboxEnv: *sandbox,
			Retries:    *retries,
		},
		Suggester: suggester,
		Meta: report.Meta{
			AIEnabled: cfg.AI.Enabled,
			Country:   *country,
			ERP:       *erp,
			DB:        "none",
		},
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// buildSuggester returns the configured suggestion collaborator: the
// chat-completion client when AI is enabled, the deterministic template
// otherwise.
func buildSuggester(cfg config.Config) (suggest.Suggester, error) {
	if !cfg.AI.Enabled {
		return suggest.Template{}, nil
	}
	return suggest.NewClient(suggest.ClientConfig{
		Endpoint:      cfg.AI.Endpoint,
		Token:         cfg.AI.Token,
		Model:         cfg.AI.Model,
		FallbackModel: cfg.AI.FallbackModel,
		Timeout:       time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})
}
