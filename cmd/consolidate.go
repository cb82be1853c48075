package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GrayGhostDev/lead-generator/internal/config"
	"github.com/GrayGhostDev/lead-generator/internal/export"
	"github.com/GrayGhostDev/lead-generator/internal/ingest"
	"github.com/GrayGhostDev/lead-generator/internal/merge"
	"github.com/GrayGhostDev/lead-generator/internal/model"
	"github.com/GrayGhostDev/lead-generator/internal/pipeline"
)

var (
	consolidateInputs    []string
	consolidateRulesPath string
	consolidateOutputDir string
	consolidateFormat    string
	consolidateLimit     int
	consolidateOffline   bool
	consolidateReport    bool
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Merge, enrich, predict, and score leads from input files",
	Long: `Reads contact records from one or more CSV/XLSX files, deduplicates them
across sources, fills missing emails with predicted addresses, scores each
lead against the configured criteria, and writes the consolidated set.

Inputs are given as path[:source], where source is manual, enrichment, or
scraped. Unlabeled inputs default to manual.

Examples:
  # Two sources, rules file, CSV output
  lead-generator consolidate --in contacts.csv:manual --in scraped.csv:scraped --rules rules.yaml

  # JSON output, no enrichment call-out
  lead-generator consolidate --in contacts.csv --offline --format json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rules, err := loadRules(consolidateRulesPath)
		if err != nil {
			return err
		}

		collections, parseIssues, err := readCollections(ctx, consolidateInputs, consolidateLimit)
		if err != nil {
			return err
		}

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "consolidate: open store")
		}
		if st != nil {
			defer st.Close()
		}

		var enricher pipeline.Enricher
		if !consolidateOffline && st != nil && cfg.Enrich.Provider == "store" {
			contacts, err := st.ListContacts(ctx, 0)
			if err != nil {
				return eris.Wrap(err, "consolidate: load enrichment contacts")
			}
			enricher = staticEnricherFromContacts(contacts)
		}

		orch := pipeline.New(pipeline.Options{
			Policy:        rules.MergePolicy,
			Criteria:      rules.Criteria,
			Priors:        rules.Predict.Priors,
			Threshold:     rules.Predict.Threshold,
			BatchSize:     cfg.Enrich.BatchSize,
			BatchRetries:  cfg.Enrich.BatchRetries,
			BatchInterval: time.Duration(cfg.Enrich.BatchIntervalSecs) * time.Second,
		}, enricher)

		var run *model.Run
		if st != nil {
			if run, err = st.CreateRun(ctx, consolidateInputs); err != nil {
				return eris.Wrap(err, "consolidate: create run")
			}
		}

		result, err := orch.Run(ctx, collections)
		if st != nil && run != nil {
			var summary *model.RunSummary
			if result != nil {
				summary = &result.Summary
			}
			if cerr := st.CompleteRun(ctx, run.ID, summary, err); cerr != nil {
				zap.L().Warn("consolidate: record run", zap.Error(cerr))
			}
		}
		if err != nil {
			return eris.Wrap(err, "consolidate: run")
		}

		// Parse-time skips are part of the run's issue report.
		result.Issues = append(parseIssues, result.Issues...)
		result.Summary.Issues = len(result.Issues)

		if st != nil && run != nil {
			if err := st.SaveLeads(ctx, run.ID, result.Leads); err != nil {
				zap.L().Warn("consolidate: persist leads", zap.Error(err))
			}
		}

		if err := writeOutputs(result); err != nil {
			return err
		}

		if consolidateReport {
			fmt.Println(pipeline.FormatReport(result))
		}

		return nil
	},
}

func init() {
	consolidateCmd.Flags().StringArrayVar(&consolidateInputs, "in", nil, "input file as path[:source]; repeatable (required)")
	consolidateCmd.Flags().StringVar(&consolidateRulesPath, "rules", "", "path to rules YAML (default: built-in defaults)")
	consolidateCmd.Flags().StringVar(&consolidateOutputDir, "output-dir", "", "output directory (default from config)")
	consolidateCmd.Flags().StringVar(&consolidateFormat, "format", "", "output format: csv, json, or both (default from config)")
	consolidateCmd.Flags().IntVar(&consolidateLimit, "limit", 0, "max rows per input file (0 = no limit)")
	consolidateCmd.Flags().BoolVar(&consolidateOffline, "offline", false, "skip the enrichment call-out")
	consolidateCmd.Flags().BoolVar(&consolidateReport, "report", false, "print a markdown run report to stdout")
	_ = consolidateCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(consolidateCmd)
}

func loadRules(path string) (*config.Rules, error) {
	if path == "" {
		return config.DefaultRules(), nil
	}
	return config.LoadRules(path)
}

// readCollections parses each input file into a merge collection. Files are
// read concurrently; collection order follows flag order so merge tie-breaks
// stay deterministic.
func readCollections(ctx context.Context, inputs []string, limit int) ([]merge.Collection, []model.Issue, error) {
	collections := make([]merge.Collection, len(inputs))

	g, gCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	var allIssues []model.Issue

	for i, input := range inputs {
		g.Go(func() error {
			path, source := splitInput(input)

			rows, err := readRows(gCtx, path)
			if err != nil {
				return err
			}
			if limit > 0 && limit < len(rows) {
				rows = rows[:limit]
			}

			records, issues := ingest.ParseRows(rows, source)
			zap.L().Info("parsed input",
				zap.String("path", path),
				zap.String("source", string(source)),
				zap.Int("records", len(records)),
				zap.Int("skipped", len(issues)),
			)

			mu.Lock()
			allIssues = append(allIssues, issues...)
			mu.Unlock()

			collections[i] = merge.Collection{
				Source:  source,
				Label:   filepath.Base(path),
				Records: records,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if len(allIssues) > 0 {
		zap.L().Warn("rows skipped during parse", zap.Int("count", len(allIssues)))
	}
	return collections, allIssues, nil
}

func splitInput(input string) (path string, source model.Source) {
	if i := strings.LastIndex(input, ":"); i > 1 { // leave windows drive letters alone
		label := input[i+1:]
		if !strings.Contains(label, string(os.PathSeparator)) && !strings.Contains(label, ".") {
			return input[:i], model.ParseSource(label)
		}
	}
	return input, model.SourceManual
}

func readRows(ctx context.Context, path string) ([]ingest.Row, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ingest.ReadXLSX(ctx, path, ingest.XLSXOptions{})
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "consolidate: open %s", path)
	}
	defer f.Close()
	return ingest.ReadCSV(ctx, f, ingest.CSVOptions{})
}

func writeOutputs(result *pipeline.Result) error {
	dir := consolidateOutputDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	format := consolidateFormat
	if format == "" {
		format = cfg.Output.Format
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "consolidate: create output dir")
	}

	stamp := time.Now().Format("20060102_150405")

	if format == "csv" || format == "both" {
		path := filepath.Join(dir, fmt.Sprintf("leads_%s.csv", stamp))
		if err := writeFile(path, func(f *os.File) error {
			return export.WriteCSV(f, result.Leads)
		}); err != nil {
			return err
		}
		zap.L().Info("wrote leads csv", zap.String("path", path), zap.Int("leads", len(result.Leads)))
	}

	if format == "json" || format == "both" {
		path := filepath.Join(dir, fmt.Sprintf("leads_%s.json", stamp))
		if err := writeFile(path, func(f *os.File) error {
			return export.WriteJSON(f, result.Leads, result.Summary)
		}); err != nil {
			return err
		}
		zap.L().Info("wrote leads json", zap.String("path", path))
	}

	if len(result.Issues) > 0 {
		path := filepath.Join(dir, fmt.Sprintf("issues_%s.csv", stamp))
		if err := writeFile(path, func(f *os.File) error {
			return export.WriteIssuesCSV(f, result.Issues)
		}); err != nil {
			return err
		}
		zap.L().Info("wrote issues csv", zap.String("path", path), zap.Int("issues", len(result.Issues)))
	}

	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "consolidate: create %s", path)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return err
	}
	return eris.Wrapf(f.Sync(), "consolidate: sync %s", path)
}

// staticEnricherFromContacts replays webhook-ingested contacts as an
// enrichment source.
func staticEnricherFromContacts(contacts []model.Contact) pipeline.Enricher {
	records := make([]ingest.Record, 0, len(contacts))
	for _, c := range contacts {
		c.Source = model.SourceEnrichment
		records = append(records, ingest.Record{
			Contact: c,
			Company: model.Company{
				Name:     c.CompanyName,
				Domain:   c.CompanyDomain,
				Location: c.Location,
				Source:   model.SourceEnrichment,
			},
		})
	}
	return &pipeline.StaticEnricher{Records: records}
}
