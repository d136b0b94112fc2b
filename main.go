package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/xcono/oanda/internal/batch"
	"github.com/xcono/oanda/internal/config"
	"github.com/xcono/oanda/internal/generate"
	"github.com/xcono/oanda/internal/logger"
	"github.com/xcono/oanda/internal/parse"
)

// errNothingProcessed is returned when no page of a run could be parsed
var errNothingProcessed = errors.New("no files were successfully processed")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries what every subcommand shares once flags are parsed
type cli struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{cfg: config.Default()}

	root := &cobra.Command{
		Use:           "oanda-docgen",
		Short:         "Scrape the OANDA v20 reference into Go types and OpenAPI documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.cfg.Load(c.configPath, cmd.Flags()); err != nil {
				return err
			}
			log, err := logger.Initialize(c.cfg.LogLevel)
			if err != nil {
				return err
			}
			c.log = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "YAML configuration file")
	c.cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		c.generateCommand(),
		c.schemaCommand(),
		c.validateCommand(),
		c.scanCommand(),
	)
	return root
}

func (c *cli) generateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [input-dir]",
		Short: "Parse every reference page below a directory and write Go and OpenAPI output",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := c.cfg.Input
			if len(args) == 1 {
				input = args[0]
			}
			if input == "" {
				return errors.New("no input directory given")
			}

			processor := batch.NewBatchProcessor(c.cfg.BatchOptions(c.log))
			report, err := processor.ProcessDirectory(cmd.Context(), input)
			if report == nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)

			if report.SuccessCount == 0 {
				return multierr.Append(err, errNothingProcessed)
			}
			return err
		},
	}
}

func (c *cli) schemaCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema <page.html>",
		Short: "Print the Go types or OpenAPI document of a single page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			options := c.cfg.Parse
			options.Strict = options.Strict || c.cfg.Strict

			schema, err := parse.NewParserWithOptions(options).ParseHTML(string(html))
			if schema == nil {
				return err
			}
			for _, skipped := range multierr.Errors(err) {
				c.log.Warn("skipped malformed definition", zap.Error(skipped))
			}

			var out []byte
			switch format {
			case "go":
				out, err = generate.NewGoGenerator(c.cfg.Package).Generate(schema, nil)
			case "yaml", "json":
				spec, specErr := generate.NewSchemaGenerator().GenerateSpec(schema)
				if specErr != nil {
					return specErr
				}
				if format == "yaml" {
					out, err = spec.ToYAML()
				} else {
					out, err = spec.ToJSON()
				}
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "go", "output format: go, yaml or json")
	return cmd
}

func (c *cli) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input-dir> <samples-dir>",
		Short: "Validate captured payloads named <Definition>.json against the parsed reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			options := c.cfg.BatchOptions(c.log)
			options.OutputDir = ""
			options.GenerateGo = false
			options.GenerateOpenAPI = false
			options.Bundle = false
			options.GenerateReport = false
			options.SamplesDir = args[1]

			// samples that could not be checked still leave the others reported
			report, err := batch.NewBatchProcessor(options).ProcessDirectory(cmd.Context(), args[0])
			if report == nil {
				return err
			}

			names := make([]string, 0, len(report.Validations))
			for name := range report.Validations {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			invalid := 0
			for _, name := range names {
				result := report.Validations[name]
				if result.Valid {
					fmt.Fprintf(out, "ok      %s\n", name)
					continue
				}
				invalid++
				fmt.Fprintf(out, "invalid %s\n", name)
				for _, e := range result.Errors {
					fmt.Fprintf(out, "        %s: %s\n", e.Field, e.Description)
				}
			}

			if invalid > 0 {
				err = multierr.Append(err, fmt.Errorf("%d of %d samples are invalid", invalid, len(names)))
			}
			return err
		},
	}
}

func (c *cli) scanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <input-dir>",
		Short: "Show which pages a run would process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := batch.NewDirectoryScanner(&c.cfg.Scanner).GetFileStats(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), stats.Summary())
			return nil
		},
	}
}

func printReport(w io.Writer, report *batch.BatchReport) {
	for _, result := range report.Results {
		switch {
		case result.Skipped:
			continue
		case result.Error != "":
			fmt.Fprintf(w, "Error: %s: %s\n", result.FilePath, result.Error)
		default:
			fmt.Fprintf(w, "Processed: %s (%d definitions)\n", result.FilePath, result.Definitions)
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
	}

	fmt.Fprintf(w, "\nSummary: %d files processed, %d skipped, %d errors in %s\n",
		report.SuccessCount, report.SkippedCount, report.ErrorCount, report.TotalTime)
	if len(report.Summary.Unresolved) > 0 {
		fmt.Fprintf(w, "Unresolved references: %v\n", report.Summary.Unresolved)
	}
}
