package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/xcono/oanda/internal/generate"
	"github.com/xcono/oanda/internal/models"
	"github.com/xcono/oanda/internal/parse"
	"github.com/xcono/oanda/internal/validate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BundleFile is the name of the bundled OpenAPI document
const BundleFile = "openapi.yaml"

// BatchProcessor handles processing multiple HTML files
type BatchProcessor struct {
	scanner   *DirectoryScanner
	golang    *generate.GoGenerator
	generator *generate.SchemaGenerator
	validator *validate.SchemaValidator
	registry  *generate.Registry
	options   *BatchOptions
	logger    *zap.Logger
}

// BatchOptions configures batch processing behavior
type BatchOptions struct {
	MaxWorkers      int             // Maximum number of concurrent workers
	OutputDir       string          // Output directory for results
	Package         string          // Package name of the generated Go code
	GenerateGo      bool            // Generate Go types
	GenerateOpenAPI bool            // Generate OpenAPI specs
	Bundle          bool            // Bundle every page into one OpenAPI document
	SamplesDir      string          // Captured payloads named <Definition>.json to validate
	GenerateReport  bool            // Generate processing report
	Timeout         time.Duration   // Processing timeout per file
	Parse           parse.Options   // Selectors, table shapes and strictness
	Scanner         *ScannerOptions // Directory scanning, nil for the defaults
	Logger          *zap.Logger
}

// BatchResult represents the result of processing a single file
type BatchResult struct {
	FilePath    string                `json:"file_path"`
	Page        string                `json:"page"`
	Success     bool                  `json:"success"`
	Skipped     bool                  `json:"skipped,omitempty"`
	Error       string                `json:"error,omitempty"`
	Warnings    []string              `json:"warnings,omitempty"`
	Dropped     int                   `json:"dropped_definitions,omitempty"`
	Definitions int                   `json:"definitions"`
	Schema      *models.Schema        `json:"-"`
	OpenAPISpec *generate.OpenAPISpec `json:"-"`
	Outputs     []string              `json:"outputs,omitempty"`
	ProcessTime time.Duration         `json:"process_time"`
}

// BatchReport represents the overall batch processing report
type BatchReport struct {
	StartTime    time.Time                             `json:"start_time"`
	EndTime      time.Time                             `json:"end_time"`
	TotalFiles   int                                   `json:"total_files"`
	SuccessCount int                                   `json:"success_count"`
	ErrorCount   int                                   `json:"error_count"`
	SkippedCount int                                   `json:"skipped_count"`
	TotalTime    time.Duration                         `json:"total_time"`
	Results      []BatchResult                         `json:"results"`
	Validations  map[string]*validate.ValidationResult `json:"validations,omitempty"`
	Summary      BatchSummary                          `json:"summary"`
}

// BatchSummary provides summary statistics
type BatchSummary struct {
	Pages              []string `json:"pages"`
	ErrorTypes         []string `json:"error_types"`
	AverageTime        float64  `json:"average_time_ms"`
	FastestFile        string   `json:"fastest_file"`
	SlowestFile        string   `json:"slowest_file"`
	TotalDefinitions   int      `json:"total_definitions"`
	TotalStreams       int      `json:"total_streams"`
	SkippedDefinitions int      `json:"skipped_definitions"`
	Unresolved         []string `json:"unresolved,omitempty"`
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(options *BatchOptions) *BatchProcessor {
	if options.MaxWorkers <= 0 {
		options.MaxWorkers = 4 // Default to 4 workers
	}
	if options.Timeout <= 0 {
		options.Timeout = 30 * time.Second // Default 30 second timeout
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	return &BatchProcessor{
		scanner:   NewDirectoryScanner(options.Scanner),
		golang:    generate.NewGoGenerator(options.Package),
		generator: generate.NewSchemaGenerator(),
		validator: validate.NewSchemaValidator(),
		registry:  generate.NewRegistry(),
		options:   options,
		logger:    options.Logger,
	}
}

// Registry returns the definitions registered so far
func (bp *BatchProcessor) Registry() *generate.Registry {
	return bp.registry
}

// ProcessDirectory processes all reference pages found below a directory
func (bp *BatchProcessor) ProcessDirectory(ctx context.Context, dirPath string) (*BatchReport, error) {
	scan, err := bp.scanner.ScanDirectory(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find HTML files: %w", err)
	}

	bp.logger.Info("scanned input directory",
		zap.String("dir", dirPath),
		zap.Int("pages", len(scan.HTMLFiles)),
		zap.Int("skipped", len(scan.SkippedFiles)))

	return bp.ProcessFiles(ctx, scan.HTMLFiles)
}

// ProcessFiles parses every file, then generates output once all pages are
// registered so cross-page references resolve. The returned error combines
// output failures; per-page parse failures are recorded in the report only.
func (bp *BatchProcessor) ProcessFiles(ctx context.Context, filePaths []string) (*BatchReport, error) {
	startTime := time.Now()

	if len(filePaths) == 0 {
		return &BatchReport{
			StartTime: startTime,
			EndTime:   time.Now(),
			TotalTime: time.Since(startTime),
			Results:   []BatchResult{},
		}, nil
	}

	if bp.options.OutputDir != "" {
		if err := os.MkdirAll(bp.options.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	results := bp.processFiles(ctx, filePaths)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	// results arrive in completion order
	sort.Slice(results, func(i, j int) bool { return results[i].FilePath < results[j].FilePath })

	bp.register(results)

	var errs error
	for i := range results {
		errs = multierr.Append(errs, bp.writeOutputs(&results[i]))
	}
	if bp.options.Bundle {
		errs = multierr.Append(errs, bp.writeBundle(results))
	}

	report := bp.generateReport(startTime, results)

	if bp.options.SamplesDir != "" {
		validations, err := bp.validateSamples()
		errs = multierr.Append(errs, err)
		report.Validations = validations
	}

	if bp.options.GenerateReport {
		errs = multierr.Append(errs, bp.saveReport(report))
	}

	return report, errs
}

// processFiles processes files concurrently
func (bp *BatchProcessor) processFiles(ctx context.Context, filePaths []string) []BatchResult {
	// Create channels for work distribution
	fileChan := make(chan string, len(filePaths))
	resultChan := make(chan BatchResult, len(filePaths))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < bp.options.MaxWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			bp.worker(ctx, workerID, fileChan, resultChan)
		}(i)
	}

	// Send files to workers
	go func() {
		defer close(fileChan)
		for _, filePath := range filePaths {
			select {
			case fileChan <- filePath:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Close result channel when all workers are done
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results
	var results []BatchResult
	for result := range resultChan {
		results = append(results, result)
	}

	return results
}

// worker processes files from the input channel
func (bp *BatchProcessor) worker(ctx context.Context, workerID int, fileChan <-chan string, resultChan chan<- BatchResult) {
	logger := bp.logger.With(zap.Int("worker", workerID))
	for filePath := range fileChan {
		select {
		case <-ctx.Done():
			return
		default:
			result := bp.processFile(ctx, filePath)
			logger.Debug("processed page",
				zap.String("file", filePath),
				zap.Bool("success", result.Success),
				zap.Duration("took", result.ProcessTime))
			select {
			case resultChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}

// processFile reads and parses a single page
func (bp *BatchProcessor) processFile(ctx context.Context, filePath string) (result BatchResult) {
	startTime := time.Now()
	result = BatchResult{
		FilePath: filePath,
		Page:     pageName(filePath),
	}

	defer func() {
		result.ProcessTime = time.Since(startTime)
	}()

	htmlContent, err := os.ReadFile(filePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read file: %v", err)
		return result
	}

	schema, err := bp.parseWithTimeout(ctx, string(htmlContent))
	switch {
	case errors.Is(err, parse.ErrNoDefinitions):
		// index and guide pages carry no definitions
		result.Skipped = true
		return result
	case schema == nil:
		result.Error = fmt.Sprintf("parsing failed: %v", err)
		bp.logger.Warn("failed to parse page", zap.String("file", filePath), zap.Error(err))
		return result
	}

	for _, skipped := range multierr.Errors(err) {
		var defErr *parse.DefinitionError
		name := ""
		if errors.As(skipped, &defErr) {
			name = defErr.Name
		}
		bp.logger.Warn("skipped malformed definition",
			zap.String("file", filePath),
			zap.String("definition", name),
			zap.Error(skipped))
		result.Warnings = append(result.Warnings, skipped.Error())
		result.Dropped++
	}

	schema.Source = result.Page
	result.Schema = schema
	result.Definitions = len(schema.Definitions)
	result.Success = true
	return result
}

// parseWithTimeout runs a fresh parser for the page; parsers keep the current
// document and are never shared between workers.
func (bp *BatchProcessor) parseWithTimeout(ctx context.Context, html string) (*models.Schema, error) {
	ctx, cancel := context.WithTimeout(ctx, bp.options.Timeout)
	defer cancel()

	type outcome struct {
		schema *models.Schema
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		parser := parse.NewParserWithOptions(bp.options.Parse)
		schema, err := parser.ParseHTML(html)
		done <- outcome{schema: schema, err: err}
	}()

	select {
	case o := <-done:
		return o.schema, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("parsing timed out: %w", ctx.Err())
	}
}

// register adds every parsed page to the registry before any generation.
func (bp *BatchProcessor) register(results []BatchResult) {
	for i := range results {
		if results[i].Schema == nil {
			continue
		}
		if err := bp.registry.Register(results[i].Schema); err != nil {
			bp.logger.Warn("conflicting definition", zap.String("file", results[i].FilePath), zap.Error(err))
			results[i].Warnings = append(results[i].Warnings, err.Error())
		}
		if err := bp.validator.AddPage(results[i].Schema); err != nil {
			results[i].Warnings = append(results[i].Warnings, err.Error())
		}
	}
}

// writeOutputs generates and writes the Go and OpenAPI files of one page
func (bp *BatchProcessor) writeOutputs(result *BatchResult) error {
	if !result.Success || result.Schema == nil {
		return nil
	}

	for _, name := range bp.registry.Unresolved(result.Schema) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("unresolved reference %s", name))
	}

	var errs error

	if bp.options.GenerateGo {
		code, err := bp.golang.Generate(result.Schema, bp.registry)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to generate Go for %s: %w", result.FilePath, err))
		} else {
			errs = multierr.Append(errs, bp.write(result, goFileName(result.Page), code))
		}
	}

	if bp.options.GenerateOpenAPI || bp.options.Bundle {
		spec, err := bp.generator.GenerateSpec(result.Schema)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("failed to generate OpenAPI for %s: %w", result.FilePath, err))
		}
		result.OpenAPISpec = spec

		if bp.options.GenerateOpenAPI {
			data, err := spec.ToYAML()
			if err != nil {
				return multierr.Append(errs, fmt.Errorf("failed to convert %s to YAML: %w", result.FilePath, err))
			}
			errs = multierr.Append(errs, bp.write(result, result.Page+".yaml", data))
		}
	}

	if errs != nil {
		result.Error = errs.Error()
	}
	return errs
}

func (bp *BatchProcessor) write(result *BatchResult, name string, data []byte) error {
	if bp.options.OutputDir == "" {
		return nil
	}
	path := filepath.Join(bp.options.OutputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	result.Outputs = append(result.Outputs, path)
	return nil
}

// writeBundle merges the per-page specs into one document
func (bp *BatchProcessor) writeBundle(results []BatchResult) error {
	specs := lo.FilterMap(results, func(r BatchResult, _ int) (*generate.OpenAPISpec, bool) {
		return r.OpenAPISpec, r.OpenAPISpec != nil
	})
	if len(specs) == 0 || bp.options.OutputDir == "" {
		return nil
	}

	bundled, duplicates := generate.Bundle("OANDA v20", "Combined v20 definitions", specs...)
	for _, name := range duplicates {
		bp.logger.Warn("duplicate component skipped in bundle", zap.String("definition", name))
	}

	data, err := bundled.ToYAML()
	if err != nil {
		return fmt.Errorf("failed to marshal bundled spec: %w", err)
	}

	path := filepath.Join(bp.options.OutputDir, BundleFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write bundled spec: %w", err)
	}

	bp.logger.Info("bundled specs", zap.Int("pages", len(specs)), zap.String("file", path))
	return nil
}

// validateSamples validates every <Definition>.json payload in SamplesDir
func (bp *BatchProcessor) validateSamples() (map[string]*validate.ValidationResult, error) {
	entries, err := os.ReadDir(bp.options.SamplesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}

	validations := make(map[string]*validate.ValidationResult)
	var errs error
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		definition := strings.TrimSuffix(entry.Name(), ".json")

		payload, err := os.ReadFile(filepath.Join(bp.options.SamplesDir, entry.Name()))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to read sample %s: %w", entry.Name(), err))
			continue
		}

		result, err := bp.validator.Validate(definition, payload)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to validate sample %s: %w", entry.Name(), err))
			continue
		}
		if !result.Valid {
			bp.logger.Warn("sample does not match definition",
				zap.String("definition", definition),
				zap.Int("errors", len(result.Errors)))
		}
		validations[definition] = result
	}

	return validations, errs
}

// generateReport creates a comprehensive processing report
func (bp *BatchProcessor) generateReport(startTime time.Time, results []BatchResult) *BatchReport {
	endTime := time.Now()

	report := &BatchReport{
		StartTime:  startTime,
		EndTime:    endTime,
		TotalFiles: len(results),
		TotalTime:  endTime.Sub(startTime),
		Results:    results,
	}

	var (
		summary                  BatchSummary
		fastestTime, slowestTime time.Duration
		totalProcessTime         time.Duration
		unresolved               []string
	)

	for _, result := range results {
		switch {
		case result.Skipped:
			report.SkippedCount++
		case result.Success:
			report.SuccessCount++
			summary.Pages = append(summary.Pages, result.Schema.Name)
			summary.TotalDefinitions += len(result.Schema.Definitions)
			summary.TotalStreams += len(result.Schema.Streams)
			unresolved = append(unresolved, bp.registry.Unresolved(result.Schema)...)
		default:
			report.ErrorCount++
		}
		if result.Error != "" {
			summary.ErrorTypes = append(summary.ErrorTypes, result.Error)
		}
		summary.SkippedDefinitions += result.Dropped

		if summary.FastestFile == "" || result.ProcessTime < fastestTime {
			summary.FastestFile = result.FilePath
			fastestTime = result.ProcessTime
		}
		if summary.SlowestFile == "" || result.ProcessTime > slowestTime {
			summary.SlowestFile = result.FilePath
			slowestTime = result.ProcessTime
		}
		totalProcessTime += result.ProcessTime
	}

	if len(results) > 0 {
		summary.AverageTime = float64(totalProcessTime.Milliseconds()) / float64(len(results))
	}
	summary.Unresolved = lo.Uniq(unresolved)
	sort.Strings(summary.Unresolved)

	report.Summary = summary
	return report
}

// saveReport saves the processing report
func (bp *BatchProcessor) saveReport(report *BatchReport) error {
	if bp.options.OutputDir == "" {
		return nil
	}

	reportFile := filepath.Join(bp.options.OutputDir, "batch_report.json")
	reportData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(reportFile, reportData, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// pageName names a page after its file, or its directory for index pages:
// "rest/20/account-df/index.html" -> "account-df".
func pageName(filePath string) string {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	if strings.EqualFold(base, "index") {
		if dir := filepath.Base(filepath.Dir(filePath)); dir != "." && dir != string(filepath.Separator) {
			return dir
		}
	}
	return base
}

func goFileName(page string) string {
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(strings.ToLower(page)) + ".go"
}
