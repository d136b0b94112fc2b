package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	assetFileDirs = []string{"assets", "css", "js", "javascripts", "stylesheets", "images", "img", "fonts"}
	assetDirs     = append([]string{"node_modules", "vendor"}, assetFileDirs...)
)

// ScannerOptions configures file scanning behavior
type ScannerOptions struct {
	Recursive    bool     `yaml:"recursive"`     // Scan subdirectories recursively
	IncludeDirs  []string `yaml:"include_dirs"`  // Directories to include (empty = all)
	ExcludeDirs  []string `yaml:"exclude_dirs"`  // Directories to exclude
	FilePatterns []string `yaml:"file_patterns"` // File patterns to match (e.g., "*.html")
	MinDepth     int      `yaml:"min_depth"`     // Minimum depth below the root
	MaxDepth     int      `yaml:"max_depth"`     // Maximum depth below the root (0 = unlimited)
	SkipIndex    bool     `yaml:"skip_index"`    // Skip the root index.html (the site landing page)
	SkipAssets   bool     `yaml:"skip_assets"`   // Skip asset directories (css, js, images, etc.)
}

// DefaultScannerOptions matches a saved copy of the v20 reference site
func DefaultScannerOptions() *ScannerOptions {
	return &ScannerOptions{
		Recursive:    true,
		FilePatterns: []string{"*.html"},
		SkipIndex:    true,
		SkipAssets:   true,
	}
}

// ScanResult represents the result of a directory scan
type ScanResult struct {
	TotalFiles   int      `json:"total_files"`
	TotalDirs    int      `json:"total_dirs"`
	HTMLFiles    []string `json:"html_files"`
	SkippedFiles []string `json:"skipped_files"`
	ErrorFiles   []string `json:"error_files"`
	Directories  []string `json:"directories"`
}

// DirectoryScanner scans directories for HTML files
type DirectoryScanner struct {
	options *ScannerOptions
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner(options *ScannerOptions) *DirectoryScanner {
	if options == nil {
		options = DefaultScannerOptions()
	}

	return &DirectoryScanner{
		options: options,
	}
}

// ScanDirectory scans a directory for HTML files
func (ds *DirectoryScanner) ScanDirectory(rootPath string) (*ScanResult, error) {
	result := &ScanResult{
		HTMLFiles:    []string{},
		SkippedFiles: []string{},
		ErrorFiles:   []string{},
		Directories:  []string{},
	}

	// Check if root path exists
	if _, err := os.Stat(rootPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", rootPath)
	}

	// Walk the directory
	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			result.ErrorFiles = append(result.ErrorFiles, path)
			return nil // Continue processing other files
		}

		if info.IsDir() {
			if path == rootPath {
				return nil
			}
			if !ds.options.Recursive || ds.shouldSkipDirectory(rootPath, path, info) {
				return filepath.SkipDir
			}
			result.TotalDirs++
			result.Directories = append(result.Directories, path)
			return nil
		}

		result.TotalFiles++

		if !ds.isHTMLFile(path, info) || !ds.inScope(rootPath, path) {
			return nil
		}
		if ds.shouldSkipFile(rootPath, path, info) {
			result.SkippedFiles = append(result.SkippedFiles, path)
			return nil
		}
		result.HTMLFiles = append(result.HTMLFiles, path)

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	return result, nil
}

// isHTMLFile checks if a file is an HTML file
func (ds *DirectoryScanner) isHTMLFile(path string, info os.FileInfo) bool {
	if !strings.HasSuffix(strings.ToLower(path), ".html") {
		return false
	}

	if len(ds.options.FilePatterns) == 0 {
		return true
	}
	for _, pattern := range ds.options.FilePatterns {
		if matched, _ := filepath.Match(pattern, info.Name()); matched {
			return true
		}
	}
	return false
}

// shouldSkipFile determines if a file should be skipped
func (ds *DirectoryScanner) shouldSkipFile(rootPath, path string, info os.FileInfo) bool {
	fileName := strings.ToLower(info.Name())

	// only the root index is the landing page; every reference page is an index.html
	if ds.options.SkipIndex && fileName == "index.html" && filepath.Clean(filepath.Dir(path)) == filepath.Clean(rootPath) {
		return true
	}

	if fileName == "404.html" {
		return true
	}

	if ds.options.SkipAssets && containsFold(assetFileDirs, filepath.Base(filepath.Dir(path))) {
		return true
	}

	return false
}

// shouldSkipDirectory determines if a directory subtree should be pruned
func (ds *DirectoryScanner) shouldSkipDirectory(rootPath, path string, info os.FileInfo) bool {
	dirName := info.Name()

	if strings.HasPrefix(dirName, ".") {
		return true
	}

	if ds.options.SkipAssets && containsFold(assetDirs, dirName) {
		return true
	}

	parts := relParts(rootPath, path)
	for _, excludeDir := range ds.options.ExcludeDirs {
		if hasSegments(parts, excludeDir) {
			return true
		}
	}

	if ds.options.MaxDepth > 0 && len(parts) > ds.options.MaxDepth {
		return true
	}

	return false
}

// inScope reports whether a file lies within IncludeDirs and MinDepth.
// Both are checked on files so that parent directories are still walked.
func (ds *DirectoryScanner) inScope(rootPath, path string) bool {
	parts := relParts(rootPath, filepath.Dir(path))

	if ds.options.MinDepth > 0 && len(parts) < ds.options.MinDepth {
		return false
	}

	if len(ds.options.IncludeDirs) == 0 {
		return true
	}
	for _, includeDir := range ds.options.IncludeDirs {
		if hasSegments(parts, includeDir) {
			return true
		}
	}
	return false
}

// relParts splits path relative to rootPath into its components
func relParts(rootPath, path string) []string {
	rel, err := filepath.Rel(rootPath, path)
	if err != nil {
		return nil
	}
	var parts []string
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

// hasSegments reports whether dir ("rest" or "rest/20") occurs as a run of
// whole components in parts.
func hasSegments(parts []string, dir string) bool {
	want := relParts(".", filepath.Clean(filepath.FromSlash(dir)))
	if len(want) == 0 {
		return false
	}
	for i := 0; i+len(want) <= len(parts); i++ {
		match := true
		for j, w := range want {
			if parts[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// getDepth returns how many directories path lies below rootPath
func (ds *DirectoryScanner) getDepth(rootPath, path string) int {
	return len(relParts(rootPath, path))
}

// GetAPICategories scans and categorizes HTML files by their top-level directory
func (ds *DirectoryScanner) GetAPICategories(rootPath string) (map[string][]string, error) {
	result, err := ds.ScanDirectory(rootPath)
	if err != nil {
		return nil, err
	}

	categories := make(map[string][]string)
	for _, filePath := range result.HTMLFiles {
		category := ds.extractCategory(filePath, rootPath)
		categories[category] = append(categories[category], filePath)
	}

	return categories, nil
}

// extractCategory names the category of a file after its first directory
// below the root, e.g. "account-df/index.html" -> "Account Df".
func (ds *DirectoryScanner) extractCategory(filePath, rootPath string) string {
	relPath, err := filepath.Rel(rootPath, filePath)
	if err != nil {
		return "Unknown"
	}

	parts := strings.Split(relPath, string(filepath.Separator))
	if len(parts) < 2 {
		return "Root"
	}

	category := strings.NewReplacer("_", " ", "-", " ").Replace(parts[0])
	return cases.Title(language.English).String(category)
}

// GetFileStats provides statistics about the scanned files
func (ds *DirectoryScanner) GetFileStats(rootPath string) (*FileStats, error) {
	result, err := ds.ScanDirectory(rootPath)
	if err != nil {
		return nil, err
	}

	stats := &FileStats{
		TotalFiles:   result.TotalFiles,
		TotalDirs:    result.TotalDirs,
		HTMLFiles:    len(result.HTMLFiles),
		SkippedFiles: len(result.SkippedFiles),
		ErrorFiles:   len(result.ErrorFiles),
		Categories:   make(map[string]int),
	}

	for _, filePath := range result.HTMLFiles {
		info, err := os.Stat(filePath)
		if err != nil {
			continue
		}

		size := info.Size()
		stats.TotalSize += size

		if stats.LargestFile == "" || size > stats.LargestSize {
			stats.LargestFile = filePath
			stats.LargestSize = size
		}
		if stats.SmallestFile == "" || size < stats.SmallestSize {
			stats.SmallestFile = filePath
			stats.SmallestSize = size
		}

		stats.Categories[ds.extractCategory(filePath, rootPath)]++
	}

	return stats, nil
}

// FileStats provides file statistics
type FileStats struct {
	TotalFiles   int            `json:"total_files"`
	TotalDirs    int            `json:"total_dirs"`
	HTMLFiles    int            `json:"html_files"`
	SkippedFiles int            `json:"skipped_files"`
	ErrorFiles   int            `json:"error_files"`
	Categories   map[string]int `json:"categories"`
	TotalSize    int64          `json:"total_size"`
	LargestFile  string         `json:"largest_file"`
	SmallestFile string         `json:"smallest_file"`
	LargestSize  int64          `json:"largest_size"`
	SmallestSize int64          `json:"smallest_size"`
}

// Summary renders the statistics for a terminal
func (s *FileStats) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s HTML pages (%s), %s skipped, %s unreadable, %s directories\n",
		humanize.Comma(int64(s.HTMLFiles)), humanize.Bytes(uint64(s.TotalSize)),
		humanize.Comma(int64(s.SkippedFiles)), humanize.Comma(int64(s.ErrorFiles)),
		humanize.Comma(int64(s.TotalDirs)))

	if s.LargestFile != "" {
		fmt.Fprintf(&sb, "largest:  %s (%s)\n", s.LargestFile, humanize.Bytes(uint64(s.LargestSize)))
		fmt.Fprintf(&sb, "smallest: %s (%s)\n", s.SmallestFile, humanize.Bytes(uint64(s.SmallestSize)))
	}

	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "  %-32s %s\n", name, humanize.Comma(int64(s.Categories[name])))
	}

	return sb.String()
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
