package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"
)

// writeTree creates files below root from a path -> content map
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relPath, content := range files {
		fullPath := filepath.Join(root, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", fullPath, err)
		}
	}
}

func TestDirectoryScanner_ScanDirectory(t *testing.T) {
	tempDir := t.TempDir()

	writeTree(t, tempDir, map[string]string{
		"index.html":                        "site landing page",
		"404.html":                          "404 page",
		"rest/20/account-df/index.html":     "account definitions",
		"rest/20/pricing-df/index.html":     "pricing definitions",
		"rest/20/pricing-df/notes.txt":      "not html",
		"assets/style.css":                  "css file",
		"assets/frame.html":                 "asset html",
		"javascripts/app.js":                "js file",
		".cache/rest/20/index.html":         "hidden",
		"node_modules/pkg/readme.html":      "dependency",
		"rest/20/transaction-df/INDEX.HTML": "transaction definitions",
	})

	scanner := NewDirectoryScanner(DefaultScannerOptions())
	result, err := scanner.ScanDirectory(tempDir)
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}

	// reference pages are index.html files below the root
	if len(result.HTMLFiles) != 2 {
		t.Errorf("Expected 2 HTML files, got %d", len(result.HTMLFiles))
		t.Logf("Found files: %v", result.HTMLFiles)
	}
	for _, file := range result.HTMLFiles {
		if strings.Contains(file, "assets") || strings.Contains(file, "node_modules") || strings.Contains(file, ".cache") {
			t.Errorf("Unexpected file %s", file)
		}
	}

	// root index and 404 are skipped pages
	if len(result.SkippedFiles) != 2 {
		t.Errorf("Expected 2 skipped files, got %v", result.SkippedFiles)
	}

	for _, dir := range result.Directories {
		if dir == tempDir {
			t.Error("The root directory should not be listed")
		}
	}
}

func TestDirectoryScanner_FilePatterns(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, map[string]string{
		"account-df/index.html": "account",
		"account-df/print.html": "print view",
		"pricing-df/index.html": "pricing",
	})

	scanner := NewDirectoryScanner(&ScannerOptions{
		Recursive:    true,
		FilePatterns: []string{"index.html"},
	})

	result, err := scanner.ScanDirectory(tempDir)
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}
	if len(result.HTMLFiles) != 2 {
		t.Errorf("Expected 2 matching files, got %v", result.HTMLFiles)
	}
}

func TestDirectoryScanner_NonRecursive(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, map[string]string{
		"account-df.html":       "account",
		"pricing-df/index.html": "pricing",
	})

	scanner := NewDirectoryScanner(&ScannerOptions{Recursive: false})
	result, err := scanner.ScanDirectory(tempDir)
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}
	if len(result.HTMLFiles) != 1 || filepath.Base(result.HTMLFiles[0]) != "account-df.html" {
		t.Errorf("Expected only account-df.html, got %v", result.HTMLFiles)
	}
	if result.TotalDirs != 0 {
		t.Errorf("Expected no directories to be entered, got %d", result.TotalDirs)
	}
}

func TestDirectoryScanner_MissingDirectory(t *testing.T) {
	scanner := NewDirectoryScanner(nil)
	if _, err := scanner.ScanDirectory(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for a missing directory")
	}
}

func TestDirectoryScanner_GetAPICategories(t *testing.T) {
	tempDir := t.TempDir()

	writeTree(t, tempDir, map[string]string{
		"account-df/index.html":        "account",
		"account-ep/index.html":        "account endpoints",
		"pricing_df/index.html":        "pricing",
		"pricing_df/common/index.html": "pricing common",
		"primitives.html":              "primitives",
	})

	scanner := NewDirectoryScanner(&ScannerOptions{Recursive: true})

	categories, err := scanner.GetAPICategories(tempDir)
	if err != nil {
		t.Fatalf("GetAPICategories failed: %v", err)
	}

	expected := map[string]int{
		"Account Df": 1,
		"Account Ep": 1,
		"Pricing Df": 2,
		"Root":       1,
	}

	if len(categories) != len(expected) {
		t.Errorf("Expected %d categories, got %d: %v", len(expected), len(categories), categories)
	}
	for category, count := range expected {
		if len(categories[category]) != count {
			t.Errorf("Expected %d files in category %s, got %d", count, category, len(categories[category]))
		}
	}
}

func TestDirectoryScanner_GetFileStats(t *testing.T) {
	tempDir := t.TempDir()

	writeTree(t, tempDir, map[string]string{
		"account-df/index.html": "small",
		"order-df/index.html":   strings.Repeat("order definition ", 200),
		"trade-df/index.html":   "medium content here",
	})

	scanner := NewDirectoryScanner(&ScannerOptions{Recursive: true})

	stats, err := scanner.GetFileStats(tempDir)
	if err != nil {
		t.Fatalf("GetFileStats failed: %v", err)
	}

	if stats.HTMLFiles != 3 {
		t.Errorf("Expected 3 HTML files, got %d", stats.HTMLFiles)
	}
	if !strings.Contains(stats.LargestFile, "order-df") {
		t.Errorf("Expected largest file to be the order page, got %s", stats.LargestFile)
	}
	if !strings.Contains(stats.SmallestFile, "account-df") {
		t.Errorf("Expected smallest file to be the account page, got %s", stats.SmallestFile)
	}
	if stats.TotalSize != int64(len("small")+len(strings.Repeat("order definition ", 200))+len("medium content here")) {
		t.Errorf("Unexpected total size %d", stats.TotalSize)
	}
	if stats.Categories["Order Df"] != 1 {
		t.Errorf("Expected one page in Order Df, got %v", stats.Categories)
	}

	summary := stats.Summary()
	if !strings.HasPrefix(summary, "3 HTML pages") {
		t.Errorf("Unexpected summary:\n%s", summary)
	}
	if !strings.Contains(summary, "Order Df") {
		t.Errorf("Summary should list categories:\n%s", summary)
	}
}

func TestDirectoryScanner_Filters(t *testing.T) {
	scanner := NewDirectoryScanner(&ScannerOptions{
		SkipIndex:   true,
		SkipAssets:  true,
		ExcludeDirs: []string{"deprecated"},
		MaxDepth:    3,
	})

	root := filepath.Join("site", "docs")

	fileTests := []struct {
		path     string
		expected bool
	}{
		{filepath.Join(root, "index.html"), true},
		{filepath.Join(root, "rest", "20", "account-df", "index.html"), false},
		{filepath.Join(root, "404.html"), true},
		{filepath.Join(root, "images", "logo.html"), true},
		{filepath.Join(root, "rest", "20", "pricing-df", "index.html"), false},
	}

	for _, test := range fileTests {
		info := &mockFileInfo{name: filepath.Base(test.path), isDir: false}
		if result := scanner.shouldSkipFile(root, test.path, info); result != test.expected {
			t.Errorf("shouldSkipFile(%s) = %v, expected %v", test.path, result, test.expected)
		}
	}

	dirTests := []struct {
		path     string
		expected bool
	}{
		{filepath.Join(root, ".git"), true},
		{filepath.Join(root, "node_modules"), true},
		{filepath.Join(root, "stylesheets"), true},
		{filepath.Join(root, "deprecated"), true},
		{filepath.Join(root, "rest", "20", "account-df"), false},
		{filepath.Join(root, "rest", "20", "account-df", "extra"), true},
	}

	for _, test := range dirTests {
		info := &mockFileInfo{name: filepath.Base(test.path), isDir: true}
		if result := scanner.shouldSkipDirectory(root, test.path, info); result != test.expected {
			t.Errorf("shouldSkipDirectory(%s) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

// scanPages writes a small reference mirror below root and scans it
func scanPages(t *testing.T, root string, options *ScannerOptions) []string {
	t.Helper()
	writeTree(t, root, map[string]string{
		"index.html":                       "site landing page",
		"rest/20/account-df/index.html":    "account definitions",
		"rest/20/pricing-df/index.html":    "pricing definitions",
		"rest/20/old/order-df/index.html":  "old order definitions",
		"guides/index.html":                "guides",
		"guides/getting-started/step.html": "guide step",
	})

	result, err := NewDirectoryScanner(options).ScanDirectory(root)
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}

	var pages []string
	for _, file := range result.HTMLFiles {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			t.Fatalf("Rel failed: %v", err)
		}
		pages = append(pages, filepath.ToSlash(rel))
	}
	sort.Strings(pages)
	return pages
}

func TestDirectoryScanner_ScanIncludeDirs(t *testing.T) {
	options := DefaultScannerOptions()
	options.IncludeDirs = []string{"account-df", "guides/getting-started"}

	pages := scanPages(t, t.TempDir(), options)
	expected := []string{"guides/getting-started/step.html", "rest/20/account-df/index.html"}
	if !reflect.DeepEqual(pages, expected) {
		t.Errorf("Expected %v, got %v", expected, pages)
	}
}

func TestDirectoryScanner_ScanMinDepth(t *testing.T) {
	options := DefaultScannerOptions()
	options.MinDepth = 3

	pages := scanPages(t, t.TempDir(), options)
	expected := []string{
		"rest/20/account-df/index.html",
		"rest/20/old/order-df/index.html",
		"rest/20/pricing-df/index.html",
	}
	if !reflect.DeepEqual(pages, expected) {
		t.Errorf("Expected %v, got %v", expected, pages)
	}
}

func TestDirectoryScanner_ScanMaxDepth(t *testing.T) {
	options := DefaultScannerOptions()
	options.MaxDepth = 1

	pages := scanPages(t, t.TempDir(), options)
	expected := []string{"guides/index.html"}
	if !reflect.DeepEqual(pages, expected) {
		t.Errorf("Expected %v, got %v", expected, pages)
	}
}

func TestDirectoryScanner_ScanExcludeDirs(t *testing.T) {
	// the root's own name must not match an excluded directory
	root := filepath.Join(t.TempDir(), "old-mirror")
	options := DefaultScannerOptions()
	options.ExcludeDirs = []string{"old", "guides"}

	pages := scanPages(t, root, options)
	expected := []string{"rest/20/account-df/index.html", "rest/20/pricing-df/index.html"}
	if !reflect.DeepEqual(pages, expected) {
		t.Errorf("Expected %v, got %v", expected, pages)
	}
}

func TestHasSegments(t *testing.T) {
	parts := []string{"rest", "20", "account-df"}

	tests := []struct {
		dir      string
		expected bool
	}{
		{"rest", true},
		{"rest/20", true},
		{"20/account-df", true},
		{"account", false},
		{"rest/account-df", false},
		{"", false},
	}

	for _, test := range tests {
		if result := hasSegments(parts, test.dir); result != test.expected {
			t.Errorf("hasSegments(%q) = %v, expected %v", test.dir, result, test.expected)
		}
	}
}

func TestDirectoryScanner_GetDepth(t *testing.T) {
	scanner := NewDirectoryScanner(nil)

	tests := []struct {
		path     string
		expected int
	}{
		{"site", 0},
		{filepath.Join("site", "rest"), 1},
		{filepath.Join("site", "rest", "20", "account-df"), 3},
	}

	for _, test := range tests {
		if result := scanner.getDepth("site", test.path); result != test.expected {
			t.Errorf("getDepth(%s) = %d, expected %d", test.path, result, test.expected)
		}
	}
}

// mockFileInfo implements os.FileInfo for testing
type mockFileInfo struct {
	name  string
	isDir bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return 0 }
func (m *mockFileInfo) Mode() os.FileMode  { return 0 }
func (m *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }
