// Package discover walks a project root, honors ignore rules with real
// git semantics, and classifies every regular file as code, markdown,
// text, or skip.
package discover

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/mvp-joe/codetrace/internal/lang"
)

// Kind is the classification a discovered file is routed to.
type Kind int

const (
	Skip Kind = iota
	Code
	Markdown
	Text
)

// File is one discovered, classified file.
type File struct {
	Path     string // project-relative, slash-separated
	AbsPath  string
	Kind     Kind
	Language string // set only for Kind == Code
}

var markdownExts = map[string]bool{"md": true, "markdown": true}

var textExts = map[string]bool{
	"txt": true, "log": true, "xml": true, "html": true, "htm": true, "csv": true, "tsv": true,
}

var textBasenames = map[string]bool{
	"readme": true, "license": true, "changelog": true, "authors": true,
	"contributors": true, "makefile": true, "dockerfile": true, "gitignore": true,
}

// Discovery walks rootDir honoring .gitignore/.git/info/exclude/global
// excludes and a project-local .noindex (same syntax as .gitignore).
type Discovery struct {
	rootDir  string
	registry *lang.Registry
}

// New builds a Discovery rooted at rootDir using the given language registry
// for code classification. If registry is nil, the default registry is used.
func New(rootDir string, registry *lang.Registry) *Discovery {
	if registry == nil {
		registry = lang.NewRegistry()
	}
	return &Discovery{rootDir: rootDir, registry: registry}
}

// ClassifyFile classifies a single project-relative path without walking
// the rest of the tree — used by index_file (§6), which reconciles one
// changed path at a time rather than a full discovery pass.
func (d *Discovery) ClassifyFile(relPath string) File {
	relPath = filepath.ToSlash(relPath)
	absPath := filepath.Join(d.rootDir, relPath)
	kind, language := d.classify(relPath, absPath)
	return File{Path: relPath, AbsPath: absPath, Kind: kind, Language: language}
}

// Walk enumerates every file under the root, honoring ignore rules, and
// returns the classified, non-skipped files in directory-walk order.
func (d *Discovery) Walk() ([]File, error) {
	matcher, err := d.buildMatcher()
	if err != nil {
		return nil, err
	}

	var files []File
	err = filepath.Walk(d.rootDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(d.rootDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if matcher.MatchesPath(rel) {
			return nil
		}

		kind, language := d.classify(rel, p)
		if kind == Skip {
			return nil
		}

		files = append(files, File{Path: rel, AbsPath: p, Kind: kind, Language: language})
		return nil
	})
	return files, err
}

// buildMatcher composes .gitignore files at every directory level, plus
// .git/info/exclude, the global excludes file, and .noindex, into a single
// ignore matcher. Lines are read in increasing specificity so deeper
// .gitignore files take precedence the way git itself resolves them.
func (d *Discovery) buildMatcher() (*ignore.GitIgnore, error) {
	var lines []string

	if global := globalExcludesPath(); global != "" {
		lines = append(lines, readLines(global)...)
	}
	lines = append(lines, readLines(filepath.Join(d.rootDir, ".git", "info", "exclude"))...)

	_ = filepath.Walk(d.rootDir, func(p string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		lines = append(lines, readLines(filepath.Join(p, ".gitignore"))...)
		lines = append(lines, readLines(filepath.Join(p, ".noindex"))...)
		return nil
	})

	lines = append(lines, ".git/")

	return ignore.CompileIgnoreLines(lines...)
}

func globalExcludesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(home, ".config", "git", "ignore")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func readLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return strings.Split(string(data), "\n")
}

func (d *Discovery) classify(relPath, absPath string) (Kind, string) {
	base := strings.ToLower(filepath.Base(relPath))
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(relPath), "."))

	if markdownExts[ext] {
		return Markdown, ""
	}
	if p, ok := d.registry.ForExtension(ext); ok {
		return Code, p.Name()
	}
	if textExts[ext] || textBasenames[trimExt(base)] {
		if looksBinary(absPath) {
			return Skip, ""
		}
		return Text, ""
	}
	return Skip, ""
}

func trimExt(base string) string {
	if idx := strings.LastIndex(base, "."); idx > 0 {
		return base[:idx]
	}
	return base
}

// looksBinary treats a UTF-8-decodable file with fewer than 80% printable
// runes as binary, so it's skipped.
func looksBinary(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}

	sample := data
	const maxSample = 8192
	if len(sample) > maxSample {
		sample = sample[:maxSample]
	}

	printable := 0
	total := 0
	for _, r := range string(sample) {
		total++
		if r == '\n' || r == '\t' || r == '\r' || (r >= 0x20 && r != 0x7f) {
			printable++
		}
	}
	if total == 0 {
		return false
	}
	return float64(printable)/float64(total) < 0.8
}
