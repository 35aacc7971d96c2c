// Package scanner previews what an engine analysis of a workspace would
// cover: it maps source files to engine languages by extension, honoring the
// workspace's .gitignore the same way the engine does, without spawning
// anything.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	gitignore "github.com/sabhiram/go-gitignore"
)

// extensionLanguages mirrors the engine's extension map.
var extensionLanguages = map[string]string{
	".hs":      "haskell",
	".lhs":     "haskell",
	".hs-boot": "haskell",
	".py":      "python",
	".res":     "rescript",
	".go":      "golang",
	".rs":      "rust",
	".ts":      "typescript",
	".tsx":     "typescript",
	".purs":    "purescript",
	".js":      "javascript",
	".jsx":     "javascript",
	".mjs":     "javascript",
	".cjs":     "javascript",
}

// Summary is the result of scanning one workspace root.
type Summary struct {
	Root string `json:"root"`
	// Files maps an engine language to the relative paths of the files it
	// would analyze, in walk order.
	Files map[string][]string `json:"files"`
	// Ignored counts files and directories excluded by .gitignore.
	Ignored int `json:"ignored"`
}

// Languages returns the languages present in the summary, sorted.
func (s *Summary) Languages() []string {
	out := make([]string, 0, len(s.Files))
	for lang := range s.Files {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Counts returns the number of analyzable files per language.
func (s *Summary) Counts() map[string]int {
	counts := make(map[string]int, len(s.Files))
	for lang, files := range s.Files {
		counts[lang] = len(files)
	}
	return counts
}

// Scan walks root and buckets analyzable files by engine language. Entries
// matched by the root's .gitignore are skipped, as is the .git directory
// itself.
func Scan(root string) (*Summary, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root is not a directory: %s", root)
	}

	matcher := loadGitignore(root)
	sum := &Summary{Root: root, Files: make(map[string][]string)}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel) {
				sum.Ignored++
				return filepath.SkipDir
			}
			return nil
		}

		if matcher != nil && matcher.MatchesPath(rel) {
			sum.Ignored++
			return nil
		}

		lang, ok := extensionLanguages[filepath.Ext(path)]
		if !ok {
			return nil
		}
		sum.Files[lang] = append(sum.Files[lang], rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return sum, nil
}

// loadGitignore compiles the root's .gitignore, or nil when there is none.
func loadGitignore(root string) *gitignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	matcher, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return matcher
}
