// Package analysis derives a lightweight project report from collected files:
// primary language, frameworks, declared dependencies and insights.
// Every function here is pure; the same files always yield the same report.
package analysis

import (
	"path"
	"sort"
	"strings"

	"github.com/openkraft/archlens/internal/domain"
)

const (
	LanguageTypeScript = "TypeScript"
	LanguageJavaScript = "JavaScript"
	LanguagePython     = "Python"
)

// languagePriority is checked in order; the first language with any file wins.
var languagePriority = []struct {
	name       string
	extensions []string
}{
	{LanguageTypeScript, []string{".ts", ".tsx"}},
	{LanguageJavaScript, []string{".js", ".jsx"}},
	{LanguagePython, []string{".py"}},
}

// Analyze builds the analysis report for files.
func Analyze(files []domain.SourceFile) domain.AnalysisReport {
	language := DetectLanguage(files)
	frameworks := DetectFrameworks(files)
	deps, manifest := ExtractDependencies(files)

	tree := make([]string, 0, len(files))
	oversized := 0
	for _, f := range files {
		tree = append(tree, f.Path)
		if f.Oversized {
			oversized++
		}
	}
	sort.Strings(tree)

	libraries := []string{}
	for _, d := range deps {
		if d.Type == domain.DependencyProd {
			libraries = append(libraries, d.Name)
		}
	}

	return domain.AnalysisReport{
		Overview: domain.Overview{
			Language:   language,
			Frameworks: frameworks,
			Libraries:  libraries,
		},
		Structure:    domain.Structure{Tree: tree},
		Dependencies: deps,
		Insights: deriveInsights(insightInput{
			fileCount:   len(files),
			language:    language,
			deps:        deps,
			hasManifest: manifest != "",
			oversized:   oversized,
		}),
	}
}

// DetectLanguage returns the primary language or "" when none is recognized.
func DetectLanguage(files []domain.SourceFile) string {
	exts := make(map[string]bool)
	for _, f := range files {
		exts[strings.ToLower(path.Ext(f.Path))] = true
	}
	for _, lang := range languagePriority {
		for _, ext := range lang.extensions {
			if exts[ext] {
				return lang.name
			}
		}
	}
	return ""
}
