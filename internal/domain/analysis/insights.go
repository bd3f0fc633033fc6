package analysis

import (
	"fmt"

	"github.com/openkraft/archlens/internal/domain"
)

type insightInput struct {
	fileCount   int
	language    string
	deps        []domain.Dependency
	hasManifest bool
	oversized   int
}

func deriveInsights(in insightInput) domain.Insights {
	ins := domain.Insights{Warnings: []string{}, Recommendations: []string{}}

	if in.fileCount == 0 {
		ins.Warnings = append(ins.Warnings, "The archive contains no files.")
		ins.Recommendations = append(ins.Recommendations,
			"Upload an archive that contains the project's source files.")
		return ins
	}

	if in.language == "" {
		ins.Warnings = append(ins.Warnings, "The primary language could not be detected.")
		ins.Recommendations = append(ins.Recommendations,
			"Include source files with recognizable extensions (.ts, .tsx, .js, .jsx, .py).")
	}

	if (in.language == LanguageTypeScript || in.language == LanguageJavaScript) && !in.hasManifest {
		ins.Warnings = append(ins.Warnings,
			fmt.Sprintf("%s sources were found but no package.json manifest.", in.language))
	}

	if in.oversized > 0 {
		ins.Warnings = append(ins.Warnings,
			fmt.Sprintf("%d file(s) exceeded the content size limit and were not inspected.", in.oversized))
	}

	if len(in.deps) == 0 {
		ins.Recommendations = append(ins.Recommendations,
			"Include a dependency manifest (package.json) so dependencies can be analyzed.")
	} else if onlyDev(in.deps) {
		ins.Recommendations = append(ins.Recommendations,
			"Only development dependencies were declared; check that runtime dependencies are listed under \"dependencies\".")
	}

	return ins
}

func onlyDev(deps []domain.Dependency) bool {
	for _, d := range deps {
		if d.Type != domain.DependencyDev {
			return false
		}
	}
	return true
}
