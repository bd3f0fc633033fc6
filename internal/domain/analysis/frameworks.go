package analysis

import (
	"path"
	"regexp"
	"strings"

	"github.com/openkraft/archlens/internal/domain"
)

// frameworkRule detects one framework. A rule matches when any file's base
// name starts with one of fileMarkers or any file content matches one of
// patterns. Rules are independent of each other.
type frameworkRule struct {
	name        string
	fileMarkers []string
	patterns    []*regexp.Regexp
}

// moduleToken matches a quoted module specifier such as "next", 'next/router'
// or the "next" key of a package.json.
func moduleToken(module string) *regexp.Regexp {
	return regexp.MustCompile(`["']` + regexp.QuoteMeta(module) + `(?:/[^"'\s]*)?["']`)
}

// pythonImport matches an import statement or a requirements.txt pin.
func pythonImport(module string) *regexp.Regexp {
	m := regexp.QuoteMeta(module)
	return regexp.MustCompile(`(?mi)^\s*(?:(?:from|import)\s+` + m + `\b|` + m + `\s*(?:[=<>~!].*)?$)`)
}

var frameworkRules = []frameworkRule{
	{name: "Next.js", fileMarkers: []string{"next.config"}, patterns: []*regexp.Regexp{moduleToken("next")}},
	{name: "React", patterns: []*regexp.Regexp{moduleToken("react")}},
	{name: "Express", patterns: []*regexp.Regexp{moduleToken("express")}},
	{name: "NestJS", fileMarkers: []string{"nest-cli.json"}, patterns: []*regexp.Regexp{regexp.MustCompile(`["']@nestjs/[^"'\s]+["']`)}},
	{name: "Vue", fileMarkers: []string{"vue.config"}, patterns: []*regexp.Regexp{moduleToken("vue")}},
	{name: "Angular", fileMarkers: []string{"angular.json"}, patterns: []*regexp.Regexp{moduleToken("@angular/core")}},
	{name: "Django", patterns: []*regexp.Regexp{pythonImport("django")}},
	{name: "Flask", patterns: []*regexp.Regexp{pythonImport("flask")}},
	{name: "FastAPI", patterns: []*regexp.Regexp{pythonImport("fastapi")}},
}

// DetectFrameworks returns every framework with at least one match, in rule order.
func DetectFrameworks(files []domain.SourceFile) []string {
	found := []string{}
	for _, rule := range frameworkRules {
		if rule.matches(files) {
			found = append(found, rule.name)
		}
	}
	return found
}

func (r frameworkRule) matches(files []domain.SourceFile) bool {
	for _, f := range files {
		base := strings.ToLower(path.Base(f.Path))
		for _, marker := range r.fileMarkers {
			if strings.HasPrefix(base, marker) {
				return true
			}
		}
		if f.Oversized {
			continue
		}
		for _, re := range r.patterns {
			if re.MatchString(f.Content) {
				return true
			}
		}
	}
	return false
}
