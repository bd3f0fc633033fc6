package analysis

import (
	"path"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/openkraft/archlens/internal/domain"
)

const manifestName = "package.json"

// ExtractDependencies parses the project manifest and returns its
// dependencies in document order, prod before dev, together with the
// manifest path. A missing or invalid manifest yields no dependencies.
func ExtractDependencies(files []domain.SourceFile) ([]domain.Dependency, string) {
	manifest, ok := findManifest(files)
	if !ok {
		return []domain.Dependency{}, ""
	}
	if manifest.Oversized || !gjson.Valid(manifest.Content) {
		return []domain.Dependency{}, manifest.Path
	}

	deps := []domain.Dependency{}
	collect := func(key string, typ domain.DependencyType) {
		gjson.Get(manifest.Content, key).ForEach(func(name, version gjson.Result) bool {
			deps = append(deps, domain.Dependency{
				Name:    name.String(),
				Version: version.String(),
				Type:    typ,
			})
			return true
		})
	}
	collect("dependencies", domain.DependencyProd)
	collect("devDependencies", domain.DependencyDev)
	return deps, manifest.Path
}

// findManifest prefers a root package.json, then the shallowest one outside
// node_modules. Ties break on path so the choice is stable.
func findManifest(files []domain.SourceFile) (domain.SourceFile, bool) {
	var candidates []domain.SourceFile
	for _, f := range files {
		if path.Base(f.Path) != manifestName {
			continue
		}
		if f.Path == manifestName {
			return f, true
		}
		if strings.Contains("/"+f.Path, "/node_modules/") {
			continue
		}
		candidates = append(candidates, f)
	}
	if len(candidates) == 0 {
		return domain.SourceFile{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := strings.Count(candidates[i].Path, "/"), strings.Count(candidates[j].Path, "/")
		if di != dj {
			return di < dj
		}
		return candidates[i].Path < candidates[j].Path
	})
	return candidates[0], true
}
