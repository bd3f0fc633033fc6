package domain

import "slices"

// ArchiveRef is an opaque handle to one uploaded project version.
type ArchiveRef struct {
	DownloadURL string `json:"download_url"`
	DisplayName string `json:"display_name,omitempty"`
	SourceID    string `json:"source_id,omitempty"`
}

// EntryMeta locates one collected file on disk.
type EntryMeta struct {
	AbsolutePath string `json:"absolute_path"`
	SizeBytes    int64  `json:"size_bytes"`
}

// ExtractedTree is the collected view of an extraction directory. Keys are
// forward-slash relative paths without ".." segments.
type ExtractedTree struct {
	RootDir string               `json:"root_dir"`
	Entries map[string]EntryMeta `json:"entries"`
}

// Paths returns the relative paths of the tree in no particular order.
func (t ExtractedTree) Paths() []string {
	paths := make([]string, 0, len(t.Entries))
	for p := range t.Entries {
		paths = append(paths, p)
	}
	return paths
}

// PathPair records which sides of a comparison hold a path.
type PathPair struct {
	A *EntryMeta `json:"a,omitempty"`
	B *EntryMeta `json:"b,omitempty"`
}

// MergedTree is the union of two extracted trees keyed by relative path.
type MergedTree map[string]PathPair

// SourceFile is a collected file with its content materialized.
// Oversized files carry a placeholder marker instead of their bytes.
type SourceFile struct {
	Path      string `json:"path"`
	Content   string `json:"-"`
	SizeBytes int64  `json:"size_bytes"`
	Oversized bool   `json:"oversized,omitempty"`
}

// ChangeType classifies a path in a comparison.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// FileChange is one reported difference between two trees.
type FileChange struct {
	Path       string     `json:"path"`
	ChangeType ChangeType `json:"change_type"`
	Summary    string     `json:"summary,omitempty"`
}

// ComparisonResult is the outcome of comparing two project versions.
type ComparisonResult struct {
	TotalFilesCompared int          `json:"total_files_compared"`
	AddedFiles         []string     `json:"added_files"`
	RemovedFiles       []string     `json:"removed_files"`
	ChangedFiles       []string     `json:"changed_files"`
	Changes            []FileChange `json:"changes"`
}

// DependencyType distinguishes runtime from development dependencies.
type DependencyType string

const (
	DependencyProd DependencyType = "prod"
	DependencyDev  DependencyType = "dev"
)

type Dependency struct {
	Name    string         `json:"name"`
	Version string         `json:"version"`
	Type    DependencyType `json:"type"`
}

// Overview summarizes what the project is built with.
// An empty Language means the language could not be detected.
type Overview struct {
	Language   string   `json:"language,omitempty"`
	Frameworks []string `json:"frameworks"`
	Libraries  []string `json:"libraries"`
}

type Structure struct {
	Tree []string `json:"tree"`
}

type Insights struct {
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// AnalysisReport is the derived analysis of one project version.
type AnalysisReport struct {
	Overview     Overview     `json:"overview"`
	Structure    Structure    `json:"structure"`
	Dependencies []Dependency `json:"dependencies"`
	Insights     Insights     `json:"insights"`
}

// Clone returns a copy that shares no slices with r. Nil and empty slices
// keep their distinction so the JSON shape is unchanged.
func (r AnalysisReport) Clone() AnalysisReport {
	r.Overview.Frameworks = slices.Clone(r.Overview.Frameworks)
	r.Overview.Libraries = slices.Clone(r.Overview.Libraries)
	r.Structure.Tree = slices.Clone(r.Structure.Tree)
	r.Dependencies = slices.Clone(r.Dependencies)
	r.Insights.Warnings = slices.Clone(r.Insights.Warnings)
	r.Insights.Recommendations = slices.Clone(r.Insights.Recommendations)
	return r
}

// ArchiveMeta is the size and checksum of an uploaded archive.
type ArchiveMeta struct {
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// ComparisonPreview is the metadata-only comparison of two archives.
type ComparisonPreview struct {
	DiffSizeBytes int64 `json:"diff_size_bytes"`
	SameChecksum  bool  `json:"same_checksum"`
}

// Merge folds two extracted trees into one map so every path can be
// classified in a single pass.
func Merge(a, b ExtractedTree) MergedTree {
	merged := make(MergedTree, len(a.Entries)+len(b.Entries))
	for p, meta := range a.Entries {
		m := meta
		pair := merged[p]
		pair.A = &m
		merged[p] = pair
	}
	for p, meta := range b.Entries {
		m := meta
		pair := merged[p]
		pair.B = &m
		merged[p] = pair
	}
	return merged
}
