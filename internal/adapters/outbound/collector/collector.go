package collector

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/openkraft/archlens/internal/domain"
)

// FileCollector implements domain.TreeCollector by walking the filesystem.
type FileCollector struct {
	maxContentBytes int64
	exclude         []string
	logger          *zap.Logger
}

type Option func(*FileCollector)

func WithLogger(l *zap.Logger) Option {
	return func(c *FileCollector) { c.logger = l }
}

func New(cfg domain.CollectConfig, opts ...Option) *FileCollector {
	c := &FileCollector{
		maxContentBytes: cfg.MaxContentBytes,
		exclude:         cfg.Exclude,
		logger:          zap.NewNop(),
	}
	if c.maxContentBytes <= 0 {
		c.maxContentBytes = domain.DefaultMaxContentBytes
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect walks rootDir and records every regular file under its
// forward-slash relative path. Entries that cannot be inspected are logged
// and skipped.
func (c *FileCollector) Collect(rootDir string) (domain.ExtractedTree, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return domain.ExtractedTree{}, err
	}
	if info, err := os.Stat(absRoot); err != nil {
		return domain.ExtractedTree{}, fmt.Errorf("collecting %s: %w", filepath.Base(absRoot), err)
	} else if !info.IsDir() {
		return domain.ExtractedTree{}, fmt.Errorf("collecting %s: not a directory", filepath.Base(absRoot))
	}

	tree := domain.ExtractedTree{
		RootDir: absRoot,
		Entries: make(map[string]domain.EntryMeta),
	}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			c.logger.Warn("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if c.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || c.excluded(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			c.logger.Warn("skipping unreadable entry", zap.String("path", rel), zap.Error(err))
			return nil
		}
		tree.Entries[rel] = domain.EntryMeta{AbsolutePath: path, SizeBytes: info.Size()}
		return nil
	})
	if err != nil {
		return domain.ExtractedTree{}, fmt.Errorf("collecting %s: %w", filepath.Base(absRoot), err)
	}
	return tree, nil
}

func (c *FileCollector) excluded(rel string) bool {
	for _, pattern := range c.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Load materializes the content of every file in the tree, sorted by path.
// Unreadable files are logged and left out.
func (c *FileCollector) Load(tree domain.ExtractedTree) []domain.SourceFile {
	paths := tree.Paths()
	sort.Strings(paths)

	files := make([]domain.SourceFile, 0, len(paths))
	for _, p := range paths {
		meta := tree.Entries[p]
		content, err := c.ReadContent(meta)
		if err != nil {
			re := &domain.ReadError{Path: p, Err: err}
			c.logger.Warn("skipping unreadable file", zap.String("path", p), zap.Error(re))
			continue
		}
		files = append(files, domain.SourceFile{
			Path:      p,
			Content:   content,
			SizeBytes: meta.SizeBytes,
			Oversized: meta.SizeBytes > c.maxContentBytes,
		})
	}
	return files
}

// ReadContent returns the file's text, or a placeholder naming its size and
// digest when it exceeds the content ceiling.
func (c *FileCollector) ReadContent(meta domain.EntryMeta) (string, error) {
	f, err := os.Open(meta.AbsolutePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if meta.SizeBytes > c.maxContentBytes {
		return placeholder(f)
	}

	data, err := io.ReadAll(io.LimitReader(f, c.maxContentBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > c.maxContentBytes {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return "", err
		}
		return placeholder(f)
	}
	return string(data), nil
}

func placeholder(r io.Reader) (string, error) {
	h := xxhash.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", err
	}
	return Placeholder(n, h.Sum64()), nil
}

// Placeholder formats the marker that stands in for an oversized file.
// Two files only share a marker when their size and digest match.
func Placeholder(size int64, digest uint64) string {
	return fmt.Sprintf("[oversized file: %d bytes, xxhash %016x]", size, digest)
}
