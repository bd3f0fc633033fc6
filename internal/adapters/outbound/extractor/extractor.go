package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openkraft/archlens/internal/domain"
)

const flagEncrypted = 0x1

// ZipExtractor implements domain.ArchiveExtractor for ZIP archives.
// Every entry is checked against the sandbox before anything is written.
type ZipExtractor struct {
	workers       int
	maxEntryBytes int64
	logger        *zap.Logger
}

type Option func(*ZipExtractor)

func WithLogger(l *zap.Logger) Option {
	return func(x *ZipExtractor) { x.logger = l }
}

func New(cfg domain.ExtractConfig, opts ...Option) *ZipExtractor {
	x := &ZipExtractor{
		workers:       cfg.Workers,
		maxEntryBytes: cfg.MaxEntryBytes,
		logger:        zap.NewNop(),
	}
	if x.workers < 1 {
		x.workers = 1
	}
	if x.maxEntryBytes <= 0 {
		x.maxEntryBytes = domain.DefaultMaxEntryBytes
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// CheckFormat accepts .zip names and names without an extension, whose
// content is validated on open. RAR and every other extension are refused
// up front so no download or extraction is attempted.
func (x *ZipExtractor) CheckFormat(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || ext == ".zip" {
		return nil
	}
	return &domain.UnsupportedFormatError{Name: filepath.Base(name), Extension: ext}
}

type entryPlan struct {
	file   *zip.File
	target string
}

// Extract unpacks archivePath into destDir and returns the absolute paths of
// the written files, sorted. On failure the partial output is removed.
// The file name is not consulted: callers gate on CheckFormat and the
// content is validated as ZIP on open.
func (x *ZipExtractor) Extract(ctx context.Context, archivePath, destDir string) (paths []string, err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, &domain.CorruptArchiveError{Path: filepath.Base(archivePath), Err: err}
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("resolving extraction directory: %w", err)
	}

	plan, err := x.plan(r.File, root)
	if err == nil {
		err = conflicts(plan, root, filepath.Base(archivePath))
	}
	if err != nil {
		return nil, err
	}

	_, statErr := os.Stat(root)
	created := errors.Is(statErr, os.ErrNotExist)
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("creating extraction directory: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if created {
			_ = os.RemoveAll(root)
			return
		}
		for _, p := range plan {
			_ = os.Remove(p.target)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.workers)
	for _, p := range plan {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return x.writeEntry(archivePath, p)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths = make([]string, 0, len(plan))
	for _, p := range plan {
		paths = append(paths, p.target)
	}
	sort.Strings(paths)
	x.logger.Debug("archive extracted", zap.String("archive", filepath.Base(archivePath)), zap.Int("files", len(paths)))
	return paths, nil
}

// plan validates every entry and maps it to its sandboxed target. Later
// entries with the same target replace earlier ones so no two workers
// write the same file.
func (x *ZipExtractor) plan(files []*zip.File, root string) ([]entryPlan, error) {
	byTarget := make(map[string]int, len(files))
	var plan []entryPlan
	for _, f := range files {
		if isDirEntry(f) {
			continue
		}
		target, err := SafeTarget(root, f.Name)
		if err != nil {
			return nil, err
		}
		if f.Mode()&os.ModeSymlink != 0 {
			x.logger.Warn("skipping symlink entry", zap.String("entry", f.Name))
			continue
		}
		if f.Flags&flagEncrypted != 0 {
			return nil, &domain.CorruptArchiveError{Path: f.Name, Err: errors.New("entry is encrypted")}
		}
		if i, ok := byTarget[target]; ok {
			plan[i].file = f
			continue
		}
		byTarget[target] = len(plan)
		plan = append(plan, entryPlan{file: f, target: target})
	}
	return plan, nil
}

// conflicts rejects archives where one entry's target is the parent
// directory of another, such as "a" next to "a/b".
func conflicts(plan []entryPlan, root, archiveName string) error {
	files := make(map[string]string, len(plan))
	for _, p := range plan {
		files[p.target] = p.file.Name
	}
	for _, p := range plan {
		for dir := filepath.Dir(p.target); len(dir) > len(root); dir = filepath.Dir(dir) {
			if name, ok := files[dir]; ok {
				return &domain.CorruptArchiveError{
					Path: archiveName,
					Err:  fmt.Errorf("entry %s is both a file and the parent of %s", name, p.file.Name),
				}
			}
		}
	}
	return nil
}

// writeEntry creates the entry's parent directory, then streams its content.
func (x *ZipExtractor) writeEntry(archivePath string, p entryPlan) (err error) {
	if err := os.MkdirAll(filepath.Dir(p.target), 0o750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", p.file.Name, err)
	}

	rc, err := p.file.Open()
	if err != nil {
		return &domain.CorruptArchiveError{Path: filepath.Base(archivePath), Err: err}
	}
	defer rc.Close()

	out, err := os.OpenFile(p.target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("creating %s: %w", p.file.Name, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", p.file.Name, cerr)
		}
	}()

	src := &taggedReader{r: io.LimitReader(rc, x.maxEntryBytes+1)}
	n, err := io.Copy(out, src)
	if err != nil {
		var re readFailure
		if errors.As(err, &re) {
			return &domain.CorruptArchiveError{Path: filepath.Base(archivePath), Err: re.err}
		}
		return fmt.Errorf("writing %s: %w", p.file.Name, err)
	}
	if n > x.maxEntryBytes {
		return &domain.CorruptArchiveError{
			Path: filepath.Base(archivePath),
			Err:  fmt.Errorf("entry %s exceeds %d bytes", p.file.Name, x.maxEntryBytes),
		}
	}
	return nil
}

// SafeTarget resolves an archive entry name inside root. Absolute names,
// drive-qualified names and names that climb out of root are rejected with
// a *domain.PathTraversalError.
func SafeTarget(root, name string) (string, error) {
	normalized := strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(normalized, "/") || hasDrivePrefix(normalized) {
		return "", &domain.PathTraversalError{Entry: name}
	}

	target := filepath.Join(root, filepath.FromSlash(normalized))
	if target == root || !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", &domain.PathTraversalError{Entry: name}
	}
	return target, nil
}

func hasDrivePrefix(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDirEntry(f *zip.File) bool {
	return strings.HasSuffix(f.Name, "/") || strings.HasSuffix(f.Name, "\\") || f.FileInfo().IsDir()
}

// taggedReader marks errors coming from the archive side of a copy so they
// can be told apart from write errors.
type taggedReader struct {
	r io.Reader
}

type readFailure struct {
	err error
}

func (e readFailure) Error() string { return e.err.Error() }

func (t *taggedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		return n, readFailure{err: err}
	}
	return n, err
}
