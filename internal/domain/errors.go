package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures for callers.
type ErrorKind string

const (
	KindDownload          ErrorKind = "download"
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindPathTraversal     ErrorKind = "path_traversal"
	KindCorruptArchive    ErrorKind = "corrupt_archive"
	KindRead              ErrorKind = "read"
	KindAnalysis          ErrorKind = "analysis"
	KindInternal          ErrorKind = "internal"
)

// UserError is implemented by every pipeline error. UserMessage never
// contains low-level library error text.
type UserError interface {
	error
	Kind() ErrorKind
	UserMessage() string
}

// DownloadError reports that an archive could not be fetched after all attempts.
type DownloadError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *DownloadError) Unwrap() error   { return e.Err }
func (e *DownloadError) Kind() ErrorKind { return KindDownload }
func (e *DownloadError) UserMessage() string {
	return "the archive could not be downloaded; please try again later"
}

// UnsupportedFormatError reports an archive format the extractor refuses.
type UnsupportedFormatError struct {
	Name      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported archive format %q for %s", e.Extension, e.Name)
}

func (e *UnsupportedFormatError) Kind() ErrorKind { return KindUnsupportedFormat }
func (e *UnsupportedFormatError) UserMessage() string {
	if e.Extension == ".rar" {
		return "RAR archives are not supported; please re-package the project as a ZIP file and upload it again"
	}
	return "this archive format is not supported; please re-package the project as a ZIP file and upload it again"
}

// PathTraversalError reports an archive entry that would land outside the
// extraction directory.
type PathTraversalError struct {
	Entry string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("archive entry %q escapes the extraction directory", e.Entry)
}

func (e *PathTraversalError) Kind() ErrorKind { return KindPathTraversal }
func (e *PathTraversalError) UserMessage() string {
	return fmt.Sprintf("the archive contains an unsafe path (%s) and was rejected", e.Entry)
}

// CorruptArchiveError reports an archive that could not be read. Err holds
// the underlying cause for logs only.
type CorruptArchiveError struct {
	Path string
	Err  error
}

func (e *CorruptArchiveError) Error() string {
	return fmt.Sprintf("reading archive %s: %v", e.Path, e.Err)
}

func (e *CorruptArchiveError) Unwrap() error   { return e.Err }
func (e *CorruptArchiveError) Kind() ErrorKind { return KindCorruptArchive }
func (e *CorruptArchiveError) UserMessage() string {
	return "archive could not be unpacked; verify it is a valid, unencrypted ZIP"
}

// ReadError reports a single unreadable file. It is recovered per file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error   { return e.Err }
func (e *ReadError) Kind() ErrorKind { return KindRead }
func (e *ReadError) UserMessage() string {
	return fmt.Sprintf("the file %s could not be read", e.Path)
}

// AnalysisError reports an unexpected failure while building a report.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string   { return fmt.Sprintf("building analysis report: %v", e.Err) }
func (e *AnalysisError) Unwrap() error   { return e.Err }
func (e *AnalysisError) Kind() ErrorKind { return KindAnalysis }
func (e *AnalysisError) UserMessage() string {
	return "the project analysis could not be completed"
}

// InternalError wraps any unclassified failure caught at the pipeline boundary.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string   { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *InternalError) Unwrap() error   { return e.Err }
func (e *InternalError) Kind() ErrorKind { return KindInternal }
func (e *InternalError) UserMessage() string {
	return "an unexpected error occurred while processing the archive"
}

// KindOf returns the kind of the first UserError in err's chain, or
// KindInternal.
func KindOf(err error) ErrorKind {
	var ue UserError
	if errors.As(err, &ue) {
		return ue.Kind()
	}
	return KindInternal
}

// UserMessage returns the user-facing message for err.
func UserMessage(err error) string {
	var ue UserError
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	return (&InternalError{}).UserMessage()
}

// IsFatal reports whether err must abort a run.
func IsFatal(err error) bool {
	return err != nil && KindOf(err) != KindRead
}
