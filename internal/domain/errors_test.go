package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkraft/archlens/internal/domain"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	tests := []struct {
		err  error
		kind domain.ErrorKind
	}{
		{&domain.DownloadError{URL: "https://x/a.zip", Attempts: 3, Err: cause}, domain.KindDownload},
		{&domain.UnsupportedFormatError{Name: "a.rar", Extension: ".rar"}, domain.KindUnsupportedFormat},
		{&domain.PathTraversalError{Entry: "../x"}, domain.KindPathTraversal},
		{&domain.CorruptArchiveError{Path: "a.zip", Err: cause}, domain.KindCorruptArchive},
		{&domain.ReadError{Path: "a.txt", Err: cause}, domain.KindRead},
		{&domain.AnalysisError{Err: cause}, domain.KindAnalysis},
		{&domain.InternalError{Op: "x", Err: cause}, domain.KindInternal},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, domain.KindOf(tt.err))
			assert.Equal(t, tt.kind, domain.KindOf(fmt.Errorf("wrapped: %w", tt.err)))
			assert.NotContains(t, domain.UserMessage(tt.err), "zip:", "user messages never leak library text")
		})
	}
}

func TestKindOf_UnclassifiedIsInternal(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Equal(t, "an unexpected error occurred while processing the archive", domain.UserMessage(err))
}

func TestUnsupportedFormat_RarGuidance(t *testing.T) {
	rar := &domain.UnsupportedFormatError{Name: "p.rar", Extension: ".rar"}
	assert.Contains(t, rar.UserMessage(), "RAR archives are not supported")
	assert.Contains(t, rar.UserMessage(), "ZIP")

	other := &domain.UnsupportedFormatError{Name: "p.7z", Extension: ".7z"}
	assert.NotContains(t, other.UserMessage(), "RAR")
	assert.Contains(t, other.UserMessage(), "ZIP")
}

func TestCorruptArchive_UnwrapsCause(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := &domain.CorruptArchiveError{Path: "a.zip", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "unexpected EOF")
	assert.Equal(t, "archive could not be unpacked; verify it is a valid, unencrypted ZIP", err.UserMessage())
}

func TestIsFatal(t *testing.T) {
	assert.False(t, domain.IsFatal(nil))
	assert.False(t, domain.IsFatal(&domain.ReadError{Path: "a", Err: errors.New("x")}))
	assert.True(t, domain.IsFatal(&domain.PathTraversalError{Entry: "../a"}))
	assert.True(t, domain.IsFatal(errors.New("x")))
}
