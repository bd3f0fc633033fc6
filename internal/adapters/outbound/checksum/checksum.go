package checksum

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/openkraft/archlens/internal/domain"
)

// File streams path through xxhash and returns its size and hex digest.
func File(path string) (domain.ArchiveMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ArchiveMeta{}, err
	}
	defer f.Close()

	h := xxhash.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return domain.ArchiveMeta{}, fmt.Errorf("hashing %s: %w", f.Name(), err)
	}
	return domain.ArchiveMeta{SizeBytes: n, Checksum: Hex(h.Sum64())}, nil
}

// Hex renders a digest as fixed-width lowercase hex.
func Hex(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
