// Package digest computes and compares content fingerprints used to decide
// whether a file has changed since it was last indexed.
package digest

import (
	"crypto/sha1"
	"fmt"

	"github.com/standardbeagle/bgindexd/internal/fsvfs"
)

// Digest is a content fingerprint. The zero value is the sentinel "absent"
// digest used for paths the indexer has never observed.
type Digest [sha1.Size]byte

// Zero is the sentinel absent digest.
var Zero Digest

// IsZero reports whether d is the sentinel absent digest.
func (d Digest) IsZero() bool {
	return d == Zero
}

// String renders the digest as a hex string for logs and shard keys.
func (d Digest) String() string {
	return fmt.Sprintf("%x", [sha1.Size]byte(d))
}

// Sum computes the digest of content.
func Sum(content []byte) Digest {
	return Digest(sha1.Sum(content))
}

// File reads path through fsys and returns its digest.
func File(fsys fsvfs.FS, path string) (Digest, error) {
	content, err := fsys.ReadFile(path)
	if err != nil {
		return Zero, err
	}
	return Sum(content), nil
}
