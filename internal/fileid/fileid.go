// Package fileid derives stable resume ids from file paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// hashLen is the number of hex characters of the path hash kept in an id.
const hashLen = 12

// ResumeID returns a readable id for the resume stored at path: the file name with
// dots replaced by underscores, followed by a short hash of the cleaned absolute
// path so that equal names in different directories do not collide.
func ResumeID(path string) string {
	normalized := filepath.Clean(path)
	if abs, err := filepath.Abs(normalized); err == nil {
		normalized = abs
	}
	hash := sha256.Sum256([]byte(normalized))
	base := strings.ReplaceAll(filepath.Base(normalized), ".", "_")
	return base + "-" + hex.EncodeToString(hash[:])[:hashLen]
}
