package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	HashAlgorithm = "sha256"

	hashChunkSize = 64 * 1024
)

// FileDigest streams path through SHA-256 in fixed-size chunks and returns
// the lowercase hex digest.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "unable to open file for hashing")
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)

	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, "unable to hash file")
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
