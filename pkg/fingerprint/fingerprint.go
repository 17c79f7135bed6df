package fingerprint

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	// adlerMod is the largest prime smaller than 65536.
	adlerMod = 65521

	// blockSize is the largest n such that 255n(n+1)/2 + (n+1)(adlerMod-1) fits in
	// 32 bits, so reductions can be deferred to block boundaries.
	blockSize = 5550
)

// Fingerprint identifies the content of a script file.
type Fingerprint struct {
	Checksum uint32
	Length   uint64
}

// IsZero reports whether fp is the (0,0) sentinel returned for missing files. An
// Adler-32 checksum is never 0 for real input, so the sentinel can't collide.
func (fp Fingerprint) IsZero() bool {
	return fp.Checksum == 0 && fp.Length == 0
}

// Equal reports whether both checksum and length match.
func (fp Fingerprint) Equal(other Fingerprint) bool {
	return fp.Checksum == other.Checksum && fp.Length == other.Length
}

// Compute returns the fingerprint of the file at path. Missing or unreadable files
// yield the zero Fingerprint rather than an error.
func Compute(path string) Fingerprint {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}
	}
	defer func() { _ = f.Close() }()

	fp, err := FromReader(f)
	if err != nil {
		return Fingerprint{}
	}

	return fp
}

// FromReader streams r and returns its fingerprint.
func FromReader(r io.Reader) (Fingerprint, error) {
	var (
		a, b   uint32 = 1, 0
		length uint64
		buf    = make([]byte, blockSize)
		br     = bufio.NewReaderSize(r, blockSize)
	)

	for {
		n, err := io.ReadFull(br, buf)
		if n > 0 {
			for _, c := range buf[:n] {
				a += uint32(c)
				b += a
			}

			a %= adlerMod
			b %= adlerMod
			length += uint64(n)
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}

		if err != nil {
			return Fingerprint{}, errors.Wrap(err, "failed to read content")
		}
	}

	return Fingerprint{Checksum: b<<16 | a, Length: length}, nil
}
