package cache

import (
	"io"
	"os"
	"sync"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/typeloader/typeloader/internal/types"
)

// Probe is the remembered outcome of reading a candidate's identity.
type Probe struct {
	Format   string
	Identity types.Identity
	// Mismatch is set when no format recognized the file.
	Mismatch bool
}

type entry struct {
	fingerprint string
	probe       Probe
}

// Probes memoises probe outcomes per path, invalidated when the file's
// content fingerprint changes. Safe for concurrent use.
type Probes struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewProbes returns an empty probe cache.
func NewProbes() *Probes {
	return &Probes{entries: map[string]entry{}}
}

// Get returns the cached probe for path if it was recorded with fingerprint.
func (c *Probes) Get(path, fingerprint string) (Probe, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok || e.fingerprint != fingerprint {
		return Probe{}, false
	}
	return e.probe, true
}

// Put records the probe for path at fingerprint.
func (c *Probes) Put(path, fingerprint string, p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = entry{fingerprint: fingerprint, probe: p}
}

// Len returns the number of cached paths.
func (c *Probes) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fingerprint hashes r with xxhash and returns 16 hex digits.
func Fingerprint(r io.Reader) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hexSum(h.Sum64()), nil
}

// FingerprintFile hashes the file at path.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Fingerprint(f)
}

func hexSum(sum uint64) string {
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
