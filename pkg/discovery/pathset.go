package discovery

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/cperrin88/envpkgsearch/pkg/platform"
)

// PathSet is a set of normalized executable paths.
type PathSet map[string]struct{}

// NewPathSet returns a set holding paths verbatim.
func NewPathSet(paths ...string) PathSet {
	s := make(PathSet, len(paths))
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

// Add inserts p.
func (s PathSet) Add(p string) {
	s[p] = struct{}{}
}

// Contains reports whether p is in the set.
func (s PathSet) Contains(p string) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of paths.
func (s PathSet) Len() int {
	return len(s)
}

// Union adds every path of other to s.
func (s PathSet) Union(other PathSet) {
	for p := range other {
		s[p] = struct{}{}
	}
}

// Sorted returns the paths in lexicographic order.
func (s PathSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Normalizer turns paths into comparison-safe keys: absolute, cleaned and
// case-folded on case-insensitive filesystems. Symlinks are left alone.
type Normalizer struct {
	CaseInsensitive bool
}

// NewNormalizer returns the Normalizer for goos.
func NewNormalizer(goos string) Normalizer {
	return Normalizer{CaseInsensitive: platform.CaseInsensitiveFS(goos)}
}

// DefaultNormalizer returns the Normalizer for the running platform.
func DefaultNormalizer() Normalizer {
	return NewNormalizer(runtime.GOOS)
}

// Normalize returns the normalized form of p. Normalize is idempotent.
func (n Normalizer) Normalize(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}
	if n.CaseInsensitive {
		abs = strings.ToLower(abs)
	}
	return abs
}
