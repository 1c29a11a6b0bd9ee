package discovery

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
)

// SearchPath finds interpreters in the directories of a PATH-style list.
type SearchPath struct {
	host     Host
	pathList string
}

// NewSearchPath creates a SearchPath over pathList, typically $PATH.
func NewSearchPath(host Host, pathList string) *SearchPath {
	return &SearchPath{host: host.withDefaults(), pathList: pathList}
}

// Name implements Strategy.
func (s *SearchPath) Name() string { return SourceSearchPath }

// Discover implements Strategy. Empty entries and entries that are not
// directories are skipped.
func (s *SearchPath) Discover(ctx context.Context) (PathSet, error) {
	found := NewPathSet()
	for _, entry := range filepath.SplitList(s.pathList) {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		dir := strings.TrimSpace(entry)
		if dir == "" || !fsutil.DirExists(dir) {
			continue
		}
		s.host.probeDir(dir, found)
	}
	return found, nil
}
