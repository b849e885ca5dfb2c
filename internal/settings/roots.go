package settings

import (
	"path/filepath"
)

// RootPair is one synchronization job: two absolute directories.
type RootPair struct {
	Index  int    `json:"index" yaml:"index"`
	Local  string `json:"local" yaml:"local"`
	Remote string `json:"remote" yaml:"remote"`

	// Fragment is the side-A relative path the pair was derived from.
	Fragment string `json:"fragment" yaml:"fragment"`
}

// RootPairs derives the configured pairs in document order as
// home/roots_prefix[0]/pair[0] and home/roots_prefix[1]/pair[1].
// It has no side effects, so repeated calls return equal slices.
func (s *Settings) RootPairs(home string) ([]RootPair, error) {
	if err := s.validateLocalSync(); err != nil {
		return nil, err
	}

	prefix := s.LocalSync.RootsPrefix
	pairs := make([]RootPair, 0, len(s.LocalSync.Roots))
	for i, pair := range s.LocalSync.Roots {
		pairs = append(pairs, RootPair{
			Index:    i,
			Local:    joinRoot(home, prefix[0], pair[0]),
			Remote:   joinRoot(home, prefix[1], pair[1]),
			Fragment: pair[0],
		})
	}
	return pairs, nil
}

// joinRoot joins elements left to right, restarting at any absolute element.
// An absolute prefix therefore ignores home, and an absolute fragment ignores both.
func joinRoot(elems ...string) string {
	start := 0
	for i, e := range elems {
		if filepath.IsAbs(e) {
			start = i
		}
	}
	return filepath.Join(elems[start:]...)
}
