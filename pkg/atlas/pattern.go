package atlas

import "path/filepath"

// matchesAny reports whether name matches any wildcard pattern. Patterns
// use filepath.Match syntax; '*' is the only metacharacter callers are
// expected to rely on. Malformed patterns match nothing.
func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// allowed applies include/exclude pattern lists: an empty include list
// admits everything, and exclusion always wins.
func allowed(name string, include, exclude []string) bool {
	if len(include) > 0 && !matchesAny(name, include) {
		return false
	}
	return !matchesAny(name, exclude)
}
