package store

import "strings"

// deriveKey maps a full parameter path to its lookup key.
//
// Flat mode collapses the path to its last segment, so parameters from
// different subtrees that share a leaf name collide and the
// last-loaded one wins. Hierarchy mode strips the base path prefix and
// rejoins the remaining segments with the separator; empty segments
// from doubled slashes are dropped.
func deriveKey(fullPath, basePath, separator string, preserveHierarchy bool) string {
	if !preserveHierarchy {
		if idx := strings.LastIndex(fullPath, "/"); idx != -1 {
			return fullPath[idx+1:]
		}
		return fullPath
	}

	rest := strings.TrimPrefix(fullPath, basePath)
	rest = strings.Trim(rest, "/")

	var segments []string
	for _, seg := range strings.Split(rest, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	return strings.Join(segments, separator)
}
