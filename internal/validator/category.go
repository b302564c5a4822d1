package validator

import (
	"path/filepath"
	"strings"
)

// Unknown is the category of documents outside any <root>/<category>/ path.
const Unknown = "unknown"

// DefaultRootSegment is the directory name that precedes the category segment.
const DefaultRootSegment = "docs"

// CategoryFromPath returns the path segment that immediately follows the first
// occurrence of rootSegment, or Unknown.
func CategoryFromPath(path, rootSegment string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i, p := range parts {
		if p != rootSegment {
			continue
		}
		if i < len(parts)-1 && parts[i+1] != "" {
			return parts[i+1]
		}
		break
	}
	return Unknown
}
