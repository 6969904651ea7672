package stacktrace

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// shortFileSegments is how many trailing path segments ShortFile keeps.
const shortFileSegments = 2

// ShortFile reduces an absolute source path to its last few segments for
// human-scannable display. The full path remains available on the frame for
// precise lookup.
func ShortFile(absPath string) string {
	segments := strings.Split(absPath, "/")
	if len(segments) <= shortFileSegments {
		return absPath
	}
	return strings.Join(segments[len(segments)-shortFileSegments:], "/")
}

// SrcRelativeFile sanitizes the path to remove GOPATH and obtain the import path.
// Concretely, this takes the path after the last instance of '/src/'.
// This may omit some of the path if there is an src directory in a package import path.
// If there are no /src/ directories in the path, the base filename is returned.
func SrcRelativeFile(absPath string) string {
	candidates := strings.SplitAfter(absPath, "/src/")
	if len(candidates) > 0 {
		return candidates[len(candidates)-1]
	}
	return filepath.Base(absPath)
}

// GuessAbsPath guesses the proper absolute path if it is not provided, making
// a best-effort guess so that the display subtext and downstream reporters
// can point at real source files.
func GuessAbsPath(f string) string {
	gopath := os.Getenv("GOPATH")
	// Break out if the GOPATH can't be identified, or the path
	// is already an absolute path.
	if gopath == "" || strings.HasPrefix(f, "/") {
		return f
	}

	ignoredPrefixes := []string{gopath, "external/", "GOROOT/", "bazel-"}
	for _, prefix := range ignoredPrefixes {
		if strings.HasPrefix(f, prefix) {
			return f
		}
	}

	if strings.HasPrefix(f, filepath.Base(gopath)) {
		return path.Join(filepath.Dir(gopath), f)
	}
	return path.Join(gopath, f)
}
