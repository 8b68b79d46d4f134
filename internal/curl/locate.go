package curl

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/loykin/mdmrepo/internal/transport"
)

// FallbackPath is tried when neither the override nor PATH yields a binary.
const FallbackPath = "/usr/bin/curl"

// BinaryName is the executable searched for on PATH.
const BinaryName = "curl"

// Locator finds the curl binary.
type Locator struct {
	// Override is checked first when non-empty.
	Override string
	// PathEnv is a PATH-style list; defaults to $PATH.
	PathEnv string
	// Fallback defaults to FallbackPath.
	Fallback string
}

// Locate returns the first executable found in order: override, each PATH
// directory, fallback. It fails with *transport.ConfigurationError.
func (l Locator) Locate() (string, error) {
	if p := strings.TrimSpace(l.Override); p != "" && isExecutable(p) {
		return p, nil
	}
	pathEnv := l.PathEnv
	if pathEnv == "" {
		pathEnv = os.Getenv("PATH")
	}
	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, BinaryName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	fallback := l.Fallback
	if fallback == "" {
		fallback = FallbackPath
	}
	if isExecutable(fallback) {
		return fallback, nil
	}
	return "", &transport.ConfigurationError{Message: "no usable curl binary found"}
}

// Locate is shorthand for Locator{Override: override}.Locate().
func Locate(override string) (string, error) {
	return Locator{Override: override}.Locate()
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
