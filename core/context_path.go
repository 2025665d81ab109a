package core

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizeContextPath canonicalizes a context path to its absolute form.
// Context path equality throughout DataMesh is string equality on this
// normalized form. An empty or unresolvable path yields
// ErrInvalidContextPath.
func NormalizeContextPath(contextPath string) (string, error) {
	if strings.TrimSpace(contextPath) == "" {
		return "", ErrInvalidContextPath
	}
	abs, err := filepath.Abs(contextPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidContextPath, contextPath)
	}
	return abs, nil
}
