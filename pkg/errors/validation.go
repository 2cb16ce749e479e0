package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a relative file path for safety.
// It prevents path traversal when recipe or data paths come from
// untrusted input (for example the preview server).
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// recipeNameRegex matches recipe names served by name (no extension, no dirs).
var recipeNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateRecipeName validates a bare recipe name such as "lung-km".
func ValidateRecipeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "recipe name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "recipe name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") || !recipeNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid recipe name: %q", name)
	}
	return nil
}

// statisticKeyRegex matches statistic keys such as "n.risk" or "conf.low".
var statisticKeyRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)

// ValidateStatisticKey checks the lexical form of a statistic key.
// Whether the key exists on a given curve model is checked separately.
func ValidateStatisticKey(key string) error {
	if !statisticKeyRegex.MatchString(key) {
		return New(ErrCodeConfiguration, "malformed statistic key: %q", key)
	}
	return nil
}
