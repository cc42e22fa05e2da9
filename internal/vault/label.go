package vault

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseLabel strips one pair of surrounding double quotes and validates the
// result. Labels must be non-empty and free of whitespace.
func ParseLabel(raw string) (string, error) {
	label := raw
	if len(label) >= 2 && strings.HasPrefix(label, `"`) && strings.HasSuffix(label, `"`) {
		label = label[1 : len(label)-1]
	}
	if label == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidLabel)
	}
	if strings.ContainsFunc(label, unicode.IsSpace) {
		return "", fmt.Errorf("%w: %q contains whitespace", ErrInvalidLabel, label)
	}
	return label, nil
}
