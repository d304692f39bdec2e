package logging

import (
	"strings"
)

const (
	// MaskChar is the character used for masking.
	MaskChar = "*"
	// URLMaskLength is how many characters to show before masking URLs.
	URLMaskLength = 30
	// DefaultMaskLength is how many mask characters to show.
	DefaultMaskLength = 3
)

// MaskURL masks a URL, showing only the first URLMaskLength characters.
// Webhook URLs embed their secret in the path.
func MaskURL(url string) string {
	if len(url) <= URLMaskLength {
		return url
	}
	return url[:URLMaskLength] + strings.Repeat(MaskChar, DefaultMaskLength)
}

// MaskArgs masks the value of every KeyURL pair in a slog argument list.
// Arguments are expected in key-value pairs: key1, value1, key2, value2, ...
func MaskArgs(args []any) []any {
	if len(args) < 2 {
		return args
	}

	var result []any
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok || key != KeyURL {
			continue
		}
		s, ok := args[i+1].(string)
		if !ok || strings.Contains(s, "localhost") || strings.Contains(s, "127.0.0.1") {
			continue
		}
		if result == nil {
			result = make([]any, len(args))
			copy(result, args)
		}
		result[i+1] = MaskURL(s)
	}

	if result == nil {
		return args
	}
	return result
}
