package strutil

import "strings"

// MaxToolNameLen is the hard cap on generated tool names.
const MaxToolNameLen = 64

// MaxPrefixLen is the hard cap on sanitized composition prefixes.
const MaxPrefixLen = 20

// SanitizeToolName lowercases s, collapses every run of characters outside
// [a-z0-9_-] into a single underscore, trims leading/trailing underscores,
// and truncates to MaxToolNameLen.
func SanitizeToolName(s string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(sb.String(), "_")
	return TruncateName(out, MaxToolNameLen)
}

// SanitizePrefix derives a composition prefix from an API name: lowercased,
// non-alphanumeric runs collapsed to "_", truncated to MaxPrefixLen,
// defaulting to "api" when nothing survives.
func SanitizePrefix(name string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && sb.Len() > 0 {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(sb.String(), "_")
	out = TruncateName(out, MaxPrefixLen)
	out = strings.Trim(out, "_")
	if out == "" {
		return "api"
	}
	return out
}

// SanitizeEnvName uppercases s and collapses non-alphanumeric runs into a
// single underscore, suitable for an environment variable name segment.
func SanitizeEnvName(s string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && sb.Len() > 0 {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(sb.String(), "_")
}

// TruncateName cuts s to at most max bytes without splitting a multi-byte
// rune. Generated identifiers are ASCII after sanitization, so a plain slice
// is normally enough; the rune check is for callers passing raw input.
func TruncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !isASCII(cut[len(cut)-1]) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

func isASCII(b byte) bool { return b < 0x80 }
