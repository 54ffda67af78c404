// redact.go removes secrets and personal data from failures before they
// reach a sink.

package report

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	redacted        = "[REDACTED]"
	truncatedMarker = "...[TRUNCATED]"
)

// RedactionLimits caps the size of the free-text fields of a Failure.
// A zero limit leaves the field's length unbounded.
type RedactionLimits struct {
	Message       int
	StackTrace    int
	MetadataValue int
}

// DefaultRedactionLimits returns the limits used by WithDefaultRedaction.
func DefaultRedactionLimits() RedactionLimits {
	return RedactionLimits{
		Message:       4096,
		StackTrace:    32768,
		MetadataValue: 1024,
	}
}

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|token)[=:\s]+['"]?[\w\-\.]+['"]?`),
	regexp.MustCompile(`(?i)(authorization|bearer)[=:\s]+['"]?[\w\-\.]+['"]?\s+['"]?[\w\-\.]+['"]?`),
	regexp.MustCompile(`(?i)sk-[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)gh[po]_[a-zA-Z0-9]{36}`),
	regexp.MustCompile(`(?i)github_pat_[a-zA-Z0-9_]{22,}`),
	regexp.MustCompile(`(?i)xox[baprs]-[a-zA-Z0-9\-]{10,}`),
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`),
	regexp.MustCompile(`(?i)(password|passwd|secret|credential)[=:\s]+['"]?[^\s'",]+['"]?`),
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),
}

var sensitiveKeys = []string{"token", "key", "secret", "password", "passwd", "credential", "auth"}

var (
	homeDirPattern = regexp.MustCompile(`(/home/[^/]+/|/Users/[^/]+/|/tmp/[^/]+/|C:\\Users\\[^\\]+\\)`)
	addressPattern = regexp.MustCompile(`0x[0-9a-fA-F]+`)
)

// redactor applies secret patterns and size limits to a Failure.
type redactor struct {
	limits RedactionLimits
}

func (r *redactor) apply(f Failure) Failure {
	f.Message = r.message(f.Message)
	f.StackTrace = r.stackTrace(f.StackTrace)
	f.Metadata = r.metadata(f.Metadata)
	return f
}

// message replaces secrets before truncating, so a secret crossing the
// limit is never cut below the length its pattern needs to match.
func (r *redactor) message(msg string) string {
	return truncate(redactSecrets(msg), r.limits.Message)
}

func redactSecrets(s string) string {
	for _, p := range secretPatterns {
		s = p.ReplaceAllString(s, redacted)
	}
	return s
}

// stackTrace drops user directories and addresses. Frame names are kept so
// redacted traces still fingerprint the same way.
func (r *redactor) stackTrace(trace string) string {
	if trace == "" {
		return trace
	}
	trace = homeDirPattern.ReplaceAllString(trace, "/[PATH]/")
	trace = addressPattern.ReplaceAllString(trace, "0x...")
	return truncate(trace, r.limits.StackTrace)
}

func (r *redactor) metadata(meta map[string]string) map[string]string {
	if meta == nil {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		if isSensitiveKey(k) {
			out[k] = redacted
			continue
		}
		out[k] = truncate(redactSecrets(v), r.limits.MetadataValue)
	}
	return out
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// truncate shortens s to at most max bytes, ending in a marker. The cut
// never splits a UTF-8 sequence.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= len(truncatedMarker) {
		return truncatedMarker[:max]
	}
	cut := max - len(truncatedMarker)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncatedMarker
}
