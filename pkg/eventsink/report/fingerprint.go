// fingerprint.go generates stable hashes for grouping similar failures.

package report

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// maxFrames is how many stack frames contribute to a fingerprint.
const maxFrames = 3

// Fingerprint hashes the stable parts of a failure: kind, error type,
// source and the first frames of the panicking code. Messages, IDs,
// timestamps, line numbers and addresses are ignored.
func Fingerprint(f Failure) string {
	parts := []string{string(f.Kind), f.ErrorType, f.Source}
	parts = append(parts, stackFrames(f.StackTrace)...)

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}

var (
	// A frame line starts with a package-qualified function name.
	frameLinePattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-/]+\.`)

	addrPattern = regexp.MustCompile(`\+?0x[0-9a-fA-F]+`)
)

// stackFrames returns up to maxFrames function names from a goroutine dump.
// When the dump contains a panic( frame, only frames below it are used so
// the recovery machinery does not dominate the result.
func stackFrames(trace string) []string {
	if trace == "" {
		return nil
	}

	lines := strings.Split(trace, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "panic(") {
			lines = lines[i+1:]
			break
		}
	}

	var frames []string
	for _, raw := range lines {
		if strings.HasPrefix(raw, "\t") {
			continue // file:line
		}
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "goroutine ") || strings.HasPrefix(line, "/") {
			continue
		}
		if strings.HasPrefix(line, "runtime.") || strings.HasPrefix(line, "runtime/") {
			continue
		}

		line = addrPattern.ReplaceAllString(line, "")
		if idx := strings.LastIndex(line, "("); idx > 0 {
			line = line[:idx]
		}
		if !frameLinePattern.MatchString(line) {
			continue
		}

		frames = append(frames, line)
		if len(frames) == maxFrames {
			break
		}
	}
	return frames
}
