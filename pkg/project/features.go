package project

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	startToken  = "// START_OF"
	endToken    = "// END_OF"
	authFeature = "Features.Auth"
)

// ErrUnknownFeature is returned for a marker naming a feature that does not exist
var ErrUnknownFeature = errors.New("unknown template feature")

// Features is the set of optional template blocks to keep
type Features struct {
	Auth bool
}

func (f *Features) set(marker string, on bool) error {
	name := strings.Replace(marker, startToken, "", 1)
	name = strings.TrimSpace(strings.Replace(name, endToken, "", 1))
	switch name {
	case authFeature:
		f.Auth = on
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	return nil
}

// ApplyFeatures processes "// START_OF <feature>" ... "// END_OF <feature>"
// blocks. Marker lines are removed. Inside a block each line loses its first
// "// " when the feature is needed and is dropped otherwise. The number of
// trailing newlines is kept. changed is false when input has no markers.
func ApplyFeatures(needed Features, input string) (output string, changed bool, err error) {
	var active Features
	lines := splitLines(input)
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		switch {
		case strings.HasPrefix(trimmed, startToken):
			changed = true
			if err := active.set(line, true); err != nil {
				return "", false, err
			}
		case strings.HasPrefix(trimmed, endToken):
			if err := active.set(line, false); err != nil {
				return "", false, err
			}
		case active.Auth:
			if needed.Auth {
				out = append(out, strings.Replace(line, "// ", "", 1))
			}
		default:
			out = append(out, line)
		}
	}

	if !changed {
		return input, false, nil
	}

	output = strings.Join(out, "\n")
	if trailing := len(input) - len(strings.TrimRight(input, "\n")); trailing > 0 {
		output = strings.TrimRight(output, "\n") + strings.Repeat("\n", trailing)
	}
	return output, true, nil
}

// splitLines splits on "\n", dropping a final empty line. A "\r" before the
// newline stays on its line so CRLF files keep their endings.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
