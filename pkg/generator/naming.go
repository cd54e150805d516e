package generator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/blimu-dev/mcp-gen/pkg/utils"
)

var (
	propertyNameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
	braces            = strings.NewReplacer("{", "", "}", "")
)

// ToolName derives a snake_case tool name from an HTTP method and a path
// template, e.g. ("GET", "/users/{id}") -> "get_users_id".
func ToolName(method, path string) string {
	p := utils.Slug(braces.Replace(path), "_")
	m := strings.ToLower(method)
	if p == "" {
		return m
	}
	return m + "_" + p
}

// SanitizeName maps a wire-level name onto the identifier alphabet used for
// property names. Case is preserved.
func SanitizeName(name string) string {
	s := propertyNameChars.ReplaceAllString(utils.RemoveAccents(name), "_")
	if s == "" {
		return "_"
	}
	return s
}

// UniqueName returns name, or name suffixed with the smallest unused number
// starting at 2 (x, x_2, x_3, ...). The returned name is marked as taken.
func UniqueName(taken map[string]bool, name string) string {
	candidate := name
	for n := 2; taken[candidate]; n++ {
		candidate = name + "_" + strconv.Itoa(n)
	}
	taken[candidate] = true
	return candidate
}

// checkToolNameLength applies the length policy. It reports skip=true when the
// tool should be dropped silently.
func checkToolNameLength(name string, opts ConverterOptions) (skip bool, err error) {
	limit := opts.maxToolNameLength()
	if len(name) <= limit {
		return false, nil
	}
	if opts.SkipLongToolNames {
		return true, nil
	}
	return false, &PolicyError{Tool: name, Length: len(name), Max: limit}
}
