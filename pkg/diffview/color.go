package diffview

import (
	"strings"

	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.Bold)
	hunkColor   = color.New(color.FgCyan)
	addColor    = color.New(color.FgGreen)
	delColor    = color.New(color.FgRed)
)

// Colorize applies ANSI colors to a unified diff for terminal display. The
// input is returned unchanged line-by-line except for color escapes, so the
// uncolored text stays byte-identical to Unified's output.
func Colorize(unified string) string {
	if unified == "" {
		return ""
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(unified, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ "):
			b.WriteString(headerColor.Sprint(text))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(hunkColor.Sprint(text))
		case strings.HasPrefix(line, "+"):
			b.WriteString(addColor.Sprint(text))
		case strings.HasPrefix(line, "-"):
			b.WriteString(delColor.Sprint(text))
		default:
			b.WriteString(text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
