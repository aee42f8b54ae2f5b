package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// RenderList formats directory listing entries. Entries ending in '/' are
// nested directories and get a highlighted [dir] prefix; plain entries are
// indented to align. The footer counts all entries.
func RenderList(path string, entries []string) string {
	sorted := make([]string, len(entries))
	copy(sorted, entries)
	sort.Strings(sorted)

	dirLabel := color.New(color.FgCyan).Sprint("[dir] ")

	var b strings.Builder
	fmt.Fprintf(&b, "\nSecrets at %s:\n", path)
	b.WriteString(strings.Repeat("-", 40) + "\n")

	for _, entry := range sorted {
		if strings.HasSuffix(entry, "/") {
			b.WriteString(dirLabel + entry + "\n")
		} else {
			b.WriteString("      " + entry + "\n")
		}
	}

	fmt.Fprintf(&b, "\n(%d items)", len(sorted))
	return b.String()
}
