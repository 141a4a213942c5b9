package dot

import (
	"fmt"
	"sort"
	"strings"
)

// attrString renders a DOT attribute list, e.g. ` [color="red", label="x"]`.
// Keys sort so the output is byte-stable; values are always quoted, with
// embedded quotes escaped. HTML-like labels are not supported.
func attrString(attribs map[string]string) string {
	if len(attribs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attribs))
	for k := range attribs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(" [")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%q", k, attribs[k])
	}
	b.WriteString("]")
	return b.String()
}
