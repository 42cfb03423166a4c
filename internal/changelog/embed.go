package changelog

import (
	_ "embed"
	"strings"
)

//go:embed header.md
var embeddedHeader string

// DefaultHeader returns the title and intro text written at the top of a
// changelog that has none.
func DefaultHeader() string {
	return strings.TrimSpace(embeddedHeader)
}
