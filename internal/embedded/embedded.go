// Package embedded registers the built-in formats. Import it for its side
// effects:
//
//	import _ "github.com/FocuswithJustin/transmark/internal/embedded"
package embedded

import (
	// Built-in formats register themselves in init().
	_ "github.com/FocuswithJustin/transmark/internal/formats/bbcode"
	_ "github.com/FocuswithJustin/transmark/internal/formats/html"
	_ "github.com/FocuswithJustin/transmark/internal/formats/markdown"
	_ "github.com/FocuswithJustin/transmark/internal/formats/plaintext"
)

// Formats lists the names of the built-in formats.
var Formats = []string{"bbcode", "html", "markdown", "plaintext"}
