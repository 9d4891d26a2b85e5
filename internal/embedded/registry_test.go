package embedded_test

import (
	"testing"

	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/internal/embedded"
)

// TestFormatRegistrations verifies that importing the embedded package
// registers every built-in format with a converter and a codec.
func TestFormatRegistrations(t *testing.T) {
	t.Run("FormatsRegistered", func(t *testing.T) {
		for _, name := range embedded.Formats {
			t.Run(name, func(t *testing.T) {
				f, err := format.Lookup(name)
				if err != nil {
					t.Fatalf("format %q not registered: %v", name, err)
				}
				if f.Converter == nil {
					t.Errorf("format %q has nil Converter", name)
				}
				if f.Codec == nil {
					t.Errorf("format %q has nil Codec", name)
				}
				if f.Capabilities == 0 {
					t.Errorf("format %q has no capabilities", name)
				}
			})
		}
	})

	t.Run("AllFormatsListed", func(t *testing.T) {
		listed := make(map[string]bool)
		for _, f := range format.List() {
			listed[f.Name] = true
		}
		for _, name := range embedded.Formats {
			if !listed[name] {
				t.Errorf("format %q not found in List()", name)
			}
		}
	})

	t.Run("Extensions", func(t *testing.T) {
		tests := map[string]string{
			".md":     "markdown",
			"html":    "html",
			".bbcode": "bbcode",
			"txt":     "plaintext",
		}
		for ext, want := range tests {
			f, err := format.ByExtension(ext)
			if err != nil {
				t.Errorf("ByExtension(%q) error = %v", ext, err)
				continue
			}
			if f.Name != want {
				t.Errorf("ByExtension(%q) = %q, want %q", ext, f.Name, want)
			}
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		if format.Has("rtf") {
			t.Error("Has(rtf) = true for an unregistered format")
		}
	})
}
