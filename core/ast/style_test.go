package ast

import "testing"

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"red", "red", false},
		{" Red ", "red", false},
		{"#F00", "#ff0000", false},
		{"#00ff7F", "#00ff7f", false},
		{"#12345", "", true},
		{"#gggggg", "", true},
		{"notacolor", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if got := Color("red").Hex(); got != "#ff0000" {
		t.Errorf("Hex() = %q", got)
	}
	if got := Color("#123456").Hex(); got != "#123456" {
		t.Errorf("Hex() = %q", got)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    Size
		str     string
		wantErr bool
	}{
		{"3", Size{3, UnitLevel}, "3", false},
		{"7", Size{7, UnitLevel}, "7", false},
		{"150", Size{150, UnitPercent}, "150%", false},
		{"12px", Size{12, UnitPixel}, "12px", false},
		{"1.5em", Size{1.5, UnitEm}, "1.5em", false},
		{"10pt", Size{10, UnitPoint}, "10pt", false},
		{"80%", Size{80, UnitPercent}, "80%", false},
		{"0", Size{}, "", true},
		{"-2px", Size{}, "", true},
		{"big", Size{}, "", true},
		{"", Size{}, "", true},
		{"nan", Size{}, "", true},
		{"NaN%", Size{}, "", true},
		{"inf", Size{}, "", true},
		{"+Inf", Size{}, "", true},
		{"infpx", Size{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.str {
				t.Errorf("String() = %q, want %q", got.String(), tt.str)
			}
		})
	}

	if lvl, ok := (Size{4, UnitLevel}).Level(); !ok || lvl != 4 {
		t.Errorf("Level() = %d, %v", lvl, ok)
	}
	if _, ok := (Size{4, UnitPixel}).Level(); ok {
		t.Error("px size should not report a level")
	}
}

func TestKind(t *testing.T) {
	if !KindParagraph.IsBlock() || KindParagraph.IsInline() {
		t.Error("Paragraph should be a block")
	}
	if !KindStyled.IsInline() || KindStyled.IsBlock() {
		t.Error("Styled should be inline")
	}
	if KindListItem.IsBlock() || KindListItem.IsInline() || !KindListItem.IsValid() {
		t.Error("ListItem is structural")
	}
	if Kind("Bogus").IsValid() {
		t.Error("unknown kind should be invalid")
	}
}
