package loss

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestLossClassLevel(t *testing.T) {
	tests := []struct {
		lc    LossClass
		level int
		valid bool
	}{
		{LossL0, 0, true},
		{LossL1, 1, true},
		{LossL2, 2, true},
		{LossL3, 3, true},
		{LossL4, 4, true},
		{LossClass("L5"), -1, false},
		{LossClass(""), -1, false},
	}

	for _, tt := range tests {
		if got := tt.lc.Level(); got != tt.level {
			t.Errorf("LossClass(%q).Level() = %d, want %d", tt.lc, got, tt.level)
		}
		if got := tt.lc.IsValid(); got != tt.valid {
			t.Errorf("LossClass(%q).IsValid() = %v, want %v", tt.lc, got, tt.valid)
		}
	}

	if !LossL0.IsLossless() || LossL1.IsLossless() {
		t.Error("only L0 is lossless")
	}
	if !LossL1.IsSemanticallyLossless() || LossL2.IsSemanticallyLossless() {
		t.Error("L0 and L1 are semantically lossless")
	}
	if Max(LossL2, LossL1) != LossL2 || Max(LossL0, LossL3) != LossL3 {
		t.Error("Max() should pick the higher class")
	}
}

func TestReport(t *testing.T) {
	r := NewReport("bbcode", "markdown")
	if r.HasLoss() {
		t.Error("new report should be lossless")
	}

	r.Add(Diagnostic{NodeKind: "Styled", Reason: "color unsupported", Path: "p", Class: LossL2})
	r.Add(Diagnostic{NodeKind: "Table", Reason: "ragged table padded", Path: "q", Class: LossL1})
	if r.LossClass != LossL2 {
		t.Errorf("LossClass = %s, want L2", r.LossClass)
	}
	if !r.HasLoss() {
		t.Error("report with diagnostics should have loss")
	}

	other := NewReport("", "markdown")
	other.Add(Diagnostic{NodeKind: "Link", Reason: "links unsupported", Class: LossL3})
	other.AddWarning("w")
	r.Merge(other)
	r.Merge(nil)

	want := []string{"color unsupported", "ragged table padded", "links unsupported"}
	if got := r.Reasons(); !reflect.DeepEqual(got, want) {
		t.Errorf("Reasons() = %v, want %v", got, want)
	}
	if r.LossClass != LossL3 || len(r.Warnings) != 1 {
		t.Errorf("after merge: class %s, warnings %v", r.LossClass, r.Warnings)
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["loss_class"] != "L3" {
		t.Errorf("loss_class = %v", decoded["loss_class"])
	}
}

func TestCapabilities(t *testing.T) {
	caps := Headings.With(Strong).With(Links)
	if !caps.Has(Strong) || caps.Has(Emphasis) {
		t.Error("Has() mismatch")
	}
	if !caps.Has(Headings | Links) {
		t.Error("Has() should accept a combined mask")
	}
	if caps.Without(Links).Has(Links) {
		t.Error("Without() should clear the flag")
	}
	if got := caps.String(); got != "headings,strong,links" {
		t.Errorf("String() = %q", got)
	}
	if got := Capabilities(0).String(); got != "none" {
		t.Errorf("String() = %q", got)
	}
	if All.Has(RectangularTables) || All.Has(TableHeaderRequired) {
		t.Error("All should not carry table constraints")
	}
}
