// Package loss implements the lossy-conversion policy: when a target format
// cannot represent a construct of the common AST, the construct is degraded
// to the nearest representable equivalent and a Diagnostic is recorded.
//
// Degradation is never an error unless strict mode is requested.
package loss

import (
	"github.com/FocuswithJustin/transmark/core/ast"
)

// LossClass represents the fidelity level of a format conversion.
type LossClass string

// Loss class constants, from most to least fidelity.
const (
	// LossL0 indicates lossless conversion.
	LossL0 LossClass = "L0"

	// LossL1 indicates semantically lossless - all content preserved, structure normalised
	// (e.g., a ragged table padded).
	LossL1 LossClass = "L1"

	// LossL2 indicates minor loss - presentation lost, text preserved (e.g., color).
	LossL2 LossClass = "L2"

	// LossL3 indicates significant loss - link targets, images or raw markup flattened.
	LossL3 LossClass = "L3"

	// LossL4 indicates plain text only - only raw text preserved.
	LossL4 LossClass = "L4"
)

// validLossClasses is the set of valid loss classes.
var validLossClasses = map[LossClass]bool{
	LossL0: true,
	LossL1: true,
	LossL2: true,
	LossL3: true,
	LossL4: true,
}

// IsValid returns true if the loss class is valid.
func (l LossClass) IsValid() bool {
	return validLossClasses[l]
}

// Level returns the numeric level (0-4) of the loss class.
func (l LossClass) Level() int {
	switch l {
	case LossL0:
		return 0
	case LossL1:
		return 1
	case LossL2:
		return 2
	case LossL3:
		return 3
	case LossL4:
		return 4
	default:
		return -1
	}
}

// IsLossless returns true if this loss class indicates no data loss.
func (l LossClass) IsLossless() bool {
	return l == LossL0
}

// IsSemanticallyLossless returns true if content is fully preserved.
func (l LossClass) IsSemanticallyLossless() bool {
	return l == LossL0 || l == LossL1
}

// Max returns the less faithful of two classes.
func Max(a, b LossClass) LossClass {
	if b.Level() > a.Level() {
		return b
	}
	return a
}

// Diagnostic records one degradation applied during conversion.
type Diagnostic struct {
	// NodeKind is the kind of the node that was degraded.
	NodeKind ast.Kind `json:"node_kind"`

	// Reason explains the degradation (e.g., "color unsupported").
	Reason string `json:"reason"`

	// Path locates the node in the input tree (e.g., "document.blocks[0].children[1]").
	Path string `json:"path"`

	// Class is the fidelity cost of this degradation.
	Class LossClass `json:"class"`
}

// Report documents the fidelity of a format conversion.
type Report struct {
	// SourceFormat is the format being converted from.
	SourceFormat string `json:"source_format,omitempty"`

	// TargetFormat is the format being converted to.
	TargetFormat string `json:"target_format,omitempty"`

	// LossClass is the overall fidelity classification: the highest class of
	// any diagnostic.
	LossClass LossClass `json:"loss_class"`

	// Diagnostics lists the degradations in pre-order document order.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	// Warnings contains non-fatal issues that are not degradations.
	Warnings []string `json:"warnings,omitempty"`
}

// NewReport creates an empty lossless report.
func NewReport(source, target string) *Report {
	return &Report{SourceFormat: source, TargetFormat: target, LossClass: LossL0}
}

// HasLoss returns true if any degradation was applied.
func (r *Report) HasLoss() bool {
	return len(r.Diagnostics) > 0 || r.LossClass.Level() > 0
}

// Add appends a diagnostic and raises the report's class if needed.
func (r *Report) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	r.LossClass = Max(r.LossClass, d.Class)
}

// AddWarning adds a warning to the report.
func (r *Report) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// Merge appends other's diagnostics and warnings after r's own.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	for _, d := range other.Diagnostics {
		r.Add(d)
	}
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.LossClass = Max(r.LossClass, other.LossClass)
}

// Reasons returns the reason of each diagnostic in order.
func (r *Report) Reasons() []string {
	out := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		out[i] = d.Reason
	}
	return out
}
