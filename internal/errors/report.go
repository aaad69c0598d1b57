package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/tridentlang/trident/internal/token"
)

// Severity classifies a Report.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityHint    Severity = "hint"
)

// Report is the canonical structured diagnostic for Trident. Every
// phase returns *Report, which implements error itself, rather than a
// bare error, so span/category/code survive across error-interface
// boundaries (see AsReport).
type Report struct {
	Severity Severity       `json:"severity"`
	Category string         `json:"category"` // phase name, see Phase* constants
	Code     string         `json:"code,omitempty"`
	Span     *token.Span    `json:"span,omitempty"`
	Message  string         `json:"message"`
	Help     string         `json:"help,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// ZeroSpan returns the empty Span used for diagnostics that are not
// anchored to a specific source location (e.g. target-config or
// module-resolution errors that precede parsing of any file).
func ZeroSpan() token.Span { return token.Span{} }

// New builds an error-severity Report.
func New(code, category, message string, span token.Span) *Report {
	return &Report{
		Severity: SeverityError,
		Category: category,
		Code:     code,
		Span:     &span,
		Message:  message,
	}
}

// NewWarning builds a warning-severity Report.
func NewWarning(code, category, message string, span token.Span) *Report {
	r := New(code, category, message, span)
	r.Severity = SeverityWarning
	return r
}

// NewHint builds a hint-severity Report.
func NewHint(code, category, message string, span token.Span) *Report {
	r := New(code, category, message, span)
	r.Severity = SeverityHint
	return r
}

// WithHelp attaches a rewrite/fix hint and returns the Report for chaining.
func (r *Report) WithHelp(help string) *Report {
	r.Help = help
	return r
}

// WithData attaches a structured data field and returns the Report.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// Error implements the error interface.
func (r *Report) Error() string {
	if r.Span != nil {
		return fmt.Sprintf("%s: %s: %s", r.Span.Start, r.Code, r.Message)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// AsReport extracts a *Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var r *Report
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// Pretty renders a Report as colored human text, modeled on the
// compiler's own severity-colored CLI output.
func (r *Report) Pretty() string {
	var sev func(a ...interface{}) string
	switch r.Severity {
	case SeverityError:
		sev = color.New(color.FgRed, color.Bold).SprintFunc()
	case SeverityWarning:
		sev = color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		sev = color.New(color.FgCyan, color.Bold).SprintFunc()
	}
	loc := ""
	if r.Span != nil {
		loc = r.Span.Start.String() + ": "
	}
	out := fmt.Sprintf("%s%s[%s]: %s", loc, sev(string(r.Severity)), r.Code, r.Message)
	if r.Help != "" {
		out += "\n  help: " + r.Help
	}
	return out
}

// ToJSON renders the Report per the JSON diagnostic schema (spec.md §6).
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List is an ordered collection of Reports, used where a phase
// collects multiple diagnostics before returning (spec.md §7).
type List []*Report

func (l List) Error() string {
	if len(l) == 0 {
		return "no errors"
	}
	if len(l) == 1 {
		return l[0].Error()
	}
	return fmt.Sprintf("%d errors, first: %s", len(l), l[0].Error())
}

// HasErrors reports whether l contains any error-severity Report.
func (l List) HasErrors() bool {
	for _, r := range l {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity reports.
func (l List) Errors() List {
	var out List
	for _, r := range l {
		if r.Severity == SeverityError {
			out = append(out, r)
		}
	}
	return out
}

// Warnings returns only the warning-severity reports.
func (l List) Warnings() List {
	var out List
	for _, r := range l {
		if r.Severity == SeverityWarning {
			out = append(out, r)
		}
	}
	return out
}

// Hints returns only the hint-severity reports.
func (l List) Hints() List {
	var out List
	for _, r := range l {
		if r.Severity == SeverityHint {
			out = append(out, r)
		}
	}
	return out
}

// Internal builds an INT001 internal-compiler-error Report, used when a
// panic is recovered at a phase boundary (spec.md §7: "Panics inside
// the compiler are internal bugs").
func Internal(phase string, cause error) *Report {
	return &Report{
		Severity: SeverityError,
		Category: phase,
		Code:     INT001,
		Message:  fmt.Sprintf("internal compiler error: %v", cause),
	}
}
