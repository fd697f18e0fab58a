package network

import (
	"fmt"
	"log/slog"
)

// Severity classifies what finding a non-empty element table produces.
type Severity int

const (
	// SeverityFatal aborts before any simulation can run.
	SeverityFatal Severity = iota
	// SeverityAdvisory is reported but does not block the run.
	SeverityAdvisory
)

// Category is one element kind the accelerated backend cannot model.
type Category struct {
	// Key is the table name in the network description.
	Key string
	// Name is the human-readable element name used in diagnostics.
	Name     string
	Severity Severity
}

// Categories lists every checked element kind, in checking order. The
// order is a contract: the first fatal category found wins, so adding
// entries in the middle changes which error callers see on networks
// with several unsupported element kinds.
var Categories = []Category{
	{Key: "trafo3w", Name: "Three Winding Transformer", Severity: SeverityFatal},
	{Key: "switch", Name: "Switch", Severity: SeverityAdvisory},
	{Key: "motor", Name: "Motor", Severity: SeverityFatal},
	{Key: "asymmetric_load", Name: "Asymmetric Load", Severity: SeverityFatal},
	{Key: "impedance", Name: "Impedance", Severity: SeverityFatal},
	{Key: "ward", Name: "Ward", Severity: SeverityFatal},
	{Key: "xward", Name: "Extended Ward", Severity: SeverityFatal},
	{Key: "dcline", Name: "DC Line", Severity: SeverityFatal},
	{Key: "storage", Name: "Storage", Severity: SeverityFatal},
}

// UnsupportedElementError reports a fatal unsupported element category.
type UnsupportedElementError struct {
	Key  string
	Name string
	Rows int
}

func (e *UnsupportedElementError) Error() string {
	return fmt.Sprintf("unsupported element found (%s - %q) in network", e.Name, e.Key)
}

// Finding is one non-empty advisory table discovered during a check.
type Finding struct {
	Category Category
	Rows     int
}

// Report collects the advisory findings of a successful check.
type Report struct {
	Advisories []Finding
}

// Checker validates network descriptions before simulation.
type Checker struct {
	logger *slog.Logger
}

// NewChecker returns a checker that emits advisory warnings through
// logger. A nil logger falls back to slog.Default().
func NewChecker(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{logger: logger}
}

// Check inspects every known category in order. It returns an
// *UnsupportedElementError for the first fatal category present with
// at least one row. Advisory categories are warned about and recorded
// in the report; absent or empty tables produce nothing.
func (c *Checker) Check(desc *Description) (*Report, error) {
	report := &Report{}
	for _, cat := range Categories {
		rows := desc.RowCount(cat.Key)
		if rows == 0 {
			continue
		}
		if cat.Severity == SeverityFatal {
			return nil, &UnsupportedElementError{Key: cat.Key, Name: cat.Name, Rows: rows}
		}
		c.logger.Warn("network elements present that the backend will not use",
			"element", cat.Name, "table", cat.Key, "rows", rows)
		report.Advisories = append(report.Advisories, Finding{Category: cat, Rows: rows})
	}
	return report, nil
}
