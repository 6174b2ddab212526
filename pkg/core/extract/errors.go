package extract

import (
	"errors"
	"fmt"
)

// ErrStructural marks workbooks that cannot be analysed at all.
var ErrStructural = errors.New("unsupported file format")

// StructuralError is the only failure the extractor reports. Use
// errors.Is(err, ErrStructural) to detect it.
type StructuralError struct {
	Reason string
	Err    error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrStructural, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrStructural, e.Reason)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Is matches ErrStructural.
func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

// NewStructuralError wraps cause (may be nil) as a structural failure.
func NewStructuralError(reason string, cause error) *StructuralError {
	return &StructuralError{Reason: reason, Err: cause}
}

// Warning codes.
const (
	WarnSectionMissing     = "section_missing"
	WarnNoPeriods          = "no_periods"
	WarnAliasUnmatched     = "alias_unmatched"
	WarnDuplicateMetric    = "duplicate_metric"
	WarnMetadataUnresolved = "metadata_unresolved"
	WarnShareMismatch      = "share_count_mismatch"
	WarnShortHistory       = "short_history"
	WarnMetricMissing      = "metric_missing"
	WarnRowBudget          = "row_budget_exhausted"
)

// Warning is a non-fatal anomaly found during extraction.
type Warning struct {
	Code    string `json:"code"`
	Section string `json:"section,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Section != "" {
		return fmt.Sprintf("[%s] %s: %s", w.Code, w.Section, w.Message)
	}
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

func warnf(code, section, format string, args ...any) Warning {
	return Warning{Code: code, Section: section, Message: fmt.Sprintf(format, args...)}
}
