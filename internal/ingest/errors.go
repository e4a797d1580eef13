package ingest

import "fmt"

// Slot names for user-facing upload routing messages.
const (
	SlotAttendance = "attendance"
	SlotSales      = "sales"
)

// FormatError means the file is structurally unusable for its slot: too
// short, missing an expected header token, or no data row survived the
// row-level skips. The file is rejected as a whole.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return e.Reason
}

func formatErrorf(format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// WrongSlotError means the header vocabulary indicates the file belongs
// to the other upload slot. Callers show a redirect message instead of a
// generic parse failure, and may retry the other slot.
type WrongSlotError struct {
	Expected string
	Detected string
}

func (e *WrongSlotError) Error() string {
	return fmt.Sprintf("this looks like a %s file, not a %s file", e.Detected, e.Expected)
}
