package merge

import "salesbot/internal/domain"

// SelectActive returns the attendance files whose covered range overlaps
// the filter. A nil filter selects everything; a filter without an end
// day is a single-day selection.
func SelectActive(files []domain.LoadedAttendanceFile, filter *domain.DateRange) []domain.LoadedAttendanceFile {
	if filter == nil {
		return files
	}
	window := *filter
	if window.End.IsZero() {
		window.End = domain.DayEnd(window.Start)
	}
	var out []domain.LoadedAttendanceFile
	for _, file := range files {
		if file.Range.Overlaps(window) {
			out = append(out, file)
		}
	}
	return out
}
