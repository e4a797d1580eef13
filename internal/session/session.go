package session

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"salesbot/internal/domain"
	"salesbot/internal/ingest"
	"salesbot/internal/merge"
	"salesbot/internal/storage/sqlite"
)

// ErrDuplicateFile marks an upload whose name is already loaded into the
// same slot. Rejected before parsing; the accumulated state is untouched.
var ErrDuplicateFile = errors.New("file already loaded")

// Session owns the accumulated uploads and the active date filter. It is
// the single source of truth; everything consolidated is recomputed in
// full from the loaded lists on demand. Slack handlers and the inbox
// watcher call in from separate goroutines, hence the mutex.
type Session struct {
	mu         sync.Mutex
	db         *sql.DB
	attendance []domain.LoadedAttendanceFile
	sales      []domain.LoadedSalesFile
	filter     *domain.DateRange
}

// New creates an empty session. db may be nil; when set, accepted
// uploads are journaled for duplicate detection and audit.
func New(db *sql.DB) *Session {
	return &Session{db: db}
}

// AddAttendance parses and accepts one attendance upload. On any parse
// error the session is left exactly as it was.
func (s *Session) AddAttendance(name string, data []byte) (domain.LoadedAttendanceFile, error) {
	text := ingest.DecodeText(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attendanceLoadedLocked(name) {
		return domain.LoadedAttendanceFile{}, fmt.Errorf("%w: %s", ErrDuplicateFile, name)
	}
	result, err := ingest.ParseAttendance(text)
	if err != nil {
		return domain.LoadedAttendanceFile{}, err
	}

	file := domain.LoadedAttendanceFile{
		Name:       name,
		RawContent: text,
		Range:      result.Range,
		Parsed:     result.Data,
	}
	s.journalLocked(sqlite.LoadedFile{
		Slot:       ingest.SlotAttendance,
		Name:       name,
		RawContent: text,
		RangeStart: result.Range.Start,
		RangeEnd:   result.Range.End,
	})
	s.attendance = append(s.attendance, file)
	log.Printf("ingest slot=attendance file=%s range=%s salespeople=%d", name, result.Range.Label(), len(result.Data))
	return file, nil
}

// AddSales parses and accepts one PDV upload.
func (s *Session) AddSales(name string, data []byte) (domain.LoadedSalesFile, error) {
	text := ingest.DecodeText(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.salesLoadedLocked(name) {
		return domain.LoadedSalesFile{}, fmt.Errorf("%w: %s", ErrDuplicateFile, name)
	}
	parsed, err := ingest.ParseSales(text)
	if err != nil {
		return domain.LoadedSalesFile{}, err
	}

	file := domain.LoadedSalesFile{Name: name, RawContent: text, Parsed: parsed}
	s.journalLocked(sqlite.LoadedFile{
		Slot:       ingest.SlotSales,
		Name:       name,
		RawContent: text,
	})
	s.sales = append(s.sales, file)
	log.Printf("ingest slot=sales file=%s salespeople=%d", name, len(parsed))
	return file, nil
}

// SetFilter activates a date filter. A zero `to` selects the single day
// given by `from`.
func (s *Session) SetFilter(from, to time.Time) domain.DateRange {
	if to.IsZero() {
		to = from
	}
	rng := domain.NewDateRange(from, to)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = &rng
	return rng
}

func (s *Session) ClearFilter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = nil
}

// Reset drops every loaded file, the filter and the journal.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance = nil
	s.sales = nil
	s.filter = nil
	if s.db != nil {
		if err := sqlite.ClearFiles(s.db); err != nil {
			log.Printf("session reset journal error: %v", err)
		}
	}
	log.Printf("session reset")
}

// View is the fully derived consolidated state at one point in time.
type View struct {
	Records         []domain.ConsolidatedRecord
	AttendanceFiles int
	ActiveFiles     int
	SalesFiles      int
	RangeLabel      string
	Filtered        bool
}

// Consolidated recomputes the consolidated records from scratch: filter
// the attendance files, merge each dialect, restrict the sales side when
// a filter is active, then outer-join.
func (s *Session) Consolidated() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := merge.SelectActive(s.attendance, s.filter)
	attSets := make([][]domain.SalespersonAttendance, 0, len(active))
	for _, file := range active {
		attSets = append(attSets, file.Parsed)
	}
	salesSets := make([][]domain.SalespersonSales, 0, len(s.sales))
	for _, file := range s.sales {
		salesSets = append(salesSets, file.Parsed)
	}

	mergedAtt := merge.Attendance(attSets)
	mergedSales := merge.Sales(salesSets)
	if s.filter != nil {
		mergedSales = merge.RestrictSales(mergedSales, mergedAtt)
	}

	return View{
		Records:         merge.Consolidate(mergedAtt, mergedSales),
		AttendanceFiles: len(s.attendance),
		ActiveFiles:     len(active),
		SalesFiles:      len(s.sales),
		RangeLabel:      s.rangeLabelLocked(active),
		Filtered:        s.filter != nil,
	}
}

// CombinedCSV returns the concatenated raw text of every accumulated
// file per slot, the summarizer's input contract. Reads the journal when
// available so the text matches exactly what was accepted.
func (s *Session) CombinedCSV() (attendanceCSV, salesCSV string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		att, errA := sqlite.ListRawContents(s.db, ingest.SlotAttendance)
		sales, errS := sqlite.ListRawContents(s.db, ingest.SlotSales)
		if errA == nil && errS == nil {
			return strings.Join(att, "\n\n"), strings.Join(sales, "\n\n")
		}
		log.Printf("session journal read error: att=%v sales=%v", errA, errS)
	}

	attParts := make([]string, 0, len(s.attendance))
	for _, f := range s.attendance {
		attParts = append(attParts, f.RawContent)
	}
	salesParts := make([]string, 0, len(s.sales))
	for _, f := range s.sales {
		salesParts = append(salesParts, f.RawContent)
	}
	return strings.Join(attParts, "\n\n"), strings.Join(salesParts, "\n\n")
}

// ActiveRangeLabel is the label of the filter if set, otherwise the
// union of the loaded attendance ranges.
func (s *Session) ActiveRangeLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rangeLabelLocked(merge.SelectActive(s.attendance, s.filter))
}

func (s *Session) rangeLabelLocked(active []domain.LoadedAttendanceFile) string {
	if s.filter != nil {
		window := *s.filter
		if window.End.IsZero() {
			window.End = domain.DayEnd(window.Start)
		}
		return window.Label()
	}
	if len(active) == 0 {
		return ""
	}
	union := active[0].Range
	for _, file := range active[1:] {
		if file.Range.Start.Before(union.Start) {
			union.Start = file.Range.Start
		}
		if file.Range.End.After(union.End) {
			union.End = file.Range.End
		}
	}
	return union.Label()
}

func (s *Session) attendanceLoadedLocked(name string) bool {
	for _, f := range s.attendance {
		if f.Name == name {
			return true
		}
	}
	return s.journalHasLocked(ingest.SlotAttendance, name)
}

func (s *Session) salesLoadedLocked(name string) bool {
	for _, f := range s.sales {
		if f.Name == name {
			return true
		}
	}
	return s.journalHasLocked(ingest.SlotSales, name)
}

func (s *Session) journalHasLocked(slot, name string) bool {
	if s.db == nil {
		return false
	}
	exists, err := sqlite.FileExists(s.db, slot, name)
	if err != nil {
		log.Printf("session journal lookup error slot=%s file=%s: %v", slot, name, err)
		return false
	}
	return exists
}

func (s *Session) journalLocked(file sqlite.LoadedFile) {
	if s.db == nil {
		return
	}
	if err := sqlite.InsertLoadedFile(s.db, file); err != nil {
		// Journal trouble should not reject an otherwise valid upload.
		log.Printf("session journal insert error slot=%s file=%s: %v", file.Slot, file.Name, err)
	}
}
