package fetch

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"

	"salesbot/internal/config"
	"salesbot/internal/ingest"
	"salesbot/internal/session"
)

// Result tracks separate counters for each outcome of an inbox scan.
type Result struct {
	Loaded     int
	Duplicates int
	Errors     []string
}

func (r *Result) add(other Result) {
	r.Loaded += other.Loaded
	r.Duplicates += other.Duplicates
	r.Errors = append(r.Errors, other.Errors...)
}

// ScanInbox loads every CSV in dir into the given slot. Duplicates are
// counted silently, so rescanning a directory is always safe.
func ScanInbox(sess *session.Session, dir, slot string) Result {
	var result Result
	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s inbox: %v", slot, err))
		return result
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		result.add(loadInboxFile(sess, filepath.Join(dir, entry.Name()), slot))
	}
	return result
}

func loadInboxFile(sess *session.Session, path, slot string) Result {
	var result Result
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
		return result
	}

	if slot == ingest.SlotSales {
		_, err = sess.AddSales(name, data)
	} else {
		_, err = sess.AddAttendance(name, data)
	}
	switch {
	case err == nil:
		result.Loaded++
	case errors.Is(err, session.ErrDuplicateFile):
		result.Duplicates++
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
	}
	return result
}

// FormatScanSummary returns a human-readable summary of a scan Result.
func FormatScanSummary(result Result) string {
	parts := []string{fmt.Sprintf("%d new", result.Loaded)}
	if result.Duplicates > 0 {
		parts = append(parts, fmt.Sprintf("%d already loaded", result.Duplicates))
	}
	msg := "Inbox scan: " + strings.Join(parts, ", ")
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\nWarnings:\n%s", strings.Join(result.Errors, "\n"))
	}
	return msg
}

// StartInboxWatcher watches the configured inbox directories and loads
// CSVs as they appear. Events are debounced per path because export
// tools tend to write in bursts.
func StartInboxWatcher(cfg config.Config, sess *session.Session, api *slack.Client) error {
	dirs := inboxDirs(cfg)
	if len(dirs) == 0 {
		log.Println("Inbox watcher disabled (no inbox dirs configured)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		log.Printf("Watching inbox dir=%s slot=%s", dir, dirs[dir])
	}

	// Pick up whatever is already sitting in the inboxes.
	var initial Result
	for dir, slot := range dirs {
		initial.add(ScanInbox(sess, dir, slot))
	}
	if initial.Loaded > 0 || len(initial.Errors) > 0 {
		log.Printf("Initial inbox scan: %s", FormatScanSummary(initial))
	}

	go watchLoop(watcher, dirs, sess, cfg, api)
	return nil
}

func inboxDirs(cfg config.Config) map[string]string {
	dirs := map[string]string{}
	if cfg.AttendanceInboxDir != "" {
		dirs[cfg.AttendanceInboxDir] = ingest.SlotAttendance
	}
	if cfg.SalesInboxDir != "" {
		dirs[cfg.SalesInboxDir] = ingest.SlotSales
	}
	return dirs
}

func watchLoop(watcher *fsnotify.Watcher, dirs map[string]string, sess *session.Session, cfg config.Config, api *slack.Client) {
	const debounceInterval = 200 * time.Millisecond

	var mu sync.Mutex
	timers := map[string]*time.Timer{}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".csv") {
				continue
			}
			slot, watched := dirs[filepath.Dir(event.Name)]
			if !watched {
				continue
			}

			path := event.Name
			mu.Lock()
			if t, pending := timers[path]; pending {
				t.Stop()
			}
			timers[path] = time.AfterFunc(debounceInterval, func() {
				mu.Lock()
				delete(timers, path)
				mu.Unlock()

				result := loadInboxFile(sess, path, slot)
				if result.Loaded > 0 {
					log.Printf("inbox loaded slot=%s file=%s", slot, filepath.Base(path))
					notify(api, cfg, fmt.Sprintf("Loaded `%s` from the %s inbox.", filepath.Base(path), slot))
				}
				for _, e := range result.Errors {
					log.Printf("inbox error slot=%s: %s", slot, e)
					notify(api, cfg, fmt.Sprintf("Inbox file rejected: %s", e))
				}
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("inbox watcher error: %v", err)
		}
	}
}

// StartRescanScheduler starts a cron-based periodic rescan of the inbox
// directories, catching files the watcher missed (network mounts, moves).
// The schedule is a standard 5-field cron expression.
func StartRescanScheduler(cfg config.Config, sess *session.Session, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.RescanSchedule)
	if schedule == "" {
		log.Println("Inbox rescan disabled (rescan_schedule not set)")
		return
	}
	dirs := inboxDirs(cfg)
	if len(dirs) == 0 {
		log.Println("Inbox rescan disabled: no inbox dirs configured")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid rescan_schedule '%s': %v — rescan disabled", schedule, err)
		return
	}
	log.Printf("Inbox rescan scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next inbox rescan at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			var result Result
			for dir, slot := range dirs {
				result.add(ScanInbox(sess, dir, slot))
			}
			summary := FormatScanSummary(result)
			log.Printf("Inbox rescan complete: %s", summary)
			if result.Loaded > 0 || len(result.Errors) > 0 {
				notify(api, cfg, summary)
			}
		}
	}()
}

func notify(api *slack.Client, cfg config.Config, text string) {
	if api == nil || cfg.ReportChannelID == "" {
		return
	}
	if _, _, err := api.PostMessage(cfg.ReportChannelID, slack.MsgOptionText(text, false)); err != nil {
		log.Printf("inbox notify error: %v", err)
	}
}
