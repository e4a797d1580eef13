package slackbot

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"salesbot/internal/config"
	"salesbot/internal/ingest"
	"salesbot/internal/insight"
	"salesbot/internal/session"
)

// generateSummaryFn is swappable so tests can stub the LLM boundary.
var generateSummaryFn = insight.Generate

// Start runs the Socket Mode event loop. Blocks until the connection
// dies.
func Start(cfg config.Config, sess *session.Session, api *slack.Client) error {
	client := socketmode.New(api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				client.Ack(*evt.Request)
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				log.Printf("Slash command received: %s from user=%s channel=%s", cmd.Command, cmd.UserID, cmd.ChannelID)
				go handleSlashCommand(api, sess, cfg, cmd)
			case socketmode.EventTypeEventsAPI:
				client.Ack(*evt.Request)
				eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				go handleEventsAPI(api, sess, cfg, eventsAPIEvent)
			}
		}
	}()

	log.Println("Slack bot connected via Socket Mode")
	return client.Run()
}

func handleSlashCommand(api *slack.Client, sess *session.Session, cfg config.Config, cmd slack.SlashCommand) {
	switch cmd.Command {
	case "/metrics":
		handleMetrics(api, sess, cmd)
	case "/filter":
		handleFilter(api, sess, cmd)
	case "/clear-filter":
		sess.ClearFilter()
		postEphemeral(api, cmd, "Date filter cleared. Showing all loaded files.")
	case "/summary":
		handleSummary(api, sess, cfg, cmd)
	case "/reset":
		sess.Reset()
		postEphemeral(api, cmd, "Session cleared. All loaded files and the active filter were discarded.")
	case "/help":
		handleHelp(api, cfg, cmd)
	}
}

func handleEventsAPI(api *slack.Client, sess *session.Session, cfg config.Config, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.FileSharedEvent:
		handleFileShared(api, sess, cfg, ev)
	}
}

func handleFileShared(api *slack.Client, sess *session.Session, cfg config.Config, ev *slackevents.FileSharedEvent) {
	info, _, _, err := api.GetFileInfo(ev.FileID, 0, 0)
	if err != nil {
		log.Printf("file-shared info error file=%s: %v", ev.FileID, err)
		return
	}
	if !isCSVUpload(info) {
		log.Printf("file-shared skipped non-csv file=%s name=%s type=%s", ev.FileID, info.Name, info.Filetype)
		return
	}

	channelID := ev.ChannelID
	if channelID == "" {
		channelID = cfg.ReportChannelID
	}

	var buf bytes.Buffer
	if err := api.GetFile(info.URLPrivateDownload, &buf); err != nil {
		log.Printf("file-shared download error file=%s name=%s: %v", ev.FileID, info.Name, err)
		postTo(api, channelID, fmt.Sprintf("Could not download `%s`: %v", info.Name, err))
		return
	}

	message := loadUpload(sess, info.Name, buf.Bytes())
	postTo(api, channelID, message)
}

func isCSVUpload(info *slack.File) bool {
	if strings.EqualFold(info.Filetype, "csv") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(info.Name), ".csv")
}

// loadUpload routes a CSV into the right slot. Filename hints pick the
// first slot to try; a wrong-slot rejection triggers one retry on the
// other slot so users don't have to care about naming.
func loadUpload(sess *session.Session, name string, data []byte) string {
	trySalesFirst := salesNameHint(name)

	if trySalesFirst {
		msg, retry := loadSales(sess, name, data)
		if !retry {
			return msg
		}
		msg, _ = loadAttendance(sess, name, data)
		return msg
	}

	msg, retry := loadAttendance(sess, name, data)
	if !retry {
		return msg
	}
	msg, _ = loadSales(sess, name, data)
	return msg
}

func salesNameHint(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "pdv") || strings.Contains(lower, "venda") || strings.Contains(lower, "sales")
}

func loadAttendance(sess *session.Session, name string, data []byte) (msg string, wrongSlot bool) {
	file, err := sess.AddAttendance(name, data)
	if err != nil {
		var slotErr *ingest.WrongSlotError
		if errors.As(err, &slotErr) {
			return "", true
		}
		return uploadErrorMessage(name, ingest.SlotAttendance, err), false
	}
	return fmt.Sprintf("Loaded attendance file `%s` covering %s (%d salespeople).", file.Name, file.Range.Label(), len(file.Parsed)), false
}

func loadSales(sess *session.Session, name string, data []byte) (msg string, wrongSlot bool) {
	file, err := sess.AddSales(name, data)
	if err != nil {
		var slotErr *ingest.WrongSlotError
		if errors.As(err, &slotErr) {
			return "", true
		}
		return uploadErrorMessage(name, ingest.SlotSales, err), false
	}
	return fmt.Sprintf("Loaded sales file `%s` (%d salespeople).", file.Name, len(file.Parsed)), false
}

func uploadErrorMessage(name, slot string, err error) string {
	if errors.Is(err, session.ErrDuplicateFile) {
		return fmt.Sprintf("`%s` is already loaded as a %s file. Rename the export if this is really a new one.", name, slot)
	}
	var formatErr *ingest.FormatError
	if errors.As(err, &formatErr) {
		return fmt.Sprintf("Could not read `%s` as a %s file: %s.", name, slot, formatErr.Reason)
	}
	return fmt.Sprintf("Could not load `%s`: %v", name, err)
}

func handleMetrics(api *slack.Client, sess *session.Session, cmd slack.SlashCommand) {
	view := sess.Consolidated()
	if len(view.Records) == 0 {
		postEphemeral(api, cmd, "No data loaded yet. Upload the attendance and PDV CSV exports to this channel.")
		return
	}
	header := fmt.Sprintf("Consolidated metrics — %s (%d of %d attendance files active, %d sales files)",
		view.RangeLabel, view.ActiveFiles, view.AttendanceFiles, view.SalesFiles)
	if view.RangeLabel == "" {
		header = fmt.Sprintf("Consolidated metrics (%d attendance files, %d sales files)", view.AttendanceFiles, view.SalesFiles)
	}
	text := header + "\n```" + RenderMetricsTable(view.Records) + "```"
	if _, _, err := api.PostMessage(cmd.ChannelID, slack.MsgOptionText(text, false)); err != nil {
		log.Printf("Error posting metrics: %v", err)
	}
}

func handleFilter(api *slack.Client, sess *session.Session, cmd slack.SlashCommand) {
	from, to, err := parseFilterArgs(cmd.Text)
	if err != nil {
		postEphemeral(api, cmd, "Usage: `/filter dd/mm/yyyy [dd/mm/yyyy]` — one date for a single day, two for a range.")
		return
	}
	rng := sess.SetFilter(from, to)
	view := sess.Consolidated()
	postEphemeral(api, cmd, fmt.Sprintf("Filter set to %s: %d of %d attendance files active, %d salespeople in view.",
		rng.Label(), view.ActiveFiles, view.AttendanceFiles, len(view.Records)))
}

func parseFilterArgs(text string) (time.Time, time.Time, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || len(fields) > 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("expected one or two dates, got %d", len(fields))
	}
	from, ok := ingest.ParseDateToken(fields[0])
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("unparseable date %q", fields[0])
	}
	var to time.Time
	if len(fields) == 2 {
		to, ok = ingest.ParseDateToken(fields[1])
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("unparseable date %q", fields[1])
		}
	}
	return from, to, nil
}

func handleSummary(api *slack.Client, sess *session.Session, cfg config.Config, cmd slack.SlashCommand) {
	attendanceCSV, salesCSV := sess.CombinedCSV()
	if strings.TrimSpace(attendanceCSV) == "" && strings.TrimSpace(salesCSV) == "" {
		postEphemeral(api, cmd, "No data loaded yet, nothing to summarize.")
		return
	}
	postEphemeral(api, cmd, "Generating performance summary...")

	summary, usage, err := generateSummaryFn(cfg, insight.Input{
		AttendanceCSV: attendanceCSV,
		SalesCSV:      salesCSV,
		RangeLabel:    sess.ActiveRangeLabel(),
		StoreName:     cfg.StoreName,
	})
	if err != nil {
		// Collaborator failure is non-fatal: the numbers stay intact.
		log.Printf("summary error: %v", err)
		postEphemeral(api, cmd, "The summary service is unavailable right now. Your loaded data is unaffected — try `/summary` again later.")
		return
	}

	log.Printf("summary generated tokens=%d", usage.TotalTokens())
	if _, _, err := api.PostMessage(cmd.ChannelID, slack.MsgOptionText(RenderSummary(summary), false)); err != nil {
		log.Printf("Error posting summary: %v", err)
	}
}

func handleHelp(api *slack.Client, cfg config.Config, cmd slack.SlashCommand) {
	help := fmt.Sprintf("*%s conversion bot*\n\n"+
		"Upload your CSV exports to this channel — the hourly attendance export and the PDV sales export. I reconcile them per salesperson.\n\n"+
		"• `/metrics` — Consolidated conversion table for the loaded files\n"+
		"• `/filter dd/mm/yyyy [dd/mm/yyyy]` — Restrict metrics to a day or date range\n"+
		"• `/clear-filter` — Remove the date filter\n"+
		"• `/summary` — AI performance summary of the loaded data\n"+
		"• `/reset` — Discard everything loaded this session\n",
		cfg.StoreName,
	)
	postEphemeral(api, cmd, help)
}

func postEphemeral(api *slack.Client, cmd slack.SlashCommand, text string) {
	if _, err := api.PostEphemeral(cmd.ChannelID, cmd.UserID, slack.MsgOptionText(text, false)); err != nil {
		log.Printf("Error posting ephemeral: %v", err)
	}
}

func postTo(api *slack.Client, channelID, text string) {
	if channelID == "" {
		return
	}
	if _, _, err := api.PostMessage(channelID, slack.MsgOptionText(text, false)); err != nil {
		log.Printf("Error posting message: %v", err)
	}
}
