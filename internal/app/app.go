package app

import (
	"log"

	"github.com/slack-go/slack"

	"salesbot/internal/config"
	"salesbot/internal/fetch"
	"salesbot/internal/session"
	"salesbot/internal/slackbot"
	"salesbot/internal/storage/sqlite"
)

func Main() {
	cfg := config.LoadConfig()
	log.Printf("Config loaded. Store=%s Provider=%s Timezone=%s DB=%s", cfg.StoreName, cfg.LLMProvider, cfg.Timezone, cfg.DBPath)

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	sess := session.New(db)

	api := slack.New(
		cfg.SlackBotToken,
		slack.OptionAppLevelToken(cfg.SlackAppToken),
	)

	if err := fetch.StartInboxWatcher(cfg, sess, api); err != nil {
		log.Printf("Inbox watcher error (continuing without it): %v", err)
	}
	fetch.StartRescanScheduler(cfg, sess, api)

	log.Println("Starting Sales Conversion Bot...")
	if err := slackbot.Start(cfg, sess, api); err != nil {
		log.Fatalf("Slack bot error: %v", err)
	}
}
