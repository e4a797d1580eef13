package httpx

import (
	"net/http"
	"time"
)

const externalTimeout = 30 * time.Second

// External is the shared client for all outbound calls (LLM provider,
// Slack file downloads).
var External = &http.Client{
	Timeout: externalTimeout,
}
