package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"salesbot/internal/config"
	"salesbot/internal/httpx"
)

// Summary is the collaborator's structured answer. Any failure to
// produce one is recoverable: callers keep their numeric state and show
// a notice instead.
type Summary struct {
	Summary              string                `json:"summary"`
	Highlights           []string              `json:"highlights"`
	Recommendations      []string              `json:"recommendations"`
	IndividualHighlights []IndividualHighlight `json:"individual_highlights"`
}

type IndividualHighlight struct {
	Salesperson string `json:"salesperson"`
	Highlight   string `json:"highlight"`
}

// Input carries the combined raw CSV text of the accumulated files plus
// a human-readable label for the covered period.
type Input struct {
	AttendanceCSV string
	SalesCSV      string
	RangeLabel    string
	StoreName     string
}

type Usage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"
const maxPromptCSVChars = 60000

// Generate asks the configured provider for a performance summary of the
// raw exports.
func Generate(cfg config.Config, input Input) (Summary, Usage, error) {
	if strings.TrimSpace(input.AttendanceCSV) == "" && strings.TrimSpace(input.SalesCSV) == "" {
		return Summary{}, Usage{}, fmt.Errorf("no data loaded to summarize")
	}

	systemPrompt, userPrompt := buildSummaryPrompts(input)

	var responseText string
	var usage Usage
	var err error

	switch cfg.LLMProvider {
	case "openai":
		model := cfg.LLMModel
		if model == "" {
			model = defaultOpenAIModel
		}
		log.Printf("llm summary provider=openai model=%s range=%s", model, input.RangeLabel)
		responseText, usage, err = callOpenAI(cfg.OpenAIAPIKey, model, systemPrompt, userPrompt)
	default:
		model := cfg.LLMModel
		if model == "" {
			model = defaultAnthropicModel
		}
		log.Printf("llm summary provider=anthropic model=%s range=%s", model, input.RangeLabel)
		responseText, usage, err = callAnthropic(cfg.AnthropicAPIKey, model, systemPrompt, userPrompt)
	}
	if err != nil {
		return Summary{}, usage, err
	}

	summary, parseErr := parseSummaryResponse(responseText)
	if parseErr != nil {
		return Summary{}, usage, parseErr
	}
	return summary, usage, nil
}

func buildSummaryPrompts(input Input) (string, string) {
	store := strings.TrimSpace(input.StoreName)
	if store == "" {
		store = "the store"
	}

	systemPrompt := fmt.Sprintf(`You analyze retail sales-performance data for %s.
You receive two raw CSV exports: an hourly attendance/opportunity export and a PDV sales export, both per salesperson.
Write a short performance summary, the notable highlights, concrete recommendations, and one highlight per standout salesperson.
Base every statement strictly on the numbers in the data.

Respond with JSON only (no markdown):
{"summary": "...", "highlights": ["..."], "recommendations": ["..."], "individual_highlights": [{"salesperson": "...", "highlight": "..."}]}`, store)

	rangeLabel := strings.TrimSpace(input.RangeLabel)
	if rangeLabel == "" {
		rangeLabel = "not specified"
	}

	userPrompt := "Period: " + rangeLabel +
		"\n\nAttendance CSV data:\n" + truncateForPrompt(input.AttendanceCSV) +
		"\n\nSales CSV data:\n" + truncateForPrompt(input.SalesCSV)
	return systemPrompt, userPrompt
}

func truncateForPrompt(csvText string) string {
	csvText = strings.TrimSpace(csvText)
	if csvText == "" {
		return "none"
	}
	if len(csvText) > maxPromptCSVChars {
		return csvText[:maxPromptCSVChars] + "\n...(truncated)"
	}
	return csvText
}

func parseSummaryResponse(responseText string) (Summary, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var summary Summary
	if err := json.Unmarshal([]byte(responseText), &summary); err != nil {
		truncated := responseText
		if len(truncated) > 512 {
			truncated = truncated[:512] + fmt.Sprintf("... [truncated, total_length=%d]", len(responseText))
		}
		return Summary{}, fmt.Errorf("parsing summary response: %w (truncated response: %s)", err, truncated)
	}
	if strings.TrimSpace(summary.Summary) == "" && len(summary.Highlights) == 0 && len(summary.Recommendations) == 0 {
		return Summary{}, fmt.Errorf("summary response contained no usable output")
	}
	return summary, nil
}

// --- Anthropic ---

func callAnthropic(apiKey, model, systemPrompt, userPrompt string) (string, Usage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", Usage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := Usage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d cache_create=%d cache_read=%d", len(block.Text), usage.InputTokens, usage.OutputTokens, usage.CacheCreationInputTokens, usage.CacheReadInputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}

// --- OpenAI ---

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func callOpenAI(apiKey, model, systemPrompt, userPrompt string) (string, Usage, error) {
	reqBody := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", Usage{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", Usage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := httpx.External.Do(req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", Usage{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", Usage{}, fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		log.Printf("llm openai api error: %s", openAIResp.Error.Message)
		return "", Usage{}, fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("no choices in OpenAI response")
	}
	usage := Usage{}
	if openAIResp.Usage != nil {
		usage.InputTokens = openAIResp.Usage.PromptTokens
		usage.OutputTokens = openAIResp.Usage.CompletionTokens
	}

	log.Printf("llm openai response size=%d tokens_in=%d tokens_out=%d", len(openAIResp.Choices[0].Message.Content), usage.InputTokens, usage.OutputTokens)
	return openAIResp.Choices[0].Message.Content, usage, nil
}
