package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/metrics"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/workflow"
)

const defaultBaseURL = "https://api.telegram.org"

// Config holds Telegram Bot API client configuration.
type Config struct {
	Token   string        // bot token from @BotFather
	BaseURL string        // override for tests; default api.telegram.org
	Timeout time.Duration // per-request timeout (default 30s)

	// RatePerSecond caps outbound API calls. Telegram throttles bots
	// around 30 messages per second globally.
	RatePerSecond float64
}

// Validate validates the client configuration.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("bot token is required")
	}
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http") {
		return fmt.Errorf("base URL must be http(s)")
	}
	return nil
}

// Client calls the Telegram Bot API over HTTPS.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Bot API client.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telegram config: %w", err)
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RatePerSecond <= 0 {
		config.RatePerSecond = 25
	}

	return &Client{
		token:   config.Token,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RatePerSecond), 5),
	}, nil
}

// Token returns the configured bot token. The webhook server uses it as
// the path secret.
func (c *Client) Token() string {
	return c.token
}

// call posts one Bot API method. The result envelope is decoded into out
// when out is non-nil. HTTP 403 means the recipient blocked the bot and
// maps to workflow.ErrUnreachable.
func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APICallsTotal.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.APICallsTotal.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		metrics.APICallsTotal.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("decode %s response (status %d): %w", method, resp.StatusCode, err)
	}

	if !envelope.OK {
		metrics.APICallsTotal.WithLabelValues(method, "error").Inc()
		if envelope.ErrorCode == http.StatusForbidden {
			return fmt.Errorf("%s: %s: %w", method, envelope.Description, workflow.ErrUnreachable)
		}
		if envelope.ErrorCode == http.StatusBadRequest && strings.Contains(envelope.Description, "chat not found") {
			return fmt.Errorf("%s: %s: %w", method, envelope.Description, workflow.ErrUnreachable)
		}
		return fmt.Errorf("telegram API error on %s: code %d, %s", method, envelope.ErrorCode, envelope.Description)
	}

	metrics.APICallsTotal.WithLabelValues(method, "ok").Inc()
	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// SendMessage sends a text message and returns the sent Message.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, markup *InlineKeyboardMarkup) (*Message, error) {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	var msg Message
	if err := c.call(ctx, "sendMessage", payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendPhoto re-sends a stored photo by file ID.
func (c *Client) SendPhoto(ctx context.Context, chatID, fileID, caption string, markup *InlineKeyboardMarkup) (*Message, error) {
	return c.sendFile(ctx, "sendPhoto", "photo", chatID, fileID, caption, markup)
}

// SendVideo re-sends a stored video by file ID.
func (c *Client) SendVideo(ctx context.Context, chatID, fileID, caption string, markup *InlineKeyboardMarkup) (*Message, error) {
	return c.sendFile(ctx, "sendVideo", "video", chatID, fileID, caption, markup)
}

// SendDocument re-sends a stored document by file ID.
func (c *Client) SendDocument(ctx context.Context, chatID, fileID, caption string, markup *InlineKeyboardMarkup) (*Message, error) {
	return c.sendFile(ctx, "sendDocument", "document", chatID, fileID, caption, markup)
}

func (c *Client) sendFile(ctx context.Context, method, field, chatID, fileID, caption string, markup *InlineKeyboardMarkup) (*Message, error) {
	payload := map[string]any{
		"chat_id": chatID,
		field:     fileID,
	}
	if caption != "" {
		payload["caption"] = caption
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	var msg Message
	if err := c.call(ctx, method, payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageText replaces the text and keyboard of a sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID string, messageID int, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	return c.call(ctx, "editMessageText", payload, nil)
}

// EditMessageReplyMarkup replaces the keyboard of a sent message. A nil
// markup removes the keyboard.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, chatID string, messageID int, markup *InlineKeyboardMarkup) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	} else {
		payload["reply_markup"] = InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{}}
	}
	return c.call(ctx, "editMessageReplyMarkup", payload, nil)
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing a spinner.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": callbackID}, nil)
}

// SetWebhook registers the public webhook URL with Telegram.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	return c.call(ctx, "setWebhook", map[string]any{"url": url}, nil)
}

// DeleteWebhook unregisters the webhook.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", map[string]any{}, nil)
}
