package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/workflow"
)

// apiCall records one request hitting the fake Bot API.
type apiCall struct {
	method  string
	payload map[string]any
}

// fakeAPI is an httptest-backed Bot API returning canned envelopes.
type fakeAPI struct {
	server *httptest.Server
	calls  []apiCall

	errorCode   int
	description string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload for %s: %v", method, err)
		}
		f.calls = append(f.calls, apiCall{method: method, payload: payload})

		w.Header().Set("Content-Type", "application/json")
		if f.errorCode != 0 {
			json.NewEncoder(w).Encode(map[string]any{
				"ok":          false,
				"error_code":  f.errorCode,
				"description": f.description,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 41 + len(f.calls)},
		})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	client, err := NewClient(Config{
		Token:         "test-token",
		BaseURL:       api.server.URL,
		RatePerSecond: 1000,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestSendMessage(t *testing.T) {
	api := newFakeAPI(t)
	client := newTestClient(t, api)

	msg, err := client.SendMessage(context.Background(), "300", "hello", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.MessageID != 42 {
		t.Errorf("message_id = %d, want 42", msg.MessageID)
	}

	if len(api.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(api.calls))
	}
	call := api.calls[0]
	if call.method != "sendMessage" {
		t.Errorf("method = %q, want sendMessage", call.method)
	}
	if call.payload["chat_id"] != "300" || call.payload["text"] != "hello" {
		t.Errorf("payload = %v", call.payload)
	}
}

func TestBlockedBotMapsToUnreachable(t *testing.T) {
	api := newFakeAPI(t)
	api.errorCode = 403
	api.description = "Forbidden: bot was blocked by the user"
	client := newTestClient(t, api)

	_, err := client.SendMessage(context.Background(), "300", "hello", nil)
	if !errors.Is(err, workflow.ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
}

func TestChatNotFoundMapsToUnreachable(t *testing.T) {
	api := newFakeAPI(t)
	api.errorCode = 400
	api.description = "Bad Request: chat not found"
	client := newTestClient(t, api)

	_, err := client.SendMessage(context.Background(), "300", "hello", nil)
	if !errors.Is(err, workflow.ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
}

func TestOtherAPIErrorsAreNotUnreachable(t *testing.T) {
	api := newFakeAPI(t)
	api.errorCode = 429
	api.description = "Too Many Requests"
	client := newTestClient(t, api)

	_, err := client.SendMessage(context.Background(), "300", "hello", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, workflow.ErrUnreachable) {
		t.Errorf("429 must not map to ErrUnreachable: %v", err)
	}
}

func TestNotifierMediaDispatch(t *testing.T) {
	tests := []struct {
		kind       models.MediaKind
		wantMethod string
		wantField  string
	}{
		{models.MediaPhoto, "sendPhoto", "photo"},
		{models.MediaVideo, "sendVideo", "video"},
		{models.MediaDocument, "sendDocument", "document"},
	}

	for _, tt := range tests {
		api := newFakeAPI(t)
		notifier := NewNotifier(newTestClient(t, api))

		id, err := notifier.SendMedia(context.Background(), "300",
			models.MediaRef{Kind: tt.kind, FileID: "file-1"}, "P1 cut", nil)
		if err != nil {
			t.Fatalf("%s: %v", tt.kind, err)
		}
		if id == 0 {
			t.Errorf("%s: message id = 0", tt.kind)
		}
		call := api.calls[0]
		if call.method != tt.wantMethod {
			t.Errorf("%s: method = %q, want %q", tt.kind, call.method, tt.wantMethod)
		}
		if call.payload[tt.wantField] != "file-1" {
			t.Errorf("%s: payload = %v, want %s=file-1", tt.kind, call.payload, tt.wantField)
		}
	}
}

func TestNotifierUnknownMediaKind(t *testing.T) {
	api := newFakeAPI(t)
	notifier := NewNotifier(newTestClient(t, api))

	_, err := notifier.SendMedia(context.Background(), "300",
		models.MediaRef{Kind: models.MediaUnknown, FileID: "file-1"}, "", nil)
	if err == nil {
		t.Fatal("expected error for unknown media kind")
	}
	if len(api.calls) != 0 {
		t.Errorf("no API call should be made, got %d", len(api.calls))
	}
}

func TestNotifierKeyboardConversion(t *testing.T) {
	api := newFakeAPI(t)
	notifier := NewNotifier(newTestClient(t, api))

	kb := workflow.Keyboard{
		{workflow.Action{Label: "Approve", Data: "approve:1:abc"}},
		{workflow.Action{Label: "Reject", Data: "reject:1:abc"}},
	}
	if _, err := notifier.SendText(context.Background(), "300", "content", kb); err != nil {
		t.Fatalf("send: %v", err)
	}

	markup, ok := api.calls[0].payload["reply_markup"].(map[string]any)
	if !ok {
		t.Fatalf("reply_markup missing: %v", api.calls[0].payload)
	}
	rows, ok := markup["inline_keyboard"].([]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("inline_keyboard = %v, want 2 rows", markup["inline_keyboard"])
	}
	first := rows[0].([]any)[0].(map[string]any)
	if first["text"] != "Approve" || first["callback_data"] != "approve:1:abc" {
		t.Errorf("button = %v", first)
	}
}

func TestEditActionsNilRemovesKeyboard(t *testing.T) {
	api := newFakeAPI(t)
	notifier := NewNotifier(newTestClient(t, api))

	if err := notifier.EditActions(context.Background(), "300", 42, nil); err != nil {
		t.Fatalf("edit: %v", err)
	}

	call := api.calls[0]
	if call.method != "editMessageReplyMarkup" {
		t.Errorf("method = %q", call.method)
	}
	markup, ok := call.payload["reply_markup"].(map[string]any)
	if !ok {
		t.Fatalf("reply_markup missing: %v", call.payload)
	}
	rows, ok := markup["inline_keyboard"].([]any)
	if !ok || len(rows) != 0 {
		t.Errorf("inline_keyboard = %v, want empty", markup["inline_keyboard"])
	}
}

func TestConfigValidate(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("empty token should fail validation")
	}
	if _, err := NewClient(Config{Token: "t", BaseURL: "ftp://x"}); err == nil {
		t.Error("non-http base URL should fail validation")
	}
}
