package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sadenar/DiscordWikiBot/linking"
)

type fixedLinker struct{}

func (fixedLinker) Answer(_ context.Context, msg linking.Message) (string, bool) {
	if msg.FromBot || !strings.Contains(msg.Text, "[[Test]]") {
		return "", false
	}
	return "Link: <https://example.org/wiki/Test>", true
}

type fakeBotAPI struct {
	mu      sync.Mutex
	served  bool
	sent    chan telegramSendMessageRequest
	updates []telegramUpdate
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":999,"is_bot":true,"username":"wikilinkbot"}}`)
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		f.mu.Lock()
		served := f.served
		f.served = true
		f.mu.Unlock()
		if served {
			select {
			case <-r.Context().Done():
			case <-time.After(50 * time.Millisecond):
			}
			_, _ = io.WriteString(w, `{"ok":true,"result":[]}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": f.updates})
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		var req telegramSendMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.sent <- req
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1}}`)
	default:
		http.NotFound(w, r)
	}
}

func TestRunTelegramLoopAnswersHumans(t *testing.T) {
	fake := &fakeBotAPI{
		sent: make(chan telegramSendMessageRequest, 4),
		updates: []telegramUpdate{
			{UpdateID: 1, Message: &telegramMessage{MessageID: 10, Chat: &telegramChat{ID: 5, Type: "group"}, From: &telegramUser{ID: 2, IsBot: true}, Text: "[[Test]]"}},
			{UpdateID: 2, Message: &telegramMessage{MessageID: 11, Chat: &telegramChat{ID: 5, Type: "group"}, From: &telegramUser{ID: 3}, Text: "see [[Test]]"}},
			{UpdateID: 3, Message: &telegramMessage{MessageID: 12, Chat: &telegramChat{ID: 5, Type: "group"}, From: &telegramUser{ID: 3}, Text: "no links"}},
		},
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	api := newTelegramAPI(srv.Client(), srv.URL, "TOKEN")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	done := make(chan error, 1)
	go func() {
		done <- runTelegramLoop(ctx, api, fixedLinker{}, logger, normalizeRuntimeLoopOptions(runtimeLoopOptions{
			BotToken:    "TOKEN",
			PollTimeout: time.Second,
		}))
	}()

	select {
	case req := <-fake.sent:
		if req.ChatID != 5 || req.Text != "Link: <https://example.org/wiki/Test>" {
			t.Fatalf("sendMessage = %+v", req)
		}
		if req.LinkPreviewOptions == nil || !req.LinkPreviewOptions.IsDisabled {
			t.Fatalf("link previews must be disabled: %+v", req)
		}
		if req.ReplyParameters == nil || req.ReplyParameters.MessageID != 11 {
			t.Fatalf("reply parameters = %+v", req.ReplyParameters)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no reply sent")
	}
	select {
	case req := <-fake.sent:
		t.Fatalf("unexpected extra reply: %+v", req)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runTelegramLoop() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("loop did not stop")
	}
}

func TestInboundFromUpdateFilters(t *testing.T) {
	allowed := map[int64]bool{5: true}
	human := &telegramUser{ID: 3, Username: "alice"}
	ok := telegramUpdate{Message: &telegramMessage{MessageID: 1, Date: 1770541200, Chat: &telegramChat{ID: 5, Type: "group"}, From: human, Text: "[[A]]"}}
	msg, keep := inboundFromUpdate(ok, 999, allowed)
	if !keep || msg.ChatID != 5 || msg.FromUsername != "alice" || msg.SentAt.IsZero() {
		t.Fatalf("inboundFromUpdate() = %+v, %v", msg, keep)
	}

	caption := telegramUpdate{Message: &telegramMessage{MessageID: 2, Chat: &telegramChat{ID: 5, Type: "group"}, From: human, Caption: "[[B]]"}}
	if msg, keep := inboundFromUpdate(caption, 999, nil); !keep || msg.Text != "[[B]]" {
		t.Fatalf("caption = %+v, %v", msg, keep)
	}

	drops := []telegramUpdate{
		{},
		{Message: &telegramMessage{MessageID: 1, Chat: &telegramChat{ID: 6}, From: human, Text: "[[A]]"}},
		{Message: &telegramMessage{MessageID: 1, Chat: &telegramChat{ID: 5}, From: &telegramUser{ID: 999}, Text: "[[A]]"}},
		{Message: &telegramMessage{MessageID: 1, Chat: &telegramChat{ID: 5}, From: human, Text: "  "}},
	}
	for i, u := range drops {
		if _, keep := inboundFromUpdate(u, 999, allowed); keep {
			t.Fatalf("drop case %d kept", i)
		}
	}
}

func TestSplitMessage(t *testing.T) {
	text := "Links:\n" + strings.Repeat("<https://example.org/wiki/Ёлка>\n", 40)
	text = strings.TrimSuffix(text, "\n")
	chunks := splitMessage(text, 100)
	for _, c := range chunks {
		if n := len([]rune(c)); n > 100 {
			t.Fatalf("chunk has %d runes", n)
		}
	}
	if strings.Join(chunks, "\n") != text {
		t.Fatalf("chunks do not reassemble into the input")
	}
}

func TestNormalizeRuntimeLoopOptions(t *testing.T) {
	got := resolveRuntimeLoopOptionsFromRunOptions(RunOptions{
		BotToken:       " token ",
		BaseURL:        "https://tg.example/ ",
		AllowedChatIDs: []int64{2, 0, 1, 2},
	})
	if got.BotToken != "token" || got.BaseURL != "https://tg.example" {
		t.Fatalf("options = %+v", got)
	}
	if len(got.AllowedChatIDs) != 2 || got.AllowedChatIDs[0] != 1 || got.AllowedChatIDs[1] != 2 {
		t.Fatalf("allowed chat ids = %v", got.AllowedChatIDs)
	}
	if got.PollTimeout != 30*time.Second || got.MaxConcurrency != 3 || got.BusMaxInFlight != 1024 {
		t.Fatalf("defaults = %+v", got)
	}
	if d := normalizeRuntimeLoopOptions(runtimeLoopOptions{}); d.BaseURL != defaultBaseURL {
		t.Fatalf("base url default = %q", d.BaseURL)
	}
}
