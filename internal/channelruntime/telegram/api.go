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

	"github.com/sadenar/DiscordWikiBot/internal/outputfmt"
)

// maxMessageLen is the Bot API text limit per message.
const maxMessageLen = 4096

type telegramAPI struct {
	http    *http.Client
	baseURL string
	token   string
}

func newTelegramAPI(httpClient *http.Client, baseURL, token string) *telegramAPI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &telegramAPI{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

type telegramUpdate struct {
	UpdateID int64            `json:"update_id"`
	Message  *telegramMessage `json:"message,omitempty"`
}

type telegramMessage struct {
	MessageID int64         `json:"message_id"`
	Date      int64         `json:"date,omitempty"`
	Chat      *telegramChat `json:"chat,omitempty"`
	From      *telegramUser `json:"from,omitempty"`
	Text      string        `json:"text,omitempty"`
	Caption   string        `json:"caption,omitempty"`
}

type telegramChat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"` // private|group|supergroup|channel
}

type telegramUser struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot,omitempty"`
	Username string `json:"username,omitempty"`
}

type telegramResponse[T any] struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      T      `json:"result"`
}

type telegramLinkPreviewOptions struct {
	IsDisabled bool `json:"is_disabled"`
}

type telegramReplyParameters struct {
	MessageID                int64 `json:"message_id"`
	AllowSendingWithoutReply bool  `json:"allow_sending_without_reply"`
}

type telegramSendMessageRequest struct {
	ChatID             int64                       `json:"chat_id"`
	Text               string                      `json:"text"`
	LinkPreviewOptions *telegramLinkPreviewOptions `json:"link_preview_options,omitempty"`
	ReplyParameters    *telegramReplyParameters    `json:"reply_parameters,omitempty"`
}

func (api *telegramAPI) getMe(ctx context.Context) (*telegramUser, error) {
	var out telegramResponse[telegramUser]
	if err := api.call(ctx, http.MethodGet, "getMe", nil, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

func (api *telegramAPI) getUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegramUpdate, int64, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	method := fmt.Sprintf("getUpdates?timeout=%d", secs)
	if offset > 0 {
		method += fmt.Sprintf("&offset=%d", offset)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()
	var out telegramResponse[[]telegramUpdate]
	if err := api.call(reqCtx, http.MethodGet, method, nil, &out); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range out.Result {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return out.Result, next, nil
}

// sendMessage posts text with link previews disabled, so a reply listing several pages
// does not expand into previews.
func (api *telegramAPI) sendMessage(ctx context.Context, chatID int64, text string, replyTo int64) error {
	reqBody := telegramSendMessageRequest{
		ChatID:             chatID,
		Text:               text,
		LinkPreviewOptions: &telegramLinkPreviewOptions{IsDisabled: true},
	}
	if replyTo > 0 {
		reqBody.ReplyParameters = &telegramReplyParameters{MessageID: replyTo, AllowSendingWithoutReply: true}
	}
	var out telegramResponse[json.RawMessage]
	return api.call(ctx, http.MethodPost, "sendMessage", reqBody, &out)
}

func (api *telegramAPI) call(ctx context.Context, httpMethod, method string, body any, out interface{ ok() (bool, string) }) error {
	url := fmt.Sprintf("%s/bot%s/%s", api.baseURL, api.token, method)
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, httpMethod, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := api.http.Do(req)
	if err != nil {
		return outputfmt.RedactError(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	if ok, desc := out.ok(); !ok {
		name, _, _ := strings.Cut(method, "?")
		return fmt.Errorf("telegram %s: ok=false %s", name, desc)
	}
	return nil
}

func (r *telegramResponse[T]) ok() (bool, string) {
	return r.OK, r.Description
}
