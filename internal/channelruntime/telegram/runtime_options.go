package telegram

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sadenar/DiscordWikiBot/internal/channelruntime/replyflow"
)

const defaultBaseURL = "https://api.telegram.org"

type RunOptions struct {
	BotToken       string
	BaseURL        string
	AllowedChatIDs []int64
	PollTimeout    time.Duration
	TaskTimeout    time.Duration
	MaxConcurrency int
	BusMaxInFlight int
	HTTPClient     *http.Client
	Linker         replyflow.Answerer
	Logger         *slog.Logger
}

type runtimeLoopOptions struct {
	BotToken       string
	BaseURL        string
	AllowedChatIDs []int64
	PollTimeout    time.Duration
	TaskTimeout    time.Duration
	MaxConcurrency int
	BusMaxInFlight int
}

func resolveRuntimeLoopOptionsFromRunOptions(opts RunOptions) runtimeLoopOptions {
	return normalizeRuntimeLoopOptions(runtimeLoopOptions{
		BotToken:       opts.BotToken,
		BaseURL:        opts.BaseURL,
		AllowedChatIDs: opts.AllowedChatIDs,
		PollTimeout:    opts.PollTimeout,
		TaskTimeout:    opts.TaskTimeout,
		MaxConcurrency: opts.MaxConcurrency,
		BusMaxInFlight: opts.BusMaxInFlight,
	})
}

func normalizeRuntimeLoopOptions(opts runtimeLoopOptions) runtimeLoopOptions {
	opts.BotToken = strings.TrimSpace(opts.BotToken)
	opts.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	opts.AllowedChatIDs = normalizeAllowedChatIDs(opts.AllowedChatIDs)
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30 * time.Second
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = 30 * time.Second
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 3
	}
	if opts.BusMaxInFlight <= 0 {
		opts.BusMaxInFlight = 1024
	}
	return opts
}

func normalizeAllowedChatIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
