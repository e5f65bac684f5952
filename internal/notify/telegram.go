package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/douscan/douscan/internal/metrics"
)

// ErrRateLimited reports that every attempt at a message hit the rate
// limiter and the retry budget ran out.
var ErrRateLimited = errors.New("telegram: rate limited, retry budget exhausted")

const (
	defaultAPIBase = "https://api.telegram.org"
	// defaultRetryAfter is the wait assumed when a 429 response carries
	// no usable retry hint.
	defaultRetryAfter = 2 * time.Second
	// retryPadding is added on top of the server's hint so the next
	// attempt lands clearly outside the limiter window.
	retryPadding = time.Second

	defaultMaxAttempts = 6
)

// TelegramConfig configures the Bot API client.
type TelegramConfig struct {
	Token   string
	ChatID  string
	APIBase string
	// MaxAttempts bounds tries per message, rate-limited ones included.
	// Zero or negative falls back to the default of six.
	MaxAttempts int
	Timeout     time.Duration
}

// Telegram sends messages through the Bot API sendMessage method. It
// implements vacancy.Sender.
type Telegram struct {
	client      *http.Client
	apiBase     string
	token       string
	chatID      string
	maxAttempts int
	logger      *zap.Logger
	pause       func(ctx context.Context, d time.Duration)
}

// NewTelegram constructs a Telegram sender.
func NewTelegram(cfg TelegramConfig, logger *zap.Logger) (*Telegram, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram: token is required")
	}
	if cfg.ChatID == "" {
		return nil, errors.New("telegram: chat id is required")
	}
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Telegram{
		client:      &http.Client{Timeout: cfg.Timeout},
		apiBase:     cfg.APIBase,
		token:       cfg.Token,
		chatID:      cfg.ChatID,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
		pause:       timerPause,
	}, nil
}

type sendRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Send posts text to the configured chat. A 429 response is retried
// after the server's hinted wait plus padding, up to the attempt budget;
// any other non-200 status fails immediately.
func (t *Telegram) Send(ctx context.Context, text string) error {
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		status, body, err := t.post(ctx, text)
		if err != nil {
			return fmt.Errorf("telegram: send message: %w", err)
		}

		act := nextAction(status, body)
		switch act.kind {
		case actionSucceed:
			metrics.ObserveMessageSent()
			return nil
		case actionFail:
			return fmt.Errorf("telegram: send message: status %d: %s", status, truncateBody(body))
		case actionRetry:
			metrics.ObserveRateLimitRetry(act.wait)
			t.logger.Warn("rate limited, backing off",
				zap.Int("attempt", attempt),
				zap.Duration("wait", act.wait),
			)
			t.pause(ctx, act.wait)
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	return ErrRateLimited
}

func (t *Telegram) post(ctx context.Context, text string) (int, []byte, error) {
	payload, err := json.Marshal(sendRequest{
		ChatID:                t.chatID,
		Text:                  text,
		DisableWebPagePreview: false,
	})
	if err != nil {
		return 0, nil, err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

type actionKind int

const (
	actionSucceed actionKind = iota
	actionRetry
	actionFail
)

type action struct {
	kind actionKind
	wait time.Duration
}

// nextAction maps a response to the client's next move. Kept free of I/O
// so the state machine is testable without a server.
func nextAction(status int, body []byte) action {
	switch {
	case status == http.StatusOK:
		return action{kind: actionSucceed}
	case status == http.StatusTooManyRequests:
		return action{kind: actionRetry, wait: retryAfter(body) + retryPadding}
	default:
		return action{kind: actionFail}
	}
}

// retryAfter reads the limiter hint out of a 429 body, falling back to
// the default when the body is not the expected shape.
func retryAfter(body []byte) time.Duration {
	var parsed struct {
		Parameters struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return defaultRetryAfter
	}
	if parsed.Parameters.RetryAfter <= 0 {
		return defaultRetryAfter
	}
	return time.Duration(parsed.Parameters.RetryAfter) * time.Second
}

func truncateBody(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "…"
	}
	return string(body)
}

func timerPause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
