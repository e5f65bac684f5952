package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestTelegram(t *testing.T, apiBase string, maxAttempts int) (*Telegram, *[]time.Duration) {
	t.Helper()
	tg, err := NewTelegram(TelegramConfig{
		Token:       "test-token",
		ChatID:      "42",
		APIBase:     apiBase,
		MaxAttempts: maxAttempts,
	}, nil)
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		waits []time.Duration
	)
	tg.pause = func(_ context.Context, d time.Duration) {
		mu.Lock()
		waits = append(waits, d)
		mu.Unlock()
	}
	return tg, &waits
}

func TestSendDeliversMessage(t *testing.T) {
	t.Parallel()

	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg, _ := newTestTelegram(t, srv.URL, 6)
	require.NoError(t, tg.Send(context.Background(), "hello"))
	require.Equal(t, "42", got.ChatID)
	require.Equal(t, "hello", got.Text)
	require.False(t, got.DisableWebPagePreview)
}

func TestSendRetriesAfterRateLimit(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"ok":false,"parameters":{"retry_after":5}}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg, waits := newTestTelegram(t, srv.URL, 6)
	require.NoError(t, tg.Send(context.Background(), "hello"))
	require.Equal(t, 4, calls)
	// Hinted 5s plus the one-second padding on every rate-limited attempt.
	require.Equal(t, []time.Duration{6 * time.Second, 6 * time.Second, 6 * time.Second}, *waits)
}

func TestSendGivesUpAfterBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	tg, waits := newTestTelegram(t, srv.URL, 6)
	err := tg.Send(context.Background(), "hello")
	require.ErrorIs(t, err, ErrRateLimited)
	require.Equal(t, 6, calls)
	// Unparseable hint falls back to the two-second default plus padding.
	require.Equal(t, 3*time.Second, (*waits)[0])
}

func TestSendFailsFastOnOtherStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	tg, waits := newTestTelegram(t, srv.URL, 6)
	err := tg.Send(context.Background(), "hello")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrRateLimited)
	require.Contains(t, err.Error(), "chat not found")
	require.Empty(t, *waits)
}

func TestNewTelegramValidates(t *testing.T) {
	t.Parallel()

	_, err := NewTelegram(TelegramConfig{ChatID: "42"}, nil)
	require.Error(t, err)

	_, err = NewTelegram(TelegramConfig{Token: "x"}, nil)
	require.Error(t, err)
}

func TestNextAction(t *testing.T) {
	t.Parallel()

	require.Equal(t, action{kind: actionSucceed}, nextAction(200, nil))
	require.Equal(t, action{kind: actionFail}, nextAction(500, nil))

	act := nextAction(429, []byte(`{"parameters":{"retry_after":10}}`))
	require.Equal(t, actionRetry, act.kind)
	require.Equal(t, 11*time.Second, act.wait)

	act = nextAction(429, []byte(`{}`))
	require.Equal(t, 3*time.Second, act.wait)
}
