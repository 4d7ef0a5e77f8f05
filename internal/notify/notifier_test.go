package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	name   string
	titles []string
	err    error
}

func (s *recordingSender) Send(_ context.Context, title, _ string) error {
	s.titles = append(s.titles, title)
	return s.err
}

func (s *recordingSender) Name() string { return s.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func TestNotifierEventFilter(t *testing.T) {
	s := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{s}, []string{EventVerdict}, discardLogger())

	require.NoError(t, n.Notify(context.Background(), EventDayComplete, "day 3", "progress"))
	assert.Empty(t, s.titles, "filtered event must not reach senders")

	require.NoError(t, n.Notify(context.Background(), EventVerdict, "verdict", "passed"))
	assert.Equal(t, []string{"verdict"}, s.titles)
}

func TestNotifierEmptyFilterAdmitsAll(t *testing.T) {
	s := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{s}, nil, discardLogger())

	require.NoError(t, n.Notify(context.Background(), EventDayComplete, "day 1", "progress"))
	require.NoError(t, n.Notify(context.Background(), EventVerdict, "verdict", "failed"))
	assert.Len(t, s.titles, 2)
}

func TestNotifierContinuesPastFailedSender(t *testing.T) {
	broken := &recordingSender{name: "broken", err: errors.New("webhook down")}
	healthy := &recordingSender{name: "healthy"}
	n := NewNotifier([]Sender{broken, healthy}, nil, discardLogger())

	err := n.Notify(context.Background(), EventVerdict, "verdict", "passed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, []string{"verdict"}, healthy.titles, "failure must not block remaining senders")
}

func TestDiscordSender(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, jsonDecode(r, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscordSender(srv.URL)
	require.NoError(t, d.Send(context.Background(), "Thesis Verdict", "PASS"))
	assert.Equal(t, "**Thesis Verdict**\nPASS", got["content"])
}

func TestDiscordSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad webhook", http.StatusBadRequest)
	}))
	defer srv.Close()

	d := NewDiscordSender(srv.URL)
	err := d.Send(context.Background(), "t", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestTelegramSender(t *testing.T) {
	var path string
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, jsonDecode(r, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegramSender("token123", "chat456")
	tg.apiBase = srv.URL
	require.NoError(t, tg.Send(context.Background(), "Day 5 complete", "6 observations"))
	assert.Equal(t, "/bottoken123/sendMessage", path)
	assert.Equal(t, "chat456", got["chat_id"])
	assert.Equal(t, "*Day 5 complete*\n6 observations", got["text"])
}
