package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"overlay/pkg/event"
	"overlay/pkg/twitch"

	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return NewService(slog.Default(), "streamer", map[string]string{
		"moderator/1":     "https://cdn.example/mod.png",
		"subscriber":      "https://cdn.example/sub-default.png",
		"subscriber/2005": "https://cdn.example/sub-t2.png",
	}, nil)
}

func TestConvertMessage(t *testing.T) {
	assert := require.New(t)

	raw := testService().convert(&twitch.ChatEvent{Message: &twitch.ChatMessage{
		ID:          "msg-1",
		UserID:      "42",
		DisplayName: "Chatter",
		Text:        "hello catJAM",
		Badges:      map[string]int{"moderator": 1},
		Emotes:      []twitch.ChatEmote{{ID: "emote-id", Name: "catJAM"}},
	}})

	assert.Equal("message", raw.Listener)
	assert.Equal("Chatter", raw.Event.Name)
	assert.Equal("msg-1", raw.Event.MsgID)

	assert.Len(raw.Event.Badges, 1)
	assert.Equal("moderator/1", raw.Event.Badges[0].Name)
	assert.Equal("https://cdn.example/mod.png", raw.Event.Badges[0].URL)

	assert.Len(raw.Event.Emotes, 1)
	assert.Equal("catJAM", raw.Event.Emotes[0].Name)
	assert.Equal("https://static-cdn.jtvnw.net/emoticons/v2/emote-id/default/dark/1.0", raw.Event.Emotes[0].URLs["1"])
}

func TestConvertBadgeFallsBackToSetDefault(t *testing.T) {
	assert := require.New(t)

	raw := testService().convert(&twitch.ChatEvent{Message: &twitch.ChatMessage{
		DisplayName: "Sub",
		Badges:      map[string]int{"subscriber": 12},
	}})

	assert.Equal("subscriber/12", raw.Event.Badges[0].Name)
	assert.Equal("https://cdn.example/sub-default.png", raw.Event.Badges[0].URL)
}

func TestConvertDeletions(t *testing.T) {
	assert := require.New(t)

	s := testService()

	raw := s.convert(&twitch.ChatEvent{DeletedMsgID: "msg-1"})
	assert.Equal("delete-message", raw.Listener)
	assert.Equal("msg-1", raw.Event.MsgID)

	raw = s.convert(&twitch.ChatEvent{ClearedUserID: "42"})
	assert.Equal("delete-messages", raw.Listener)
	assert.Equal("42", raw.Event.UserID)

	assert.Nil(s.convert(&twitch.ChatEvent{}))
}

// guards the listener strings against drifting from the parser vocabulary
func TestConvertedListenersParse(t *testing.T) {
	assert := require.New(t)

	s := testService()

	for _, ev := range []*twitch.ChatEvent{
		{Message: &twitch.ChatMessage{DisplayName: "x"}},
		{DeletedMsgID: "m"},
		{ClearedUserID: "u"},
	} {
		raw := s.convert(ev)
		_, err := event.ParseListener(raw.Listener)
		assert.NoError(err)
	}
}

func TestHTTPSubmitter(t *testing.T) {
	assert := require.New(t)

	var got event.Raw
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/api/events", r.URL.Path)
		assert.NoError(json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	submitter := NewHTTPSubmitter(srv.Client(), srv.URL)

	err := submitter.Submit(context.Background(), &event.Raw{
		Listener: "cheer-latest",
		Event:    event.RawPayload{Name: "fan", Amount: 100},
	})
	assert.NoError(err)
	assert.Equal("cheer-latest", got.Listener)
	assert.Equal(100, got.Event.Amount)
}

func TestHTTPSubmitterRejectsErrorStatus(t *testing.T) {
	assert := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	submitter := NewHTTPSubmitter(srv.Client(), srv.URL)

	err := submitter.Submit(context.Background(), &event.Raw{Listener: "mystery"})
	assert.ErrorContains(err, "status 400")
}
