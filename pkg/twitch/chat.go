package twitch

import (
	"context"
	"time"

	irc "github.com/gempir/go-twitch-irc/v4"
)

type ChatEmote struct {
	ID   string
	Name string
}

type ChatMessage struct {
	ID          string
	UserID      string
	Login       string
	DisplayName string
	Text        string

	// Badges is name -> version as delivered in IRC tags.
	Badges map[string]int
	Emotes []ChatEmote
}

// ChatEvent is a single IRC occurrence relevant to the overlay: a new
// message, a single deletion, or a per-user purge. Exactly one field is set.
type ChatEvent struct {
	Message       *ChatMessage
	DeletedMsgID  string
	ClearedUserID string
}

// EventsFetcher joins channel anonymously and streams chat events until ctx
// is done. Events are dropped, not queued, when the consumer falls behind.
func EventsFetcher(ctx context.Context, channel string) chan *ChatEvent {
	ch := make(chan *ChatEvent, 1000)

	go func() {
		defer close(ch)

		client := irc.NewAnonymousClient()

		deliver := func(ev *ChatEvent) {
			select {
			case <-ctx.Done():
				_ = client.Disconnect()
			case ch <- ev:
			default:
				// queue is full
			}
		}

		client.OnPrivateMessage(func(message irc.PrivateMessage) {
			emotes := make([]ChatEmote, 0, len(message.Emotes))
			for _, e := range message.Emotes {
				emotes = append(emotes, ChatEmote{ID: e.ID, Name: e.Name})
			}

			deliver(&ChatEvent{Message: &ChatMessage{
				ID:          message.ID,
				UserID:      message.User.ID,
				Login:       message.User.Name,
				DisplayName: message.User.DisplayName,
				Text:        message.Message,
				Badges:      message.User.Badges,
				Emotes:      emotes,
			}})
		})

		client.OnClearMessage(func(message irc.ClearMessage) {
			deliver(&ChatEvent{DeletedMsgID: message.TargetMsgID})
		})

		client.OnClearChatMessage(func(message irc.ClearChatMessage) {
			deliver(&ChatEvent{ClearedUserID: message.TargetUserID})
		})

		client.Join(channel)

		client.SendPings = true
		client.IdlePingInterval = 10 * time.Second

		_ = client.Connect()
	}()

	return ch
}
