// Package ingest converts live Twitch IRC chat into raw host events and
// feeds them to the pipeline.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"overlay/pkg/badges"
	"overlay/pkg/event"
	"overlay/pkg/render"
	"overlay/pkg/twitch"
)

type Config struct {
	// AppURL is the base URL of the overlay service events are submitted to.
	AppURL string `yaml:"app_url"`
}

// Submitter delivers one raw event to the pipeline.
type Submitter interface {
	Submit(ctx context.Context, raw *event.Raw) error
}

type Service struct {
	logger *slog.Logger

	channel   string
	badgeURLs map[string]string
	submitter Submitter
}

func NewService(logger *slog.Logger, channel string, badgeURLs map[string]string, submitter Submitter) *Service {
	return &Service{
		logger:    logger,
		channel:   channel,
		badgeURLs: badgeURLs,
		submitter: submitter,
	}
}

// Run consumes chat events until ctx is done or the chat stream closes.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("starting chat ingest", "channel", s.channel)

	for ev := range twitch.EventsFetcher(ctx, s.channel) {
		raw := s.convert(ev)
		if raw == nil {
			continue
		}

		if err := s.submitter.Submit(ctx, raw); err != nil {
			s.logger.Error("failed to submit event", "listener", raw.Listener, "err", err)
		}
	}

	return ctx.Err()
}

func (s *Service) convert(ev *twitch.ChatEvent) *event.Raw {
	switch {
	case ev.Message != nil:
		return &event.Raw{
			Listener: event.ListenerMessage.String(),
			Event: event.RawPayload{
				Name:   ev.Message.DisplayName,
				UserID: ev.Message.UserID,
				MsgID:  ev.Message.ID,
				Text:   ev.Message.Text,
				Badges: s.convertBadges(ev.Message.Badges),
				Emotes: convertEmotes(ev.Message.Emotes),
			},
		}
	case ev.DeletedMsgID != "":
		return &event.Raw{
			Listener: event.ListenerDeleteMessage.String(),
			Event:    event.RawPayload{MsgID: ev.DeletedMsgID},
		}
	case ev.ClearedUserID != "":
		return &event.Raw{
			Listener: event.ListenerDeleteMessages.String(),
			Event:    event.RawPayload{UserID: ev.ClearedUserID},
		}
	default:
		return nil
	}
}

func (s *Service) convertBadges(ircBadges map[string]int) []badges.Badge {
	out := make([]badges.Badge, 0, len(ircBadges))

	for set, version := range ircBadges {
		name := set + "/" + strconv.Itoa(version)

		url, ok := s.badgeURLs[name]
		if !ok {
			url = s.badgeURLs[set]
		}

		out = append(out, badges.Badge{Name: name, URL: url})
	}

	return out
}

func convertEmotes(emotes []twitch.ChatEmote) []render.Emote {
	out := make([]render.Emote, 0, len(emotes))

	for _, e := range emotes {
		out = append(out, render.Emote{
			Name: e.Name,
			URLs: map[string]string{
				"1": emoteURL(e.ID, "1.0"),
				"2": emoteURL(e.ID, "2.0"),
				"4": emoteURL(e.ID, "3.0"),
			},
		})
	}

	return out
}

func emoteURL(id, size string) string {
	return fmt.Sprintf("https://static-cdn.jtvnw.net/emoticons/v2/%s/default/dark/%s", id, size)
}
