// Package processor classifies raw host events into the normalized taxonomy,
// applies their side effects to the aggregate state, and publishes them to
// observers.
package processor

import (
	"context"
	"fmt"
	"log/slog"

	"overlay/internal/app/metrics"
	"overlay/internal/app/state"
	"overlay/pkg/badges"
	"overlay/pkg/event"
	"overlay/pkg/pubsub"
	"overlay/pkg/render"
	"overlay/pkg/scripts"
)

type Config struct {
	// Provider selects the emote markup target, see render.ProviderTwitch.
	Provider string `yaml:"provider"`
	// ScriptPath optionally points at a Lua chat-message hook.
	ScriptPath string `yaml:"script_path"`
	// StateKey is the storage key the widget instance persists under.
	StateKey string `yaml:"state_key"`
}

type Processor struct {
	logger *slog.Logger

	state    *state.State
	events   *pubsub.PubSub
	renderer *render.Renderer

	hook *scripts.Hook
}

func New(logger *slog.Logger, st *state.State, renderer *render.Renderer, hook *scripts.Hook) *Processor {
	return &Processor{
		logger:   logger,
		state:    st,
		events:   pubsub.New(),
		renderer: renderer,
		hook:     hook,
	}
}

// On registers an observer for a normalized event kind. Observers fire
// synchronously, in registration order, within the Process call that emitted
// the event.
func (p *Processor) On(kind event.Kind, fn func(e *event.Event) error) (unsub func()) {
	return p.events.Subscribe(string(kind), func(message any) error {
		return fn(message.(*event.Event))
	})
}

func (p *Processor) emit(e *event.Event) error {
	metrics.Overlay.EventsTotal.WithLabelValues(string(e.Kind)).Inc()

	return p.events.Publish(string(e.Kind), e)
}

// Process classifies one host-delivered event. An unrecognized listener kind
// is fatal to the dispatch call; an observer failure aborts the remaining
// observers and surfaces here.
func (p *Processor) Process(ctx context.Context, raw *event.Raw) error {
	// widget-button bypasses the listener map entirely.
	if raw.Listener == event.ListenerWidgetButton {
		return p.emit(&event.Event{
			Kind: event.KindWidgetButton,
			Button: &event.ButtonEvent{
				Field: raw.Event.Field,
				Value: raw.Event.Value,
			},
		})
	}

	listener, err := event.ParseListener(raw.Listener)
	if err != nil {
		metrics.Overlay.UnknownEvents.Inc()

		return err
	}

	switch listener {
	case event.ListenerFollower:
		return p.follower(ctx, &raw.Event)
	case event.ListenerSubscriber:
		return p.subscriber(ctx, &raw.Event)
	case event.ListenerCheer:
		return p.cheer(ctx, &raw.Event)
	case event.ListenerTip:
		return p.tip(ctx, &raw.Event)
	case event.ListenerRaid:
		return p.raid(ctx, &raw.Event)
	case event.ListenerMessage:
		return p.message(ctx, &raw.Event)
	case event.ListenerDeleteMessage:
		return p.emit(&event.Event{
			Kind:   event.KindDeleteMessage,
			Delete: &event.DeleteEvent{MsgID: raw.Event.MsgID},
		})
	case event.ListenerDeleteMessages:
		return p.emit(&event.Event{
			Kind:   event.KindDeleteMessages,
			Delete: &event.DeleteEvent{UserID: raw.Event.UserID},
		})
	default:
		return fmt.Errorf("%w: listener %d", event.ErrUnknownListener, listener)
	}
}

// Load applies the widget's initial field configuration and announces it.
func (p *Processor) Load(ctx context.Context, fields map[string]any) error {
	if currency, ok := fields["currency"].(string); ok && currency != "" {
		p.state.SetCurrency(ctx, currency)
	}
	if freq, ok := fields["refreshFrequency"].(string); ok && freq != "" {
		p.state.SetRefreshFrequency(ctx, state.RefreshFrequency(freq))
	}
	if provider, ok := fields["provider"].(string); ok && provider != "" {
		p.renderer.SetProvider(provider)
	}

	return p.emit(&event.Event{Kind: event.KindLoad, Fields: fields})
}

func (p *Processor) follower(ctx context.Context, raw *event.RawPayload) error {
	p.state.AddFollowers(ctx, 1)
	p.state.SetLatestFollower(ctx, raw.Name)

	return p.emit(&event.Event{Kind: event.KindFollower, Name: raw.Name})
}

func (p *Processor) subscriber(ctx context.Context, raw *event.RawPayload) error {
	// A community-gifted sub is announced again by its bulk-gift event for
	// the same transaction; the individual event is suppressed outright.
	if raw.IsCommunityGift {
		metrics.Overlay.SuppressedGifts.Inc()

		return nil
	}

	name := raw.Name
	amount := raw.Amount

	var kind event.Kind
	switch {
	case raw.BulkGifted:
		kind = event.KindSubscriberBulkGift
	case raw.Gifted:
		// Gifts are recorded against the sender, not the recipient.
		kind = event.KindSubscriberGift
		name = raw.Sender
	case amount > 1:
		kind = event.KindSubscriberResub
	default:
		kind = event.KindSubscriberNew
		amount = 1
	}

	p.state.SetLatestSubscriber(ctx, name, amount)
	if kind == event.KindSubscriberBulkGift {
		p.state.AddSubscribers(ctx, amount)
	} else {
		p.state.AddSubscribers(ctx, 1)
	}

	if err := p.emit(&event.Event{Kind: kind, Name: name, Amount: amount}); err != nil {
		return err
	}

	// The generic catch-all always follows the specific variant.
	return p.emit(&event.Event{Kind: event.KindSubscriber, Name: name, Amount: amount})
}

func (p *Processor) cheer(ctx context.Context, raw *event.RawPayload) error {
	p.state.SetLatestCheer(ctx, raw.Name, raw.Amount)
	p.state.AddBits(ctx, raw.Amount)

	return p.emit(&event.Event{Kind: event.KindCheer, Name: raw.Name, Amount: raw.Amount})
}

func (p *Processor) tip(ctx context.Context, raw *event.RawPayload) error {
	p.state.SetLatestTip(ctx, raw.Name, raw.Amount)
	p.state.AddTips(ctx, raw.Amount)

	return p.emit(&event.Event{
		Kind:            event.KindTip,
		Name:            raw.Name,
		Amount:          raw.Amount,
		FormattedAmount: render.FormatAmount(p.state.Currency(), raw.Amount),
	})
}

func (p *Processor) raid(ctx context.Context, raw *event.RawPayload) error {
	p.state.SetLatestRaid(ctx, raw.Name, raw.Amount)

	return p.emit(&event.Event{Kind: event.KindRaid, Name: raw.Name, Amount: raw.Amount})
}

func (p *Processor) message(ctx context.Context, raw *event.RawPayload) error {
	text := raw.Text

	if p.hook != nil {
		filtered, drop, err := p.hook.Filter(raw.Name, text)
		if err != nil {
			p.logger.Error("message hook failed, passing message through", "err", err)
		} else if drop {
			return nil
		} else {
			text = filtered
		}
	}

	role, isSub := badges.ClassifyRole(raw.Badges)

	var tier badges.Tier
	if isSub {
		for _, b := range raw.Badges {
			if t := badges.ClassifyTier(b.Name); t != badges.TierNone {
				tier = t
				break
			}
		}
	}

	msg := &event.MessageEvent{
		Name: raw.Name,
		Text: text,
		HTML: p.renderer.Render(render.Message{
			Text:       text,
			Emotes:     raw.Emotes,
			Attachment: raw.Attachment,
		}),
		BadgesHTML:   badges.Images(raw.Badges),
		EmoteOnly:    raw.Attachment == "" && render.EmoteOnly(text, raw.Emotes),
		Role:         role,
		IsSubscriber: isSub,
		Tier:         tier,
	}

	return p.emit(&event.Event{Kind: event.KindMessage, Name: raw.Name, Message: msg})
}
