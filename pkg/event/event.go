// Package event defines the normalized overlay event taxonomy and the raw
// host event shape it is classified from.
package event

import (
	"errors"
	"fmt"

	"overlay/pkg/badges"
	"overlay/pkg/render"
)

// Kind identifies a normalized event published to observers.
type Kind string

const (
	KindFollower           Kind = "follower"
	KindSubscriberNew      Kind = "subscriber-new"
	KindSubscriberResub    Kind = "subscriber-resub"
	KindSubscriberGift     Kind = "subscriber-gift"
	KindSubscriberBulkGift Kind = "subscriber-bulk-gift"
	KindSubscriber         Kind = "subscriber"
	KindCheer              Kind = "cheer"
	KindTip                Kind = "tip"
	KindRaid               Kind = "raid"
	KindMessage            Kind = "message"
	KindDeleteMessage      Kind = "delete-message"
	KindDeleteMessages     Kind = "delete-messages"
	KindWidgetButton       Kind = "widget-button"
	KindLoad               Kind = "load"
)

// Kinds returns every normalized kind, in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindFollower,
		KindSubscriberNew,
		KindSubscriberResub,
		KindSubscriberGift,
		KindSubscriberBulkGift,
		KindSubscriber,
		KindCheer,
		KindTip,
		KindRaid,
		KindMessage,
		KindDeleteMessage,
		KindDeleteMessages,
		KindWidgetButton,
		KindLoad,
	}
}

// Event is the normalized, strongly-kinded event emitted to observers. Only
// the fields relevant to Kind are set.
type Event struct {
	Kind Kind `json:"kind"`

	Name   string `json:"name,omitempty"`
	Amount int    `json:"amount,omitempty"`

	// FormattedAmount carries the currency-formatted amount for tips.
	FormattedAmount string `json:"formatted_amount,omitempty"`

	Message *MessageEvent `json:"message,omitempty"`
	Delete  *DeleteEvent  `json:"delete,omitempty"`
	Button  *ButtonEvent  `json:"button,omitempty"`

	// Fields carries the initial widget configuration on load events.
	Fields map[string]any `json:"fields,omitempty"`
}

// MessageEvent is the payload of a classified chat message.
type MessageEvent struct {
	Name         string      `json:"name"`
	Text         string      `json:"text"`
	HTML         string      `json:"html"`
	BadgesHTML   string      `json:"badges_html,omitempty"`
	EmoteOnly    bool        `json:"emote_only"`
	Role         badges.Role `json:"role,omitempty"`
	IsSubscriber bool        `json:"is_subscriber"`
	Tier         badges.Tier `json:"tier,omitempty"`
}

// DeleteEvent identifies either a single deleted message or every message of
// a user whose chat history was purged.
type DeleteEvent struct {
	MsgID  string `json:"msg_id,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// ButtonEvent is a widget control-panel button press.
type ButtonEvent struct {
	Field string `json:"field"`
	Value string `json:"value,omitempty"`
}

// ErrUnknownListener marks a host event whose listener kind is not part of
// the recognized vocabulary. It is fatal to the dispatch call.
var ErrUnknownListener = errors.New("unknown event kind")

// Listener enumerates the recognized raw host listener kinds.
type Listener int

const (
	ListenerFollower Listener = iota
	ListenerSubscriber
	ListenerCheer
	ListenerTip
	ListenerRaid
	ListenerMessage
	ListenerDeleteMessage
	ListenerDeleteMessages
)

func (l Listener) String() string {
	switch l {
	case ListenerFollower:
		return "follower-latest"
	case ListenerSubscriber:
		return "subscriber-latest"
	case ListenerCheer:
		return "cheer-latest"
	case ListenerTip:
		return "tip-latest"
	case ListenerRaid:
		return "raid-latest"
	case ListenerMessage:
		return "message"
	case ListenerDeleteMessage:
		return "delete-message"
	case ListenerDeleteMessages:
		return "delete-messages"
	default:
		return "unknown"
	}
}

// ParseListener maps the host's listener string to its enum value.
func ParseListener(s string) (Listener, error) {
	switch s {
	case "follower-latest":
		return ListenerFollower, nil
	case "subscriber-latest":
		return ListenerSubscriber, nil
	case "cheer-latest":
		return ListenerCheer, nil
	case "tip-latest":
		return ListenerTip, nil
	case "raid-latest":
		return ListenerRaid, nil
	case "message":
		return ListenerMessage, nil
	case "delete-message":
		return ListenerDeleteMessage, nil
	case "delete-messages":
		return ListenerDeleteMessages, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownListener, s)
	}
}

// ListenerWidgetButton is special-cased by the pipeline: it bypasses the
// listener map and is emitted directly from its field payload.
const ListenerWidgetButton = "widget-button"

// Raw is a host-delivered event. The payload shape is dictated by the
// listener kind; absent fields default to their zero values.
type Raw struct {
	Listener string     `json:"listener"`
	Event    RawPayload `json:"event"`
}

// RawPayload is the union of every field the host may deliver. It is loosely
// typed on purpose: the classifier, not the decoder, decides which fields
// matter for a given listener kind.
type RawPayload struct {
	Name   string `json:"name,omitempty"`
	Amount int    `json:"amount,omitempty"`

	Sender          string `json:"sender,omitempty"`
	Gifted          bool   `json:"gifted,omitempty"`
	BulkGifted      bool   `json:"bulkGifted,omitempty"`
	IsCommunityGift bool   `json:"isCommunityGift,omitempty"`

	Text       string         `json:"text,omitempty"`
	Badges     []badges.Badge `json:"badges,omitempty"`
	Emotes     []render.Emote `json:"emotes,omitempty"`
	Attachment string         `json:"attachment,omitempty"`

	MsgID  string `json:"msgId,omitempty"`
	UserID string `json:"userId,omitempty"`

	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}
