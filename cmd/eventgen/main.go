// eventgen pushes synthetic host events at a running overlay service so the
// pipeline can be exercised without a live stream. It covers every
// subscription branch and every role/tier combination the classifier knows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dchest/uniuri"

	"overlay/internal/app/ingest"
	"overlay/pkg/badges"
	"overlay/pkg/event"
	"overlay/pkg/render"
)

func main() {
	var (
		appURL string
		kind   string
	)
	flag.StringVar(&appURL, "url", "http://127.0.0.1:8080", "overlay service base url")
	flag.StringVar(&kind, "kind", "all", "event kind to generate: subscriber, message, or all")
	flag.Parse()

	submitter := ingest.NewHTTPSubmitter(&http.Client{Timeout: 10 * time.Second}, appURL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var raws []*event.Raw
	switch kind {
	case "subscriber":
		raws = subscriberEvents()
	case "message":
		raws = messageEvents()
	case "all":
		raws = append(subscriberEvents(), messageEvents()...)
	default:
		log.Fatalf("unknown kind %q", kind)
	}

	for _, raw := range raws {
		if err := submitter.Submit(ctx, raw); err != nil {
			log.Fatalf("failed to submit %s event: %v", raw.Listener, err)
		}

		fmt.Printf("sent %s (%s)\n", raw.Listener, raw.Event.Name)
	}
}

func viewer() string {
	return "viewer_" + uniuri.NewLen(6)
}

// subscriberEvents covers every branch of the subscription classifier: new,
// resub, individual gift, bulk gift, and the suppressed community gift.
func subscriberEvents() []*event.Raw {
	sub := func(payload event.RawPayload) *event.Raw {
		return &event.Raw{Listener: "subscriber-latest", Event: payload}
	}

	return []*event.Raw{
		sub(event.RawPayload{Name: viewer(), Amount: 1}),
		sub(event.RawPayload{Name: viewer(), Amount: 5}),
		sub(event.RawPayload{Name: viewer(), Sender: viewer(), Gifted: true, Amount: 1}),
		sub(event.RawPayload{Name: viewer(), BulkGifted: true, Amount: 10}),
		sub(event.RawPayload{Name: viewer(), Gifted: true, IsCommunityGift: true, Amount: 1}),
	}
}

// messageEvents exercises each role and tier branch of the classifier. The
// badge encodings must match what the classifier expects on the wire:
// "<role>/1" for role badges and "subscriber/<tier*1000-or-1>" for tiers.
func messageEvents() []*event.Raw {
	msg := func(text string, badgeNames ...string) *event.Raw {
		bs := make([]badges.Badge, 0, len(badgeNames))
		for _, name := range badgeNames {
			bs = append(bs, badges.Badge{Name: name})
		}

		return &event.Raw{
			Listener: "message",
			Event: event.RawPayload{
				Name:   viewer(),
				MsgID:  uniuri.New(),
				Text:   text,
				Badges: bs,
			},
		}
	}

	raws := []*event.Raw{
		msg("plain viewer message"),
		msg("broadcaster here", "broadcaster/1"),
		msg("mod and sub", "moderator/1", "subscriber/2000"),
		msg("vip message", "vip/1"),
		msg("artist message", "artist-badge/1"),
		msg("tier one sub", "subscriber/1"),
		msg("tier two sub", "subscriber/2000"),
		msg("tier three sub", "subscriber/3000"),
		msg(`unsafe "text" with <tags> and ^carets`),
	}

	emote := render.Emote{
		Name: "catJAM",
		URLs: map[string]string{"1": "https://static-cdn.jtvnw.net/emoticons/v2/emotesv2/default/dark/1.0"},
	}
	raws = append(raws, &event.Raw{
		Listener: "message",
		Event: event.RawPayload{
			Name:   viewer(),
			MsgID:  uniuri.New(),
			Text:   "catJAM",
			Emotes: []render.Emote{emote},
		},
	})

	return raws
}
