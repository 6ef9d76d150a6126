// Package render turns raw chat text into safe, emote-substituted markup for
// the overlay frontend.
package render

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/exp/slices"
)

// Coords position an emote inside a provider sprite sheet.
type Coords struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Emote is a per-message emote reference supplied by the host. URLs are keyed
// by size tier ("1" inline, "2" large, "4" largest); Coords may be absent.
type Emote struct {
	Name   string            `json:"name"`
	URLs   map[string]string `json:"urls"`
	Coords *Coords           `json:"coords,omitempty"`
}

// Message is the renderable part of a chat event.
type Message struct {
	Text       string  `json:"text"`
	Emotes     []Emote `json:"emotes,omitempty"`
	Attachment string  `json:"attachment,omitempty"`
}

// ProviderTwitch renders matched emotes as plain image tags; any other
// provider gets a positioned background-image block instead.
const ProviderTwitch = "twitch"

const (
	sizeInline = "1"
	sizeSingle = "2"
)

// Renderer is safe for concurrent use: the provider may be swapped by a load
// event while messages are being rendered.
type Renderer struct {
	mu       sync.RWMutex
	provider string
}

func New(provider string) *Renderer {
	return &Renderer{provider: provider}
}

func (r *Renderer) Provider() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.provider
}

func (r *Renderer) SetProvider(provider string) {
	r.mu.Lock()
	r.provider = provider
	r.mu.Unlock()
}

// escaper covers exactly < > " ^. This is the minimal contract the overlay
// frontend relies on, not general HTML escaping; ampersands pass through so
// already-escaped entities survive a second pass unchanged.
var escaper = strings.NewReplacer(
	"<", "&#60;",
	">", "&#62;",
	`"`, "&#34;",
	"^", "&#94;",
)

func Escape(s string) string {
	return escaper.Replace(s)
}

// Render produces the final markup for a chat message. An image attachment
// takes absolute precedence: the escaped text is emitted as-is with the
// attachment embedded after it, and emote substitution is skipped entirely.
func (r *Renderer) Render(msg Message) string {
	if msg.Attachment != "" {
		return Escape(msg.Text) + fmt.Sprintf(`<img class="attachment" src="%s"/>`, msg.Attachment)
	}

	size := sizeInline
	if EmoteOnly(msg.Text, msg.Emotes) {
		size = sizeSingle
	}

	// Tokens are matched against escaped names: the match is exact and happens
	// after escaping, so emote names carrying escapable characters still hit.
	byName := make(map[string]Emote, len(msg.Emotes))
	for _, e := range msg.Emotes {
		byName[Escape(e.Name)] = e
	}

	provider := r.Provider()

	var sb strings.Builder

	// Walk the escaped text once, substituting maximal non-whitespace runs
	// that exactly match an emote name and passing everything else through.
	escaped := Escape(msg.Text)
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		token := escaped[start:end]
		if e, ok := byName[token]; ok {
			sb.WriteString(emoteTag(provider, e, size))
		} else {
			sb.WriteString(token)
		}
		start = -1
	}
	for i, c := range escaped {
		if unicode.IsSpace(c) {
			flush(i)
			sb.WriteRune(c)
		} else if start < 0 {
			start = i
		}
	}
	flush(len(escaped))

	return sb.String()
}

func emoteTag(provider string, e Emote, size string) string {
	url := e.url(size)

	if provider == ProviderTwitch {
		return fmt.Sprintf(`<img class="emote" alt="%s" src="%s"/>`, e.Name, url)
	}

	var x, y int
	if e.Coords != nil {
		x, y = e.Coords.X, e.Coords.Y
	}

	return fmt.Sprintf(
		`<div class="emote" style="display:inline-block;width:28px;height:28px;background-image:url(%s);background-position:-%dpx -%dpx;"></div>`,
		url, x, y)
}

func (e Emote) url(size string) string {
	if u, ok := e.URLs[size]; ok {
		return u
	}

	for _, s := range []string{"4", "2", "1"} {
		if u, ok := e.URLs[s]; ok {
			return u
		}
	}

	return ""
}

// EmoteOnly reports whether every whitespace-separated token of text is a
// recognized emote name. A message with no tokens is vacuously emote-only.
func EmoteOnly(text string, emotes []Emote) bool {
	names := make([]string, 0, len(emotes))
	for _, e := range emotes {
		names = append(names, e.Name)
	}

	for _, token := range strings.Fields(text) {
		if !slices.Contains(names, token) {
			return false
		}
	}

	return true
}
