package badges

import (
	"fmt"
	"strings"
)

// Badge is a single chat badge as delivered by the host, e.g. "moderator/1"
// or "subscriber/2024", together with its image URL when known.
type Badge struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

const (
	RoleNone        Role = ""
	RoleBroadcaster Role = "broadcaster"
	RoleModerator   Role = "moderator"
	RoleVIP         Role = "vip"
	RoleArtist      Role = "artist"
	RoleSubscriber  Role = "subscriber"
)

type Role string

// rolePrecedence is fixed: a viewer holding several role badges is classified
// by the highest-precedence one only.
var rolePrecedence = []struct {
	prefix string
	role   Role
}{
	{"broadcaster", RoleBroadcaster},
	{"moderator", RoleModerator},
	{"vip", RoleVIP},
	{"artist-badge", RoleArtist},
	{"subscriber", RoleSubscriber},
}

// ClassifyRole maps a badge set to the viewer's role. isSubscriber is
// independent of the chosen role: it is true whenever any subscriber badge is
// present, even if a higher-precedence role won.
func ClassifyRole(badgeSet []Badge) (role Role, isSubscriber bool) {
	role = RoleNone

	for _, entry := range rolePrecedence {
		for _, b := range badgeSet {
			if badgeType(b.Name) == entry.prefix {
				role = entry.role
				break
			}
		}
		if role != RoleNone {
			break
		}
	}

	for _, b := range badgeSet {
		if badgeType(b.Name) == "subscriber" {
			isSubscriber = true
			break
		}
	}

	return role, isSubscriber
}

const (
	TierNone Tier = iota
	Tier1
	Tier2
	Tier3
)

type Tier int

func (t Tier) String() string {
	switch t {
	case Tier1:
		return "tier-1"
	case Tier2:
		return "tier-2"
	case Tier3:
		return "tier-3"
	default:
		return "none"
	}
}

// ClassifyTier derives the subscription tier from the raw badge text. Twitch
// encodes tier in the subscriber badge version: a 4-digit value in the 3000s
// is tier 3, in the 2000s tier 2, and plain 1-2 digit month counts are tier 1.
// Only meaningful when the viewer actually holds a subscriber badge.
func ClassifyTier(raw string) Tier {
	version, ok := strings.CutPrefix(raw, "subscriber/")
	if !ok {
		return TierNone
	}

	for _, r := range version {
		if r < '0' || r > '9' {
			return TierNone
		}
	}

	switch {
	case len(version) == 4 && version[0] == '3':
		return Tier3
	case len(version) == 4 && version[0] == '2':
		return Tier2
	case len(version) == 1 || len(version) == 2:
		return Tier1
	default:
		return TierNone
	}
}

// Images renders the badge set as concatenated image tags, preserving the
// original badge order. Badges without a known URL are skipped.
func Images(badgeSet []Badge) string {
	var sb strings.Builder

	for _, b := range badgeSet {
		if b.URL == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<img alt="%s" src="%s" class="badge"/>`, badgeType(b.Name), b.URL))
	}

	return sb.String()
}

func badgeType(name string) string {
	if idx := strings.IndexByte(name, '/'); idx >= 0 {
		return name[:idx]
	}

	return name
}
