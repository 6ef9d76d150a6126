package badges_test

import (
	"testing"

	"overlay/pkg/badges"

	"github.com/stretchr/testify/require"
)

func TestClassifyRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		badges []badges.Badge
		role   badges.Role
		isSub  bool
	}{
		{
			name:   "empty set",
			badges: nil,
			role:   badges.RoleNone,
		},
		{
			name:   "broadcaster",
			badges: []badges.Badge{{Name: "broadcaster/1"}},
			role:   badges.RoleBroadcaster,
		},
		{
			name:   "moderator",
			badges: []badges.Badge{{Name: "moderator/1"}},
			role:   badges.RoleModerator,
		},
		{
			name:   "vip",
			badges: []badges.Badge{{Name: "vip/1"}},
			role:   badges.RoleVIP,
		},
		{
			name:   "artist",
			badges: []badges.Badge{{Name: "artist-badge/1"}},
			role:   badges.RoleArtist,
		},
		{
			name:   "subscriber",
			badges: []badges.Badge{{Name: "subscriber/2024"}},
			role:   badges.RoleSubscriber,
			isSub:  true,
		},
		{
			name:   "moderator wins over subscriber",
			badges: []badges.Badge{{Name: "subscriber/12"}, {Name: "moderator/1"}},
			role:   badges.RoleModerator,
			isSub:  true,
		},
		{
			name:   "broadcaster wins over everything",
			badges: []badges.Badge{{Name: "vip/1"}, {Name: "broadcaster/1"}, {Name: "subscriber/3012"}},
			role:   badges.RoleBroadcaster,
			isSub:  true,
		},
		{
			name:   "unknown badges only",
			badges: []badges.Badge{{Name: "bits/1000"}, {Name: "premium/1"}},
			role:   badges.RoleNone,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			role, isSub := badges.ClassifyRole(tc.badges)
			require.Equal(t, tc.role, role)
			require.Equal(t, tc.isSub, isSub)
		})
	}
}

func TestClassifyTier(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want badges.Tier
	}{
		{"subscriber/3012", badges.Tier3},
		{"subscriber/3000", badges.Tier3},
		{"subscriber/3500", badges.Tier3},
		{"subscriber/3999", badges.Tier3},
		{"subscriber/2005", badges.Tier2},
		{"subscriber/2000", badges.Tier2},
		{"subscriber/2100", badges.Tier2},
		{"subscriber/2999", badges.Tier2},
		{"subscriber/6", badges.Tier1},
		{"subscriber/24", badges.Tier1},
		{"subscriber/1024", badges.TierNone},
		{"subscriber/123", badges.TierNone},
		{"subscriber/", badges.TierNone},
		{"subscriber/abc", badges.TierNone},
		{"vip/1", badges.TierNone},
		{"", badges.TierNone},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, badges.ClassifyTier(tc.raw))
		})
	}
}

func TestImages(t *testing.T) {
	t.Parallel()

	got := badges.Images([]badges.Badge{
		{Name: "moderator/1", URL: "https://cdn.example/mod.png"},
		{Name: "subscriber/12"},
		{Name: "subscriber/2024", URL: "https://cdn.example/sub.png"},
	})

	require.Equal(t,
		`<img alt="moderator" src="https://cdn.example/mod.png" class="badge"/>`+
			`<img alt="subscriber" src="https://cdn.example/sub.png" class="badge"/>`,
		got)
}
