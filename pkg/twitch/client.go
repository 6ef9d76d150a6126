// Package twitch resolves chat asset metadata (badge art, emote URLs) and
// bridges live IRC chat into raw host events.
package twitch

import (
	"fmt"

	"github.com/nicklaw5/helix/v2"
)

type Config struct {
	Secret   string `yaml:"secret"`
	ClientID string `yaml:"client_id"`

	Channel string `yaml:"channel"`
}

// Client is a helix app-token client used to look up broadcaster ids and
// badge image URLs at ingest startup.
type Client struct {
	helix *helix.Client
}

func New(cfg *Config) (*Client, error) {
	client, err := helix.NewClient(&helix.Options{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.Secret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create helix client: %w", err)
	}

	token, err := client.RequestAppAccessToken(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to request app access token: %w", err)
	}
	if token.StatusCode > 299 {
		return nil, fmt.Errorf("failed to request app access token: status %d: %s", token.StatusCode, token.ErrorMessage)
	}

	client.SetAppAccessToken(token.Data.AccessToken)

	return &Client{helix: client}, nil
}

func (c *Client) BroadcasterID(login string) (string, error) {
	resp, err := c.helix.GetUsers(&helix.UsersParams{Logins: []string{login}})
	if err != nil {
		return "", fmt.Errorf("failed to get user %s: %w", login, err)
	}
	if len(resp.Data.Users) == 0 {
		return "", fmt.Errorf("no such user: %s", login)
	}

	return resp.Data.Users[0].ID, nil
}

// BadgeURLs returns image URLs keyed by "set/version", with a "set" fallback
// entry per badge set. Channel badges override global ones.
func (c *Client) BadgeURLs(broadcasterID string) (map[string]string, error) {
	urls := make(map[string]string)

	global, err := c.helix.GetGlobalChatBadges()
	if err != nil {
		return nil, fmt.Errorf("failed to get global chat badges: %w", err)
	}
	collectBadges(urls, global.Data.Badges)

	channel, err := c.helix.GetChannelChatBadges(&helix.GetChatBadgeParams{BroadcasterID: broadcasterID})
	if err != nil {
		return nil, fmt.Errorf("failed to get channel chat badges: %w", err)
	}
	collectBadges(urls, channel.Data.Badges)

	return urls, nil
}

func collectBadges(urls map[string]string, sets []helix.ChatBadge) {
	for _, set := range sets {
		for i, version := range set.Versions {
			urls[set.SetID+"/"+version.ID] = version.ImageUrl2x
			if i == 0 {
				urls[set.SetID] = version.ImageUrl2x
			}
		}
	}
}
