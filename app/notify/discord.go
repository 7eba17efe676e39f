package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	embedColor    = 0x222222
	authorIconURL = "https://i.imgur.com/mTZbKXz.png"
	bannerURL     = "https://i.imgur.com/tGmXx0e.png"
)

// Discord posts notification payloads to a Discord webhook as embeds.
type Discord struct {
	session      *discordgo.Session
	webhookID    string
	webhookToken string
}

// NewDiscord creates a notifier from a webhook URL of the form
// https://discord.com/api/webhooks/<id>/<token>. Webhook execution needs
// no bot token, so the underlying session is unauthenticated.
func NewDiscord(webhookURL string) (*Discord, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &Discord{
		session:      session,
		webhookID:    id,
		webhookToken: token,
	}, nil
}

// Dispatch sends the payload as a single embed. The caller treats a
// returned error as "not delivered" and will not mark the group dispatched.
func (d *Discord) Dispatch(ctx context.Context, p Payload) error {
	embed := &discordgo.MessageEmbed{
		Color: embedColor,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    p.GroupTitle,
			IconURL: authorIconURL,
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "\U0001F4C4 Titre", Value: p.EpisodeTitle},
			{Name: "\U0001F50A Audios", Value: p.AudioLanguages},
			{Name: "\U0001F517 Lien de téléchargement", Value: formatLinks(p.Links)},
		},
		Image: &discordgo.MessageEmbedImage{URL: bannerURL},
	}

	if p.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: p.ThumbnailURL}
	}
	if p.FooterText != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: p.FooterText}
	}

	params := &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}

	_, err := d.session.WebhookExecute(d.webhookID, d.webhookToken, true, params, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to execute webhook: %w", err)
	}

	return nil
}

func formatLinks(links []Link) string {
	lines := make([]string, 0, len(links))
	for _, l := range links {
		lines = append(lines, fmt.Sprintf("[%s](%s)", l.Label, l.URL))
	}
	return strings.Join(lines, "\n")
}

func parseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid webhook URL: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// Expected path: api/webhooks/<id>/<token>
	if len(parts) < 4 || parts[len(parts)-4] != "api" || parts[len(parts)-3] != "webhooks" {
		return "", "", fmt.Errorf("invalid webhook URL: %s", raw)
	}

	return parts[len(parts)-2], parts[len(parts)-1], nil
}
