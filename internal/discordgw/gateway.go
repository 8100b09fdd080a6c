// Package discordgw wraps the Discord REST surface the ticket managers need,
// keeping them testable without a gateway connection.
package discordgw

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// WebhookName identifies the webhook the bot reuses for panel messages.
const WebhookName = "ServidorWebhook"

// Gateway is the Discord surface used by the managers. IDs cross it as
// strings, matching the persistence layer.
type Gateway interface {
	CreateChannel(ctx context.Context, guildID string, create discord.GuildTextChannelCreate) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
	IsCategory(ctx context.Context, channelID string) (bool, error)
	CreateMessage(ctx context.Context, channelID string, message discord.MessageCreate) (string, error)
	UpdateMessage(ctx context.Context, channelID, messageID string, message discord.MessageUpdate) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	SendDirectMessage(ctx context.Context, userID string, message discord.MessageCreate) error
	PublishWebhookMessage(ctx context.Context, channelID string, message discord.WebhookMessageCreate) (string, error)
}

// New creates a Gateway backed by the bot's REST client.
func New(client bot.Client, logger *zap.Logger) Gateway {
	return &restGateway{
		client: client,
		logger: logger.Named("discord_gateway"),
	}
}

type restGateway struct {
	client bot.Client
	logger *zap.Logger
}

func parseID(kind, id string) (snowflake.ID, error) {
	parsed, err := snowflake.Parse(id)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q: %w", kind, id, err)
	}
	return parsed, nil
}

func (g *restGateway) CreateChannel(ctx context.Context, guildID string, create discord.GuildTextChannelCreate) (string, error) {
	gid, err := parseID("guild", guildID)
	if err != nil {
		return "", err
	}

	channel, err := g.client.Rest().CreateGuildChannel(gid, create, rest.WithCtx(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create channel: %w", err)
	}
	return channel.ID().String(), nil
}

func (g *restGateway) DeleteChannel(ctx context.Context, channelID string) error {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return err
	}

	if err := g.client.Rest().DeleteChannel(cid, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}

func (g *restGateway) IsCategory(ctx context.Context, channelID string) (bool, error) {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return false, err
	}

	channel, err := g.client.Rest().GetChannel(cid, rest.WithCtx(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to get channel: %w", err)
	}
	return channel.Type() == discord.ChannelTypeGuildCategory, nil
}

func (g *restGateway) CreateMessage(ctx context.Context, channelID string, message discord.MessageCreate) (string, error) {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return "", err
	}

	msg, err := g.client.Rest().CreateMessage(cid, message, rest.WithCtx(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create message: %w", err)
	}
	return msg.ID.String(), nil
}

func (g *restGateway) UpdateMessage(ctx context.Context, channelID, messageID string, message discord.MessageUpdate) error {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return err
	}
	mid, err := parseID("message", messageID)
	if err != nil {
		return err
	}

	if _, err := g.client.Rest().UpdateMessage(cid, mid, message, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return nil
}

func (g *restGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return err
	}
	mid, err := parseID("message", messageID)
	if err != nil {
		return err
	}

	if err := g.client.Rest().DeleteMessage(cid, mid, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (g *restGateway) SendDirectMessage(ctx context.Context, userID string, message discord.MessageCreate) error {
	uid, err := parseID("user", userID)
	if err != nil {
		return err
	}

	dm, err := g.client.Rest().CreateDMChannel(uid, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to open dm channel: %w", err)
	}
	if _, err := g.client.Rest().CreateMessage(dm.ID(), message, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to send dm: %w", err)
	}
	return nil
}

// PublishWebhookMessage posts through the channel's reusable webhook,
// creating it on first use.
func (g *restGateway) PublishWebhookMessage(ctx context.Context, channelID string, message discord.WebhookMessageCreate) (string, error) {
	cid, err := parseID("channel", channelID)
	if err != nil {
		return "", err
	}

	webhooks, err := g.client.Rest().GetWebhooks(cid, rest.WithCtx(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to list webhooks: %w", err)
	}

	var hook *discord.IncomingWebhook
	for _, wh := range webhooks {
		if incoming, ok := wh.(discord.IncomingWebhook); ok && incoming.Name() == WebhookName {
			hook = &incoming
			break
		}
	}
	if hook == nil {
		created, err := g.client.Rest().CreateWebhook(cid, discord.WebhookCreate{Name: WebhookName}, rest.WithCtx(ctx))
		if err != nil {
			return "", fmt.Errorf("failed to create webhook: %w", err)
		}
		hook = created
		g.logger.Debug("Created channel webhook", zap.String("channel_id", channelID))
	}

	msg, err := g.client.Rest().CreateWebhookMessage(hook.ID(), hook.Token, message, true, 0, rest.WithCtx(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to publish webhook message: %w", err)
	}
	return msg.ID.String(), nil
}
