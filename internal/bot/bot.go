// Package bot wires the Discord gateway to the ticket, panel and feedback
// services. Interaction custom IDs are dispatched through explicit routing
// tables instead of per-message handler state.
package bot

import (
	"context"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/json"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/ai"
	"github.com/atendix/atendix/internal/bot/constants"
	"github.com/atendix/atendix/internal/bot/handlers"
	"github.com/atendix/atendix/internal/bot/router"
	"github.com/atendix/atendix/internal/discordgw"
	"github.com/atendix/atendix/internal/feedback"
	"github.com/atendix/atendix/internal/panel"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
	"github.com/atendix/atendix/internal/ticket"
)

// eventTimeout bounds the work done for a single gateway event.
const eventTimeout = 30 * time.Second

// Bot owns the Discord client and the interaction routing tables.
type Bot struct {
	client     bot.Client
	store      storage.Client
	handlers   *handlers.Handlers
	commands   map[string]func(*events.ApplicationCommandInteractionCreate) error
	components *router.Router[*events.ComponentInteractionCreate]
	modals     *router.Router[*events.ModalSubmitInteractionCreate]
	logger     *zap.Logger
}

// New builds the Discord client, the domain services and the routing tables.
func New(token string, store storage.Client, aiClient *ai.Client, logger *zap.Logger) (*Bot, error) {
	b := &Bot{
		store:  store,
		logger: logger.Named("bot"),
	}

	client, err := disgo.New(token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentGuildMessageReactions,
				gateway.IntentDirectMessages,
				gateway.IntentMessageContent,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnApplicationCommandInteraction: b.handleApplicationCommand,
			OnComponentInteraction:          b.handleComponent,
			OnModalSubmit:                   b.handleModal,
			OnGuildMessageCreate:            b.handleGuildMessage,
			OnGuildMessageReactionAdd:       b.handleReactionAdd,
			OnGuildJoin:                     b.handleGuildJoin,
			OnGuildReady:                    b.handleGuildReady,
			OnGuildLeave:                    b.handleGuildLeave,
		}),
	)
	if err != nil {
		return nil, err
	}
	b.client = client

	gw := discordgw.New(client, logger)
	botUserID := client.ApplicationID().String()
	tickets := ticket.NewManager(store, gw, aiClient, botUserID, logger)
	panels := panel.NewManager(store, gw, logger)
	feedbacks := feedback.NewCollector(store, gw, logger)
	b.handlers = handlers.New(store, tickets, panels, feedbacks, logger)

	b.registerRoutes()
	return b, nil
}

// Start registers the slash commands and opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands")

	adminOnly := json.NewNullablePtr(discord.PermissionAdministrator)
	commands := []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:                     constants.CommandSetup,
			Description:              "Configura o sistema de tickets neste servidor",
			DefaultMemberPermissions: adminOnly,
		},
		discord.SlashCommandCreate{
			Name:                     constants.CommandPanel,
			Description:              "Cria e configura um painel de abertura de tickets",
			DefaultMemberPermissions: adminOnly,
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:        "canal",
					Description: "Canal onde o painel será publicado",
					ChannelTypes: []discord.ChannelType{
						discord.ChannelTypeGuildText,
					},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:                     constants.CommandToggleAI,
			Description:              "Ativa ou desativa o atendimento por IA",
			DefaultMemberPermissions: adminOnly,
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionBool{
					Name:        "ativar",
					Description: "Estado desejado da IA",
				},
				discord.ApplicationCommandOptionString{
					Name:        "prompt",
					Description: "Novo prompt do assistente",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:                     constants.CommandReset,
			Description:              "Apaga todos os tickets deste servidor",
			DefaultMemberPermissions: adminOnly,
		},
		discord.SlashCommandCreate{
			Name:                     constants.CommandServerKey,
			Description:              "Mostra a chave de acesso ao painel web",
			DefaultMemberPermissions: adminOnly,
		},
	}
	if _, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), commands); err != nil {
		return err
	}

	b.logger.Info("Starting bot")
	return b.client.OpenGateway(ctx)
}

// Close shuts down the gateway connection.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.client.Close(ctx)
}

// registerRoutes fills the command, component and modal routing tables.
func (b *Bot) registerRoutes() {
	h := b.handlers

	b.commands = map[string]func(*events.ApplicationCommandInteractionCreate) error{
		constants.CommandSetup:     h.SetupCommand,
		constants.CommandPanel:     h.PanelCommand,
		constants.CommandToggleAI:  h.ToggleAICommand,
		constants.CommandReset:     h.ResetCommand,
		constants.CommandServerKey: h.ServerKeyCommand,
	}

	c := router.New[*events.ComponentInteractionCreate]()
	c.Handle(constants.SetupMenu, h.SetupMenuSelect)
	c.Handle(constants.SetupStaffRoleSelect, h.SetupStaffRoleSelect)
	c.Handle(constants.SetupCategorySelect, h.SetupCategorySelect)
	c.Handle(constants.SetupLogChannelSelect, h.SetupLogChannelSelect)
	c.Handle(constants.SetupFeedbackChannelSelect, h.SetupFeedbackChannelSelect)
	c.Handle(constants.ConfirmResetTickets, h.ConfirmReset)
	c.Handle(constants.CancelResetTickets, h.CancelReset)
	c.Handle(constants.RegenerateKey, h.RegenerateKey)
	c.Handle(ticket.ComponentCreate, h.CreateTicket)
	c.Handle(constants.CreateTicketLegacy, h.CreateTicket)
	c.Handle(ticket.ComponentClose, h.CloseTicket)
	c.Handle(ticket.ComponentClaim, h.ClaimTicket)
	c.Handle(ticket.ComponentNotify, h.NotifyDM)
	c.Handle(ticket.ComponentToggleAI, h.ToggleAI)
	c.Handle(ticket.ComponentArchive, h.ArchiveTicket)
	c.HandlePrefix(panel.PrefixCreateFromPanel, h.CreateTicketFromPanel)
	c.HandlePrefix(panel.PrefixSelectMenu, h.CreateTicketFromSelect)
	c.HandlePrefix(constants.PanelConfigMenuPrefix, h.PanelConfigMenu)
	c.HandlePrefix(constants.PanelManageOptionsPrefix, h.PanelManageOptions)
	c.HandlePrefix(constants.PanelAddOptionPrefix, h.PanelAddOption)
	c.HandlePrefix(constants.PanelRemoveSelectPrefix, h.PanelRemoveSelect)
	c.HandlePrefix(constants.PanelCategorySelectPrefix, h.PanelCategorySelect)
	c.HandlePrefix(constants.PanelBackPrefix, h.PanelBack)
	c.HandlePrefix(feedback.PrefixRating, h.FeedbackRating)
	b.components = c

	m := router.New[*events.ModalSubmitInteractionCreate]()
	m.Handle(constants.SetupWelcomeModal, h.SetupWelcomeModal)
	m.HandlePrefix(constants.TicketReasonModalPrefix, h.TicketReasonModal)
	m.HandlePrefix(constants.PanelTitleModalPrefix, h.PanelTitleModal)
	m.HandlePrefix(constants.PanelColorModalPrefix, h.PanelColorModal)
	m.HandlePrefix(constants.PanelWelcomeModalPrefix, h.PanelWelcomeModal)
	m.HandlePrefix(constants.PanelAddOptionModalPrefix, h.PanelAddOptionModal)
	m.HandlePrefix(feedback.PrefixComment, h.FeedbackCommentModal)
	b.modals = m
}

// handleApplicationCommand dispatches slash commands through the command map.
func (b *Bot) handleApplicationCommand(event *events.ApplicationCommandInteractionCreate) {
	name := event.SlashCommandInteractionData().CommandName()
	handler, ok := b.commands[name]
	if !ok {
		b.logger.Warn("Unknown command", zap.String("command", name))
		return
	}

	go func() {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in command handler",
					zap.String("command", name), zap.Any("panic", r))
			}
			b.logger.Debug("Command handled",
				zap.String("command", name),
				zap.Duration("duration", time.Since(start)))
		}()

		if err := handler(event); err != nil {
			b.logger.Error("Command failed", zap.String("command", name), zap.Error(err))
		}
	}()
}

// handleComponent dispatches button and select menu interactions by custom ID.
func (b *Bot) handleComponent(event *events.ComponentInteractionCreate) {
	customID := event.Data.CustomID()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in component handler",
					zap.String("custom_id", customID), zap.Any("panic", r))
			}
		}()

		matched, err := b.components.Dispatch(customID, event)
		if err != nil {
			b.logger.Error("Component interaction failed",
				zap.String("custom_id", customID), zap.Error(err))
			return
		}
		if !matched {
			b.logger.Warn("Unrouted component interaction", zap.String("custom_id", customID))
		}
	}()
}

// handleModal dispatches modal submissions by custom ID.
func (b *Bot) handleModal(event *events.ModalSubmitInteractionCreate) {
	customID := event.Data.CustomID

	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in modal handler",
					zap.String("custom_id", customID), zap.Any("panic", r))
			}
		}()

		matched, err := b.modals.Dispatch(customID, event)
		if err != nil {
			b.logger.Error("Modal submission failed",
				zap.String("custom_id", customID), zap.Error(err))
			return
		}
		if !matched {
			b.logger.Warn("Unrouted modal submission", zap.String("custom_id", customID))
		}
	}()
}

// handleGuildMessage feeds ticket channel traffic into the transcript and
// the AI reply pipeline.
func (b *Bot) handleGuildMessage(event *events.GuildMessageCreate) {
	msg := event.Message
	if msg.Author.ID == b.client.ApplicationID() && msg.Content == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()

		incoming := ticket.IncomingMessage{
			ChannelID:    event.ChannelID.String(),
			MessageID:    msg.ID.String(),
			AuthorID:     msg.Author.ID.String(),
			AuthorName:   msg.Author.EffectiveName(),
			AuthorAvatar: msg.Author.EffectiveAvatarURL(),
			Content:      msg.Content,
			IsBot:        msg.Author.Bot,
		}
		if err := b.handlers.Tickets().IngestMessage(ctx, incoming); err != nil {
			b.logger.Error("Failed to ingest ticket message",
				zap.String("channel_id", incoming.ChannelID), zap.Error(err))
		}
	}()
}

// handleReactionAdd resolves pending panel emoji captures.
func (b *Bot) handleReactionAdd(event *events.GuildMessageReactionAdd) {
	emoji := reactionEmoji(event.Emoji)
	if emoji == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()

		claimed, err := b.handlers.Panels().HandleReaction(ctx,
			event.UserID.String(), event.ChannelID.String(), emoji)
		if err != nil {
			b.logger.Error("Failed to capture panel emoji", zap.Error(err))
			return
		}
		if claimed {
			b.logger.Debug("Panel emoji captured", zap.String("emoji", emoji))
		}
	}()
}

// handleGuildJoin seeds a guild config so the web dashboard key exists
// before anyone runs setup.
func (b *Bot) handleGuildJoin(event *events.GuildJoin) {
	go b.syncGuild(event.Guild)
}

// handleGuildReady refreshes the stored guild identity on every connect.
func (b *Bot) handleGuildReady(event *events.GuildReady) {
	go b.syncGuild(event.Guild)
}

// handleGuildLeave drops the guild's config, revoking its dashboard key.
func (b *Bot) handleGuildLeave(event *events.GuildLeave) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()

		guildID := event.Guild.ID.String()
		if err := b.store.DeleteGuildConfig(ctx, guildID); err != nil {
			b.logger.Error("Failed to delete guild config on leave",
				zap.String("guild_id", guildID), zap.Error(err))
			return
		}
		b.logger.Info("Guild config deleted", zap.String("guild_id", guildID))
	}()
}

// syncGuild creates a missing guild config or refreshes its name and icon.
func (b *Bot) syncGuild(guild discord.Guild) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	guildID := guild.ID.String()
	var icon string
	if guild.Icon != nil {
		icon = *guild.Icon
	}

	cfg, err := b.store.GetGuildConfig(ctx, guildID)
	if err != nil {
		b.logger.Error("Failed to load guild config", zap.String("guild_id", guildID), zap.Error(err))
		return
	}

	if cfg == nil {
		if _, err := b.store.CreateGuildConfig(ctx, &types.GuildConfig{
			GuildID:   guildID,
			GuildName: guild.Name,
			GuildIcon: icon,
		}); err != nil {
			b.logger.Error("Failed to create guild config", zap.String("guild_id", guildID), zap.Error(err))
			return
		}
		b.logger.Info("Guild config created", zap.String("guild_id", guildID))
		return
	}

	if cfg.GuildName != guild.Name || cfg.GuildIcon != icon {
		if _, err := b.store.UpdateGuildConfig(ctx, guildID, storage.GuildConfigUpdate{
			GuildName: &guild.Name,
			GuildIcon: &icon,
		}); err != nil {
			b.logger.Error("Failed to refresh guild identity", zap.String("guild_id", guildID), zap.Error(err))
		}
	}
}

// reactionEmoji renders a reaction emoji the way message components expect:
// the literal character for unicode emoji, name:id for custom ones.
func reactionEmoji(emoji discord.PartialEmoji) string {
	if emoji.ID != nil && emoji.Name != nil {
		return *emoji.Name + ":" + emoji.ID.String()
	}
	if emoji.Name != nil {
		return *emoji.Name
	}
	return ""
}
