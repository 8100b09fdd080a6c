package handlers

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/bot/constants"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

// SetupCommand shows the server configuration menu, creating the guild
// config on first use.
func (h *Handlers) SetupCommand(event *events.ApplicationCommandInteractionCreate) error {
	guildID := event.GuildID().String()
	cfg, err := h.ensureGuildConfig(event, guildID)
	if err != nil {
		return err
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Configuração do Sistema de Tickets").
		SetDescription("Escolha abaixo o que deseja configurar.").
		AddField("Cargo da equipe", mentionOr(cfg.StaffRoleID, "<@&%s>", "não definido"), true).
		AddField("Categoria", mentionOr(cfg.TicketCategoryID, "<#%s>", "não definida"), true).
		AddField("Canal de logs", mentionOr(cfg.LogChannelID, "<#%s>", "não definido"), true).
		AddField("Canal de avaliações", mentionOr(cfg.FeedbackChannelID, "<#%s>", "não definido"), true).
		AddField("IA", enabledText(cfg.AIEnabled), true).
		SetColor(0x5865F2).
		Build()

	menu := discord.NewActionRow(discord.NewStringSelectMenu(
		constants.SetupMenu,
		"O que deseja configurar?",
		discord.NewStringSelectMenuOption("Cargo da equipe", constants.SetupOptionStaffRole).
			WithEmoji(discord.ComponentEmoji{Name: "👮"}),
		discord.NewStringSelectMenuOption("Categoria de tickets", constants.SetupOptionCategory).
			WithEmoji(discord.ComponentEmoji{Name: "📁"}),
		discord.NewStringSelectMenuOption("Canal de logs", constants.SetupOptionLogChannel).
			WithEmoji(discord.ComponentEmoji{Name: "📋"}),
		discord.NewStringSelectMenuOption("Canal de avaliações", constants.SetupOptionFeedbackChannel).
			WithEmoji(discord.ComponentEmoji{Name: "⭐"}),
		discord.NewStringSelectMenuOption("Mensagem de boas-vindas", constants.SetupOptionWelcome).
			WithEmoji(discord.ComponentEmoji{Name: "💬"}),
	))

	return event.CreateMessage(ephemeralEmbed(embed, menu))
}

// SetupMenuSelect routes the chosen configuration target to its picker.
func (h *Handlers) SetupMenuSelect(event *events.ComponentInteractionCreate, _ string) error {
	values := event.StringSelectMenuInteractionData().Values
	if len(values) == 0 {
		return nil
	}

	switch values[0] {
	case constants.SetupOptionStaffRole:
		return event.CreateMessage(pickerMessage(
			discord.NewRoleSelectMenu(constants.SetupStaffRoleSelect, "Selecione o cargo da equipe")))
	case constants.SetupOptionCategory:
		return event.CreateMessage(pickerMessage(
			discord.NewChannelSelectMenu(constants.SetupCategorySelect, "Selecione a categoria").
				WithChannelTypes(discord.ChannelTypeGuildCategory)))
	case constants.SetupOptionLogChannel:
		return event.CreateMessage(pickerMessage(
			discord.NewChannelSelectMenu(constants.SetupLogChannelSelect, "Selecione o canal de logs").
				WithChannelTypes(discord.ChannelTypeGuildText)))
	case constants.SetupOptionFeedbackChannel:
		return event.CreateMessage(pickerMessage(
			discord.NewChannelSelectMenu(constants.SetupFeedbackChannelSelect, "Selecione o canal de avaliações").
				WithChannelTypes(discord.ChannelTypeGuildText)))
	case constants.SetupOptionWelcome:
		return event.Modal(discord.NewModalCreateBuilder().
			SetCustomID(constants.SetupWelcomeModal).
			SetTitle("Mensagem de boas-vindas").
			AddActionRow(discord.NewTextInput(constants.SetupWelcomeInput, discord.TextInputStyleParagraph, "Mensagem").
				WithRequired(true).
				WithMaxLength(1000).
				WithPlaceholder(types.DefaultWelcomeMessage)).
			Build())
	}
	return nil
}

// SetupStaffRoleSelect stores the chosen staff role.
func (h *Handlers) SetupStaffRoleSelect(event *events.ComponentInteractionCreate, _ string) error {
	values := event.RoleSelectMenuInteractionData().Values
	if len(values) == 0 {
		return nil
	}

	return h.updateSetupField(event, storage.GuildConfigUpdate{
		StaffRoleID: strPtr(values[0].String()),
	}, fmt.Sprintf("Cargo da equipe definido: <@&%s>", values[0]))
}

// SetupCategorySelect stores the category new tickets are created under.
func (h *Handlers) SetupCategorySelect(event *events.ComponentInteractionCreate, _ string) error {
	values := event.ChannelSelectMenuInteractionData().Values
	if len(values) == 0 {
		return nil
	}

	return h.updateSetupField(event, storage.GuildConfigUpdate{
		TicketCategoryID: strPtr(values[0].String()),
	}, fmt.Sprintf("Categoria de tickets definida: <#%s>", values[0]))
}

// SetupLogChannelSelect stores the lifecycle log channel.
func (h *Handlers) SetupLogChannelSelect(event *events.ComponentInteractionCreate, _ string) error {
	values := event.ChannelSelectMenuInteractionData().Values
	if len(values) == 0 {
		return nil
	}

	return h.updateSetupField(event, storage.GuildConfigUpdate{
		LogChannelID: strPtr(values[0].String()),
	}, fmt.Sprintf("Canal de logs definido: <#%s>", values[0]))
}

// SetupFeedbackChannelSelect stores the feedback mirror channel.
func (h *Handlers) SetupFeedbackChannelSelect(event *events.ComponentInteractionCreate, _ string) error {
	values := event.ChannelSelectMenuInteractionData().Values
	if len(values) == 0 {
		return nil
	}

	return h.updateSetupField(event, storage.GuildConfigUpdate{
		FeedbackChannelID: strPtr(values[0].String()),
	}, fmt.Sprintf("Canal de avaliações definido: <#%s>", values[0]))
}

// SetupWelcomeModal stores the welcome message typed in the modal.
func (h *Handlers) SetupWelcomeModal(event *events.ModalSubmitInteractionCreate, _ string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	welcome := event.Data.Text(constants.SetupWelcomeInput)
	if _, err := h.store.UpdateGuildConfig(ctx, event.GuildID().String(), storage.GuildConfigUpdate{
		WelcomeMessage: &welcome,
	}); err != nil {
		return err
	}
	return event.CreateMessage(ephemeral("Mensagem de boas-vindas atualizada."))
}

// ToggleAICommand flips the guild's AI assistant availability. The optional
// "ativar" option forces a state; the optional "prompt" option replaces the
// system prompt.
func (h *Handlers) ToggleAICommand(event *events.ApplicationCommandInteractionCreate) error {
	ctx, cancel := handlerContext()
	defer cancel()

	guildID := event.GuildID().String()
	cfg, err := h.store.GetGuildConfig(ctx, guildID)
	if err != nil {
		return err
	}
	if cfg == nil {
		return event.CreateMessage(ephemeral("Use /" + constants.CommandSetup + " antes de ativar a IA."))
	}

	data := event.SlashCommandInteractionData()
	enabled := !cfg.AIEnabled
	if wanted, ok := data.OptBool("ativar"); ok {
		enabled = wanted
	}

	update := storage.GuildConfigUpdate{AIEnabled: &enabled}
	if prompt, ok := data.OptString("prompt"); ok && prompt != "" {
		update.AISystemPrompt = &prompt
	}
	if _, err := h.store.UpdateGuildConfig(ctx, guildID, update); err != nil {
		return err
	}

	h.logger.Info("Guild AI toggled", zap.String("guild_id", guildID), zap.Bool("enabled", enabled))
	if enabled {
		return event.CreateMessage(ephemeral("IA ativada. Use o botão 🤖 dentro de um ticket para acioná-la."))
	}
	return event.CreateMessage(ephemeral("IA desativada para este servidor."))
}

// ResetCommand asks for confirmation before wiping the guild's tickets.
func (h *Handlers) ResetCommand(event *events.ApplicationCommandInteractionCreate) error {
	embed := discord.NewEmbedBuilder().
		SetTitle("Resetar tickets").
		SetDescription("Isso apaga **todos** os tickets, mensagens e avaliações deste servidor, " +
			"incluindo os canais de tickets abertos. Essa ação não pode ser desfeita.").
		SetColor(0xED4245).
		Build()

	row := discord.NewActionRow(
		discord.NewDangerButton("Confirmar", constants.ConfirmResetTickets),
		discord.NewSecondaryButton("Cancelar", constants.CancelResetTickets),
	)
	return event.CreateMessage(ephemeralEmbed(embed, row))
}

// ConfirmReset wipes the guild's tickets.
func (h *Handlers) ConfirmReset(event *events.ComponentInteractionCreate, _ string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	removed, err := h.tickets.Reset(ctx, event.GuildID().String())
	if err != nil {
		return err
	}
	return event.CreateMessage(ephemeral(fmt.Sprintf("%d tickets removidos.", removed)))
}

// CancelReset dismisses the confirmation.
func (h *Handlers) CancelReset(event *events.ComponentInteractionCreate, _ string) error {
	return event.CreateMessage(ephemeral("Reset cancelado."))
}

// ServerKeyCommand shows the dashboard access key.
func (h *Handlers) ServerKeyCommand(event *events.ApplicationCommandInteractionCreate) error {
	cfg, err := h.ensureGuildConfig(event, event.GuildID().String())
	if err != nil {
		return err
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Chave do Servidor").
		SetDescription(fmt.Sprintf("Use esta chave para acessar o painel web:\n`%s`\n\n"+
			"Mantenha a chave em segredo. Gere uma nova se ela vazar.", cfg.ServerKey)).
		SetColor(0x5865F2).
		Build()

	row := discord.NewActionRow(
		discord.NewDangerButton("Gerar nova chave", constants.RegenerateKey),
	)
	return event.CreateMessage(ephemeralEmbed(embed, row))
}

// RegenerateKey replaces the dashboard key, invalidating the old one.
func (h *Handlers) RegenerateKey(event *events.ComponentInteractionCreate, _ string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	key := storage.GenerateServerKey()
	if _, err := h.store.UpdateGuildConfig(ctx, event.GuildID().String(), storage.GuildConfigUpdate{
		ServerKey: &key,
	}); err != nil {
		return err
	}

	h.logger.Info("Server key regenerated", zap.String("guild_id", event.GuildID().String()))
	return event.CreateMessage(ephemeral(fmt.Sprintf("Nova chave gerada: `%s`", key)))
}

// ensureGuildConfig loads the config, creating it when the guild never ran
// setup before.
func (h *Handlers) ensureGuildConfig(event *events.ApplicationCommandInteractionCreate, guildID string) (*types.GuildConfig, error) {
	ctx, cancel := handlerContext()
	defer cancel()

	cfg, err := h.store.GetGuildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}

	guildName := "Servidor"
	var guildIcon string
	if guild, ok := event.Guild(); ok {
		guildName = guild.Name
		if guild.Icon != nil {
			guildIcon = *guild.Icon
		}
	}

	return h.store.CreateGuildConfig(ctx, &types.GuildConfig{
		GuildID:   guildID,
		GuildName: guildName,
		GuildIcon: guildIcon,
	})
}

// updateSetupField applies one config change and confirms it ephemerally.
func (h *Handlers) updateSetupField(event *events.ComponentInteractionCreate, update storage.GuildConfigUpdate, confirmation string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	if _, err := h.store.UpdateGuildConfig(ctx, event.GuildID().String(), update); err != nil {
		return err
	}
	return event.CreateMessage(ephemeral(confirmation))
}

func pickerMessage(menu discord.InteractiveComponent) discord.MessageCreate {
	return discord.NewMessageCreateBuilder().
		AddActionRow(menu).
		SetEphemeral(true).
		Build()
}

func mentionOr(id, format, fallback string) string {
	if id == "" {
		return fallback
	}
	return fmt.Sprintf(format, id)
}

func enabledText(enabled bool) string {
	if enabled {
		return "ativada"
	}
	return "desativada"
}

func strPtr(s string) *string { return &s }
