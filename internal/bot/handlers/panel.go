package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/bot/constants"
	"github.com/atendix/atendix/internal/discordgw"
	"github.com/atendix/atendix/internal/panel"
	"github.com/atendix/atendix/internal/storage/types"
)

// PanelCommand creates a panel draft bound to the chosen channel (or the
// current one) and opens the configurator.
func (h *Handlers) PanelCommand(event *events.ApplicationCommandInteractionCreate) error {
	ctx, cancel := handlerContext()
	defer cancel()

	channelID := event.Channel().ID().String()
	if target, ok := event.SlashCommandInteractionData().OptChannel("canal"); ok {
		channelID = target.ID.String()
	}

	draft, err := h.panels.CreateDraft(ctx,
		event.GuildID().String(),
		channelID,
		event.User().ID.String())
	if err != nil {
		return err
	}

	embed, rows, err := h.configuratorView(ctx, draft.ID)
	if err != nil {
		return err
	}
	return event.CreateMessage(ephemeralEmbed(embed, rows...))
}

// PanelConfigMenu dispatches the chosen configurator action. arg is the
// panel ID.
func (h *Handlers) PanelConfigMenu(event *events.ComponentInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	values := event.StringSelectMenuInteractionData().Values
	if len(values) == 0 {
		return nil
	}

	p, err := h.panels.Get(ctx, arg)
	if err != nil {
		return h.replyPanelError(event, err)
	}

	switch values[0] {
	case constants.PanelActionTitle:
		return event.Modal(discord.NewModalCreateBuilder().
			SetCustomID(constants.PanelTitleModalPrefix + p.ID).
			SetTitle("Textos do painel").
			AddActionRow(discord.NewTextInput(constants.InputTitle, discord.TextInputStyleShort, "Título").
				WithRequired(true).
				WithMaxLength(100).
				WithValue(p.Title)).
			AddActionRow(discord.NewTextInput(constants.InputDescription, discord.TextInputStyleParagraph, "Descrição").
				WithRequired(true).
				WithMaxLength(1000).
				WithValue(p.Description)).
			Build())

	case constants.PanelActionColor:
		return event.Modal(discord.NewModalCreateBuilder().
			SetCustomID(constants.PanelColorModalPrefix + p.ID).
			SetTitle("Cor do painel").
			AddActionRow(discord.NewTextInput(constants.InputColor, discord.TextInputStyleShort, "Cor (hex)").
				WithRequired(true).
				WithMaxLength(7).
				WithPlaceholder("#5865F2").
				WithValue(p.EmbedColor)).
			Build())

	case constants.PanelActionCategory:
		return event.CreateMessage(pickerMessage(
			discord.NewChannelSelectMenu(constants.PanelCategorySelectPrefix+p.ID, "Selecione a categoria").
				WithChannelTypes(discord.ChannelTypeGuildCategory)))

	case constants.PanelActionWelcome:
		return event.Modal(discord.NewModalCreateBuilder().
			SetCustomID(constants.PanelWelcomeModalPrefix + p.ID).
			SetTitle("Boas-vindas do ticket").
			AddActionRow(discord.NewTextInput(constants.InputWelcome, discord.TextInputStyleParagraph, "Mensagem").
				WithRequired(true).
				WithMaxLength(1000).
				WithValue(p.WelcomeMessage)).
			Build())

	case constants.PanelActionReason:
		if _, err := h.panels.ToggleRequireReason(ctx, p.ID); err != nil {
			return h.replyPanelError(event, err)
		}
		return h.refreshConfigurator(ctx, event, p.ID)

	case constants.PanelActionOptions:
		return h.showOptionsManager(ctx, event, p.ID)

	case constants.PanelActionPublish:
		published, err := h.panels.Publish(ctx, p.ID)
		if err != nil {
			return h.replyPanelError(event, err)
		}
		return event.CreateMessage(ephemeral(
			fmt.Sprintf("Painel publicado em <#%s>.", published.ChannelID)))

	case constants.PanelActionPreview:
		return h.showPreview(ctx, event, p)

	case constants.PanelActionDelete:
		if err := h.panels.Delete(ctx, p.ID); err != nil {
			return h.replyPanelError(event, err)
		}
		return event.CreateMessage(ephemeral("Painel excluído."))
	}
	return nil
}

// PanelTitleModal stores the embed texts.
func (h *Handlers) PanelTitleModal(event *events.ModalSubmitInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	if _, err := h.panels.SetTitle(ctx, arg, event.Data.Text(constants.InputTitle)); err != nil {
		return h.replyPanelModalError(event, err)
	}
	if _, err := h.panels.SetDescription(ctx, arg, event.Data.Text(constants.InputDescription)); err != nil {
		return h.replyPanelModalError(event, err)
	}
	return event.CreateMessage(ephemeral("Textos do painel atualizados."))
}

// PanelColorModal stores the embed color.
func (h *Handlers) PanelColorModal(event *events.ModalSubmitInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	if _, err := h.panels.SetColor(ctx, arg, event.Data.Text(constants.InputColor)); err != nil {
		if errors.Is(err, panel.ErrInvalidColor) {
			return event.CreateMessage(ephemeral("Cor inválida. Use o formato #RRGGBB, por exemplo #5865F2."))
		}
		return h.replyPanelModalError(event, err)
	}
	return event.CreateMessage(ephemeral("Cor do painel atualizada."))
}

// PanelWelcomeModal stores the ticket welcome text.
func (h *Handlers) PanelWelcomeModal(event *events.ModalSubmitInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	if _, err := h.panels.SetWelcome(ctx, arg, event.Data.Text(constants.InputWelcome)); err != nil {
		return h.replyPanelModalError(event, err)
	}
	return event.CreateMessage(ephemeral("Mensagem de boas-vindas do painel atualizada."))
}

// PanelCategorySelect stores the panel's ticket category.
func (h *Handlers) PanelCategorySelect(event *events.ComponentInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	values := event.ChannelSelectMenuInteractionData().Values
	if len(values) == 0 {
		return nil
	}

	if _, err := h.panels.SetCategory(ctx, arg, values[0].String()); err != nil {
		if errors.Is(err, panel.ErrInvalidCategory) {
			return event.CreateMessage(ephemeral("O canal escolhido não é uma categoria."))
		}
		return h.replyPanelError(event, err)
	}
	return event.CreateMessage(ephemeral(fmt.Sprintf("Categoria do painel definida: <#%s>", values[0])))
}

// PanelManageOptions reopens the options manager. arg is the panel ID.
func (h *Handlers) PanelManageOptions(event *events.ComponentInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	return h.showOptionsManager(ctx, event, arg)
}

// PanelAddOption opens the new option modal. arg is the panel ID.
func (h *Handlers) PanelAddOption(event *events.ComponentInteractionCreate, arg string) error {
	return event.Modal(discord.NewModalCreateBuilder().
		SetCustomID(constants.PanelAddOptionModalPrefix + arg).
		SetTitle("Nova opção").
		AddActionRow(discord.NewTextInput(constants.InputOptionLabel, discord.TextInputStyleShort, "Texto do botão").
			WithRequired(true).
			WithMaxLength(80)).
		AddActionRow(discord.NewTextInput(constants.InputOptionStyle, discord.TextInputStyleShort, "Estilo").
			WithRequired(false).
			WithMaxLength(10).
			WithPlaceholder("primary, secondary, success ou danger")).
		Build())
}

// PanelAddOptionModal creates the option and arms the emoji capture window.
func (h *Handlers) PanelAddOptionModal(event *events.ModalSubmitInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	label := strings.TrimSpace(event.Data.Text(constants.InputOptionLabel))
	style := types.ParseButtonStyle(strings.ToLower(strings.TrimSpace(event.Data.Text(constants.InputOptionStyle))))

	button, err := h.panels.AddOption(ctx, arg, label, "", style)
	if err != nil {
		if errors.Is(err, panel.ErrTooManyOptions) {
			return event.CreateMessage(ephemeral("Limite de opções atingido para este painel."))
		}
		return h.replyPanelModalError(event, err)
	}

	h.panels.AwaitEmoji(arg, button.ID, event.User().ID.String(), event.Channel().ID().String())
	return event.CreateMessage(ephemeral(fmt.Sprintf(
		"Opção **%s** adicionada. Reaja a qualquer mensagem deste canal em até %d segundos para definir um emoji.",
		label, int(panel.EmojiCaptureWindow.Seconds()))))
}

// PanelRemoveSelect removes the chosen option. arg is the panel ID.
func (h *Handlers) PanelRemoveSelect(event *events.ComponentInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	values := event.StringSelectMenuInteractionData().Values
	if len(values) == 0 {
		return nil
	}

	if err := h.panels.RemoveOption(ctx, arg, values[0]); err != nil {
		return h.replyPanelError(event, err)
	}
	return event.CreateMessage(ephemeral("Opção removida."))
}

// PanelBack returns to the configurator menu. arg is the panel ID.
func (h *Handlers) PanelBack(event *events.ComponentInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	return h.refreshConfigurator(ctx, event, arg)
}

// configuratorView renders the configurator embed and components.
func (h *Handlers) configuratorView(ctx context.Context, panelID string) (discord.Embed, []discord.ContainerComponent, error) {
	p, err := h.panels.Get(ctx, panelID)
	if err != nil {
		return discord.Embed{}, nil, err
	}
	options, err := h.panels.Options(ctx, panelID)
	if err != nil {
		return discord.Embed{}, nil, err
	}

	status := "rascunho"
	if p.IsConfigured {
		status = "publicado"
	}
	reason := "não"
	if p.RequireReason {
		reason = "sim"
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Configurar Painel").
		SetDescription(fmt.Sprintf("**%s**\n%s", p.Title, p.Description)).
		AddField("Status", status, true).
		AddField("Opções", fmt.Sprintf("%d", len(options)), true).
		AddField("Exigir motivo", reason, true).
		AddField("Cor", p.EmbedColor, true).
		AddField("Categoria", mentionOr(p.CategoryID, "<#%s>", "herdada do servidor"), true).
		SetColor(discordgw.ParseColor(p.EmbedColor)).
		Build()

	menu := discord.NewActionRow(discord.NewStringSelectMenu(
		constants.PanelConfigMenuPrefix+p.ID,
		"O que deseja alterar?",
		discord.NewStringSelectMenuOption("Título e descrição", constants.PanelActionTitle).
			WithEmoji(discord.ComponentEmoji{Name: "✏️"}),
		discord.NewStringSelectMenuOption("Cor", constants.PanelActionColor).
			WithEmoji(discord.ComponentEmoji{Name: "🎨"}),
		discord.NewStringSelectMenuOption("Categoria", constants.PanelActionCategory).
			WithEmoji(discord.ComponentEmoji{Name: "📁"}),
		discord.NewStringSelectMenuOption("Boas-vindas", constants.PanelActionWelcome).
			WithEmoji(discord.ComponentEmoji{Name: "💬"}),
		discord.NewStringSelectMenuOption("Exigir motivo", constants.PanelActionReason).
			WithEmoji(discord.ComponentEmoji{Name: "❓"}),
		discord.NewStringSelectMenuOption("Opções", constants.PanelActionOptions).
			WithEmoji(discord.ComponentEmoji{Name: "🔘"}),
		discord.NewStringSelectMenuOption("Pré-visualizar", constants.PanelActionPreview).
			WithEmoji(discord.ComponentEmoji{Name: "👁️"}),
		discord.NewStringSelectMenuOption("Publicar", constants.PanelActionPublish).
			WithEmoji(discord.ComponentEmoji{Name: "🚀"}),
		discord.NewStringSelectMenuOption("Excluir", constants.PanelActionDelete).
			WithEmoji(discord.ComponentEmoji{Name: "🗑️"}),
	))

	return embed, []discord.ContainerComponent{menu}, nil
}

// refreshConfigurator swaps the interaction's message for a fresh view.
func (h *Handlers) refreshConfigurator(ctx context.Context, event *events.ComponentInteractionCreate, panelID string) error {
	embed, rows, err := h.configuratorView(ctx, panelID)
	if err != nil {
		return h.replyPanelError(event, err)
	}

	update := discord.NewMessageUpdateBuilder().
		SetEmbeds(embed).
		SetContainerComponents(rows...).
		Build()
	return event.UpdateMessage(update)
}

// showOptionsManager renders the option list with add/remove controls.
func (h *Handlers) showOptionsManager(ctx context.Context, event *events.ComponentInteractionCreate, panelID string) error {
	options, err := h.panels.Options(ctx, panelID)
	if err != nil {
		return h.replyPanelError(event, err)
	}

	var lines []string
	for _, opt := range options {
		label := opt.Label
		if opt.Emoji != "" {
			label = opt.Emoji + " " + label
		}
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", opt.Order+1, label, opt.Style))
	}
	body := "Nenhuma opção ainda. Adicione ao menos uma antes de publicar."
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Opções do Painel").
		SetDescription(body).
		SetColor(discordgw.DefaultEmbedColor).
		Build()

	rows := []discord.ContainerComponent{
		discord.NewActionRow(
			discord.NewSuccessButton("Adicionar", constants.PanelAddOptionPrefix+panelID),
			discord.NewSecondaryButton("Voltar", constants.PanelBackPrefix+panelID),
		),
	}
	if len(options) > 0 {
		selectOptions := make([]discord.StringSelectMenuOption, 0, len(options))
		for _, opt := range options {
			selectOptions = append(selectOptions,
				discord.NewStringSelectMenuOption(opt.Label, opt.ID))
		}
		rows = append(rows, discord.NewActionRow(
			discord.NewStringSelectMenu(constants.PanelRemoveSelectPrefix+panelID,
				"Remover uma opção", selectOptions...)))
	}

	update := discord.NewMessageUpdateBuilder().
		SetEmbeds(embed).
		SetContainerComponents(rows...).
		Build()
	return event.UpdateMessage(update)
}

// showPreview sends the published look of the panel, ephemerally.
func (h *Handlers) showPreview(ctx context.Context, event *events.ComponentInteractionCreate, p *types.TicketPanel) error {
	options, err := h.panels.Options(ctx, p.ID)
	if err != nil {
		return h.replyPanelError(event, err)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(p.Title).
		SetDescription(p.Description).
		SetColor(discordgw.ParseColor(p.EmbedColor)).
		SetFooterText(fmt.Sprintf("Pré-visualização • %d opções", len(options))).
		Build()
	return event.CreateMessage(ephemeralEmbed(embed))
}

// replyPanelError maps panel errors to user-facing replies.
func (h *Handlers) replyPanelError(event *events.ComponentInteractionCreate, err error) error {
	return event.CreateMessage(h.panelErrorMessage(err))
}

func (h *Handlers) replyPanelModalError(event *events.ModalSubmitInteractionCreate, err error) error {
	return event.CreateMessage(h.panelErrorMessage(err))
}

func (h *Handlers) panelErrorMessage(err error) discord.MessageCreate {
	switch {
	case errors.Is(err, panel.ErrNotFound):
		return ephemeral("Este painel não existe mais.")
	case errors.Is(err, panel.ErrNoOptions):
		return ephemeral("Adicione ao menos uma opção antes de publicar o painel.")
	default:
		h.logger.Error("Panel interaction failed", zap.Error(err))
		return ephemeral("Algo deu errado. Tente novamente em instantes.")
	}
}
