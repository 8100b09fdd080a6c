package ticket

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"

	"github.com/atendix/atendix/internal/storage/types"
)

// Component custom IDs owned by the ticket surface.
const (
	ComponentCreate   = "create_ticket"
	ComponentClose    = "close_ticket"
	ComponentClaim    = "claim_ticket"
	ComponentNotify   = "notify_dm"
	ComponentToggleAI = "toggle_ai"
	ComponentArchive  = "archive_ticket"
)

// Embed colors used across the ticket surface.
const (
	colorGreen   = 0x57F287
	colorRed     = 0xED4245
	colorBlurple = 0x5865F2
	colorYellow  = 0xFEE75C
)

// welcomeMessage builds the first message of a ticket channel with the
// action buttons.
func welcomeMessage(t *types.Ticket, welcome, reason string) discord.MessageCreate {
	description := welcome
	if reason != "" {
		description += fmt.Sprintf("\n\n**Motivo:** %s", reason)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(fmt.Sprintf("Ticket #%04d", t.TicketNumber)).
		SetDescription(description).
		SetColor(colorBlurple).
		AddField("Aberto por", fmt.Sprintf("<@%s>", t.UserID), true).
		AddField("Status", "Aberto", true).
		SetTimestamp(time.Now()).
		Build()

	return discord.NewMessageCreateBuilder().
		SetContentf("<@%s>", t.UserID).
		SetEmbeds(embed).
		AddActionRow(
			discord.NewDangerButton("Fechar", ComponentClose).
				WithEmoji(discord.ComponentEmoji{Name: "🔒"}),
			discord.NewPrimaryButton("Assumir", ComponentClaim).
				WithEmoji(discord.ComponentEmoji{Name: "🙋"}),
			discord.NewSecondaryButton("Notificar DM", ComponentNotify).
				WithEmoji(discord.ComponentEmoji{Name: "🔔"}),
		).
		AddActionRow(
			discord.NewSecondaryButton("IA", ComponentToggleAI).
				WithEmoji(discord.ComponentEmoji{Name: "🤖"}),
		).
		Build()
}

// closedMessage announces the close inside the channel.
func closedMessage(t *types.Ticket) discord.MessageCreate {
	embed := discord.NewEmbedBuilder().
		SetTitle("Ticket Fechado").
		SetDescription(fmt.Sprintf("Este ticket foi fechado por **%s**.\n"+
			"Use o botão abaixo para arquivar o canal.", t.ClosedByName)).
		SetColor(colorRed).
		SetTimestamp(time.Now()).
		Build()

	return discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		AddActionRow(
			discord.NewSecondaryButton("Arquivar", ComponentArchive).
				WithEmoji(discord.ComponentEmoji{Name: "📦"}),
		).
		Build()
}

// archivedMessage announces the pending channel removal.
func archivedMessage() discord.MessageCreate {
	embed := discord.NewEmbedBuilder().
		SetTitle("Ticket Arquivado").
		SetDescription("Este canal será excluído em alguns segundos.").
		SetColor(colorYellow).
		Build()

	return discord.NewMessageCreateBuilder().SetEmbeds(embed).Build()
}

// notifyMessage is the DM sent when staff pings the requester.
func notifyMessage(t *types.Ticket, staffName string) discord.MessageCreate {
	embed := discord.NewEmbedBuilder().
		SetTitle("Você tem uma resposta!").
		SetDescription(fmt.Sprintf("**%s** respondeu ao seu ticket #%04d. "+
			"Volte ao servidor para continuar o atendimento.", staffName, t.TicketNumber)).
		SetColor(colorBlurple).
		Build()

	return discord.NewMessageCreateBuilder().SetEmbeds(embed).Build()
}

// assistantReply wraps the model's text for the channel.
func assistantReply(text string) discord.MessageCreate {
	embed := discord.NewEmbedBuilder().
		SetAuthorName("Assistente IA").
		SetDescription(text).
		SetColor(colorBlurple).
		Build()

	return discord.NewMessageCreateBuilder().SetEmbeds(embed).Build()
}

// aiNoticeMessage tells the channel that a human joined and the assistant
// stepped aside.
func aiNoticeMessage() discord.MessageCreate {
	embed := discord.NewEmbedBuilder().
		SetDescription("Um membro da equipe entrou na conversa. O assistente de IA foi desativado para este ticket.").
		SetColor(colorYellow).
		Build()

	return discord.NewMessageCreateBuilder().SetEmbeds(embed).Build()
}
