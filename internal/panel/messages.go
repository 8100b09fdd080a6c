package panel

import (
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/atendix/atendix/internal/discordgw"
	"github.com/atendix/atendix/internal/storage/types"
)

// Component custom ID prefixes owned by the published panel surface. The
// panel or option ID follows the prefix.
const (
	PrefixCreateFromPanel = "create_ticket_"
	PrefixSelectMenu      = "ticket_select_menu_"
)

// publishMessage builds the webhook message for a published panel: the
// configured embed plus one button for a single option or a select menu for
// several.
func publishMessage(p *types.TicketPanel, buttons []*types.PanelButton) discord.WebhookMessageCreate {
	embed := discord.NewEmbedBuilder().
		SetTitle(p.Title).
		SetDescription(p.Description).
		SetColor(discordgw.ParseColor(p.EmbedColor)).
		Build()

	var row discord.ActionRowComponent
	if len(buttons) == 1 {
		row = discord.NewActionRow(optionButton(p.ID, buttons[0]))
	} else {
		options := make([]discord.StringSelectMenuOption, 0, len(buttons))
		for _, b := range buttons {
			option := discord.NewStringSelectMenuOption(b.Label, b.ID)
			if b.Emoji != "" {
				option = option.WithEmoji(componentEmoji(b.Emoji))
			}
			options = append(options, option)
		}
		row = discord.NewActionRow(
			discord.NewStringSelectMenu(PrefixSelectMenu+p.ID, "Selecione o tipo de atendimento", options...),
		)
	}

	return discord.WebhookMessageCreate{
		Embeds:     []discord.Embed{embed},
		Components: []discord.ContainerComponent{row},
	}
}

// optionButton renders one option as a Discord button carrying the panel ID.
func optionButton(panelID string, b *types.PanelButton) discord.ButtonComponent {
	var button discord.ButtonComponent
	customID := PrefixCreateFromPanel + panelID

	switch b.Style {
	case types.ButtonStyleSecondary:
		button = discord.NewSecondaryButton(b.Label, customID)
	case types.ButtonStyleSuccess:
		button = discord.NewSuccessButton(b.Label, customID)
	case types.ButtonStyleDanger:
		button = discord.NewDangerButton(b.Label, customID)
	default:
		button = discord.NewPrimaryButton(b.Label, customID)
	}

	if b.Emoji != "" {
		button = button.WithEmoji(componentEmoji(b.Emoji))
	}
	return button
}

// componentEmoji turns a stored emoji back into its component form: custom
// emoji are kept as "name:id", unicode emoji as the literal character.
func componentEmoji(stored string) discord.ComponentEmoji {
	if name, rawID, ok := strings.Cut(stored, ":"); ok {
		if id, err := snowflake.Parse(rawID); err == nil {
			return discord.ComponentEmoji{ID: id, Name: name}
		}
	}
	return discord.ComponentEmoji{Name: stored}
}
