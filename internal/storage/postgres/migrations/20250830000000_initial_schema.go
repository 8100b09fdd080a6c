package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/atendix/atendix/internal/storage/types"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		// Status and style enums
		enums := []string{
			`DO $$ BEGIN
				CREATE TYPE ticket_status AS ENUM ('open', 'waiting', 'closed', 'archived');
			EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
			`DO $$ BEGIN
				CREATE TYPE button_style AS ENUM ('primary', 'secondary', 'success', 'danger');
			EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
		}
		for _, stmt := range enums {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create enum type: %w", err)
			}
		}

		models := []struct {
			model any
			name  string
		}{
			{(*types.GuildConfig)(nil), "guild_configs"},
			{(*types.Ticket)(nil), "tickets"},
			{(*types.TicketMessage)(nil), "ticket_messages"},
			{(*types.Feedback)(nil), "feedbacks"},
			{(*types.TicketPanel)(nil), "ticket_panels"},
			{(*types.PanelButton)(nil), "panel_buttons"},
		}
		for _, m := range models {
			if _, err := db.NewCreateTable().
				Model(m.model).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create table %s: %w", m.name, err)
			}
		}

		// Lookup indexes matching the hot paths
		indexes := []struct {
			table   string
			name    string
			columns string
		}{
			{"tickets", "idx_tickets_guild_id", "guild_id"},
			{"tickets", "idx_tickets_channel_id", "channel_id"},
			{"tickets", "idx_tickets_guild_user", "guild_id, user_id"},
			{"ticket_messages", "idx_ticket_messages_ticket_id", "ticket_id"},
			{"feedbacks", "idx_feedbacks_ticket_id", "ticket_id"},
			{"feedbacks", "idx_feedbacks_guild_id", "guild_id"},
			{"ticket_panels", "idx_ticket_panels_guild_id", "guild_id"},
			{"panel_buttons", "idx_panel_buttons_panel_id", "panel_id"},
		}
		for _, idx := range indexes {
			if _, err := db.NewRaw(fmt.Sprintf(
				"CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
				idx.name, idx.table, idx.columns,
			)).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create index %s: %w", idx.name, err)
			}
		}

		// Cascade cleanup when a panel or ticket goes away
		constraints := []string{
			`ALTER TABLE panel_buttons
				ADD CONSTRAINT fk_panel_buttons_panel
				FOREIGN KEY (panel_id) REFERENCES ticket_panels (id)
				ON DELETE CASCADE`,
			`ALTER TABLE ticket_messages
				ADD CONSTRAINT fk_ticket_messages_ticket
				FOREIGN KEY (ticket_id) REFERENCES tickets (id)
				ON DELETE CASCADE`,
			`ALTER TABLE feedbacks
				ADD CONSTRAINT fk_feedbacks_ticket
				FOREIGN KEY (ticket_id) REFERENCES tickets (id)
				ON DELETE CASCADE`,
		}
		for _, stmt := range constraints {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return fmt.Errorf("failed to add constraint: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		tables := []string{
			"panel_buttons", "ticket_panels", "feedbacks",
			"ticket_messages", "tickets", "guild_configs",
		}
		for _, table := range tables {
			if _, err := db.NewRaw(fmt.Sprintf(
				"DROP TABLE IF EXISTS %s CASCADE", table,
			)).Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}
		for _, enum := range []string{"ticket_status", "button_style"} {
			if _, err := db.NewRaw(fmt.Sprintf(
				"DROP TYPE IF EXISTS %s", enum,
			)).Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop type %s: %w", enum, err)
			}
		}
		return nil
	})
}
