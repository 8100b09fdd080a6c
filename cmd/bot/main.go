package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/atendix/atendix/internal/bot"
	"github.com/atendix/atendix/internal/setup"
)

// BotLogDir specifies where bot log files are stored.
const BotLogDir = "logs/bot_logs"

func main() {
	app, err := setup.InitializeApp(context.Background(), BotLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup()

	if err := app.Config.RequireToken(); err != nil {
		log.Printf("Failed to start bot: %v", err)
		return
	}

	discordBot, err := bot.New(app.Config.Discord.Token, app.Store, app.AI, app.Logger)
	if err != nil {
		log.Printf("Failed to create bot: %v", err)
		return
	}

	if err := discordBot.Start(context.Background()); err != nil {
		log.Printf("Failed to start bot: %v", err)
		return
	}

	log.Println("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	discordBot.Close(context.Background())
}
