package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"

	"github.com/swelljoe/alertagent/internal/config"
	"github.com/swelljoe/alertagent/internal/telegram"
)

func main() {
	log.SetHandler(cli.New(os.Stderr))

	if err := run(); err != nil {
		log.WithError(err).Fatal("Chat id lookup failed")
	}
}

func run() error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tg := telegram.NewClient(cfg.Endpoints.Telegram, cfg.TelegramBotToken, "", cfg.HTTP.Timeout)
	chats, err := tg.Chats(ctx)
	if errors.Is(err, telegram.ErrMissingCredentials) {
		return errors.New("TG_BOT_TOKEN is not set")
	}
	if err != nil {
		return err
	}

	if len(chats) == 0 {
		fmt.Println("No messages found. Send any message to your bot in Telegram, then run this again.")
		return nil
	}

	for _, c := range chats {
		fmt.Printf("✅ Chat ID: %d (%s %s)\n", c.ID, c.Type, c.Name)
	}
	fmt.Println("Set TG_CHAT_ID to the chat you want summaries delivered to.")
	return nil
}
