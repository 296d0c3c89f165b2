package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pingcard/pingcard/internal/config"
	"github.com/pingcard/pingcard/internal/publish"
	"github.com/pingcard/pingcard/internal/publish/webhook"
	"github.com/spf13/cobra"
)

var deleteMessageID string

var deleteCardCmd = &cobra.Command{
	Use:         "delete-card",
	Short:       "Delete the published status card for the configured subscription.",
	Args:        cobra.NoArgs,
	Annotations: structuredLogAnnotation(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeleteCard(strings.TrimSpace(deleteMessageID))
	},
}

func init() {
	deleteCardCmd.Flags().StringVar(&deleteMessageID, "message-id", "", "delete this message directly instead of the stored handle")
}

func runDeleteCard(messageID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	messenger, err := webhook.New(cfg.WebhookURL)
	if err != nil {
		return err
	}

	if messageID != "" {
		if err := messenger.Delete(ctx, messageID); err != nil && !errors.Is(err, publish.ErrMessageNotFound) {
			return err
		}
		slog.Info("card deleted", "message_id", messageID)
		return nil
	}

	if cfg.HandleStore == config.HandleStoreMemory {
		return withExitCode(exitCodeUsage, errors.New("HANDLE_STORE=memory keeps no handle between runs; pass --message-id"))
	}

	handles, closeHandles, err := openHandleStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHandles()

	publisher, err := publish.NewMessagePublisher(messenger, handles, cfg.Subscription, slog.Default())
	if err != nil {
		return err
	}
	if err := publisher.Delete(ctx); err != nil {
		if errors.Is(err, publish.ErrNoHandle) {
			slog.Info("no published card for subscription", "subscription", cfg.Subscription)
			return nil
		}
		return err
	}
	slog.Info("card deleted", "subscription", cfg.Subscription)
	return nil
}
