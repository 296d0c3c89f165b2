// Package publish delivers rendered cards to the messaging surface and keeps
// exactly one published card per subscription.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pingcard/pingcard/internal/card"
	"github.com/pingcard/pingcard/internal/logging"
)

var (
	// ErrMessageNotFound is returned by a Messenger when the published message no longer exists.
	ErrMessageNotFound = errors.New("published message not found")
	// ErrNoHandle is returned by a HandleStore when the subscription has no published card.
	ErrNoHandle = errors.New("no published card for subscription")
)

// Publisher is the transport capability the card controller depends on.
type Publisher interface {
	// Sync prepares the subscription state before the first publish. It is idempotent.
	Sync(ctx context.Context) error
	// Publish creates the card for the subscription, or edits the existing one.
	Publish(ctx context.Context, c card.Card) error
}

// Messenger creates, edits and deletes messages on the messaging surface.
type Messenger interface {
	Create(ctx context.Context, c card.Card) (string, error)
	Edit(ctx context.Context, messageID string, c card.Card) error
	Exists(ctx context.Context, messageID string) (bool, error)
	Delete(ctx context.Context, messageID string) error
}

// HandleStore persists the subscription → published message mapping.
type HandleStore interface {
	Load(ctx context.Context, subscription string) (string, error)
	Save(ctx context.Context, subscription, messageID string) error
	Delete(ctx context.Context, subscription string) error
}

// MessagePublisher keeps one published message in sync for a subscription.
// Calls are serialized so concurrent publishes never create a second message.
type MessagePublisher struct {
	messenger    Messenger
	handles      HandleStore
	subscription string
	logger       *slog.Logger

	mu sync.Mutex
}

func NewMessagePublisher(messenger Messenger, handles HandleStore, subscription string, logger *slog.Logger) (*MessagePublisher, error) {
	if messenger == nil {
		return nil, errors.New("publish messenger is nil")
	}
	if handles == nil {
		return nil, errors.New("publish handle store is nil")
	}
	subscription = strings.TrimSpace(subscription)
	if subscription == "" {
		return nil, errors.New("publish subscription is required")
	}
	return &MessagePublisher{
		messenger:    messenger,
		handles:      handles,
		subscription: subscription,
		logger:       logging.Component(logger, logging.ComponentPublisher, "subscription", subscription),
	}, nil
}

// Sync drops the stored handle when its message has been removed externally.
func (p *MessagePublisher) Sync(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.handles.Load(ctx, p.subscription)
	if errors.Is(err, ErrNoHandle) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load card handle: %w", err)
	}

	exists, err := p.messenger.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check published card %s: %w", id, err)
	}
	if exists {
		return nil
	}

	p.logger.Info("published card no longer exists; dropping handle", "message_id", id)
	if err := p.handles.Delete(ctx, p.subscription); err != nil {
		return fmt.Errorf("drop stale card handle: %w", err)
	}
	return nil
}

func (p *MessagePublisher) Publish(ctx context.Context, c card.Card) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.handles.Load(ctx, p.subscription)
	switch {
	case errors.Is(err, ErrNoHandle):
		return p.createLocked(ctx, c)
	case err != nil:
		return fmt.Errorf("load card handle: %w", err)
	}

	err = p.messenger.Edit(ctx, id, c)
	if errors.Is(err, ErrMessageNotFound) {
		p.logger.Info("published card was removed; creating a new one", "message_id", id)
		return p.createLocked(ctx, c)
	}
	if err != nil {
		return fmt.Errorf("edit published card %s: %w", id, err)
	}
	return nil
}

// Delete removes the published card and forgets its handle.
func (p *MessagePublisher) Delete(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.handles.Load(ctx, p.subscription)
	if err != nil {
		return err
	}
	if err := p.messenger.Delete(ctx, id); err != nil && !errors.Is(err, ErrMessageNotFound) {
		return fmt.Errorf("delete published card %s: %w", id, err)
	}
	if err := p.handles.Delete(ctx, p.subscription); err != nil {
		return fmt.Errorf("delete card handle: %w", err)
	}
	return nil
}

func (p *MessagePublisher) createLocked(ctx context.Context, c card.Card) error {
	id, err := p.messenger.Create(ctx, c)
	if err != nil {
		return fmt.Errorf("create published card: %w", err)
	}
	if err := p.handles.Save(ctx, p.subscription, id); err != nil {
		saveErr := fmt.Errorf("save card handle %s: %w", id, err)
		// A message without a saved handle would never be edited again.
		if delErr := p.messenger.Delete(ctx, id); delErr != nil && !errors.Is(delErr, ErrMessageNotFound) {
			p.logger.Error("could not remove card after handle save failed", "message_id", id, "err", delErr)
			return errors.Join(saveErr, fmt.Errorf("remove orphaned card %s: %w", id, delErr))
		}
		return saveErr
	}
	p.logger.Info("published card created", "message_id", id)
	return nil
}
