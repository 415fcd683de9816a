package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"team_portal_service/internal/chat/domain"
	"team_portal_service/internal/chat/repository"
	errprocess "team_portal_service/pkg/err"
)

// ChatUseCase orchestrates one snapshot, send, or stream across the message
// store, rate limiter, ban registry and hub. It owns none of their state.
type ChatUseCase struct {
	msgRepo repository.MessageRepository
	limiter *SlidingWindowLimiter
	bans    *BanRegistry
	hub     *Hub
	limits  domain.Limits
}

// NewChatUseCase init the gateway use case.
func NewChatUseCase(
	msgRepo repository.MessageRepository,
	limiter *SlidingWindowLimiter,
	bans *BanRegistry,
	hub *Hub,
	limits domain.Limits,
) *ChatUseCase {
	return &ChatUseCase{
		msgRepo: msgRepo,
		limiter: limiter,
		bans:    bans,
		hub:     hub,
		limits:  limits,
	}
}

// Limits returns the room settings advertised to clients.
func (uc *ChatUseCase) Limits() domain.Limits {
	return uc.limits
}

// Snapshot returns the bounded initial state for user: recent history
// ascending, limits, and the caller's own ban status. A banned user can
// still observe the room, so Snapshot never rejects on ban.
func (uc *ChatUseCase) Snapshot(ctx context.Context, user domain.User) (*domain.Snapshot, error) {
	messages, err := uc.msgRepo.Recent(ctx, uc.limits.HistoryLimit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}

	snap := &domain.Snapshot{
		Messages: messages,
		Limits:   uc.limits,
	}

	rec, err := uc.bans.IsBanned(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		snap.Ban = &domain.BanStatus{Reason: rec.Reason}
	}
	return snap, nil
}

// Send validates and persists one message, then broadcasts it. Order:
// ban check, rate limit, content validation, append, publish. Validation
// rejections leave no trace in the store; once the append succeeds the
// message is durable even if broadcast were to lose it, so history stays
// correct and real-time delivery is merely best effort.
func (uc *ChatUseCase) Send(ctx context.Context, user domain.User, content string) (*domain.ChatMessage, error) {
	rec, err := uc.bans.IsBanned(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return nil, errprocess.Forbidden("banned from chat", rec.Reason)
	}

	if !uc.limiter.TryConsume(user.ID) {
		return nil, errprocess.RateLimited("rate limit exceeded, try again in a minute")
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, errprocess.Invalid("message is empty")
	}
	if utf8.RuneCountInString(trimmed) > uc.limits.MaxMessageLength {
		return nil, errprocess.Invalid("message exceeds maximum length")
	}

	stored, err := uc.msgRepo.Append(ctx, &domain.ChatMessage{
		UserID:   user.ID,
		UserName: user.Name,
		UserRole: user.Role,
		Content:  trimmed,
	})
	if err != nil {
		return nil, err
	}

	uc.hub.Publish(domain.NewMessageEvent(*stored))
	return stored, nil
}

// Announce persists and broadcasts a system-authored notice. System messages
// carry no author identity.
func (uc *ChatUseCase) Announce(ctx context.Context, content string) (*domain.ChatMessage, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, errprocess.Invalid("notice is empty")
	}

	stored, err := uc.msgRepo.Append(ctx, &domain.ChatMessage{
		Content:  trimmed,
		IsSystem: true,
	})
	if err != nil {
		return nil, err
	}

	uc.hub.Publish(domain.NewMessageEvent(*stored))
	return stored, nil
}

// OpenStream subscribes user to the live event feed. The caller must pair it
// with CloseStream when the transport goes away.
func (uc *ChatUseCase) OpenStream(user domain.User) *Connection {
	return uc.hub.Subscribe(user.ID)
}

// CloseStream releases conn. Idempotent.
func (uc *ChatUseCase) CloseStream(conn *Connection) {
	uc.hub.Unsubscribe(conn)
}
