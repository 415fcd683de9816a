package app

import (
	"context"
	"time"

	"team_portal_service/internal/chat/domain"
	"team_portal_service/internal/chat/repository"
)

// BanRegistry owns current ban state. Every mutation also notifies connected
// clients through the hub, so an open stream learns about its own ban without
// polling. Ban/Unban are invoked by the moderation endpoints, never by chat
// participants.
type BanRegistry struct {
	repo repository.BanRepository
	hub  *Hub
	now  func() time.Time
}

// NewBanRegistry create a BanRegistry publishing changes to hub.
func NewBanRegistry(repo repository.BanRepository, hub *Hub) *BanRegistry {
	return &BanRegistry{
		repo: repo,
		hub:  hub,
		now:  time.Now,
	}
}

// IsBanned returns the current ban record for userID, or nil.
func (b *BanRegistry) IsBanned(ctx context.Context, userID string) (*domain.BanRecord, error) {
	return b.repo.Find(ctx, userID)
}

// Ban records userID as banned, replacing any prior record, then broadcasts
// the change. A send evaluated after Ban returns observes the ban.
func (b *BanRegistry) Ban(ctx context.Context, userID, reason string) error {
	rec := &domain.BanRecord{
		UserID:   userID,
		Reason:   reason,
		BannedAt: b.now().UTC(),
	}
	if err := b.repo.Save(ctx, rec); err != nil {
		return err
	}
	b.hub.Publish(domain.NewBanEvent(userID, reason))
	return nil
}

// Unban removes the ban record for userID, then broadcasts the change.
func (b *BanRegistry) Unban(ctx context.Context, userID string) error {
	if err := b.repo.Delete(ctx, userID); err != nil {
		return err
	}
	b.hub.Publish(domain.NewUnbanEvent(userID))
	return nil
}
