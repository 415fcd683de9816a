package repository

import (
	"context"

	"team_portal_service/internal/chat/domain"
	"team_portal_service/pkg/database"
	errprocess "team_portal_service/pkg/err"

	"github.com/go-redis/redis/v8"
)

const banKeyPrefix = "chat:ban:"

// BanRepository persists the current ban set keyed by user id. Lookups hit
// Redis on every call so a completed ban is observed by the next send.
type BanRepository interface {
	// Find returns the current record for userID, or nil when not banned.
	Find(ctx context.Context, userID string) (*domain.BanRecord, error)
	// Save stores rec, replacing any prior ban for the same user.
	Save(ctx context.Context, rec *domain.BanRecord) error
	// Delete lifts the ban for userID. Deleting an absent record is a no-op.
	Delete(ctx context.Context, userID string) error
}

type redisBanRepository struct {
	kv database.RedisRepository[domain.BanRecord]
}

// NewRedisBanRepository create a BanRepository on top of redis.
func NewRedisBanRepository(client *redis.Client) BanRepository {
	return &redisBanRepository{
		kv: database.NewRedisRepository[domain.BanRecord](client),
	}
}

func (r *redisBanRepository) Find(ctx context.Context, userID string) (*domain.BanRecord, error) {
	rec, found, err := r.kv.Get(ctx, banKeyPrefix+userID)
	if err != nil {
		return nil, errprocess.Storage("load ban record", err)
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

func (r *redisBanRepository) Save(ctx context.Context, rec *domain.BanRecord) error {
	// No TTL; a ban stands until explicitly lifted.
	if err := r.kv.Set(ctx, banKeyPrefix+rec.UserID, *rec, 0); err != nil {
		return errprocess.Storage("save ban record", err)
	}
	return nil
}

func (r *redisBanRepository) Delete(ctx context.Context, userID string) error {
	if err := r.kv.Del(ctx, banKeyPrefix+userID); err != nil {
		return errprocess.Storage("delete ban record", err)
	}
	return nil
}
