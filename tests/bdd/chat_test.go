package bdd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"team_portal_service/internal/chat/app"
	"team_portal_service/internal/chat/domain"
	errprocess "team_portal_service/pkg/err"
	"team_portal_service/pkg/logger"

	"github.com/cucumber/godog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFeatures(t *testing.T) {
	logger.SetNewNop()

	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Paths:  []string{"./featureFiles"},
			Format: "pretty",
			Output: os.Stdout,
		},
	}

	if suite.Run() != 0 {
		t.Fail()
	}
}

// InitializeScenario binds the Gherkin steps to the step functions below.
func InitializeScenario(s *godog.ScenarioContext) {
	s.Step(`^the chat room allows (\d+) messages per minute$`, theChatRoomAllowsMessagesPerMinute)
	s.Step(`^the chat history limit is (\d+)$`, theChatHistoryLimitIs)
	s.Step(`^"([^"]*)" is a member$`, isAMember)
	s.Step(`^"([^"]*)" sends "([^"]*)"$`, sends)
	s.Step(`^"([^"]*)" sends (\d+) messages$`, sendsMessages)
	s.Step(`^the message is accepted$`, theMessageIsAccepted)
	s.Step(`^the latest broadcast message says "([^"]*)"$`, theLatestBroadcastMessageSays)
	s.Step(`^"([^"]*)" sees (\d+) messages in the snapshot$`, seesMessagesInTheSnapshot)
	s.Step(`^the last snapshot message says "([^"]*)"$`, theLastSnapshotMessageSays)
	s.Step(`^the send is rejected as rate limited$`, theSendIsRejectedAsRateLimited)
	s.Step(`^the send is rejected as invalid$`, theSendIsRejectedAsInvalid)
	s.Step(`^the send is rejected as forbidden with reason "([^"]*)"$`, theSendIsRejectedAsForbiddenWithReason)
	s.Step(`^"([^"]*)" is banned for "([^"]*)"$`, isBannedFor)
	s.Step(`^"([^"]*)" is unbanned$`, isUnbanned)
}

// memoryMessageRepository keeps the history in a slice, newest last.
type memoryMessageRepository struct {
	messages []domain.ChatMessage
}

func (r *memoryMessageRepository) Append(_ context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	stored := *msg
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = time.Now().UTC()
	r.messages = append(r.messages, stored)
	return &stored, nil
}

func (r *memoryMessageRepository) Recent(_ context.Context, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		return []domain.ChatMessage{}, nil
	}
	start := len(r.messages) - limit
	if start < 0 {
		start = 0
	}
	out := make([]domain.ChatMessage, len(r.messages)-start)
	copy(out, r.messages[start:])
	return out, nil
}

type memoryBanRepository struct {
	bans map[string]domain.BanRecord
}

func (r *memoryBanRepository) Find(_ context.Context, userID string) (*domain.BanRecord, error) {
	rec, ok := r.bans[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memoryBanRepository) Save(_ context.Context, rec *domain.BanRecord) error {
	r.bans[rec.UserID] = *rec
	return nil
}

func (r *memoryBanRepository) Delete(_ context.Context, userID string) error {
	delete(r.bans, userID)
	return nil
}

// Scenario state. Each Background rebuilds the whole room.
var (
	msgRepo  *memoryMessageRepository
	banRepo  *memoryBanRepository
	registry *app.BanRegistry
	chatUC   *app.ChatUseCase
	watcher  *app.Connection
	members  map[string]domain.User
	limits   domain.Limits
	lastMsg  *domain.ChatMessage
	lastErr  error
)

func buildRoom() {
	msgRepo = &memoryMessageRepository{}
	banRepo = &memoryBanRepository{bans: map[string]domain.BanRecord{}}

	hub := app.NewHub()
	limiter := app.NewSlidingWindowLimiter(limits.RateLimitPerMinute, time.Minute)
	registry = app.NewBanRegistry(banRepo, hub)
	chatUC = app.NewChatUseCase(msgRepo, limiter, registry, hub, limits)
	watcher = hub.Subscribe("watcher")

	lastMsg = nil
	lastErr = nil
}

func theChatRoomAllowsMessagesPerMinute(rate int) error {
	limits = domain.DefaultLimits()
	limits.RateLimitPerMinute = rate
	members = map[string]domain.User{}
	buildRoom()
	return nil
}

func theChatHistoryLimitIs(limit int) error {
	limits.HistoryLimit = limit
	buildRoom()
	return nil
}

func isAMember(name string) error {
	members[name] = domain.User{ID: "user-" + name, Name: name, Role: "User"}
	return nil
}

func sends(name, content string) error {
	user, ok := members[name]
	if !ok {
		return fmt.Errorf("unknown member %q", name)
	}
	lastMsg, lastErr = chatUC.Send(context.Background(), user, content)
	return nil
}

func sendsMessages(name string, count int) error {
	for i := 0; i < count; i++ {
		if err := sends(name, fmt.Sprintf("message %d", i+1)); err != nil {
			return err
		}
		if lastErr != nil {
			return fmt.Errorf("send %d rejected: %v", i+1, lastErr)
		}
	}
	return nil
}

func theMessageIsAccepted() error {
	if lastErr != nil {
		return fmt.Errorf("send rejected: %v", lastErr)
	}
	if lastMsg == nil {
		return errors.New("no message stored")
	}
	return nil
}

func theLatestBroadcastMessageSays(expected string) error {
	var latest *domain.ChatMessage
	for {
		select {
		case ev := <-watcher.Events():
			if ev.Type == domain.EventTypeMessage {
				latest = ev.Message
			}
		default:
			if latest == nil {
				return errors.New("no message event broadcast")
			}
			if latest.Content != expected {
				return fmt.Errorf("expected broadcast %q, got %q", expected, latest.Content)
			}
			return nil
		}
	}
}

func seesMessagesInTheSnapshot(name string, count int) error {
	user, ok := members[name]
	if !ok {
		return fmt.Errorf("unknown member %q", name)
	}
	snap, err := chatUC.Snapshot(context.Background(), user)
	if err != nil {
		return err
	}
	if len(snap.Messages) != count {
		return fmt.Errorf("expected %d snapshot messages, got %d", count, len(snap.Messages))
	}
	return nil
}

func theLastSnapshotMessageSays(expected string) error {
	snap, err := chatUC.Snapshot(context.Background(), domain.User{ID: "user-observer"})
	if err != nil {
		return err
	}
	if len(snap.Messages) == 0 {
		return errors.New("snapshot history is empty")
	}
	got := snap.Messages[len(snap.Messages)-1].Content
	if got != expected {
		return fmt.Errorf("expected last message %q, got %q", expected, got)
	}
	return nil
}

func theSendIsRejectedAsRateLimited() error {
	if errprocess.KindOf(lastErr) != errprocess.KindRateLimited {
		return fmt.Errorf("expected rate limited rejection, got %v", lastErr)
	}
	return nil
}

func theSendIsRejectedAsInvalid() error {
	if errprocess.KindOf(lastErr) != errprocess.KindInvalid {
		return fmt.Errorf("expected invalid rejection, got %v", lastErr)
	}
	return nil
}

func theSendIsRejectedAsForbiddenWithReason(reason string) error {
	if errprocess.KindOf(lastErr) != errprocess.KindForbidden {
		return fmt.Errorf("expected forbidden rejection, got %v", lastErr)
	}
	if got := errprocess.ReasonOf(lastErr); got != reason {
		return fmt.Errorf("expected reason %q, got %q", reason, got)
	}
	return nil
}

func isBannedFor(name, reason string) error {
	user, ok := members[name]
	if !ok {
		return fmt.Errorf("unknown member %q", name)
	}
	return registry.Ban(context.Background(), user.ID, reason)
}

func isUnbanned(name string) error {
	user, ok := members[name]
	if !ok {
		return fmt.Errorf("unknown member %q", name)
	}
	return registry.Unban(context.Background(), user.ID)
}
