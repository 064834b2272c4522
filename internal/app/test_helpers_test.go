package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/nudge/internal/core/schedule"
	"github.com/example/nudge/internal/core/target"
	"github.com/example/nudge/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockTaskRepository implements secondary.TaskRepository for testing.
type mockTaskRepository struct {
	tasks     map[string]*secondary.TaskRecord
	createErr error
	getErr    error
	listErr   error
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{tasks: make(map[string]*secondary.TaskRecord)}
}

func (m *mockTaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if task, ok := m.tasks[id]; ok {
		return task, nil
	}
	return nil, secondary.ErrTaskNotFound
}

func (m *mockTaskRepository) Ping(ctx context.Context) error {
	return nil
}

func (m *mockTaskRepository) List(ctx context.Context) ([]*secondary.TaskRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.TaskRecord
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out, nil
}

// postedMessage records one PostMessage call.
type postedMessage struct {
	channelID string
	text      string
}

// mockChatGateway implements secondary.ChatGateway for testing.
type mockChatGateway struct {
	posted       []postedMessage
	postErrFor   map[string]error // channelID -> error
	reactions    []secondary.Reaction
	reactionsErr error
	permalink    string
	permalinkErr error
	openErrFor   map[string]error // recipientID -> error
}

func newMockChatGateway() *mockChatGateway {
	return &mockChatGateway{
		postErrFor: make(map[string]error),
		openErrFor: make(map[string]error),
		permalink:  "https://chat.example.com/p/1",
	}
}

func (m *mockChatGateway) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	if err := m.postErrFor[channelID]; err != nil {
		return "", err
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, text: text})
	return fmt.Sprintf("msg-%d", len(m.posted)), nil
}

func (m *mockChatGateway) GetReactions(ctx context.Context, channelID, messageID string) ([]secondary.Reaction, error) {
	if m.reactionsErr != nil {
		return nil, m.reactionsErr
	}
	return m.reactions, nil
}

func (m *mockChatGateway) OpenDirectConversation(ctx context.Context, recipientID string) (string, error) {
	if err := m.openErrFor[recipientID]; err != nil {
		return "", err
	}
	return "dm-" + recipientID, nil
}

func (m *mockChatGateway) GetPermalink(ctx context.Context, channelID, messageID string) (string, error) {
	if m.permalinkErr != nil {
		return "", m.permalinkErr
	}
	return m.permalink, nil
}

// postsTo returns the messages posted to one channel.
func (m *mockChatGateway) postsTo(channelID string) []postedMessage {
	var out []postedMessage
	for _, p := range m.posted {
		if p.channelID == channelID {
			out = append(out, p)
		}
	}
	return out
}

// mockScheduler implements secondary.TriggerScheduler for testing.
type mockScheduler struct {
	upserts []secondary.TriggerDefinition
	failAt  int // fail the Nth upsert (1-based); 0 never fails
	err     error
}

func (m *mockScheduler) Upsert(ctx context.Context, def secondary.TriggerDefinition) error {
	if m.failAt > 0 && len(m.upserts)+1 == m.failAt {
		return m.err
	}
	m.upserts = append(m.upserts, def)
	return nil
}

func (m *mockScheduler) byLabelSuffix(suffix string) (secondary.TriggerDefinition, bool) {
	for _, def := range m.upserts {
		if len(def.Name) >= len(suffix) && def.Name[len(def.Name)-len(suffix):] == suffix {
			return def, true
		}
	}
	return secondary.TriggerDefinition{}, false
}

// ============================================================================
// Shared fixtures
// ============================================================================

func testSettings(t *testing.T) Settings {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	return Settings{
		Location:        loc,
		ChannelID:       "C123",
		CompletionEmoji: "white_check_mark",
		Directory: target.Directory{
			"shao":  "U-SHAO",
			"maria": "U-MARIA",
		},
		Schedule: schedule.Config{
			Location:          loc,
			ReminderHour:      19,
			BusinessHourStart: 8,
			FinalCheckOffset:  time.Hour,
			FastWindow:        24 * time.Hour,
			FastInterval:      5 * time.Minute,
		},
		ExpiryDays: 30,
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
