package session

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks github.com/RahulGopathi/NewsChatbot-BE/internal/session Store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/contextutil"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "chat:session:"

// Message is a single turn in a conversation. Role is "user" or "ai".
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatHistory is the full stored state of one conversation session.
type ChatHistory struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists conversation sessions.
type Store interface {
	// Create initializes an empty session and returns its history.
	Create(ctx context.Context, sessionID string) (*ChatHistory, error)

	// Get returns the session history, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*ChatHistory, error)

	// Append adds a message to the session, creating the session if it does
	// not exist yet. Returns the stored message with id and timestamp set.
	Append(ctx context.Context, sessionID, role, content string) (*Message, error)

	// Clear deletes the session. Clearing an absent session is a no-op.
	Clear(ctx context.Context, sessionID string) error

	// ReplaceMessage overwrites the content and role of an existing message
	// across all sessions. Unknown message ids are silently ignored.
	ReplaceMessage(ctx context.Context, messageID, content, role string) error
}

// RedisStore keeps each session as a single JSON document under
// "chat:session:{id}". Writes are whole-document read-modify-write; two
// concurrent appends to the same session can lose one message, which is
// acceptable for a single-writer-per-session chat flow.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, sessionID string) (*ChatHistory, error) {
	now := time.Now().UTC()
	history := &ChatHistory{
		SessionID: sessionID,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*ChatHistory, error) {
	data, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", sessionID, err)
	}

	var history ChatHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	return &history, nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID, role, content string) (*Message, error) {
	history, err := s.Get(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		history, err = s.Create(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}

	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	history.Messages = append(history.Messages, msg)
	history.UpdatedAt = msg.Timestamp

	if err := s.save(ctx, history); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("clearing session %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) ReplaceMessage(ctx context.Context, messageID, content, role string) error {
	logger := contextutil.LoggerFromContext(ctx)

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("getting session key %s: %w", key, err)
		}

		var history ChatHistory
		if err := json.Unmarshal(data, &history); err != nil {
			logger.Warn("skipping undecodable session", "key", key, "error", err)
			continue
		}

		for i := range history.Messages {
			if history.Messages[i].ID != messageID {
				continue
			}
			history.Messages[i].Content = content
			history.Messages[i].Role = role
			history.UpdatedAt = time.Now().UTC()
			return s.save(ctx, &history)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning sessions: %w", err)
	}
	return nil
}

func (s *RedisStore) save(ctx context.Context, history *ChatHistory) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", history.SessionID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+history.SessionID, data, 0).Err(); err != nil {
		return fmt.Errorf("saving session %s: %w", history.SessionID, err)
	}
	return nil
}
