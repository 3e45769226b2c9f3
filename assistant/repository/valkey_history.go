package repository

import (
	"context"
	"encoding/json"
	"fmt"

	valkeylib "github.com/valkey-io/valkey-go"

	"github.com/brokerdesk/bd-wap/assistant/domain"
	"github.com/brokerdesk/bd-wap/infrastructure/valkey"
)

// ValkeyHistoryStore implements domain.HistoryStore backed by a Valkey list
// per contact. LPUSH + LTRIM keeps each list bounded at maxTurns; contact
// count is bounded by the key TTL refreshed on every append.
type ValkeyHistoryStore struct {
	client   *valkey.Client
	prefix   string
	maxTurns int
}

func NewValkeyHistoryStore(client *valkey.Client, maxTurns int) *ValkeyHistoryStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &ValkeyHistoryStore{
		client:   client,
		prefix:   client.Key("history") + ":",
		maxTurns: maxTurns,
	}
}

func (s *ValkeyHistoryStore) fullKey(contactID string) string {
	return s.prefix + contactID
}

func (s *ValkeyHistoryStore) inner() valkeylib.Client {
	return s.client.Inner()
}

func (s *ValkeyHistoryStore) Load(ctx context.Context, contactID string) ([]domain.ChatTurn, error) {
	cmd := s.inner().B().Lrange().Key(s.fullKey(contactID)).Start(0).Stop(int64(s.maxTurns - 1)).Build()

	items, err := s.inner().Do(ctx, cmd).AsStrSlice()
	if err != nil {
		if valkeylib.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	// Stored newest-first; return oldest-first for the provider.
	turns := make([]domain.ChatTurn, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		var turn domain.ChatTurn
		if err := json.Unmarshal([]byte(items[i]), &turn); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *ValkeyHistoryStore) Append(ctx context.Context, contactID string, turns ...domain.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}

	key := s.fullKey(contactID)
	encoded := make([]string, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("failed to marshal history turn: %w", err)
		}
		encoded = append(encoded, string(data))
	}

	push := s.inner().B().Lpush().Key(key).Element(encoded...).Build()
	if err := s.inner().Do(ctx, push).Error(); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	trim := s.inner().B().Ltrim().Key(key).Start(0).Stop(int64(s.maxTurns - 1)).Build()
	if err := s.inner().Do(ctx, trim).Error(); err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}

	expire := s.inner().B().Expire().Key(key).Seconds(7 * 24 * 60 * 60).Build()
	return s.inner().Do(ctx, expire).Error()
}

func (s *ValkeyHistoryStore) Clear(ctx context.Context, contactID string) error {
	cmd := s.inner().B().Del().Key(s.fullKey(contactID)).Build()
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
