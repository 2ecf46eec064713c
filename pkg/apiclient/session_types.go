package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/noah-isme/learner-hub-api/pkg/optimistic"
)

// Reorder directions.
const (
	DirectionUp   = "UP"
	DirectionDown = "DOWN"
)

// ErrPartialMove reports a drag the server applied only partway and could not undo.
// The list holds the server's ordering when it is returned.
var ErrPartialMove = errors.New("session type move partly applied")

// SessionTypes wraps the session type endpoints.
type SessionTypes struct {
	c *Client
}

// SessionTypeInput creates or replaces a session type.
type SessionTypeInput struct {
	Name        string `json:"name"`
	IsOffTheJob bool   `json:"is_off_the_job"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type reorderInput struct {
	ID        string `json:"id"`
	Direction string `json:"direction"`
}

// List returns session types in display order.
func (s *SessionTypes) List(ctx context.Context) ([]SessionType, error) {
	var out []SessionType
	err := s.c.cachedGet(ctx, TagSessionTypes, "sessionType/list", nil, &out)
	return out, err
}

// Create appends a session type.
func (s *SessionTypes) Create(ctx context.Context, in SessionTypeInput) (*SessionType, error) {
	var out SessionType
	if _, err := s.c.do(ctx, request{method: http.MethodPost, path: "sessionType/create", body: in}, &out); err != nil {
		return nil, err
	}
	s.c.Invalidate(TagSessionTypes)
	return &out, nil
}

// Update replaces a session type.
func (s *SessionTypes) Update(ctx context.Context, id string, in SessionTypeInput) (*SessionType, error) {
	var out SessionType
	if _, err := s.c.do(ctx, request{method: http.MethodPut, path: "sessionType/update/" + Path(id), body: in}, &out); err != nil {
		return nil, err
	}
	s.c.Invalidate(TagSessionTypes)
	return &out, nil
}

// Delete removes a session type.
func (s *SessionTypes) Delete(ctx context.Context, id string) error {
	if _, err := s.c.do(ctx, request{method: http.MethodDelete, path: "sessionType/delete/" + Path(id)}, nil); err != nil {
		return err
	}
	s.c.Invalidate(TagSessionTypes)
	return nil
}

// Reorder moves a session type one rank in direction.
func (s *SessionTypes) Reorder(ctx context.Context, id, direction string) ([]SessionType, error) {
	var out []SessionType
	_, err := s.c.do(ctx, request{method: http.MethodPatch, path: "sessionType/reorder", body: reorderInput{ID: id, Direction: direction}}, &out)
	s.c.Invalidate(TagSessionTypes)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SessionTypeList is a locally held ordering that supports optimistic drag and drop.
type SessionTypeList struct {
	svc *SessionTypes

	mu    sync.Mutex
	items []*SessionType
}

// NewList loads the current ordering.
func (s *SessionTypes) NewList(ctx context.Context) (*SessionTypeList, error) {
	l := &SessionTypeList{svc: s}
	if err := l.Refresh(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Items returns the held elements in order. The pointers are shared with the list.
func (l *SessionTypeList) Items() []*SessionType {
	l.mu.Lock()
	defer l.mu.Unlock()
	return optimistic.CloneSlice(l.items)
}

// Refresh replaces the ordering with the server's.
func (l *SessionTypeList) Refresh(ctx context.Context) error {
	items, err := l.svc.List(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make([]*SessionType, 0, len(items))
	for i := range items {
		l.items = append(l.items, &items[i])
	}
	return nil
}

// Move relocates the item at oldIndex to newIndex. The list changes immediately; the server
// applies one rank per call, so |newIndex-oldIndex| reorder calls are made. When a call fails the
// steps already applied are walked back and the previous list is restored. If walking back fails
// too, the list is reloaded from the server and the error wraps ErrPartialMove.
// On success the server's ordering is reloaded.
func (l *SessionTypeList) Move(ctx context.Context, oldIndex, newIndex int) error {
	moved, err := l.move(ctx, oldIndex, newIndex)
	if errors.Is(err, ErrPartialMove) {
		if rerr := l.Refresh(ctx); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	if err != nil || !moved {
		return err
	}
	return l.Refresh(ctx)
}

func (l *SessionTypeList) move(ctx context.Context, oldIndex, newIndex int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if oldIndex < 0 || oldIndex >= len(l.items) || newIndex < 0 || newIndex >= len(l.items) {
		return false, fmt.Errorf("move %d -> %d out of range for %d items", oldIndex, newIndex, len(l.items))
	}
	if oldIndex == newIndex {
		return false, nil
	}
	target := l.items[oldIndex]
	direction, back, steps := DirectionDown, DirectionUp, newIndex-oldIndex
	if newIndex < oldIndex {
		direction, back, steps = DirectionUp, DirectionDown, oldIndex-newIndex
	}

	err := optimistic.Run(ctx, &l.items, optimistic.CloneSlice[*SessionType], func(cur []*SessionType) []*SessionType {
		return optimistic.Move(cur, oldIndex, newIndex)
	}, func(ctx context.Context, _ []*SessionType) error {
		for done := 0; done < steps; done++ {
			if _, err := l.svc.Reorder(ctx, target.ID, direction); err != nil {
				if undoErr := l.stepBack(ctx, target.ID, back, done); undoErr != nil {
					return fmt.Errorf("%w (%d of %d steps kept): %w", ErrPartialMove, done, steps, err)
				}
				return err
			}
		}
		return nil
	})
	return err == nil, err
}

// stepBack sends n reorder calls in direction to cancel steps the server already applied.
func (l *SessionTypeList) stepBack(ctx context.Context, id, direction string, n int) error {
	for i := 0; i < n; i++ {
		if _, err := l.svc.Reorder(ctx, id, direction); err != nil {
			return err
		}
	}
	return nil
}
