package service_test

import (
	"context"
	"sync"

	"github.com/team-pig/backend/internal/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.BoardEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.BoardEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingScheduler struct {
	rooms []uint
	err   error
}

func (s *recordingScheduler) SchedulePurge(_ context.Context, roomID uint) error {
	s.rooms = append(s.rooms, roomID)
	return s.err
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }
