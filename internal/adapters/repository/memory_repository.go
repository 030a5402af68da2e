package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

var (
	_ domain.HabitRepository      = (*InMemoryHabitRepository)(nil)
	_ domain.CompletionRepository = (*InMemoryCompletionRepository)(nil)
)

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	// deleting a habit cascades to its completions, like the FK does
	completions *InMemoryCompletionRepository

	mu sync.RWMutex
}

func NewInMemoryHabitRepository(completions *InMemoryCompletionRepository) *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store:       make(map[string]*domain.Habit),
		completions: completions,
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *habit
	r.store[habit.ID] = &copied
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	copied := *habit
	return &copied, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID {
			copied := *h
			habits = append(habits, &copied)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.store, id)
	if r.completions != nil {
		r.completions.deleteHabit(id)
	}
	return nil
}

type InMemoryCompletionRepository struct {
	store map[string]*domain.Completion

	mu sync.RWMutex
}

func NewInMemoryCompletionRepository() *InMemoryCompletionRepository {
	return &InMemoryCompletionRepository{
		store: make(map[string]*domain.Completion),
	}
}

func (r *InMemoryCompletionRepository) Create(ctx context.Context, c *domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	copied := *c
	r.store[c.ID] = &copied
	return nil
}

func (r *InMemoryCompletionRepository) DeleteByDate(ctx context.Context, habitID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, c := range r.store {
		if c.HabitID == habitID && c.CompletionDate == date {
			delete(r.store, id)
			removed++
		}
	}
	if removed == 0 {
		return domain.ErrCompletionNotFound
	}
	return nil
}

func (r *InMemoryCompletionRepository) ListDates(ctx context.Context, habitID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dates := []string{}
	for _, c := range r.store {
		if c.HabitID == habitID {
			dates = append(dates, c.CompletionDate)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func (r *InMemoryCompletionRepository) ListDatesByUserID(ctx context.Context, userID string) (map[string][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	grouped := make(map[string][]string)
	for _, c := range r.store {
		if c.UserID == userID {
			grouped[c.HabitID] = append(grouped[c.HabitID], c.CompletionDate)
		}
	}
	for _, dates := range grouped {
		sort.Strings(dates)
	}
	return grouped, nil
}

func (r *InMemoryCompletionRepository) HabitsCompletedOn(ctx context.Context, date string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	ids := []string{}
	for _, c := range r.store {
		if c.CompletionDate == date && !seen[c.HabitID] {
			seen[c.HabitID] = true
			ids = append(ids, c.HabitID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *InMemoryCompletionRepository) deleteHabit(habitID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.store {
		if c.HabitID == habitID {
			delete(r.store, id)
		}
	}
}
