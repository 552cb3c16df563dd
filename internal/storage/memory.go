package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/email-builder/internal/apperr"
	"github.com/email-builder/internal/model"
	"github.com/google/uuid"
)

// MemoryUserStore is a process-local UserRepository replacement used with
// STORAGE_DRIVER=memory and in tests.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryUserStore) Create(_ context.Context, u *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return nil, fmt.Errorf("user %s: %w", u.Email, apperr.ErrConflict)
	}

	now := time.Now()
	user := *u
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	s.byID[user.ID] = &user
	s.byEmail[user.Email] = user.ID

	out := user
	return &out, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[email]
	if !exists {
		return nil, nil
	}
	out := *s.byID[id]
	return &out, nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.byID[id]
	if !exists {
		return nil, nil
	}
	out := *user
	return &out, nil
}

type memoryTemplate struct {
	tpl model.Template
	seq uint64
}

// MemoryTemplateStore mirrors TemplateRepository, including (id, owner)
// scoping and newest-first listing.
type MemoryTemplateStore struct {
	mu        sync.RWMutex
	seq       uint64
	templates map[string]*memoryTemplate
}

func NewMemoryTemplateStore() *MemoryTemplateStore {
	return &MemoryTemplateStore{templates: make(map[string]*memoryTemplate)}
}

func (s *MemoryTemplateStore) Create(_ context.Context, t *model.Template) (*model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	tpl := *t
	tpl.ID = uuid.NewString()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	s.seq++
	s.templates[tpl.ID] = &memoryTemplate{tpl: tpl, seq: s.seq}

	return &tpl, nil
}

func (s *MemoryTemplateStore) FindOwned(_ context.Context, id, userID string) (*model.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.templates[id]
	if !exists || entry.tpl.UserID != userID {
		return nil, nil
	}
	out := entry.tpl
	return &out, nil
}

func (s *MemoryTemplateStore) ListByOwner(_ context.Context, userID string) ([]model.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*memoryTemplate, 0)
	for _, entry := range s.templates {
		if entry.tpl.UserID == userID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].tpl.CreatedAt.Equal(entries[j].tpl.CreatedAt) {
			return entries[i].tpl.CreatedAt.After(entries[j].tpl.CreatedAt)
		}
		return entries[i].seq > entries[j].seq
	})

	tpls := make([]model.Template, 0, len(entries))
	for _, entry := range entries {
		tpls = append(tpls, entry.tpl)
	}
	return tpls, nil
}

func (s *MemoryTemplateStore) Update(_ context.Context, t *model.Template) (*model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.templates[t.ID]
	if !exists || entry.tpl.UserID != t.UserID {
		return nil, nil
	}
	entry.tpl.Name = t.Name
	entry.tpl.Config = t.Config
	entry.tpl.UpdatedAt = time.Now()

	out := entry.tpl
	return &out, nil
}

func (s *MemoryTemplateStore) Delete(_ context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.templates[id]
	if !exists || entry.tpl.UserID != userID {
		return false, nil
	}
	delete(s.templates, id)
	return true, nil
}
