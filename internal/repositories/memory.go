package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/folio/internal/models"
	"github.com/rohits-web03/folio/internal/query"
)

// MemoryStore keeps everything in process. It enforces the same
// (identifier, owner) uniqueness the database indexes do.
type MemoryStore struct {
	users     *memoryUsers
	documents *memoryDocuments
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     &memoryUsers{rows: map[uuid.UUID]models.User{}},
		documents: &memoryDocuments{rows: map[uuid.UUID]models.Document{}},
	}
}

func (s *MemoryStore) Users() UserStore                { return s.users }
func (s *MemoryStore) Documents() DocumentStore        { return s.documents }
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

type memoryDocuments struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]models.Document
}

func (s *memoryDocuments) Find(ctx context.Context, p query.Predicate) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]models.Document, 0)
	for _, d := range s.rows {
		if query.Match(p, &d) {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

func (s *memoryDocuments) FindOne(ctx context.Context, p query.Predicate) (*models.Document, error) {
	docs, err := s.Find(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

func (s *memoryDocuments) Save(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, d := range s.rows {
		if id != doc.ID && d.OwnerID == doc.OwnerID && d.Identifier == doc.Identifier {
			return ErrDuplicate
		}
	}

	now := time.Now()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	s.rows[doc.ID] = *doc
	return nil
}

func (s *memoryDocuments) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

type memoryUsers struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]models.User
}

func (s *memoryUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *memoryUsers) FindOne(ctx context.Context, p query.Predicate) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.User
	for _, u := range s.rows {
		if !query.Match(p, &u) {
			continue
		}
		if found == nil || u.CreatedAt.Before(found.CreatedAt) {
			match := u
			found = &match
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *memoryUsers) Save(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	s.rows[user.ID] = *user
	return nil
}
