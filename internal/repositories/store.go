package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rohits-web03/folio/internal/config"
	"github.com/rohits-web03/folio/internal/models"
	"github.com/rohits-web03/folio/internal/query"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type DocumentStore interface {
	// Find returns every document matching p, oldest first.
	Find(ctx context.Context, p query.Predicate) ([]models.Document, error)
	// FindOne returns the first match or ErrNotFound.
	FindOne(ctx context.Context, p query.Predicate) (*models.Document, error)
	// Save inserts doc when its ID is nil (assigning one) and replaces it otherwise.
	Save(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindOne(ctx context.Context, p query.Predicate) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// Store bundles the collections the API works with.
type Store interface {
	Users() UserStore
	Documents() DocumentStore
	Close(ctx context.Context) error
}

// Open connects the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		s, err := ConnectDatabase(cfg.DB_URL, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mongo":
		s, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		log.Info("Successfully connected to mongodb", zap.String("database", cfg.MongoDatabase))
		return s, nil
	case "memory":
		log.Warn("Using in-memory store, data is lost on restart")
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("repositories.Open: unknown store driver %q", cfg.Driver)
}
