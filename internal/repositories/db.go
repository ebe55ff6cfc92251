package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/folio/internal/models"
	"github.com/rohits-web03/folio/internal/query"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormStore struct {
	db        *gorm.DB
	users     *gormUsers
	documents *gormDocuments
}

// ConnectDatabase opens Postgres through gorm and migrates the schema.
func ConnectDatabase(dsn string, log *zap.Logger) (*GormStore, error) {
	gLogger := logger.New(
		zap.NewStdLog(log),
		logger.Config{
			SlowThreshold: 1500 * time.Millisecond,
			LogLevel:      logger.Warn,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gLogger, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Document{},
	)
	if err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	log.Info("Successfully connected to database")
	return NewGormStore(db), nil
}

// NewGormStore wraps an already opened connection without migrating.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:        db,
		users:     &gormUsers{db: db},
		documents: &gormDocuments{db: db},
	}
}

func (s *GormStore) Users() UserStore         { return s.users }
func (s *GormStore) Documents() DocumentStore { return s.documents }

func (s *GormStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func scope(db *gorm.DB, p query.Predicate) *gorm.DB {
	if p == nil {
		return db
	}
	where, args := query.SQL(p)
	return db.Where(where, args...)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

type gormDocuments struct {
	db *gorm.DB
}

func (s *gormDocuments) Find(ctx context.Context, p query.Predicate) ([]models.Document, error) {
	var docs []models.Document
	err := scope(s.db.WithContext(ctx), p).Order("created_at").Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *gormDocuments) FindOne(ctx context.Context, p query.Predicate) (*models.Document, error) {
	var doc models.Document
	if err := scope(s.db.WithContext(ctx), p).First(&doc).Error; err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

func (s *gormDocuments) Save(ctx context.Context, doc *models.Document) error {
	if doc.ID != uuid.Nil {
		return duplicate(s.db.WithContext(ctx).Save(doc).Error)
	}

	created, updated := doc.CreatedAt, doc.UpdatedAt
	doc.ID = uuid.New()
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		// leave the caller's struct as it was so a retry inserts afresh
		doc.ID, doc.CreatedAt, doc.UpdatedAt = uuid.Nil, created, updated
		return duplicate(err)
	}
	return nil
}

func (s *gormDocuments) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormUsers struct {
	db *gorm.DB
}

func (s *gormUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *gormUsers) FindOne(ctx context.Context, p query.Predicate) (*models.User, error) {
	var user models.User
	if err := scope(s.db.WithContext(ctx), p).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *gormUsers) Save(ctx context.Context, user *models.User) error {
	if user.ID != uuid.Nil {
		return duplicate(s.db.WithContext(ctx).Save(user).Error)
	}

	created, updated := user.CreatedAt, user.UpdatedAt
	user.ID = uuid.New()
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		user.ID, user.CreatedAt, user.UpdatedAt = uuid.Nil, created, updated
		return duplicate(err)
	}
	return nil
}
