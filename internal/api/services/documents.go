package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/folio/internal/models"
	"github.com/rohits-web03/folio/internal/query"
	"github.com/rohits-web03/folio/internal/repositories"
	"go.uber.org/zap"
)

const exportLinkTTL = 15 * time.Minute

// SaveRequest holds the fields of a save payload the service acts on. The
// payload as a whole is what gets stored.
type SaveRequest struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Public     bool   `json:"public"`
}

// DocumentService scopes every read and write to what the caller may see.
// A uuid.Nil caller means nobody is signed in.
type DocumentService struct {
	docs    repositories.DocumentStore
	users   repositories.UserStore
	archive repositories.ContentArchive
	log     *zap.Logger
}

// NewDocumentService wires the service. archive may be nil.
func NewDocumentService(docs repositories.DocumentStore, users repositories.UserStore, archive repositories.ContentArchive, log *zap.Logger) *DocumentService {
	return &DocumentService{docs: docs, users: users, archive: archive, log: log}
}

func ownedBy(uid uuid.UUID) query.Predicate {
	return query.Eq{Field: query.FieldOwner, Value: uid}
}

func isPublic() query.Predicate {
	return query.Eq{Field: query.FieldPublic, Value: true}
}

func withIdentifier(identifier string) query.Predicate {
	return query.Eq{Field: query.FieldIdentifier, Value: identifier}
}

// readable is the predicate for what uid may read.
func readable(uid uuid.UUID) query.Predicate {
	if uid == uuid.Nil {
		return isPublic()
	}
	return query.Or{ownedBy(uid), isPublic()}
}

func (s *DocumentService) isAdmin(ctx context.Context, uid uuid.UUID) (bool, error) {
	user, err := s.users.GetByID(ctx, uid)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// List returns the content of every document uid may read, optionally
// narrowed to a category. override replaces the caller only when it is the
// caller or the caller is an admin; a regular user naming someone else, or
// an anonymous caller naming anyone, is listed as themselves.
func (s *DocumentService) List(ctx context.Context, caller, override uuid.UUID, category string) ([]json.RawMessage, error) {
	uid := caller
	if override != uuid.Nil && override != caller && caller != uuid.Nil {
		admin, err := s.isAdmin(ctx, caller)
		if err != nil {
			return nil, err
		}
		if admin {
			uid = override
		}
	}

	p := readable(uid)
	if category != "" {
		p = query.And{query.Eq{Field: query.FieldCategory, Value: category}, p}
	}

	docs, err := s.docs.Find(ctx, p)
	if err != nil {
		return nil, err
	}

	contents := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		contents = append(contents, json.RawMessage(d.Content))
	}
	return contents, nil
}

// find resolves identifier for caller. Identifiers are only unique per
// owner, so the caller's own document wins over a public one of the same
// name.
func (s *DocumentService) find(ctx context.Context, caller uuid.UUID, identifier string) (*models.Document, error) {
	if identifier == "" {
		return nil, ErrMissingIdentifier
	}

	if caller != uuid.Nil {
		doc, err := s.docs.FindOne(ctx, query.And{withIdentifier(identifier), ownedBy(caller)})
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}

	doc, err := s.docs.FindOne(ctx, query.And{withIdentifier(identifier), isPublic()})
	if errors.Is(err, repositories.ErrNotFound) {
		if caller == uuid.Nil {
			return nil, ErrUnauthenticated
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Get returns the content of one document the caller may read. Anonymous
// callers only ever see public documents.
func (s *DocumentService) Get(ctx context.Context, caller uuid.UUID, identifier string) (json.RawMessage, error) {
	doc, err := s.find(ctx, caller, identifier)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(doc.Content), nil
}

// Save creates or replaces the caller's document named by the payload's
// identifier, storing the whole payload as its content.
func (s *DocumentService) Save(ctx context.Context, caller uuid.UUID, payload []byte) error {
	if caller == uuid.Nil {
		return ErrUnauthenticated
	}

	var req SaveRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if req.Public {
		admin, err := s.isAdmin(ctx, caller)
		if err != nil {
			return err
		}
		if !admin {
			return ErrForbidden
		}
	}

	if req.Identifier == "" {
		return ErrMissingIdentifier
	}

	var content bytes.Buffer
	if err := json.Compact(&content, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	// A concurrent save of the same identifier can win the insert; the
	// second attempt then finds that record and updates it.
	err := s.upsert(ctx, caller, req, content.String())
	if errors.Is(err, repositories.ErrDuplicate) {
		err = s.upsert(ctx, caller, req, content.String())
	}
	if err != nil {
		return err
	}

	if s.archive != nil {
		key := repositories.ArchiveKey(caller, req.Identifier)
		if err := s.archive.Put(ctx, key, content.Bytes()); err != nil {
			s.log.Warn("Failed to archive document content", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (s *DocumentService) upsert(ctx context.Context, caller uuid.UUID, req SaveRequest, content string) error {
	doc, err := s.docs.FindOne(ctx, query.And{withIdentifier(req.Identifier), ownedBy(caller)})
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		doc = &models.Document{OwnerID: caller}
	case err != nil:
		return err
	}

	doc.Identifier = req.Identifier
	doc.Title = req.Title
	doc.Category = req.Category
	doc.Public = req.Public
	doc.Content = content
	return s.docs.Save(ctx, doc)
}

// Delete removes the caller's document. A document of that name held by
// someone else is reported as ErrNotOwner.
func (s *DocumentService) Delete(ctx context.Context, caller uuid.UUID, identifier string) error {
	if caller == uuid.Nil {
		return ErrUnauthenticated
	}
	if identifier == "" {
		return ErrMissingIdentifier
	}

	doc, err := s.docs.FindOne(ctx, query.And{withIdentifier(identifier), ownedBy(caller)})
	if errors.Is(err, repositories.ErrNotFound) {
		_, otherErr := s.docs.FindOne(ctx, withIdentifier(identifier))
		switch {
		case otherErr == nil:
			return ErrNotOwner
		case errors.Is(otherErr, repositories.ErrNotFound):
			return ErrNoSuchDocument
		default:
			return otherErr
		}
	}
	if err != nil {
		return err
	}

	if doc.OwnerID != caller {
		return ErrNotOwner
	}

	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		return err
	}

	if s.archive != nil {
		key := repositories.ArchiveKey(doc.OwnerID, doc.Identifier)
		if err := s.archive.Delete(ctx, key); err != nil {
			s.log.Warn("Failed to remove archived content", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

// Export returns a short-lived download link for a readable document's
// content, uploading it to the archive first if it is not there yet.
func (s *DocumentService) Export(ctx context.Context, caller uuid.UUID, identifier string) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}

	doc, err := s.find(ctx, caller, identifier)
	if err != nil {
		return "", err
	}

	key := repositories.ArchiveKey(doc.OwnerID, doc.Identifier)
	exists, err := s.archive.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := s.archive.Put(ctx, key, []byte(doc.Content)); err != nil {
			return "", err
		}
	}
	return s.archive.PresignGet(ctx, key, exportLinkTTL)
}
