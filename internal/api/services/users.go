package services

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rohits-web03/folio/internal/models"
	"github.com/rohits-web03/folio/internal/query"
	"github.com/rohits-web03/folio/internal/repositories"
)

const maxNameLength = 64

type UserService struct {
	users repositories.UserStore
}

func NewUserService(users repositories.UserStore) *UserService {
	return &UserService{users: users}
}

// LoginWithGoogle returns the user behind a Google profile, linking an
// existing account by email or creating one on first login.
func (s *UserService) LoginWithGoogle(ctx context.Context, profile GoogleUser) (*models.User, error) {
	user, err := s.users.FindOne(ctx, query.Eq{Field: query.FieldGoogleID, Value: profile.ID})
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	user = nil
	if profile.Email != "" {
		user, err = s.users.FindOne(ctx, query.Eq{Field: query.FieldEmail, Value: profile.Email})
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	if user == nil {
		user = &models.User{
			Name:     profile.Name,
			Email:    profile.Email,
			ImageURL: profile.Picture,
			AuthKey:  uuid.NewString(),
		}
	}

	user.GoogleID = profile.ID
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RotateKey replaces the user's API key.
func (s *UserService) RotateKey(ctx context.Context, user *models.User) error {
	user.AuthKey = uuid.NewString()
	return s.users.Save(ctx, user)
}

func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, name string, subscribed bool) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	user.Name = strings.TrimSpace(name)
	user.Subscribed = subscribed
	return s.users.Save(ctx, user)
}

// ValidName accepts 1 to 64 runes after trimming, without control characters.
func ValidName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || !utf8.ValidString(name) || utf8.RuneCountInString(name) > maxNameLength {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
