package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ringwin/helpers"
	"ringwin/models"
	"ringwin/storage"
)

const sessionTTL = 24 * time.Hour

func defaultCurrency() string {
	if ccy := os.Getenv("GATEWAY_CURRENCY"); ccy != "" {
		return ccy
	}
	return "GBP"
}

func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || len(password) < 8 {
		return nil, fmt.Errorf("%w: username and a password of at least 8 characters are required", ErrValidation)
	}

	if _, err := s.store.UserByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username is taken", ErrValidation)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: helpers.HashPassword(password),
		Currency:     defaultCurrency(),
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*models.Session, *models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !user.IsActive || !helpers.VerifyPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session := models.Session{UserID: user.ID, ExpiresAt: time.Now().Add(sessionTTL)}
	if err := s.store.CreateSession(ctx, &session); err != nil {
		return nil, nil, err
	}
	return &session, user, nil
}

// Authenticate resolves a session id to its user for the auth middleware.
func (s *Service) Authenticate(ctx context.Context, sid string) (*models.User, error) {
	if sid == "" {
		return nil, storage.ErrNotFound
	}
	session, err := s.store.SessionBySID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, storage.ErrNotFound
	}
	user, err := s.store.User(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, storage.ErrNotFound
	}
	return user, nil
}
