package store

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sugarbeat/models"
)

// CreateUser registers an account with a bcrypt password hash.
func (s *Store) CreateUser(ctx context.Context, email, name, password string) (*models.User, error) {
	const op = "create user"
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid(op, "email and password are required")
	}

	var existing models.User
	err := s.conn(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		return nil, &Error{Op: op, Err: ErrConflict}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fail(op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fail(op, err)
	}

	user := &models.User{Email: email, Name: strings.TrimSpace(name), PasswordHash: string(hash)}
	if err := s.conn(ctx).Create(user).Error; err != nil {
		return nil, fail(op, err)
	}
	return user, nil
}

// FindUserByEmail looks an account up by its normalized email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.conn(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, fail("find user", err)
	}
	return &user, nil
}

// GetUser loads an account by id.
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, fail("get user", err)
	}
	return &user, nil
}

// Authenticate returns the user when password matches the stored hash.
// Unknown emails and wrong passwords both yield ErrNotFound.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &Error{Op: "authenticate", Err: ErrNotFound}
	}
	return user, nil
}
