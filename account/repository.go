// Package account proxies sign-in, registration and profile calls to the
// backend. Credentials are never checked here.
package account

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"goflare.io/storefront/api"
	"goflare.io/storefront/models"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Login(ctx context.Context, input *models.LoginInput) (*models.Session, error)
	Register(ctx context.Context, input *models.RegisterInput) (*models.Session, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, input *models.ProfileInput) (*models.User, error)
	ListAddresses(ctx context.Context) ([]*models.Address, error)
	CreateAddress(ctx context.Context, input *models.AddressInput) (*models.Address, error)
	DeleteAddress(ctx context.Context, addressID int64) error
}

type repository struct {
	client *api.Client
	logger *zap.Logger
}

func NewRepository(client *api.Client, logger *zap.Logger) Repository {
	return &repository{
		client: client,
		logger: logger,
	}
}

func (r *repository) Login(ctx context.Context, input *models.LoginInput) (*models.Session, error) {
	var session models.Session
	if err := r.client.Post(ctx, "/auth/login", input, &session); err != nil {
		r.logger.Info("Login rejected", zap.String("email", input.Email), zap.Error(err))
		return nil, err
	}
	if session.AccessToken == "" || session.User.ID == "" {
		return nil, fmt.Errorf("backend returned an incomplete session for %s", input.Email)
	}

	r.logger.Info("User logged in", zap.String("user_id", session.User.ID))
	return &session, nil
}

func (r *repository) Register(ctx context.Context, input *models.RegisterInput) (*models.Session, error) {
	var session models.Session
	if err := r.client.Post(ctx, "/auth/register", input, &session); err != nil {
		r.logger.Info("Registration rejected", zap.String("email", input.Email), zap.Error(err))
		return nil, err
	}
	if session.AccessToken == "" || session.User.ID == "" {
		return nil, fmt.Errorf("backend returned an incomplete session for %s", input.Email)
	}

	r.logger.Info("User registered", zap.String("user_id", session.User.ID))
	return &session, nil
}

func (r *repository) Logout(ctx context.Context) error {
	return r.client.Post(ctx, "/auth/logout", nil, nil)
}

func (r *repository) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := r.client.Get(ctx, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdateProfile(ctx context.Context, input *models.ProfileInput) (*models.User, error) {
	var user models.User
	if err := r.client.Put(ctx, "/users/me", input, &user); err != nil {
		r.logger.Error("Failed to update profile", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *repository) ListAddresses(ctx context.Context) ([]*models.Address, error) {
	var addresses []*models.Address
	if err := r.client.Get(ctx, "/users/me/addresses", nil, &addresses); err != nil {
		return nil, err
	}
	if addresses == nil {
		addresses = []*models.Address{}
	}
	return addresses, nil
}

func (r *repository) CreateAddress(ctx context.Context, input *models.AddressInput) (*models.Address, error) {
	var address models.Address
	if err := r.client.Post(ctx, "/users/me/addresses", input, &address); err != nil {
		r.logger.Error("Failed to create address", zap.Error(err))
		return nil, err
	}
	return &address, nil
}

func (r *repository) DeleteAddress(ctx context.Context, addressID int64) error {
	if err := r.client.Delete(ctx, fmt.Sprintf("/users/me/addresses/%d", addressID), nil); err != nil {
		r.logger.Error("Failed to delete address", zap.Int64("address_id", addressID), zap.Error(err))
		return err
	}
	return nil
}
