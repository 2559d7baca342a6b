package user

import (
	"context"
	"errors"

	"github.com/obrakomarvelouss/gpower/internal/gateway"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrWeakPassword       = errors.New("password too short")
)

type Repository interface {
	GetByID(ctx context.Context, id string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	Create(ctx context.Context, a Account) (Account, error)
}

type GatewayRepository struct {
	gw gateway.Gateway
}

func NewGatewayRepository(gw gateway.Gateway) *GatewayRepository {
	return &GatewayRepository{gw: gw}
}

func (r *GatewayRepository) GetByID(ctx context.Context, id string) (Account, error) {
	return r.one(ctx, gateway.Eq("id", id))
}

func (r *GatewayRepository) GetByEmail(ctx context.Context, email string) (Account, error) {
	return r.one(ctx, gateway.Eq("email", email))
}

// Create maps a unique violation on email to ErrEmailExists.
func (r *GatewayRepository) Create(ctx context.Context, a Account) (Account, error) {
	row, err := r.gw.Insert(ctx, gateway.TableAccounts, gateway.Row{
		"email":         a.Email,
		"password_hash": a.PasswordHash,
		"full_name":     a.FullName,
	})
	if errors.Is(err, gateway.ErrConflict) {
		return Account{}, ErrEmailExists
	}
	if err != nil {
		return Account{}, err
	}
	var out Account
	if err := gateway.DecodeOne(row, &out); err != nil {
		return Account{}, err
	}
	return out, nil
}

func (r *GatewayRepository) one(ctx context.Context, f gateway.Filter) (Account, error) {
	rows, err := r.gw.Select(ctx, gateway.TableAccounts, gateway.Query{Filters: []gateway.Filter{f}, Limit: 1})
	if err != nil {
		return Account{}, err
	}
	if len(rows) == 0 {
		return Account{}, ErrNotFound
	}
	var a Account
	if err := gateway.DecodeOne(rows[0], &a); err != nil {
		return Account{}, err
	}
	return a, nil
}
