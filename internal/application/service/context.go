package service

import (
	"context"

	"github.com/garyjia/voucher-flow/internal/domain/entity"
)

type contextKey string

const currentUserKey contextKey = "current_user"

// WithCurrentUser returns ctx carrying the authenticated user
func WithCurrentUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// CurrentUser returns the authenticated user carried by ctx
func CurrentUser(ctx context.Context) (*entity.User, error) {
	u, ok := ctx.Value(currentUserKey).(*entity.User)
	if !ok || u == nil {
		return nil, ErrUnauthenticated
	}
	return u, nil
}
