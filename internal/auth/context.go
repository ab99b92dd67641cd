package auth

import (
	"context"
	"errors"
)

// Identity is the verified subject attached to a request after the session
// check has passed. Role is the claim snapshot; downstream policy parses it
// into the closed enum.
type Identity struct {
	UserID int64
	Role   string
	TeamID int64
}

type ctxKey int

const (
	ctxIdentity ctxKey = iota
	ctxToken
)

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

func IdentityFrom(ctx context.Context) (Identity, error) {
	if id, ok := ctx.Value(ctxIdentity).(Identity); ok && id.UserID != 0 {
		return id, nil
	}
	return Identity{}, errors.New("identity not in context")
}

// WithToken keeps the raw presented credential available for logout, which
// must revoke the exact registry record it was authenticated with.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxToken, token)
}

func TokenFrom(ctx context.Context) (string, error) {
	if t, ok := ctx.Value(ctxToken).(string); ok && t != "" {
		return t, nil
	}
	return "", errors.New("token not in context")
}
