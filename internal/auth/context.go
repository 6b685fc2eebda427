package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxName
	ctxRole
)

// Identity is the authenticated staff member behind a request.
type Identity struct {
	UserID string
	Name   string
	Role   string
}

var ErrNoIdentity = errors.New("identity not in context")

func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, id.UserID)
	ctx = context.WithValue(ctx, ctxName, id.Name)
	ctx = context.WithValue(ctx, ctxRole, id.Role)
	return ctx
}

func FromContext(ctx context.Context) (Identity, error) {
	uid, err := UserID(ctx)
	if err != nil {
		return Identity{}, err
	}
	role, err := Role(ctx)
	if err != nil {
		return Identity{}, err
	}
	name, _ := ctx.Value(ctxName).(string)
	return Identity{UserID: uid, Name: name, Role: role}, nil
}

func UserID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUserID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func Role(ctx context.Context) (string, error) {
	v := ctx.Value(ctxRole)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}
