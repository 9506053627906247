package models

import (
	"context"
)

type userContextKey struct{}

// SetUserContext returns a copy of ctx carrying the authenticated user
func SetUserContext(ctx context.Context, user *User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUserFromContext returns the authenticated user stored by SetUserContext, or nil
func GetUserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}

// GetUsernameFromContext extracts the username of the authenticated user.
// Returns empty string if user cannot be determined.
func GetUsernameFromContext(ctx context.Context) string {
	if user := GetUserFromContext(ctx); user != nil {
		return user.Username
	}
	return ""
}

// GetUserIDFromContext extracts the ID of the authenticated user
func GetUserIDFromContext(ctx context.Context) string {
	if user := GetUserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}
