package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkovacek/traindiary/internal/users"
)

// TokenHeader is the request header carrying the session token.
const TokenHeader = "X-TRAINDIARY-TOKEN"

// ErrUnauthorized is returned when no user identity can be resolved
// from the given token / session context.
var ErrUnauthorized = errors.New("unauthorized")

// UserResolver resolves the current authenticated user from a session
// token. Implementations must return the same user for the same valid
// principal, and ErrUnauthorized when no valid session exists.
type UserResolver interface {
	ResolveUserID(ctx context.Context, token string) (int, error)
}

type staticUsersStore interface {
	EnsureByEmail(ctx context.Context, email, username string) (*users.User, error)
}

// StaticResolver resolves every request to a single fixed user,
// auto-provisioning the user row when absent. Development stand-in for
// real session management, injected behind the same UserResolver
// contract so nothing downstream depends on it.
type StaticResolver struct {
	users    staticUsersStore
	email    string
	username string
}

func NewStaticResolver(usersStore staticUsersStore, email, username string) *StaticResolver {
	return &StaticResolver{
		users:    usersStore,
		email:    email,
		username: username,
	}
}

func (r *StaticResolver) ResolveUserID(ctx context.Context, _ string) (int, error) {
	user, err := r.users.EnsureByEmail(ctx, r.email, r.username)
	if err != nil {
		return 0, fmt.Errorf("ensure static user: %w", err)
	}
	return user.ID, nil
}
