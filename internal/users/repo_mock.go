package users

import (
	"context"
	"sync"

	"github.com/mkovacek/traindiary/pkg"
)

type repoMock struct {
	mutex  sync.Mutex
	nextID int
	users  map[int]*User
}

func NewMockUsersRepo() *repoMock {
	return &repoMock{
		nextID: 1,
		users:  make(map[int]*User),
	}
}

func (r *repoMock) Add(_ context.Context, params CreateUserParams) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	passwordHash, err := pkg.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           r.nextID,
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: passwordHash,
	}
	r.users[user.ID] = user
	r.nextID++
	return user, nil
}

func (r *repoMock) GetByID(_ context.Context, id int) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *repoMock) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) EnsureByEmail(ctx context.Context, email, username string) (*User, error) {
	user, err := r.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	return r.Add(ctx, CreateUserParams{
		Email:    email,
		Username: username,
		Password: "mock-password",
	})
}
