package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkovacek/traindiary/internal/telemetry/tracing"
	"github.com/mkovacek/traindiary/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrUserNotFound = errors.New("user not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, params CreateUserParams) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if params.Email == "" || params.Username == "" {
		return nil, errors.New("user email or username empty")
	}

	passwordHash, err := pkg.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Email:    params.Email,
		Username: params.Username,
	}
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO users (email, username, password_hash)
			VALUES ($1, $2, $3)
		RETURNING id, created_at;`,
		params.Email, params.Username, passwordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	return user, nil
}

func (r *Repo) GetByID(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getbyid")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", id))

	return r.getOne(
		ctx,
		`SELECT id, email, username, password_hash, created_at FROM users WHERE id = $1;`,
		id,
	)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getbyemail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getOne(
		ctx,
		`SELECT id, email, username, password_hash, created_at FROM users WHERE email = $1;`,
		email,
	)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getbyusername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getOne(
		ctx,
		`SELECT id, email, username, password_hash, created_at FROM users WHERE username = $1;`,
		username,
	)
}

// EnsureByEmail returns the user with the given email, creating it with
// a random credential when missing. Used by the static auth resolver.
func (r *Repo) EnsureByEmail(ctx context.Context, email, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.ensurebyemail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := r.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	randomPassword, err := pkg.GenerateRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}

	user, err = r.Add(ctx, CreateUserParams{
		Email:    email,
		Username: username,
		Password: randomPassword,
	})
	if err != nil {
		// a concurrent request may have created the user in the meantime
		if pkg.IsUniqueViolationError(err) {
			return r.GetByEmail(ctx, email)
		}
		return nil, err
	}

	return user, nil
}

func (r *Repo) getOne(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := r.db.
		QueryRow(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
