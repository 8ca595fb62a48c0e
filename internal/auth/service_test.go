package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mkovacek/traindiary/internal/users"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	testUsername = "testuser"
	testPassword = "testpass"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func testUsersStore(t *testing.T) (*users.User, credentialsStore) {
	t.Helper()

	usersRepo := users.NewMockUsersRepo()
	user, err := usersRepo.Add(context.Background(), users.CreateUserParams{
		Email:    "testuser@traindiary.local",
		Username: testUsername,
		Password: testPassword,
	})
	require.NoError(t, err)
	return user, usersRepo
}

func TestService_Login(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	user, usersRepo := testUsersStore(t)

	authService := NewService(usersRepo, time.Hour, rdb)
	require.NotNil(t, authService)
	assert.Equal(t, time.Hour, authService.ttl)

	testToken := "test_token"
	authService.RandStringFunc = func(s int) (string, error) {
		return testToken, nil
	}

	now := time.Now()
	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectSet(sessionKey, sessionValue(user.ID, now), 0).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, testToken).SetVal(1)

	token, err := authService.Login(context.Background(), Credentials{
		Username: testUsername,
		Password: testPassword,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)

	// wrong password
	token, err = authService.Login(context.Background(), Credentials{
		Username: testUsername,
		Password: "invalid_pass",
	}, now)
	assert.ErrorIs(t, err, ErrWrongCredentials)
	assert.Empty(t, token)

	// unknown user does not leak existence
	token, err = authService.Login(context.Background(), Credentials{
		Username: "who-is-this",
		Password: testPassword,
	}, now)
	assert.ErrorIs(t, err, ErrWrongCredentials)
	assert.Empty(t, token)
}

func TestService_ResolveUserID(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	user, usersRepo := testUsersStore(t)
	authService := NewService(usersRepo, time.Hour, rdb)

	now := time.Now()
	testToken := "test_token"
	sessionKey := sessionKeyPrefix + testToken

	mock.ExpectGet(sessionKey).SetVal(sessionValue(user.ID, now))
	userID, err := authService.ResolveUserID(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// expired session
	then := now.Add(-2 * time.Hour)
	mock.ExpectGet(sessionKey).SetVal(sessionValue(user.ID, then))
	userID, err = authService.ResolveUserID(context.Background(), testToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, userID)

	// missing token
	userID, err = authService.ResolveUserID(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, userID)
}

func TestService_Logout(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	_, usersRepo := testUsersStore(t)
	authService := NewService(usersRepo, time.Hour, rdb)

	testToken := "test_token"
	sessionKey := sessionKeyPrefix + testToken

	mock.ExpectGet(sessionKey).SetVal(sessionValue(1, time.Now()))
	mock.ExpectDel(sessionKey).SetVal(1)
	mock.ExpectSRem(tokensSetKey, testToken).SetVal(1)
	require.NoError(t, authService.Logout(context.Background(), testToken))

	// unknown token
	mock.ExpectGet(sessionKey).RedisNil()
	assert.ErrorIs(t, authService.Logout(context.Background(), testToken), ErrUnauthorized)
}

func TestService_ScanAndClean(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	_, usersRepo := testUsersStore(t)
	authService := NewService(usersRepo, time.Hour, rdb)

	now := time.Now()
	then := now.Add(-2 * time.Hour)

	t1, t2 := "token1", "token2"
	mock.ExpectSMembers(tokensSetKey).SetVal([]string{t1, t2})
	mock.ExpectGet(sessionKeyPrefix + t1).SetVal(sessionValue(1, then))
	// t1 is expired, expect removal
	mock.ExpectDel(sessionKeyPrefix + t1).SetVal(1)
	mock.ExpectSRem(tokensSetKey, t1).SetVal(1)
	mock.ExpectGet(sessionKeyPrefix + t2).SetVal(sessionValue(1, now))

	authService.ScanAndClean(context.Background())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParseSessionValue(t *testing.T) {
	now := time.Now()
	userID, createdAt, err := parseSessionValue(sessionValue(42, now))
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
	assert.Equal(t, now.Unix(), createdAt.Unix())

	_, _, err = parseSessionValue("garbage")
	require.Error(t, err)

	_, _, err = parseSessionValue(fmt.Sprintf("nan|%d", now.Unix()))
	require.Error(t, err)
}
