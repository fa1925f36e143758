package service

import (
	"Atheneum/internal/api/dto"
	"Atheneum/internal/model"
	"Atheneum/internal/pkg/security"
	"Atheneum/internal/repository"
	"context"
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newUserFixture(t *testing.T) UserService {
	t.Helper()
	security.Init("test-secret", 1)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	return NewUserService(repository.NewUserRepository(db))
}

func testPubkey(t *testing.T) string {
	t.Helper()
	pk, err := nostr.GetPublicKey(nostr.GeneratePrivateKey())
	require.NoError(t, err)
	return pk
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newUserFixture(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, &dto.RegisterDTO{
		Username: "alice", Password: "correct-horse", Pubkey: testPubkey(t),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)

	token, err = svc.Login(ctx, &dto.LoginDTO{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterDTO{
		Username: "alice", Password: "correct-horse", Pubkey: testPubkey(t),
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.RegisterDTO{
		Username: "alice", Password: "correct-horse", Pubkey: testPubkey(t),
	})
	assert.ErrorIs(t, err, ErrUserExist)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newUserFixture(t)

	_, err := svc.Login(context.Background(), &dto.LoginDTO{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterDTO{
		Username: "alice", Password: "correct-horse", Pubkey: testPubkey(t),
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginDTO{Username: "alice", Password: strings.Repeat("x", 12)})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)
}
