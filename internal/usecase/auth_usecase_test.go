package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-service/config"
	"clinic-service/internal/delivery/dto"
	"clinic-service/internal/domain/entity"
	"clinic-service/pkg/jwt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Redis-backed paths (token storage, logout, refresh) need a live
// client and are exercised against a running stack; the tests here
// cover credential checks and account seeding, which never touch Redis.

func newAuthFixture(t *testing.T, adminRepo *MockAdminRepository, cfg config.AdminConfig) AuthUsecase {
	t.Helper()

	db, _ := newTestDB(t)
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	})
	return NewAuthUsecase(db, newTestLogger(), adminRepo, jwtService, nil, &MockAuditService{}, cfg)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestEnsureAdminSeedsAccount(t *testing.T) {
	var created *entity.Admin
	adminRepo := &MockAdminRepository{
		FindByUsernameFunc: func(db *gorm.DB, username string) (*entity.Admin, error) {
			return nil, nil
		},
		CreateFunc: func(db *gorm.DB, admin *entity.Admin) error {
			created = admin
			return nil
		},
	}
	uc := newAuthFixture(t, adminRepo, config.AdminConfig{Username: "admin", Password: "s3cret"})

	err := uc.EnsureAdmin(context.Background())
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "admin", created.Username)
	// The stored credential is a bcrypt hash, never the plain password
	assert.NotEqual(t, "s3cret", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("s3cret")))
}

func TestEnsureAdminIdempotent(t *testing.T) {
	t.Run("existing account with matching password", func(t *testing.T) {
		adminRepo := &MockAdminRepository{
			FindByUsernameFunc: func(db *gorm.DB, username string) (*entity.Admin, error) {
				return &entity.Admin{ID: 1, Username: "admin", Password: hashPassword(t, "s3cret")}, nil
			},
		}
		uc := newAuthFixture(t, adminRepo, config.AdminConfig{Username: "admin", Password: "s3cret"})

		err := uc.EnsureAdmin(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(0), adminRepo.CreateCalls)
	})

	t.Run("concurrent seed loses the insert race", func(t *testing.T) {
		adminRepo := &MockAdminRepository{
			FindByUsernameFunc: func(db *gorm.DB, username string) (*entity.Admin, error) {
				return nil, nil
			},
			CreateFunc: func(db *gorm.DB, admin *entity.Admin) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: "uni_admins_username"}
			},
		}
		uc := newAuthFixture(t, adminRepo, config.AdminConfig{Username: "admin", Password: "s3cret"})

		// Another instance created the account first; that is not an error
		assert.NoError(t, uc.EnsureAdmin(context.Background()))
	})
}

func TestEnsureAdminRequiresConfig(t *testing.T) {
	uc := newAuthFixture(t, &MockAdminRepository{}, config.AdminConfig{})
	assert.Error(t, uc.EnsureAdmin(context.Background()))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	adminRepo := &MockAdminRepository{
		FindByUsernameFunc: func(db *gorm.DB, username string) (*entity.Admin, error) {
			if username == "admin" {
				return &entity.Admin{ID: 1, Username: "admin", Password: hashPassword(t, "s3cret")}, nil
			}
			return nil, nil
		},
	}
	uc := newAuthFixture(t, adminRepo, config.AdminConfig{Username: "admin", Password: "s3cret"})

	t.Run("unknown username", func(t *testing.T) {
		_, err := uc.Login(context.Background(), &dto.LoginRequest{Username: "nobody", Password: "s3cret"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := uc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGetCurrentAdmin(t *testing.T) {
	adminRepo := &MockAdminRepository{
		FindByIDFunc: func(db *gorm.DB, id uint) (*entity.Admin, error) {
			if id == 1 {
				return &entity.Admin{ID: 1, Username: "admin"}, nil
			}
			return nil, nil
		},
	}
	uc := newAuthFixture(t, adminRepo, config.AdminConfig{Username: "admin", Password: "s3cret"})

	resp, err := uc.GetCurrentAdmin(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Username)

	t.Run("not found", func(t *testing.T) {
		_, err := uc.GetCurrentAdmin(context.Background(), 42)
		assert.ErrorIs(t, err, ErrAdminNotFound)
	})
}
