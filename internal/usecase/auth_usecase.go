package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-service/config"
	"clinic-service/internal/delivery/dto"
	"clinic-service/internal/domain/entity"
	"clinic-service/internal/domain/repository"
	"clinic-service/internal/service"
	"clinic-service/pkg/jwt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrAdminNotFound      = errors.New("admin not found")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, accessTokenID, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentAdmin(ctx context.Context, adminID uint) (*dto.AdminResponse, error)
	EnsureAdmin(ctx context.Context) error
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	adminRepo    repository.AdminRepository
	jwtService   *jwt.JWTService
	redisClient  *redis.Client
	auditService service.AuditService
	adminCfg     config.AdminConfig
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	adminRepo repository.AdminRepository,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
	auditService service.AuditService,
	adminCfg config.AdminConfig,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		adminRepo:    adminRepo,
		jwtService:   jwtService,
		redisClient:  redisClient,
		auditService: auditService,
		adminCfg:     adminCfg,
	}
}

// EnsureAdmin seeds the back-office account from configuration on startup.
// When the account exists but the configured password changed, the stored
// hash is rotated and every live session for that account is revoked.
func (u *authUsecase) EnsureAdmin(ctx context.Context) error {
	if u.adminCfg.Username == "" || u.adminCfg.Password == "" {
		return errors.New("admin credentials are not configured")
	}

	admin, err := u.adminRepo.FindByUsername(u.db.WithContext(ctx), u.adminCfg.Username)
	if err != nil {
		u.log.Warnf("Failed to find admin account: %+v", err)
		return err
	}

	if admin == nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.adminCfg.Password), bcrypt.DefaultCost)
		if err != nil {
			u.log.Warnf("Failed to hash admin password: %+v", err)
			return err
		}

		admin = &entity.Admin{
			Username: u.adminCfg.Username,
			Password: string(hashedPassword),
		}
		if err := u.adminRepo.Create(u.db.WithContext(ctx), admin); err != nil {
			// Another instance may have seeded the same account first
			if isDuplicateKeyError(err, "uni_admins_username") {
				return nil
			}
			u.log.Warnf("Failed to seed admin account: %+v", err)
			return err
		}

		u.log.Infof("Admin account seeded: username=%s", admin.Username)
		return nil
	}

	// Rotate the hash if the configured password no longer matches
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(u.adminCfg.Password)); err == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.adminCfg.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash admin password: %+v", err)
		return err
	}

	admin.Password = string(hashedPassword)
	if err := u.db.WithContext(ctx).Save(admin).Error; err != nil {
		u.log.Warnf("Failed to rotate admin password: %+v", err)
		return err
	}

	if err := u.revokeAllAdminTokens(ctx, admin.ID); err != nil {
		u.log.Warnf("Failed to revoke admin sessions after password rotation: %+v", err)
	}

	u.log.Infof("Admin password rotated: username=%s", admin.Username)
	return nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	admin, err := u.adminRepo.FindByUsername(u.db.WithContext(ctx), req.Username)
	if err != nil {
		u.log.Warnf("Failed to find admin by username: %+v", err)
		return nil, err
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Generate tokens
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(admin.ID, entity.RoleAdmin)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(admin.ID, entity.RoleAdmin)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	// Store tokens in Redis
	accessKey := fmt.Sprintf("access_token:%d:%s", admin.ID, accessTokenID)
	refreshKey := fmt.Sprintf("refresh_token:%d:%s", admin.ID, refreshTokenID)

	if err := u.redisClient.Set(ctx, accessKey, "valid", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, refreshKey, "valid", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	// Audit log - admin login (best effort, outside any transaction)
	if err := u.auditService.Log(ctx, u.db.WithContext(ctx), entity.RoleAdmin, &admin.ID, entity.AuditActionAdminLogin, entity.JSON{"username": admin.Username}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, accessTokenID, refreshTokenID string) error {
	// Delete tokens from Redis (pattern matching to find and delete)
	accessPattern := fmt.Sprintf("access_token:*:%s", accessTokenID)
	refreshPattern := fmt.Sprintf("refresh_token:*:%s", refreshTokenID)

	// Delete access token
	accessKeys, err := u.redisClient.Keys(ctx, accessPattern).Result()
	if err != nil {
		u.log.Warnf("Failed to get access token keys: %+v", err)
		return err
	}
	if len(accessKeys) > 0 {
		if err := u.redisClient.Del(ctx, accessKeys...).Err(); err != nil {
			u.log.Warnf("Failed to delete access token: %+v", err)
			return err
		}
	}

	// Delete refresh token
	refreshKeys, err := u.redisClient.Keys(ctx, refreshPattern).Result()
	if err != nil {
		u.log.Warnf("Failed to get refresh token keys: %+v", err)
		return err
	}
	if len(refreshKeys) > 0 {
		if err := u.redisClient.Del(ctx, refreshKeys...).Err(); err != nil {
			u.log.Warnf("Failed to delete refresh token: %+v", err)
			return err
		}
	}

	// Audit log - admin logout
	actorRole, actorID := actorFromContext(ctx)
	if err := u.auditService.Log(ctx, u.db.WithContext(ctx), actorRole, actorID, entity.AuditActionAdminLogout, nil); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	// Validate refresh token
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Only admin sessions are tracked here; doctor and patient tokens are
	// refreshed by the identity provider that minted them
	if claims.Role != entity.RoleAdmin {
		return nil, ErrInvalidToken
	}

	// Check if refresh token exists in Redis
	refreshKey := fmt.Sprintf("refresh_token:%d:%s", claims.UserID, claims.TokenID)
	exists, err := u.redisClient.Exists(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if exists == 0 {
		return nil, ErrTokenRevoked
	}

	// Delete old refresh token
	if err := u.redisClient.Del(ctx, refreshKey).Err(); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	// Generate new tokens
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(claims.UserID, claims.Role)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(claims.UserID, claims.Role)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	// Store new tokens in Redis
	accessKeyNew := fmt.Sprintf("access_token:%d:%s", claims.UserID, accessTokenID)
	refreshKeyNew := fmt.Sprintf("refresh_token:%d:%s", claims.UserID, refreshTokenID)

	if err := u.redisClient.Set(ctx, accessKeyNew, "valid", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, refreshKeyNew, "valid", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) GetCurrentAdmin(ctx context.Context, adminID uint) (*dto.AdminResponse, error) {
	admin, err := u.adminRepo.FindByID(u.db.WithContext(ctx), adminID)
	if err != nil {
		u.log.Warnf("Failed to find admin by ID: %+v", err)
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}

	return &dto.AdminResponse{
		ID:       admin.ID,
		Username: admin.Username,
	}, nil
}

// revokeAllAdminTokens deletes every stored token for the account
func (u *authUsecase) revokeAllAdminTokens(ctx context.Context, adminID uint) error {
	for _, pattern := range []string{
		fmt.Sprintf("access_token:%d:*", adminID),
		fmt.Sprintf("refresh_token:%d:*", adminID),
	} {
		keys, err := u.redisClient.Keys(ctx, pattern).Result()
		if err != nil {
			u.log.Warnf("Failed to get token keys: %+v", err)
			return err
		}
		if len(keys) > 0 {
			if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
				u.log.Warnf("Failed to delete tokens: %+v", err)
				return err
			}
		}
	}
	return nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		if pgErr.Code == "23503" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isExclusionViolation checks if the error is a PostgreSQL exclusion constraint
// violation containing the specified constraint name
func isExclusionViolation(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23P01 = exclusion_violation
		if pgErr.Code == "23P01" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
