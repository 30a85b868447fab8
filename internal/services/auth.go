package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"paper-system/internal/authz"
	"paper-system/internal/dto"
	"paper-system/internal/entities"
	"paper-system/internal/events"
	"paper-system/internal/repositories"
	"paper-system/pkg/config"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/service"
	"paper-system/pkg/utils"
)

type AuthServiceInterface interface {
	Authenticate(ctx context.Context, rawToken string) (*authz.Principal, error)
	Login(ctx context.Context, ip string, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Revoke(ctx context.Context, rawToken string) (bool, error)
	Me(ctx context.Context) (*entities.User, error)
	ChangePassword(ctx context.Context, payload dto.ChangePasswordDTO) error
	ResetPassword(ctx context.Context, userID uint64, payload dto.ResetPasswordDTO) error
	CheckUsername(ctx context.Context, username string) (*dto.UsernameCheckDTO, error)
}

type AuthService struct {
	*BaseService
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	logger     *zap.Logger
	cfg        *config.AuthConfig
	now        func() time.Time
}

func NewAuthService(
	base *BaseService,
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
	cfg *config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		BaseService: base,
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
		jwtService:  jwtService,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

func blacklistKey(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return "blacklist:" + hex.EncodeToString(sum[:])
}

func loginAttemptsKey(ip, username string) string {
	return fmt.Sprintf("login_attempts:%s:%s", ip, username)
}

func (s *AuthService) isRevoked(ctx context.Context, rawToken string) (bool, error) {
	revoked, err := s.cacheRepo.Exists(ctx, blacklistKey(rawToken))
	if err != nil {
		return false, fmt.Errorf("не удалось проверить отзыв токена: %w", err)
	}
	return revoked, nil
}

func (s *AuthService) activeUser(ctx context.Context, userID uint64) (*entities.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}
	return user, nil
}

func principalOf(user *entities.User) *authz.Principal {
	return &authz.Principal{
		ID:           user.ID,
		Username:     user.Username,
		Role:         authz.Role(user.Role),
		DepartmentID: user.DepartmentID,
	}
}

func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*authz.Principal, error) {
	claims, err := s.jwtService.ValidateToken(rawToken)
	if err != nil {
		return nil, err
	}
	if claims.IsRefresh() {
		return nil, apperrors.ErrTokenIsNotAccess
	}

	revoked, err := s.isRevoked(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	s.touchLastLogin(user.ID)
	return principalOf(user), nil
}

// touchLastLogin обновляет last_login не чаще раза в минуту на пользователя.
func (s *AuthService) touchLastLogin(userID uint64) {
	go func() {
		ctx, cancel := utils.Detached(backgroundTimeout)
		defer cancel()

		fresh, err := s.cacheRepo.SetNX(ctx, fmt.Sprintf("last_login_touch:%d", userID), 1, time.Minute)
		if err != nil || !fresh {
			return
		}
		if err := s.userRepo.TouchLastLogin(ctx, userID, s.now()); err != nil {
			s.logger.Warn("Не удалось обновить last_login", zap.Uint64("userID", userID), zap.Error(err))
		}
	}()
}

// registerAttempt учитывает попытку входа и сообщает, превышен ли лимит.
// При недоступном Redis вход не блокируется.
func (s *AuthService) registerAttempt(ctx context.Context, key string) bool {
	attempts, err := s.cacheRepo.Incr(ctx, key)
	if err != nil {
		s.logger.Warn("Счётчик попыток входа недоступен", zap.Error(err))
		return false
	}
	s.armAttemptsTTL(ctx, key, attempts)
	return attempts > int64(s.cfg.MaxLoginAttempts)
}

// armAttemptsTTL задаёт срок новому счётчику и восстанавливает срок у счётчика, оставшегося без него.
func (s *AuthService) armAttemptsTTL(ctx context.Context, key string, attempts int64) {
	if attempts > 1 {
		ttl, err := s.cacheRepo.TTL(ctx, key)
		if err != nil || ttl >= 0 {
			return
		}
	}
	if _, err := s.cacheRepo.Expire(ctx, key, s.cfg.LockoutDuration); err != nil {
		s.logger.Warn("Не удалось задать срок счётчика попыток", zap.Error(err))
	}
}

func (s *AuthService) issue(user *entities.User) (*dto.AuthResponseDTO, error) {
	accessToken, refreshToken, err := s.jwtService.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать токены: %w", err)
	}
	return &dto.AuthResponseDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.GetAccessTokenTTL().Seconds()),
		User:         user,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, ip string, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	logger := s.logger.With(zap.String("username", payload.Username), zap.String("ip", ip))

	key := loginAttemptsKey(ip, payload.Username)
	if s.registerAttempt(ctx, key) {
		logger.Warn("Превышен лимит попыток входа")
		return nil, apperrors.ErrTooManyAttempts
	}

	user, err := s.userRepo.FindByUsername(ctx, payload.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("Вход: пользователь не найден")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive() {
		logger.Info("Вход: учётная запись отключена")
		return nil, apperrors.ErrAccountDisabled
	}
	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		logger.Info("Вход: неверный пароль")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.cacheRepo.Del(ctx, key); err != nil {
		logger.Warn("Не удалось сбросить счётчик попыток", zap.Error(err))
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.touchLastLogin(user.ID)

	ctx = utils.ContextWithPrincipal(ctx, principalOf(user))
	s.Record(ctx, events.ActionLogin, events.ResourceAuth, &user.ID, "Вход в систему")
	logger.Info("Пользователь вошёл в систему", zap.Uint64("userID", user.ID))
	return resp, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefresh() {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	revoked, err := s.isRevoked(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	// старый refresh-токен одноразовый: из параллельных обменов проходит тот, чей SETNX первый
	created, err := s.Revoke(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, apperrors.ErrTokenRevoked
	}
	return s.issue(user)
}

// Revoke заносит токен в чёрный список до конца его срока жизни.
// Истёкший или уже отозванный токен возвращает false без ошибки.
func (s *AuthService) Revoke(ctx context.Context, rawToken string) (bool, error) {
	claims, err := s.jwtService.ValidateToken(rawToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			return false, nil
		}
		return false, err
	}
	ttl := claims.Remaining(s.now())
	if ttl <= 0 {
		return false, nil
	}
	created, err := s.cacheRepo.SetNX(ctx, blacklistKey(rawToken), 1, ttl)
	if err != nil {
		return false, fmt.Errorf("не удалось отозвать токен: %w", err)
	}
	return created, nil
}

func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if _, err := s.Revoke(ctx, accessToken); err != nil {
		return err
	}
	if refreshToken != "" {
		if _, err := s.Revoke(ctx, refreshToken); err != nil {
			s.logger.Warn("Не удалось отозвать refresh-токен при выходе", zap.Error(err))
		}
	}
	s.Record(ctx, events.ActionLogout, events.ResourceAuth, nil, "Выход из системы")
	return nil
}

func (s *AuthService) Me(ctx context.Context) (*entities.User, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, principal.ID)
}

func (s *AuthService) ChangePassword(ctx context.Context, payload dto.ChangePasswordDTO) error {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, principal.ID)
	if err != nil {
		return err
	}
	if err := utils.ComparePasswords(user.Password, payload.OldPassword); err != nil {
		return apperrors.NewValidationError("Неверный текущий пароль",
			map[string]interface{}{"oldPassword": "Неверный текущий пароль"})
	}
	hash, err := utils.HashPassword(payload.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.Record(ctx, events.ActionUpdate, events.ResourceUser, &user.ID, "Смена пароля")
	return nil
}

// ResetPassword - администратор задаёт пароль любому, остальные только себе.
func (s *AuthService) ResetPassword(ctx context.Context, userID uint64, payload dto.ResetPasswordDTO) error {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return err
	}
	if !principal.IsAdmin() && principal.ID != userID {
		return apperrors.ErrForbidden
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return err
	}
	hash, err := utils.HashPassword(payload.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.Record(ctx, events.ActionUpdate, events.ResourceUser, &userID, "Сброс пароля")
	return nil
}

func (s *AuthService) CheckUsername(ctx context.Context, username string) (*dto.UsernameCheckDTO, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.NewBadRequestError("Имя пользователя не указано")
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &dto.UsernameCheckDTO{Username: username, Available: !exists}, nil
}
