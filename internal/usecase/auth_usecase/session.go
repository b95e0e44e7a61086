package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shophub/internal/domain/model"
	"shophub/internal/repository"
)

type RefreshOutput struct {
	Token JwtAccessToken `json:"token"`
}

type ForceLogoutOutput struct {
	UserID          int64 `json:"userId"`
	NewTokenVersion int   `json:"newTokenVersion"`
}

// refresh / logout / 強制ログアウト / me
type SessionUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	auditRepo  repository.AuditLogRepository
	validator  InputValidator
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewSessionUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	auditRepo repository.AuditLogRepository,
	validator InputValidator,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *SessionUsecase {
	return &SessionUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		auditRepo:  auditRepo,
		validator:  validator,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

// refresh tokenをローテーションしてaccess tokenを再発行
func (u *SessionUsecase) Refresh(ctx context.Context, plain string, userAgent string) (RefreshOutput, LoginSideEffect, error) {
	var out RefreshOutput
	var side LoginSideEffect

	if err := u.validator.ValidateRefresh(ctx, plain); err != nil {
		return out, side, err
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(plain))
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return out, side, ErrInvalidRefresh
	}
	if err != nil {
		return out, side, err
	}

	now := u.clock.Now()

	// 使用済みが来たら盗用とみなして全削除
	if rt.UsedAt != nil {
		if err := u.rtRepo.DeleteAllByUserID(ctx, rt.UserID); err != nil {
			return out, side, err
		}
		return out, side, ErrRefreshReuse
	}
	if !rt.IsUsable(now) {
		return out, side, ErrInvalidRefresh
	}

	user, err := u.userRepo.FindByID(ctx, rt.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return out, side, ErrInvalidRefresh
	}
	if err != nil {
		return out, side, err
	}
	if !user.IsActive {
		return out, side, ErrUserInactive
	}

	// 同時に2回使われた場合は片方だけ成功する
	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
			return out, side, ErrRefreshReuse
		}
		return out, side, err
	}

	newPlain, newRT, err := newRefreshToken(u.idGen, user.ID, userAgent, now.Add(u.refreshTTL))
	if err != nil {
		return out, side, err
	}
	if err := u.rtRepo.Create(ctx, newRT); err != nil {
		return out, side, err
	}

	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return out, side, err
	}

	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}
	side.PlainRefreshToken = newPlain
	side.RefreshExpiresAt = newRT.ExpiresAt
	return out, side, nil
}

// 何度呼ばれても成功（cookieが無い・既に失効でもOK）
func (u *SessionUsecase) Logout(ctx context.Context, plain string) error {
	if plain == "" {
		return nil
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(plain))
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := u.rtRepo.Revoke(ctx, rt.ID, u.clock.Now()); err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return err
	}
	return nil
}

type tokenVersionAudit struct {
	TokenVersion int `json:"tokenVersion"`
}

// token_versionを上げて発行済みaccess tokenを全て無効化する
func (u *SessionUsecase) ForceLogout(ctx context.Context, actorUserID int64, targetUserID int64) (ForceLogoutOutput, error) {
	if err := u.validator.ValidateForceLogout(ctx, targetUserID); err != nil {
		return ForceLogoutOutput{}, err
	}

	before, err := u.userRepo.FindByID(ctx, targetUserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ForceLogoutOutput{}, ErrUserNotFound
	}
	if err != nil {
		return ForceLogoutOutput{}, err
	}

	if err := u.userRepo.IncrementTokenVersion(ctx, targetUserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ForceLogoutOutput{}, ErrUserNotFound
		}
		return ForceLogoutOutput{}, err
	}
	if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
		return ForceLogoutOutput{}, err
	}

	after, err := u.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return ForceLogoutOutput{}, err
	}

	beforeJSON, _ := json.Marshal(tokenVersionAudit{TokenVersion: before.TokenVersion})
	afterJSON, _ := json.Marshal(tokenVersionAudit{TokenVersion: after.TokenVersion})
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionForceLogout,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return ForceLogoutOutput{}, err
	}

	return ForceLogoutOutput{
		UserID:          after.ID,
		NewTokenVersion: after.TokenVersion,
	}, nil
}

func (u *SessionUsecase) Me(ctx context.Context, userID int64) (model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if !user.IsActive {
		return model.User{}, ErrUserInactive
	}
	return *user, nil
}
