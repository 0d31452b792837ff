package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepoMock) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, page, limit)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

type RefreshTokenRepoMock struct{ mock.Mock }

func (m *RefreshTokenRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *RefreshTokenRepoMock) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) Revoke(ctx context.Context, tokenID string, revokedAt time.Time) error {
	args := m.Called(ctx, tokenID, revokedAt)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) DeleteByID(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

type AuthValidatorMock struct{ mock.Mock }

func (m *AuthValidatorMock) ValidateRegister(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateLogin(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateRefresh(ctx context.Context, refreshToken string, userAgent string) error {
	args := m.Called(ctx, refreshToken, userAgent)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateLogout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateForceLogout(ctx context.Context, targetUserID int64) error {
	args := m.Called(ctx, targetUserID)
	return args.Error(0)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return string(b)
}

func newAuthUC(userRepo *UserRepoMock, rtRepo *RefreshTokenRepoMock, v *AuthValidatorMock) *usecase.AuthUsecase {
	// JWTSecret は Login/Refresh で必須
	cfg := config.Config{JWTSecret: "test-secret"}
	return usecase.NewAuthUsecase(cfg, userRepo, rtRepo, v)
}

func TestAuthUsecase_Register_Success(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	email := "user@test.com"
	pass := "CorrectPW"

	v.On("ValidateRegister", mock.Anything, email, pass).Return(nil)

	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		// 保存されるユーザーが最低限正しい形かを見る
		return u.Email == email && u.IsActive && u.TokenVersion == 0 && u.PasswordHash != ""
	})).Return(nil)

	u := newAuthUC(userRepo, rtRepo, v)

	resp, err := u.Register(ctx, usecase.AuthRegisterRequest{Email: email, Password: pass})
	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, email, resp.User.Email)

	userRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	email := "user@test.com"
	pass := "CorrectPW"

	v.On("ValidateLogin", mock.Anything, email, pass).Return(nil)

	userRepo.On("FindByEmail", mock.Anything, email).Return(&model.User{
		ID:           1,
		Email:        email,
		PasswordHash: mustHash(t, pass),
		Role:         model.RoleUser,
		TokenVersion: 0,
		IsActive:     true,
	}, nil)

	// last_login 更新は失敗しても継続なので、呼ばれてもOK
	userRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	// refresh 保存が呼ばれる（中身はランダムなので型だけ確認）
	rtRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Return(nil)

	u := newAuthUC(userRepo, rtRepo, v)

	res, err := u.Login(ctx, usecase.AuthLoginRequest{Email: email, Password: pass}, "UserAgent", "127.0.0.1")
	assert.NoError(t, err)
	assert.NotNil(t, res)

	assert.NotEmpty(t, res.Body.Token.AccessToken)
	assert.Greater(t, res.Body.Token.ExpiresIn, 0)
	assert.Equal(t, 0, res.Body.Token.TokenVersion)

	assert.NotEmpty(t, res.RefreshTokenPlain)
	assert.NotEmpty(t, res.CsrfTokenPlain)

	userRepo.AssertExpectations(t)
	rtRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

// PW違い => 401 / refresh増えない
func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	email := "user@test.com"
	pass := "WrongPW"

	v.On("ValidateLogin", mock.Anything, email, pass).Return(nil)

	// DB上のhashは正しいパスワードのもの
	userRepo.On("FindByEmail", mock.Anything, email).Return(&model.User{
		ID:           1,
		Email:        email,
		PasswordHash: mustHash(t, "CorrectPW"),
		Role:         model.RoleUser,
		TokenVersion: 0,
		IsActive:     true,
	}, nil)

	u := newAuthUC(userRepo, rtRepo, v)

	res, err := u.Login(ctx, usecase.AuthLoginRequest{Email: email, Password: pass}, "UA", "")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	userRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

// email空 => validatorが ErrValidation を返す想定
func TestAuthUsecase_Login_ValidationError(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateLogin", mock.Anything, "", "xxx").Return(usecase.ErrValidation)

	u := newAuthUC(userRepo, rtRepo, v)

	res, err := u.Login(ctx, usecase.AuthLoginRequest{Email: "", Password: "xxx"}, "UA", "")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrValidation)

	// validatorで落ちるので repo は呼ばれない
	userRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)

	v.AssertExpectations(t)
}

// 停止ユーザー => forbidden
func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	email := "user@test.com"
	pass := "CorrectPW"

	v.On("ValidateLogin", mock.Anything, email, pass).Return(nil)

	userRepo.On("FindByEmail", mock.Anything, email).Return(&model.User{
		ID:           1,
		Email:        email,
		PasswordHash: mustHash(t, pass),
		Role:         model.RoleUser,
		TokenVersion: 0,
		IsActive:     false,
	}, nil)

	u := newAuthUC(userRepo, rtRepo, v)

	res, err := u.Login(ctx, usecase.AuthLoginRequest{Email: email, Password: pass}, "UA", "")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	userRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

// 正常（旧token used_at 更新 + 新token追加）
func TestAuthUsecase_Refresh_Success(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	refreshPlain := "refresh-plain"
	ua := "UA"
	userID := int64(1)

	v.On("ValidateRefresh", mock.Anything, refreshPlain, ua).Return(nil)

	rtRepo.On("FindByTokenHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.RefreshToken{
		ID:        "rt-old",
		UserID:    userID,
		UserAgent: ua,
		ExpiresAt: time.Now().Add(10 * time.Minute),
		UsedAt:    nil,
	}, nil)

	userRepo.On("FindByID", mock.Anything, userID).Return(&model.User{
		ID:           userID,
		Email:        "user@test.com",
		Role:         model.RoleUser,
		TokenVersion: 0,
		IsActive:     true,
	}, nil)

	rtRepo.On("MarkUsed", mock.Anything, "rt-old", mock.AnythingOfType("time.Time")).Return(nil)
	rtRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Return(nil)

	u := newAuthUC(userRepo, rtRepo, v)

	res, err := u.Refresh(ctx, refreshPlain, ua, "127.0.0.1")
	assert.NoError(t, err)
	assert.NotNil(t, res)

	assert.NotEmpty(t, res.Body.AccessToken)
	assert.Greater(t, res.Body.ExpiresIn, 0)
	assert.Equal(t, 0, res.Body.TokenVersion)

	assert.NotEmpty(t, res.RefreshTokenPlain)
	assert.NotEmpty(t, res.CsrfTokenPlain)

	userRepo.AssertExpectations(t)
	rtRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

// 期限切れ => DeleteByID + 401
func TestAuthUsecase_Refresh_Expired(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	refreshPlain := "expired"
	ua := "UA"

	v.On("ValidateRefresh", mock.Anything, refreshPlain, ua).Return(nil)

	rtRepo.On("FindByTokenHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.RefreshToken{
		ID:        "rt-exp",
		UserID:    1,
		UserAgent: ua,
		ExpiresAt: time.Now().Add(-1 * time.Minute),
		UsedAt:    nil,
	}, nil)

	rtRepo.On("DeleteByID", mock.Anything, "rt-exp").Return(nil)

	u := newAuthUC(userRepo, rtRepo, v)

	res, err := u.Refresh(ctx, refreshPlain, ua, "")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	rtRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

// 再利用（used_atあり）=> 全refresh削除 + incident
func TestAuthUsecase_Refresh_Replay(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	refreshPlain := "used"
	ua := "UA"
	userID := int64(1)
	usedAt := time.Now().Add(-1 * time.Minute)

	v.On("ValidateRefresh", mock.Anything, refreshPlain, ua).Return(nil)

	rtRepo.On("FindByTokenHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.RefreshToken{
		ID:        "rt-used",
		UserID:    userID,
		UserAgent: ua,
		ExpiresAt: time.Now().Add(10 * time.Minute),
		UsedAt:    &usedAt,
	}, nil)

	rtRepo.On("DeleteAllByUserID", mock.Anything, userID).Return(nil)

	u := newAuthUC(userRepo, rtRepo, v)

	res, err := u.Refresh(ctx, refreshPlain, ua, "")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrSecurityIncident)

	rtRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

// user_agent違い => 再認証扱いで全削除 + incident
func TestAuthUsecase_Refresh_UserAgentMismatch(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	refreshPlain := "ua-mismatch"
	ua := "UA-NEW"
	userID := int64(1)

	v.On("ValidateRefresh", mock.Anything, refreshPlain, ua).Return(nil)

	rtRepo.On("FindByTokenHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.RefreshToken{
		ID:        "rt-ua",
		UserID:    userID,
		UserAgent: "UA-OLD",
		ExpiresAt: time.Now().Add(10 * time.Minute),
		UsedAt:    nil,
	}, nil)

	rtRepo.On("DeleteAllByUserID", mock.Anything, userID).Return(nil)

	u := newAuthUC(userRepo, rtRepo, v)

	res, err := u.Refresh(ctx, refreshPlain, ua, "")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrSecurityIncident)

	rtRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

func TestAuthUsecase_Logout_Success(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	refreshPlain := "refresh-plain"

	v.On("ValidateLogout", mock.Anything).Return(nil)

	rtRepo.On("FindByTokenHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.RefreshToken{
		ID:     "rt-logout",
		UserID: 1,
	}, nil)

	rtRepo.On("DeleteByID", mock.Anything, "rt-logout").Return(nil)

	u := newAuthUC(userRepo, rtRepo, v)

	res, err := u.Logout(ctx, refreshPlain)
	assert.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, "logout success", res.Message)

	rtRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

// cookie削除など（token空）=> 401
func TestAuthUsecase_Logout_EmptyToken(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateLogout", mock.Anything).Return(nil)

	u := newAuthUC(userRepo, rtRepo, v)

	res, err := u.Logout(ctx, "")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	v.AssertExpectations(t)
}

func TestAuthUsecase_ForceLogout_Success(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	targetUserID := int64(10)

	v.On("ValidateForceLogout", mock.Anything, targetUserID).Return(nil)

	userRepo.On("IncrementTokenVersion", mock.Anything, targetUserID).Return(nil)
	rtRepo.On("DeleteAllByUserID", mock.Anything, targetUserID).Return(nil)

	// 更新後取得して new_token_version を返す
	userRepo.On("FindByID", mock.Anything, targetUserID).Return(&model.User{
		ID:           targetUserID,
		Email:        "user@test.com",
		Role:         model.RoleUser,
		TokenVersion: 5,
		IsActive:     true,
	}, nil)

	u := newAuthUC(userRepo, rtRepo, v)

	res, err := u.ForceLogout(ctx, targetUserID)
	assert.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, targetUserID, res.UserID)
	assert.Equal(t, 5, res.NewTokenVersion)

	userRepo.AssertExpectations(t)
	rtRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}
