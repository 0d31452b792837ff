package validator

import (
	"context"
	"strings"

	"app/internal/repository"
	"app/internal/usecase"

	v10 "github.com/go-playground/validator/v10"
)

type authValidator struct {
	users    repository.UserRepository
	validate *v10.Validate
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{
		users:    users,
		validate: v10.New(),
	}
}

type registerInput struct {
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=8,max=128"`
}

type loginInput struct {
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required"`
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	if err := v.validate.Struct(registerInput{Email: email, Password: password}); err != nil {
		return usecase.ErrValidation
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return usecase.ErrConflict
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	if err := v.validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		return usecase.ErrValidation
	}

	return nil
}

// refresh 入力を検証
func (v *authValidator) ValidateRefresh(ctx context.Context, refreshToken string, userAgent string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return usecase.ErrUnauthorized
	}

	return nil
}

// logout 入力を検証
func (v *authValidator) ValidateLogout(ctx context.Context) error {
	return nil
}

// 強制ログアウトの入力を検証
func (v *authValidator) ValidateForceLogout(ctx context.Context, targetUserID int64) error {
	if targetUserID <= 0 {
		return usecase.ErrValidation
	}
	return nil
}
