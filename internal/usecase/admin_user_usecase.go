package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	"app/internal/repository"
)

// AdminUserUsecase は管理画面のユーザー管理です。
// 退会処理は持たない。止めるのは is_active を落とすだけ。
type AdminUserUsecase struct {
	users  repository.UserRepository
	rtRepo repository.RefreshTokenRepository
}

func NewAdminUserUsecase(users repository.UserRepository, rtRepo repository.RefreshTokenRepository) *AdminUserUsecase {
	return &AdminUserUsecase{users: users, rtRepo: rtRepo}
}

type UserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

func (u *AdminUserUsecase) List(ctx context.Context, page, limit int) (UserListOutput, error) {
	if page < 1 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	users, total, err := u.users.List(ctx, page, limit)
	if err != nil {
		return UserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]UserDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}
	return UserListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 有効/停止の切り替え。停止時はrefresh tokenも全部落とす。
func (u *AdminUserUsecase) SetActive(ctx context.Context, adminUserID int64, targetUserID int64, active bool) (UserDTO, error) {
	if adminUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	if targetUserID == adminUserID && !active {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "cannot deactivate yourself")
	}

	user, err := u.users.FindByID(ctx, targetUserID)
	if err == repository.ErrUserNotFound || user == nil {
		return UserDTO{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if user.IsActive == active {
		return toUserDTO(user), nil
	}

	user.IsActive = active
	if err := u.users.Update(ctx, user); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !active {
		if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
			return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return toUserDTO(user), nil
}

// ロール変更。最後の管理者を降格させない保証まではしない。
func (u *AdminUserUsecase) SetRole(ctx context.Context, adminUserID int64, targetUserID int64, role string) (UserDTO, error) {
	if adminUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	switch model.Role(role) {
	case model.RoleUser, model.RoleAdmin:
	default:
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	user, err := u.users.FindByID(ctx, targetUserID)
	if err == repository.ErrUserNotFound || user == nil {
		return UserDTO{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user.Role = model.Role(role)
	if err := u.users.Update(ctx, user); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toUserDTO(user), nil
}
