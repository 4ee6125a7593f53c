package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/auth_service/internal/models"
)

// CreateUserWithToken stores a new user together with its first refresh
// token record, or neither.
func (r *GormRepo) CreateUserWithToken(ctx context.Context, u *models.User, rt *models.RefreshToken) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("RefreshTokens").Create(u).Error; err != nil {
			return err
		}
		return tx.Create(rt).Error
	})
	return translate(err)
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return translate(r.DB.WithContext(ctx).Omit("RefreshTokens").Create(u).Error)
}

func (r *GormRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUserBy(ctx, "id", id)
}

func (r *GormRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.getUserBy(ctx, "login", login)
}

// GetUserByEmail expects an already lowercased email.
func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUserBy(ctx, "email", email)
}

func (r *GormRepo) getUserBy(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where(column+" = ?", value).Take(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ListUsers returns all users ordered by login, optionally filtered by role.
func (r *GormRepo) ListUsers(ctx context.Context, role *models.Role) ([]models.User, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{}).Order("login ASC")
	if role != nil {
		q = q.Where("role = ?", *role)
	}

	users := make([]models.User, 0)
	if err := q.Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (r *GormRepo) GetUserEmail(ctx context.Context, id string) (string, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Select("email").Where("id = ?", id).Take(&user).Error; err != nil {
		return "", translate(err)
	}
	return user.Email, nil
}

func (r *GormRepo) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the user and every refresh token it owns.
func (r *GormRepo) DeleteUser(ctx context.Context, id string) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err)
}
