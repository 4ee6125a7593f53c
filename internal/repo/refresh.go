package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/auth_service/internal/models"
)

func (r *GormRepo) CreateRefreshToken(ctx context.Context, rt *models.RefreshToken) error {
	return translate(r.DB.WithContext(ctx).Create(rt).Error)
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).Take(&rt).Error; err != nil {
		return nil, translate(err)
	}
	return &rt, nil
}

func (r *GormRepo) ListRefreshByUser(ctx context.Context, userID string) ([]models.RefreshToken, error) {
	tokens := make([]models.RefreshToken, 0)
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&tokens).Error; err != nil {
		return nil, translate(err)
	}
	return tokens, nil
}

// DeleteRefreshByDevice removes the user's refresh tokens for one device and
// reports how many rows went away.
func (r *GormRepo) DeleteRefreshByDevice(ctx context.Context, userID, device string) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND device = ?", userID, device).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, translate(res.Error)
}

func (r *GormRepo) DeleteRefreshByUser(ctx context.Context, userID string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{})
	return res.RowsAffected, translate(res.Error)
}

// RotateRefreshToken consumes the record for oldJTI and stores next in one
// transaction. A missing record, a record bound to another device, or a record
// that a concurrent rotation removed first all count as reuse: every refresh
// token of subject is deleted, the deletion is committed, and ErrTokenReuse is
// returned.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, subject, device string, next *models.RefreshToken) error {
	reused := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var current models.RefreshToken
		err := q.Where("jti = ?", oldJTI).Take(&current).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			reused = true
		case err != nil:
			return err
		case current.Device != device || current.UserID != subject:
			reused = true
		}

		if !reused {
			res := tx.Where("jti = ?", oldJTI).Delete(&models.RefreshToken{})
			if res.Error != nil {
				return res.Error
			}
			reused = res.RowsAffected == 0
		}

		if reused {
			return tx.Where("user_id = ?", subject).Delete(&models.RefreshToken{}).Error
		}

		return tx.Create(next).Error
	})
	if err != nil {
		return translate(err)
	}
	if reused {
		return ErrTokenReuse
	}
	return nil
}
