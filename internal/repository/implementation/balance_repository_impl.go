package implementation

import (
	"context"
	"errors"

	"stockpoints-be/internal/model"
	"stockpoints-be/internal/pkg/apperror"
	"stockpoints-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BalanceRepositoryImpl struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) contract.BalanceRepository {
	return &BalanceRepositoryImpl{db: db}
}

func (r *BalanceRepositoryImpl) Get(ctx context.Context, userId uuid.UUID) (int64, error) {
	var m model.Balance
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return m.Points, nil
}

func (r *BalanceRepositoryImpl) Credit(ctx context.Context, userId uuid.UUID, points int64) error {
	if points < 0 {
		return apperror.InvalidInput("credit amount must not be negative")
	}
	// Upsert so first-ever credit creates the row; the arithmetic runs
	// inside the database, never as read-modify-write in Go.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points": gorm.Expr("balances.points + ?", points),
			}),
		}).
		Create(&model.Balance{UserId: userId, Points: points}).Error
}

func (r *BalanceRepositoryImpl) DebitIfSufficient(ctx context.Context, userId uuid.UUID, points int64) error {
	if points < 0 {
		return apperror.InvalidInput("debit amount must not be negative")
	}
	if points == 0 {
		// Zero-cost debit (free re-download). Nothing to subtract, but the
		// user must still have a balance row so the order ties to one.
		return r.Credit(ctx, userId, 0)
	}
	res := r.db.WithContext(ctx).
		Model(&model.Balance{}).
		Where("user_id = ? AND points >= ?", userId, points).
		Update("points", gorm.Expr("points - ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.InsufficientBalance("not enough points for this purchase")
	}
	return nil
}
