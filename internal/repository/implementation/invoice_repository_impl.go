package implementation

import (
	"context"
	"errors"
	"time"

	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/mapper"
	"stockpoints-be/internal/model"
	"stockpoints-be/internal/repository/contract"
	"stockpoints-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InvoiceMapper
}

func NewInvoiceRepository(db *gorm.DB) contract.InvoiceRepository {
	return &InvoiceRepositoryImpl{
		db:     db,
		mapper: mapper.NewInvoiceMapper(),
	}
}

func (r *InvoiceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InvoiceRepositoryImpl) Create(ctx context.Context, invoice *entity.Invoice) error {
	m, err := r.mapper.ToModel(invoice)
	if err != nil {
		return err
	}
	// Items ride along in the same insert via the association.
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*invoice = *r.mapper.ToEntity(m)
	return nil
}

func (r *InvoiceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invoice, error) {
	var m model.Invoice
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	query = query.Preload("Items")
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InvoiceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error) {
	var models []*model.Invoice
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	query = query.Preload("Items")
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Invoice, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *InvoiceRepositoryImpl) FindOneForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var m model.Invoice
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InvoiceRepositoryImpl) MarkPaidIfOpen(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("id = ? AND status = ?", id, string(entity.InvoiceStatusOpen)).
		Updates(map[string]interface{}{
			"status":  string(entity.InvoiceStatusPaid),
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
