package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/stock-ledger/internal/stock/domain"
)

// GormStore implements domain.Store on a gorm handle. Inside Execute the
// handle is the transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store on db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates the stock tables
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&domain.Lot{}, &domain.Portion{}, &domain.Disposal{})
}

func (s *GormStore) Lots() domain.LotRepository {
	return NewTracedLotRepository(&GormLotRepository{db: s.db})
}

func (s *GormStore) Portions() domain.PortionRepository {
	return &GormPortionRepository{db: s.db}
}

func (s *GormStore) Disposals() domain.DisposalRepository {
	return &GormDisposalRepository{db: s.db}
}

// Execute runs fn in a transaction; a returned error or panic rolls back
func (s *GormStore) Execute(ctx context.Context, fn func(repos domain.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

func notFound(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(entity, id)
	}
	return fmt.Errorf("failed to find %s: %w", entity, err)
}

// GormLotRepository implements domain.LotRepository
type GormLotRepository struct {
	db *gorm.DB
}

func (r *GormLotRepository) Create(ctx context.Context, lot *domain.Lot) error {
	if err := r.db.WithContext(ctx).Create(lot).Error; err != nil {
		return fmt.Errorf("failed to create lot: %w", err)
	}
	return nil
}

func (r *GormLotRepository) FindByID(ctx context.Context, id uint) (*domain.Lot, error) {
	var lot domain.Lot
	if err := r.db.WithContext(ctx).First(&lot, id).Error; err != nil {
		return nil, notFound(err, "lot", id)
	}
	return &lot, nil
}

func (r *GormLotRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Lot, error) {
	var lot domain.Lot
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&lot, id).Error
	if err != nil {
		return nil, notFound(err, "lot", id)
	}
	return &lot, nil
}

func (r *GormLotRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Lot, error) {
	var lots []domain.Lot
	q := paginate(r.db.WithContext(ctx).Order("id ASC"), limit, offset)
	if err := q.Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("failed to find lots: %w", err)
	}
	return lots, nil
}

func (r *GormLotRepository) Update(ctx context.Context, lot *domain.Lot) error {
	if err := r.db.WithContext(ctx).Save(lot).Error; err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}
	return nil
}

func (r *GormLotRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Lot{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete lot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("lot", id)
	}
	return nil
}

// GormPortionRepository implements domain.PortionRepository
type GormPortionRepository struct {
	db *gorm.DB
}

func (r *GormPortionRepository) Create(ctx context.Context, portion *domain.Portion) error {
	if err := r.db.WithContext(ctx).Create(portion).Error; err != nil {
		return fmt.Errorf("failed to create portion: %w", err)
	}
	return nil
}

func (r *GormPortionRepository) FindByID(ctx context.Context, id uint) (*domain.Portion, error) {
	var portion domain.Portion
	if err := r.db.WithContext(ctx).First(&portion, id).Error; err != nil {
		return nil, notFound(err, "portion", id)
	}
	return &portion, nil
}

func (r *GormPortionRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Portion, error) {
	var portions []domain.Portion
	q := paginate(r.db.WithContext(ctx).Order("id ASC"), limit, offset)
	if err := q.Find(&portions).Error; err != nil {
		return nil, fmt.Errorf("failed to find portions: %w", err)
	}
	return portions, nil
}

func (r *GormPortionRepository) FindByAgent(ctx context.Context, agent string, limit, offset int) ([]domain.Portion, error) {
	var portions []domain.Portion
	q := paginate(r.db.WithContext(ctx).Where("assigned_agent = ?", agent).Order("id ASC"), limit, offset)
	if err := q.Find(&portions).Error; err != nil {
		return nil, fmt.Errorf("failed to find portions by agent: %w", err)
	}
	return portions, nil
}

func (r *GormPortionRepository) Update(ctx context.Context, portion *domain.Portion) error {
	if err := r.db.WithContext(ctx).Save(portion).Error; err != nil {
		return fmt.Errorf("failed to update portion: %w", err)
	}
	return nil
}

func (r *GormPortionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Portion{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete portion: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("portion", id)
	}
	return nil
}

func (r *GormPortionRepository) DeleteByLotID(ctx context.Context, lotID uint) error {
	if err := r.db.WithContext(ctx).Where("lot_id = ?", lotID).Delete(&domain.Portion{}).Error; err != nil {
		return fmt.Errorf("failed to delete portions of lot: %w", err)
	}
	return nil
}

// GormDisposalRepository implements domain.DisposalRepository
type GormDisposalRepository struct {
	db *gorm.DB
}

func (r *GormDisposalRepository) Create(ctx context.Context, disposal *domain.Disposal) error {
	if err := r.db.WithContext(ctx).Create(disposal).Error; err != nil {
		return fmt.Errorf("failed to create disposal: %w", err)
	}
	return nil
}

func (r *GormDisposalRepository) FindByID(ctx context.Context, id uint) (*domain.Disposal, error) {
	var disposal domain.Disposal
	if err := r.db.WithContext(ctx).First(&disposal, id).Error; err != nil {
		return nil, notFound(err, "sale", id)
	}
	return &disposal, nil
}

func (r *GormDisposalRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Disposal, error) {
	var disposals []domain.Disposal
	q := paginate(r.db.WithContext(ctx).Order("id ASC"), limit, offset)
	if err := q.Find(&disposals).Error; err != nil {
		return nil, fmt.Errorf("failed to find sales: %w", err)
	}
	return disposals, nil
}

func (r *GormDisposalRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Disposal{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("sale", id)
	}
	return nil
}

func (r *GormDisposalRepository) DeleteByLotID(ctx context.Context, lotID uint) error {
	if err := r.db.WithContext(ctx).Where("lot_id = ?", lotID).Delete(&domain.Disposal{}).Error; err != nil {
		return fmt.Errorf("failed to delete sales of lot: %w", err)
	}
	return nil
}
