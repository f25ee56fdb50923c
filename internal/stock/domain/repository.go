package domain

import "context"

// FindAll methods treat limit <= 0 as "no limit".

// LotRepository defines the contract for lot data access
type LotRepository interface {
	Create(ctx context.Context, lot *Lot) error
	FindByID(ctx context.Context, id uint) (*Lot, error)
	// FindByIDForUpdate loads the lot holding a row lock until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint) (*Lot, error)
	FindAll(ctx context.Context, limit, offset int) ([]Lot, error)
	Update(ctx context.Context, lot *Lot) error
	Delete(ctx context.Context, id uint) error
}

// PortionRepository defines the contract for portion data access
type PortionRepository interface {
	Create(ctx context.Context, portion *Portion) error
	FindByID(ctx context.Context, id uint) (*Portion, error)
	FindAll(ctx context.Context, limit, offset int) ([]Portion, error)
	FindByAgent(ctx context.Context, agent string, limit, offset int) ([]Portion, error)
	Update(ctx context.Context, portion *Portion) error
	Delete(ctx context.Context, id uint) error
	DeleteByLotID(ctx context.Context, lotID uint) error
}

// DisposalRepository defines the contract for disposal data access
type DisposalRepository interface {
	Create(ctx context.Context, disposal *Disposal) error
	FindByID(ctx context.Context, id uint) (*Disposal, error)
	FindAll(ctx context.Context, limit, offset int) ([]Disposal, error)
	Delete(ctx context.Context, id uint) error
	DeleteByLotID(ctx context.Context, lotID uint) error
}

// Repositories groups the repositories sharing one connection or transaction
type Repositories interface {
	Lots() LotRepository
	Portions() PortionRepository
	Disposals() DisposalRepository
}

// TransactionScope runs fn inside one database transaction. A non-nil error
// from fn rolls everything back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Store is the full persistence port: direct reads plus transactions
type Store interface {
	Repositories
	TransactionScope
}
