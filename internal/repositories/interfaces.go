package repositories

import (
	"context"

	"tourquote/internal/domain/models"
)

// ProposalRepository persists proposals. SaveProposal and ConfirmProposal
// check p.Version against the stored row and bump it on success; a stale
// version comes back as a domain.ConflictError.
type ProposalRepository interface {
	GetProposal(ctx context.Context, id int64) (models.Proposal, error)
	ListProposals(ctx context.Context, f models.ProposalFilter) ([]models.Proposal, error)
	CreateProposal(ctx context.Context, p *models.Proposal) error
	SaveProposal(ctx context.Context, p *models.Proposal) error
	// ConfirmProposal moves a NEW proposal to CONFIRMED and stores its
	// vouchers in one unit. Nothing is written when any step fails.
	ConfirmProposal(ctx context.Context, p *models.Proposal, vouchers []models.Voucher) error
}

type VoucherRepository interface {
	GetVoucher(ctx context.Context, id string) (models.Voucher, error)
	ListVouchers(ctx context.Context, f models.VoucherFilter) ([]models.Voucher, error)
	SaveVoucher(ctx context.Context, v *models.Voucher) error
}

// MasterDataRepository is read-only. Lookups of unknown ids return
// domain.NotFoundError.
type MasterDataRepository interface {
	GetDestination(ctx context.Context, id int64) (models.Destination, error)
	GetHotel(ctx context.Context, id int64) (models.Hotel, error)
	GetAgency(ctx context.Context, id int64) (models.Agency, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetSource(ctx context.Context, id int64) (models.Source, error)
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
}
