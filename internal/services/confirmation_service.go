package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tourquote/internal/domain"
	"tourquote/internal/domain/models"
	"tourquote/internal/repositories"
	"tourquote/internal/utils"

	"github.com/google/uuid"
)

// ConfirmationService turns selected lines of a NEW proposal into vouchers.
type ConfirmationService struct {
	Proposals repositories.ProposalRepository
	RequestID string
	Now       func() time.Time
	NewID     func() string
}

// ConfirmationResult lists the vouchers created by one confirm call and the
// selected ids that matched no line.
type ConfirmationResult struct {
	Proposal models.Proposal       `json:"proposal"`
	Vouchers []models.Voucher      `json:"vouchers"`
	Skipped  []models.SelectionRef `json:"skipped"`
}

func (s ConfirmationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s ConfirmationService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// ConfirmProposal confirms proposal id with the given selection.
//
// A missing proposal is NotFound; a CONFIRMED or CANCELLED one is a
// Conflict. An empty selection, or one where no id resolves, is a
// ValidationError. In every rejected case nothing is written. Vouchers are
// built in AllKinds order and each carries a JSON snapshot of its line.
func (s ConfirmationService) ConfirmProposal(ctx context.Context, id int64, sel models.Selection) (ConfirmationResult, error) {
	p, err := s.Proposals.GetProposal(ctx, id)
	if err != nil {
		return ConfirmationResult{}, wrapRepoErr("proposal", err)
	}
	if p.Status != models.ProposalNew {
		return ConfirmationResult{}, domain.ConflictError{
			Resource: "proposal",
			Msg:      fmt.Sprintf("proposal is already %s", p.Status),
		}
	}
	if sel.IsEmpty() {
		return ConfirmationResult{}, domain.ValidationError{Field: "selection", Msg: "select at least one service to confirm"}
	}
	sel = sel.Normalized()

	now := s.now()
	var (
		vouchers []models.Voucher
		skipped  []models.SelectionRef
	)
	for _, kind := range models.AllKinds {
		for _, lineID := range sel[kind] {
			line, ok := p.Itinerary.Find(kind, lineID)
			if !ok {
				skipped = append(skipped, models.SelectionRef{Kind: kind, ID: lineID})
				continue
			}
			v, err := s.buildVoucher(p, line, now)
			if err != nil {
				return ConfirmationResult{}, err
			}
			vouchers = append(vouchers, v)
		}
	}
	for _, ref := range skipped {
		utils.LogEvent(s.RequestID, "confirmation", "skip", fmt.Sprintf("proposal=%d %s #%d not found", p.ID, ref.Kind, ref.ID))
	}
	if len(vouchers) == 0 {
		return ConfirmationResult{}, domain.ValidationError{Field: "selection", Msg: "none of the selected services exist in this proposal"}
	}

	confirmed := p.Clone()
	confirmed.Status = models.ProposalConfirmed
	confirmed.ConfirmedAt = &now
	if err := s.Proposals.ConfirmProposal(ctx, &confirmed, vouchers); err != nil {
		return ConfirmationResult{}, wrapRepoErr("proposal", err)
	}
	utils.LogEvent(s.RequestID, "confirmation", "confirm",
		fmt.Sprintf("proposal=%d reference=%s vouchers=%d skipped=%d", confirmed.ID, confirmed.Reference, len(vouchers), len(skipped)))

	if skipped == nil {
		skipped = []models.SelectionRef{}
	}
	return ConfirmationResult{Proposal: confirmed, Vouchers: vouchers, Skipped: skipped}, nil
}

func (s ConfirmationService) buildVoucher(p models.Proposal, line models.LineItem, now time.Time) (models.Voucher, error) {
	// line is a value copy taken from a cloned proposal, so the snapshot
	// cannot alias the live itinerary.
	data, err := json.Marshal(line)
	if err != nil {
		return models.Voucher{}, domain.InternalError{Msg: "failed to snapshot line", Err: err}
	}
	v := models.Voucher{
		ID:                s.newID(),
		ProposalID:        p.ID,
		ProposalReference: p.Reference,
		ServiceType:       line.Kind(),
		ServiceID:         line.LineID(),
		Status:            models.VoucherInitialStatus,
		SourceID:          p.SourceID,
		SalesPersonID:     p.SalesPersonID,
		Guests:            []models.Guest{},
		ServiceData:       data,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if p.AgencyID != nil {
		a := *p.AgencyID
		v.AgencyID = &a
	}
	return v, nil
}
