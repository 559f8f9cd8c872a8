package services

import (
	"context"
	"fmt"
	"strings"

	"tourquote/internal/domain"
	"tourquote/internal/domain/models"
	"tourquote/internal/repositories"
	"tourquote/internal/utils"
)

type VoucherService struct {
	Vouchers  repositories.VoucherRepository
	RequestID string
}

// TravellerUpdate is filled in by the booking workflow after confirmation.
// Nil fields are left untouched.
type TravellerUpdate struct {
	Guests   *[]models.Guest `json:"guests"`
	Adults   *int            `json:"adults"`
	Children *int            `json:"children"`
	Notes    *string         `json:"notes"`
}

func (s VoucherService) Get(ctx context.Context, id string) (models.Voucher, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Voucher{}, domain.ValidationError{Field: "id", Msg: "voucher id is required"}
	}
	v, err := s.Vouchers.GetVoucher(ctx, id)
	if err != nil {
		return models.Voucher{}, wrapRepoErr("voucher", err)
	}
	return v, nil
}

func (s VoucherService) List(ctx context.Context, f models.VoucherFilter) ([]models.Voucher, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown voucher status %q", f.Status)}
	}
	list, err := s.Vouchers.ListVouchers(ctx, f)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list vouchers", Err: err}
	}
	if list == nil {
		list = []models.Voucher{}
	}
	return list, nil
}

// Transition moves a voucher along PENDING_PAYMENT -> PAID -> COMPLETED, or
// to CANCELLED from any non-terminal state.
func (s VoucherService) Transition(ctx context.Context, id string, next models.VoucherStatus) (models.Voucher, error) {
	next = models.VoucherStatus(strings.ToUpper(strings.TrimSpace(string(next))))
	if !next.Valid() {
		return models.Voucher{}, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown voucher status %q", next)}
	}
	v, err := s.Get(ctx, id)
	if err != nil {
		return models.Voucher{}, err
	}
	if !v.Status.CanTransitionTo(next) {
		return models.Voucher{}, domain.ConflictError{
			Resource: "voucher",
			Msg:      fmt.Sprintf("cannot move voucher from %s to %s", v.Status, next),
		}
	}
	prev := v.Status
	v.Status = next
	if err := s.Vouchers.SaveVoucher(ctx, &v); err != nil {
		return models.Voucher{}, wrapRepoErr("voucher", err)
	}
	utils.LogEvent(s.RequestID, "voucher", "transition", fmt.Sprintf("id=%s %s->%s", v.ID, prev, next))
	return v, nil
}

// UpdateTravellers sets guests and pax counts. totalPax is always
// adults + children.
func (s VoucherService) UpdateTravellers(ctx context.Context, id string, in TravellerUpdate) (models.Voucher, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return models.Voucher{}, err
	}
	if v.Status.IsTerminal() {
		return models.Voucher{}, domain.ConflictError{Resource: "voucher", Msg: fmt.Sprintf("voucher is %s", v.Status)}
	}

	var errs []string
	if in.Adults != nil && *in.Adults < 0 {
		errs = append(errs, "adults must not be negative")
	}
	if in.Children != nil && *in.Children < 0 {
		errs = append(errs, "children must not be negative")
	}
	if in.Guests != nil {
		for i, g := range *in.Guests {
			if strings.TrimSpace(g.Name) == "" {
				errs = append(errs, fmt.Sprintf("guest #%d needs a name", i+1))
			}
		}
	}
	if err := domain.NewValidationFailure("travellers rejected", errs); err != nil {
		return models.Voucher{}, err
	}

	if in.Guests != nil {
		v.Guests = make([]models.Guest, 0, len(*in.Guests))
		for _, g := range *in.Guests {
			v.Guests = append(v.Guests, models.Guest{
				Name:     utils.NormalizeSpace(g.Name),
				Passport: strings.TrimSpace(g.Passport),
				IsChild:  g.IsChild,
			})
		}
	}
	if in.Adults != nil {
		v.Adults = *in.Adults
	}
	if in.Children != nil {
		v.Children = *in.Children
	}
	if in.Notes != nil {
		v.Notes = strings.TrimSpace(*in.Notes)
	}
	v.TotalPax = v.Adults + v.Children

	if err := s.Vouchers.SaveVoucher(ctx, &v); err != nil {
		return models.Voucher{}, wrapRepoErr("voucher", err)
	}
	utils.LogEvent(s.RequestID, "voucher", "travellers", fmt.Sprintf("id=%s pax=%d", v.ID, v.TotalPax))
	return v, nil
}
