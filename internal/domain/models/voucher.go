package models

import (
	"encoding/json"
	"time"
)

// VoucherStatus is the voucher payment lifecycle state.
type VoucherStatus string

const (
	VoucherPendingPayment VoucherStatus = "PENDING_PAYMENT"
	VoucherPaid           VoucherStatus = "PAID"
	VoucherCompleted      VoucherStatus = "COMPLETED"
	VoucherCancelled      VoucherStatus = "CANCELLED"
)

// VoucherInitialStatus is the state every generated voucher starts in.
const VoucherInitialStatus = VoucherPendingPayment

var voucherTransitions = map[VoucherStatus][]VoucherStatus{
	VoucherPendingPayment: {VoucherPaid, VoucherCancelled},
	VoucherPaid:           {VoucherCompleted, VoucherCancelled},
}

func (s VoucherStatus) Valid() bool {
	switch s {
	case VoucherPendingPayment, VoucherPaid, VoucherCompleted, VoucherCancelled:
		return true
	}
	return false
}

// IsTerminal reports COMPLETED and CANCELLED.
func (s VoucherStatus) IsTerminal() bool {
	return s == VoucherCompleted || s == VoucherCancelled
}

// CanTransitionTo reports whether s -> next is a legal voucher move.
func (s VoucherStatus) CanTransitionTo(next VoucherStatus) bool {
	for _, v := range voucherTransitions[s] {
		if v == next {
			return true
		}
	}
	return false
}

// Guest is a traveller attached to a voucher after confirmation.
type Guest struct {
	Name     string `json:"name"`
	Passport string `json:"passport,omitempty"`
	IsChild  bool   `json:"isChild,omitempty"`
}

// Voucher is the supplier-facing record generated from one confirmed line.
// ServiceID is only unique together with ProposalID and ServiceType.
type Voucher struct {
	ID                string        `json:"id"`
	ProposalID        int64         `json:"proposalId"`
	ProposalReference string        `json:"proposalReference"`
	ServiceType       ServiceKind   `json:"serviceType"`
	ServiceID         int           `json:"serviceId"`
	Status            VoucherStatus `json:"status"`
	SourceID          int64         `json:"sourceId"`
	AgencyID          *int64        `json:"agencyId"`
	SalesPersonID     int64         `json:"salesPersonId"`
	Guests            []Guest       `json:"guests"`
	Adults            int           `json:"adults"`
	Children          int           `json:"children"`
	TotalPax          int           `json:"totalPax"`
	Notes             string        `json:"notes"`
	// ServiceData is the JSON snapshot of the line at confirmation time.
	ServiceData json.RawMessage `json:"serviceData"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Clone returns a copy sharing no slices with v.
func (v Voucher) Clone() Voucher {
	out := v
	out.Guests = append([]Guest{}, v.Guests...)
	out.ServiceData = append(json.RawMessage(nil), v.ServiceData...)
	if v.AgencyID != nil {
		a := *v.AgencyID
		out.AgencyID = &a
	}
	return out
}

// VoucherFilter narrows voucher listings. Zero values match everything.
type VoucherFilter struct {
	ProposalID int64
	Status     VoucherStatus
}
