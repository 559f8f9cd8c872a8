package models

import "time"

// ProposalStatus is the proposal lifecycle state.
type ProposalStatus string

const (
	ProposalNew       ProposalStatus = "NEW"
	ProposalConfirmed ProposalStatus = "CONFIRMED"
	ProposalCancelled ProposalStatus = "CANCELLED"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalNew, ProposalConfirmed, ProposalCancelled:
		return true
	}
	return false
}

// Proposal is one multi-service travel quote.
type Proposal struct {
	ID              int64          `json:"id"`
	Reference       string         `json:"reference"`
	SourceID        int64          `json:"sourceId"`
	AgencyID        *int64         `json:"agencyId"`
	SalesPersonID   int64          `json:"salesPersonId"`
	DestinationIDs  []int64        `json:"destinationIds"`
	EstimatedNights int            `json:"estimatedNights"`
	Status          ProposalStatus `json:"status"`
	OverallMargin   string         `json:"overallMargin"`
	Commission      string         `json:"commission"`
	PDFLanguage     string         `json:"pdfLanguage"`
	DisplayCurrency string         `json:"displayCurrency"`
	Currency        string         `json:"proposalCurrency"`
	StartDate       string         `json:"proposalStartDate"`
	EndDate         string         `json:"proposalEndDate"`
	Itinerary
	CopiedFrom  *int64     `json:"copiedFrom,omitempty"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}

// Clone deep-copies the proposal so callers can mutate it freely.
func (p Proposal) Clone() Proposal {
	out := p
	out.Itinerary = p.Itinerary.Clone()
	out.DestinationIDs = append([]int64(nil), p.DestinationIDs...)
	if p.AgencyID != nil {
		v := *p.AgencyID
		out.AgencyID = &v
	}
	if p.CopiedFrom != nil {
		v := *p.CopiedFrom
		out.CopiedFrom = &v
	}
	if p.ConfirmedAt != nil {
		v := *p.ConfirmedAt
		out.ConfirmedAt = &v
	}
	return out
}

// IsEditable reports whether line items and basic info may still change.
func (p Proposal) IsEditable() bool {
	return p.Status == ProposalNew
}

// ProposalFilter narrows proposal listings. Zero values match everything.
type ProposalFilter struct {
	Status        ProposalStatus
	SalesPersonID int64
	Limit         int
	Offset        int
}
