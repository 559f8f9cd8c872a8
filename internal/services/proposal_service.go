package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tourquote/internal/domain"
	"tourquote/internal/domain/models"
	"tourquote/internal/itinerary"
	"tourquote/internal/pricing"
	"tourquote/internal/repositories"
	"tourquote/internal/utils"

	"github.com/google/uuid"
)

// ProposalService drives proposal authoring: basic info, line items, the two
// validation gates, cancel and copy. Every mutation requires status NEW.
type ProposalService struct {
	Proposals       repositories.ProposalRepository
	MasterData      repositories.MasterDataRepository
	DefaultCurrency string
	RequestID       string
	Now             func() time.Time
}

// BasicInfoPatch carries the editable header fields of a proposal. Nil
// fields are left untouched. Version, when set, must match the stored one.
type BasicInfoPatch struct {
	SourceID        *int64          `json:"sourceId"`
	AgencyID        *int64          `json:"agencyId"`
	SalesPersonID   *int64          `json:"salesPersonId"`
	DestinationIDs  *[]int64        `json:"destinationIds"`
	EstimatedNights *int            `json:"estimatedNights"`
	OverallMargin   *models.NumText `json:"overallMargin"`
	Commission      *models.NumText `json:"commission"`
	PDFLanguage     *string         `json:"pdfLanguage"`
	DisplayCurrency *string         `json:"displayCurrency"`
	Currency        *string         `json:"proposalCurrency"`
	StartDate       *string         `json:"proposalStartDate"`
	EndDate         *string         `json:"proposalEndDate"`
	Version         *int            `json:"version"`
}

// LineLabel is a line with its foreign keys resolved for display.
type LineLabel struct {
	Kind        models.ServiceKind `json:"kind"`
	ID          int                `json:"id"`
	Destination string             `json:"destination,omitempty"`
	Hotel       string             `json:"hotel,omitempty"`
	Total       string             `json:"total"`
	Valid       bool               `json:"isValid"`
	Errors      []string           `json:"errors,omitempty"`
}

// ProposalView is a proposal with resolved labels and rounded totals.
type ProposalView struct {
	models.Proposal
	SalesPersonName  string                `json:"salesPersonName"`
	SourceName       string                `json:"sourceName"`
	AgencyName       string                `json:"agencyName,omitempty"`
	DestinationNames []string              `json:"destinationNames"`
	LineLabels       []LineLabel           `json:"lineLabels"`
	Totals           pricing.DisplayTotals `json:"totals"`
}

// ValidationReport is the outcome of running one or both gates.
type ValidationReport struct {
	Valid     bool     `json:"isValid"`
	BasicInfo []string `json:"basicInfo"`
	Itinerary []string `json:"itinerary"`
}

const (
	PhaseBasic     = "basic"
	PhaseItinerary = "itinerary"
	PhaseAll       = "all"
)

func (s ProposalService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s ProposalService) master() MasterDataService {
	return MasterDataService{Repo: s.MasterData, RequestID: s.RequestID}
}

func (s ProposalService) newReference() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PRP-%s-%s", s.now().Format("20060102"), suffix)
}

func (s ProposalService) Get(ctx context.Context, id int64) (models.Proposal, error) {
	p, err := s.Proposals.GetProposal(ctx, id)
	if err != nil {
		return models.Proposal{}, wrapRepoErr("proposal", err)
	}
	return p, nil
}

func (s ProposalService) List(ctx context.Context, f models.ProposalFilter) ([]models.Proposal, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown proposal status %q", f.Status)}
	}
	list, err := s.Proposals.ListProposals(ctx, f)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list proposals", Err: err}
	}
	if list == nil {
		list = []models.Proposal{}
	}
	return list, nil
}

// Create stores a NEW proposal. Drafts may be incomplete; the gates are run
// separately.
func (s ProposalService) Create(ctx context.Context, in BasicInfoPatch) (models.Proposal, error) {
	p := models.Proposal{
		Reference: s.newReference(),
		Status:    models.ProposalNew,
		Currency:  utils.NormalizeCurrency(s.DefaultCurrency),
	}
	if err := applyBasicInfo(&p, in); err != nil {
		return models.Proposal{}, err
	}
	if err := s.Proposals.CreateProposal(ctx, &p); err != nil {
		return models.Proposal{}, wrapRepoErr("proposal", err)
	}
	utils.LogEvent(s.RequestID, "proposal", "create", fmt.Sprintf("id=%d reference=%s", p.ID, p.Reference))
	return p, nil
}

func (s ProposalService) UpdateBasicInfo(ctx context.Context, id int64, in BasicInfoPatch) (models.Proposal, error) {
	return s.mutate(ctx, id, "update_basic_info", func(p *models.Proposal) error {
		if in.Version != nil && *in.Version != p.Version {
			return domain.ConflictError{Resource: "proposal", Msg: "proposal was modified concurrently"}
		}
		return applyBasicInfo(p, in)
	})
}

// AddLine appends a line of kind. patch may be nil for a blank row.
func (s ProposalService) AddLine(ctx context.Context, id int64, kind models.ServiceKind, patch itinerary.Patch) (models.LineItem, error) {
	var added models.LineItem
	_, err := s.mutate(ctx, id, "add_line", func(p *models.Proposal) error {
		line, err := itinerary.AddLine(&p.Itinerary, kind, p.Currency, patch)
		if err != nil {
			return err
		}
		if err := s.checkLine(ctx, *p, line); err != nil {
			return err
		}
		added = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (s ProposalService) UpdateLine(ctx context.Context, id int64, kind models.ServiceKind, lineID int, patch itinerary.Patch) (models.LineItem, error) {
	var updated models.LineItem
	_, err := s.mutate(ctx, id, "update_line", func(p *models.Proposal) error {
		line, err := itinerary.UpdateLine(&p.Itinerary, kind, lineID, patch)
		if err != nil {
			return err
		}
		if err := s.checkLine(ctx, *p, line); err != nil {
			return err
		}
		updated = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s ProposalService) RemoveLine(ctx context.Context, id int64, kind models.ServiceKind, lineID int) (models.Proposal, error) {
	return s.mutate(ctx, id, "remove_line", func(p *models.Proposal) error {
		return itinerary.RemoveLine(&p.Itinerary, kind, lineID)
	})
}

// Cancel moves a NEW proposal to CANCELLED.
func (s ProposalService) Cancel(ctx context.Context, id int64) (models.Proposal, error) {
	return s.mutate(ctx, id, "cancel", func(p *models.Proposal) error {
		p.Status = models.ProposalCancelled
		return nil
	})
}

// Copy creates a NEW proposal from any existing one, with a fresh reference
// and a deep copy of its lines.
func (s ProposalService) Copy(ctx context.Context, id int64) (models.Proposal, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return models.Proposal{}, err
	}
	cp := src.Clone()
	cp.ID = 0
	cp.Reference = s.newReference()
	cp.Status = models.ProposalNew
	cp.ConfirmedAt = nil
	cp.CopiedFrom = &src.ID
	if err := s.Proposals.CreateProposal(ctx, &cp); err != nil {
		return models.Proposal{}, wrapRepoErr("proposal", err)
	}
	utils.LogEvent(s.RequestID, "proposal", "copy", fmt.Sprintf("from=%d to=%d", src.ID, cp.ID))
	return cp, nil
}

func (s ProposalService) Totals(ctx context.Context, id int64) (pricing.Totals, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return pricing.Totals{}, err
	}
	return pricing.ComputeProposalTotals(p), nil
}

// CheckBasicInfo runs the basic-info gate plus the agency-channel rule, which
// needs the Source record.
func (s ProposalService) CheckBasicInfo(ctx context.Context, p models.Proposal) []string {
	errs := itinerary.ValidateBasicInfo(p)
	if src, ok := s.master().Source(ctx, p.SourceID); ok && src.IsAgency && (p.AgencyID == nil || *p.AgencyID == 0) {
		errs = append(errs, "agency is required for an agency source")
	}
	return errs
}

// Validate runs the requested gates against the stored proposal. It never
// writes.
func (s ProposalService) Validate(ctx context.Context, id int64, phase string) (ValidationReport, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return ValidationReport{}, err
	}
	phase = strings.ToLower(strings.TrimSpace(phase))
	if phase == "" {
		phase = PhaseAll
	}
	report := ValidationReport{BasicInfo: []string{}, Itinerary: []string{}}
	switch phase {
	case PhaseBasic:
		report.BasicInfo = nonNil(s.CheckBasicInfo(ctx, p))
	case PhaseItinerary:
		report.Itinerary = nonNil(itinerary.ValidateItinerary(p))
	case PhaseAll:
		report.BasicInfo = nonNil(s.CheckBasicInfo(ctx, p))
		report.Itinerary = nonNil(itinerary.ValidateItinerary(p))
	default:
		return ValidationReport{}, domain.ValidationError{Field: "phase", Msg: fmt.Sprintf("unknown phase %q", phase)}
	}
	report.Valid = len(report.BasicInfo) == 0 && len(report.Itinerary) == 0
	return report, nil
}

// View resolves labels for p and its lines. Dangling keys render as
// "Unknown X".
func (s ProposalService) View(ctx context.Context, id int64) (ProposalView, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return ProposalView{}, err
	}
	md := s.master()
	v := ProposalView{
		Proposal:         p,
		SalesPersonName:  md.UserName(ctx, p.SalesPersonID),
		SourceName:       md.SourceName(ctx, p.SourceID),
		DestinationNames: make([]string, 0, len(p.DestinationIDs)),
		LineLabels:       []LineLabel{},
		Totals:           pricing.ComputeProposalTotals(p).Display(),
	}
	if p.AgencyID != nil {
		v.AgencyName = md.AgencyName(ctx, p.AgencyID)
	}
	for _, d := range p.DestinationIDs {
		v.DestinationNames = append(v.DestinationNames, md.DestinationName(ctx, d))
	}
	for _, line := range p.Itinerary.All() {
		res := itinerary.ValidateLine(line)
		lbl := LineLabel{
			Kind:   line.Kind(),
			ID:     line.LineID(),
			Total:  utils.FormatMoney(pricing.ComputeLineTotal(line)),
			Valid:  res.Valid,
			Errors: res.Errors,
		}
		if line.LineDestination() != 0 {
			lbl.Destination = md.DestinationName(ctx, line.LineDestination())
		}
		if h, ok := line.(models.HotelLine); ok && h.HotelID != 0 {
			lbl.Hotel = md.HotelName(ctx, h.HotelID)
		}
		v.LineLabels = append(v.LineLabels, lbl)
	}
	return v, nil
}

// mutate loads the proposal, refuses anything that is not NEW, applies fn to
// a private copy and saves it with the version check.
func (s ProposalService) mutate(ctx context.Context, id int64, action string, fn func(p *models.Proposal) error) (models.Proposal, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return models.Proposal{}, err
	}
	if !p.IsEditable() {
		return models.Proposal{}, domain.ConflictError{
			Resource: "proposal",
			Msg:      fmt.Sprintf("proposal is %s; copy it to make changes", p.Status),
		}
	}
	if err := fn(&p); err != nil {
		return models.Proposal{}, err
	}
	if err := s.Proposals.SaveProposal(ctx, &p); err != nil {
		return models.Proposal{}, wrapRepoErr("proposal", err)
	}
	utils.LogEvent(s.RequestID, "proposal", action, fmt.Sprintf("id=%d version=%d", p.ID, p.Version))
	return p, nil
}

// checkLine applies the entry-time rules: a single currency per proposal and,
// when the hotel resolves, room/board/currency from the hotel's options.
func (s ProposalService) checkLine(ctx context.Context, p models.Proposal, line models.LineItem) error {
	var errs []string
	if msg := itinerary.CurrencyMismatch(line, p.Currency); msg != "" {
		errs = append(errs, msg)
	}
	if h, ok := line.(models.HotelLine); ok && h.HotelID != 0 {
		if hotel, found := s.master().Hotel(ctx, h.HotelID); found {
			errs = append(errs, hotelOptionErrors(h, hotel)...)
		}
	}
	return domain.NewValidationFailure("line rejected", errs)
}

func hotelOptionErrors(l models.HotelLine, h models.Hotel) []string {
	var errs []string
	if h.DestinationID != 0 && l.DestinationID != 0 && h.DestinationID != l.DestinationID {
		errs = append(errs, fmt.Sprintf("hotel %s is not in the selected destination", h.Name))
	}
	if l.RoomType != "" && len(h.RoomTypes) > 0 && !utils.ContainsFold(h.RoomTypes, l.RoomType) {
		errs = append(errs, fmt.Sprintf("room type %q is not offered by %s", l.RoomType, h.Name))
	}
	if l.BoardType != "" && len(h.BoardTypes) > 0 && !utils.ContainsFold(h.BoardTypes, l.BoardType) {
		errs = append(errs, fmt.Sprintf("board type %q is not offered by %s", l.BoardType, h.Name))
	}
	if l.Currency != "" && len(h.Currencies) > 0 && !utils.ContainsFold(h.Currencies, l.Currency) {
		errs = append(errs, fmt.Sprintf("currency %s is not accepted by %s", l.Currency, h.Name))
	}
	return errs
}

// applyBasicInfo copies the set fields of in onto p. Every invalid field is
// reported in one ValidationError and p is left untouched in that case.
func applyBasicInfo(p *models.Proposal, in BasicInfoPatch) error {
	var errs []string
	next := *p
	if in.SourceID != nil {
		next.SourceID = *in.SourceID
	}
	if in.AgencyID != nil {
		if *in.AgencyID == 0 {
			next.AgencyID = nil
		} else {
			v := *in.AgencyID
			next.AgencyID = &v
		}
	}
	if in.SalesPersonID != nil {
		next.SalesPersonID = *in.SalesPersonID
	}
	if in.DestinationIDs != nil {
		next.DestinationIDs = uniqueIDs(*in.DestinationIDs)
	}
	if in.EstimatedNights != nil {
		if *in.EstimatedNights < 0 {
			errs = append(errs, "estimatedNights must not be negative")
		} else {
			next.EstimatedNights = *in.EstimatedNights
		}
	}
	if in.OverallMargin != nil {
		next.OverallMargin = strings.TrimSpace(in.OverallMargin.String())
	}
	if in.Commission != nil {
		next.Commission = strings.TrimSpace(in.Commission.String())
	}
	if in.PDFLanguage != nil {
		next.PDFLanguage = strings.ToLower(strings.TrimSpace(*in.PDFLanguage))
	}
	if in.DisplayCurrency != nil {
		cur, msg := currencyCode("displayCurrency", *in.DisplayCurrency)
		if msg != "" {
			errs = append(errs, msg)
		}
		next.DisplayCurrency = cur
	}
	if in.Currency != nil {
		cur, msg := currencyCode("proposalCurrency", *in.Currency)
		if msg != "" {
			errs = append(errs, msg)
		}
		next.Currency = cur
		if msg == "" && cur != p.Currency {
			errs = append(errs, strandedLines(next.Itinerary, cur)...)
		}
	}
	if in.StartDate != nil {
		d, msg := calendarDate("proposalStartDate", *in.StartDate)
		if msg != "" {
			errs = append(errs, msg)
		}
		next.StartDate = d
	}
	if in.EndDate != nil {
		d, msg := calendarDate("proposalEndDate", *in.EndDate)
		if msg != "" {
			errs = append(errs, msg)
		}
		next.EndDate = d
	}
	if err := domain.NewValidationFailure("basic info rejected", errs); err != nil {
		return err
	}
	*p = next
	return nil
}

// currencyCode normalizes an ISO 4217 code. Blank clears the field.
func currencyCode(field, raw string) (string, string) {
	cur := utils.NormalizeCurrency(raw)
	if cur == "" {
		return "", ""
	}
	if len(cur) != 3 {
		return "", fmt.Sprintf("%s %q is not a 3-letter currency code", field, raw)
	}
	for _, r := range cur {
		if r < 'A' || r > 'Z' {
			return "", fmt.Sprintf("%s %q is not a 3-letter currency code", field, raw)
		}
	}
	return cur, ""
}

// calendarDate stores a date as YYYY-MM-DD. Blank clears the field.
func calendarDate(field, raw string) (string, string) {
	if strings.TrimSpace(raw) == "" {
		return "", ""
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		return "", fmt.Sprintf("%s %q is not a valid date", field, raw)
	}
	return utils.FormatDate(d), ""
}

// strandedLines lists the lines that would no longer match currency. Lines
// are never re-tagged, so the change is refused while any remain.
func strandedLines(it models.Itinerary, currency string) []string {
	var errs []string
	for _, k := range models.AllKinds {
		for _, l := range it.Lines(k) {
			if !pricing.InCurrency(l, currency) {
				errs = append(errs, fmt.Sprintf("%s %d is priced in %s, cannot switch proposal to %s",
					k.Label(), l.LineID(), utils.NormalizeCurrency(l.LineCurrency()), currency))
			}
		}
	}
	return errs
}

func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := map[int64]bool{}
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// wrapRepoErr passes domain errors through and marks everything else as
// internal.
func wrapRepoErr(resource string, err error) error {
	if domain.IsNotFound(err) || domain.IsConflict(err) || domain.IsValidation(err) {
		return err
	}
	return domain.InternalError{Msg: resource + " storage error", Err: err}
}
