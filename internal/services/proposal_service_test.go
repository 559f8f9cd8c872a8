package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"tourquote/internal/domain"
	"tourquote/internal/domain/models"
	"tourquote/internal/itinerary"
	"tourquote/internal/repositories"
)

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newStore() *repositories.MemoryStore {
	store := repositories.NewMemoryStore()
	store.PutDestination(models.Destination{ID: 1, Name: "Istanbul", Country: "TR"})
	store.PutDestination(models.Destination{ID: 2, Name: "Cappadocia", Country: "TR"})
	store.PutHotel(models.Hotel{
		ID: 10, DestinationID: 1, Name: "Pera Palace",
		RoomTypes: []string{"DBL", "SGL"}, BoardTypes: []string{"BB", "HB"}, Currencies: []string{"EUR"},
	})
	store.PutSource(models.Source{ID: 1, Name: "Direct"})
	store.PutSource(models.Source{ID: 2, Name: "Agency channel", IsAgency: true})
	store.PutAgency(models.Agency{ID: 7, Name: "Blue Travel"})
	store.PutUser(models.User{ID: 3, Name: "Selin", Username: "selin", Role: "sales", Status: "active"})
	return store
}

func newProposalService(store *repositories.MemoryStore) ProposalService {
	return ProposalService{
		Proposals:       store,
		MasterData:      store,
		DefaultCurrency: "EUR",
		RequestID:       "test",
		Now:             func() time.Time { return fixedNow },
	}
}

func basicInfo() BasicInfoPatch {
	return BasicInfoPatch{
		SourceID:       ptr(int64(1)),
		SalesPersonID:  ptr(int64(3)),
		DestinationIDs: ptr([]int64{1, 1, 2}),
		OverallMargin:  ptr(models.NumText("10")),
		Commission:     ptr(models.NumText("5")),
		StartDate:      ptr("2024-03-10"),
		EndDate:        ptr("2024-03-25"),
	}
}

func completeHotel() itinerary.HotelPatch {
	return itinerary.HotelPatch{
		DestinationID: ptr(int64(1)),
		HotelID:       ptr(int64(10)),
		Checkin:       ptr("2024-03-15"),
		Checkout:      ptr("2024-03-19"),
		RoomType:      ptr("DBL"),
		BoardType:     ptr("BB"),
		NumRooms:      ptr(models.NumText("2")),
		PricePerNight: ptr(models.NumText("150")),
	}
}

func TestProposalService_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())

	p, err := svc.Create(ctx, basicInfo())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 || p.Status != models.ProposalNew || p.Version != 1 {
		t.Fatalf("unexpected proposal %+v", p)
	}
	if p.Currency != "EUR" {
		t.Fatalf("currency should default to EUR, got %q", p.Currency)
	}
	if !strings.HasPrefix(p.Reference, "PRP-20240301-") {
		t.Fatalf("unexpected reference %q", p.Reference)
	}
	if len(p.DestinationIDs) != 2 {
		t.Fatalf("destinations should be deduplicated, got %v", p.DestinationIDs)
	}
}

func TestProposalService_HotelExampleTotals(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())
	p, _ := svc.Create(ctx, basicInfo())

	line, err := svc.AddLine(ctx, p.ID, models.KindHotel, completeHotel())
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	h := line.(models.HotelLine)
	if h.Nights != 4 || h.TotalPrice.StringFixed(2) != "1200.00" || h.Currency != "EUR" {
		t.Fatalf("unexpected hotel line %+v", h)
	}

	tot, err := svc.Totals(ctx, p.ID)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	d := tot.Display()
	if d.Subtotal != "1200.00" || d.MarginAmount != "120.00" || d.CommissionAmount != "60.00" || d.GrandTotal != "1380.00" {
		t.Fatalf("unexpected totals %+v", d)
	}
}

func TestProposalService_UpdateLineCascade(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())
	p, _ := svc.Create(ctx, basicInfo())
	if _, err := svc.AddLine(ctx, p.ID, models.KindHotel, completeHotel()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddLine(ctx, p.ID, models.KindHotel, completeHotel()); err != nil {
		t.Fatalf("add second: %v", err)
	}

	line, err := svc.UpdateLine(ctx, p.ID, models.KindHotel, 1, itinerary.HotelPatch{DestinationID: ptr(int64(2))})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	h := line.(models.HotelLine)
	if h.HotelID != 0 || h.RoomType != "" || h.BoardType != "" || h.Currency != "" {
		t.Fatalf("cascade did not clear: %+v", h)
	}

	stored, _ := svc.Get(ctx, p.ID)
	if stored.Hotels[1].HotelID != 10 || stored.Hotels[1].RoomType != "DBL" {
		t.Fatalf("second hotel must be untouched: %+v", stored.Hotels[1])
	}
}

func TestProposalService_RejectsForeignCurrencyAtEntry(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := newProposalService(store)
	p, _ := svc.Create(ctx, basicInfo())

	patch := itinerary.FlightPatch{FlightType: ptr("domestic"), Date: ptr("2024-03-12"), Currency: ptr("usd")}
	_, err := svc.AddLine(ctx, p.ID, models.KindFlight, patch)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	stored, _ := svc.Get(ctx, p.ID)
	if len(stored.Flights) != 0 || stored.Version != 1 {
		t.Fatalf("rejected line must not be stored: %+v", stored.Flights)
	}
}

func TestProposalService_RefusesCurrencyChangeThatStrandsLines(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())
	p, _ := svc.Create(ctx, basicInfo())

	flight := itinerary.FlightPatch{FlightType: ptr("domestic"), Date: ptr("2024-03-12"), Pax: ptr(models.NumText("1")), PricePerPax: ptr(models.NumText("100"))}
	if _, err := svc.AddLine(ctx, p.ID, models.KindFlight, flight); err != nil {
		t.Fatalf("add flight: %v", err)
	}
	before, _ := svc.Get(ctx, p.ID)

	_, err := svc.UpdateBasicInfo(ctx, p.ID, BasicInfoPatch{Currency: ptr("USD")})
	msgs := domain.ValidationMessages(err)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "Flight 1 is priced in EUR") {
		t.Fatalf("expected currency change to be refused, got %v", err)
	}
	stored, _ := svc.Get(ctx, p.ID)
	if stored.Currency != "EUR" || stored.Version != before.Version {
		t.Fatalf("refused change must not be stored: currency=%s version=%d", stored.Currency, stored.Version)
	}
	tot, _ := svc.Totals(ctx, p.ID)
	if d := tot.Display(); d.Currency != "EUR" || d.Subtotal != "100.00" || len(d.Excluded) != 0 {
		t.Fatalf("unexpected totals %+v", d)
	}

	// same code in another case is not a change
	if _, err := svc.UpdateBasicInfo(ctx, p.ID, BasicInfoPatch{Currency: ptr(" eur ")}); err != nil {
		t.Fatalf("same currency: %v", err)
	}
}

func TestProposalService_CurrencyChangeAllowedWithoutPricedLines(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())
	p, _ := svc.Create(ctx, basicInfo())

	out, err := svc.UpdateBasicInfo(ctx, p.ID, BasicInfoPatch{Currency: ptr("usd")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out.Currency != "USD" {
		t.Fatalf("expected USD, got %q", out.Currency)
	}
}

func TestProposalService_TotalsExcludeLinesLeftInOldCurrency(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := newProposalService(store)
	p, _ := svc.Create(ctx, basicInfo())
	flight := itinerary.FlightPatch{FlightType: ptr("domestic"), Date: ptr("2024-03-12"), Pax: ptr(models.NumText("1")), PricePerPax: ptr(models.NumText("100"))}
	if _, err := svc.AddLine(ctx, p.ID, models.KindFlight, flight); err != nil {
		t.Fatalf("add flight: %v", err)
	}

	// rows written before the currency rule existed
	stored, _ := store.GetProposal(ctx, p.ID)
	stored.Currency = "USD"
	if err := store.SaveProposal(ctx, &stored); err != nil {
		t.Fatalf("save: %v", err)
	}

	tot, err := svc.Totals(ctx, p.ID)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !tot.Subtotal.IsZero() || len(tot.Excluded) != 1 || tot.Excluded[0] != (models.SelectionRef{Kind: models.KindFlight, ID: 1}) {
		t.Fatalf("EUR flight must be excluded from USD totals: %+v", tot)
	}
}

func TestProposalService_BasicInfoValidatesCodesAndDates(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())

	in := basicInfo()
	in.Currency = ptr("EURO")
	in.DisplayCurrency = ptr("u$d")
	in.StartDate = ptr("2024-03-10junk")
	in.EstimatedNights = ptr(-1)
	_, err := svc.Create(ctx, in)
	if msgs := domain.ValidationMessages(err); len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %v", err)
	}

	in = basicInfo()
	in.DisplayCurrency = ptr("try")
	in.StartDate = ptr("2024-03-10T08:30:00Z")
	in.EndDate = ptr(" 2024-03-25 ")
	p, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.DisplayCurrency != "TRY" || p.StartDate != "2024-03-10" || p.EndDate != "2024-03-25" {
		t.Fatalf("unexpected normalized fields: display=%q start=%q end=%q", p.DisplayCurrency, p.StartDate, p.EndDate)
	}

	out, err := svc.UpdateBasicInfo(ctx, p.ID, BasicInfoPatch{EndDate: ptr(""), DisplayCurrency: ptr("")})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if out.EndDate != "" || out.DisplayCurrency != "" {
		t.Fatalf("blank should clear: %+v", out)
	}
}

func TestProposalService_HotelOptionCheck(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())
	p, _ := svc.Create(ctx, basicInfo())

	patch := completeHotel()
	patch.RoomType = ptr("SUITE")
	_, err := svc.AddLine(ctx, p.ID, models.KindHotel, patch)
	msgs := domain.ValidationMessages(err)
	if len(msgs) != 1 || !strings.Contains(msgs[0], `room type "SUITE"`) {
		t.Fatalf("expected room type rejection, got %v", err)
	}

	// a dangling hotel skips the option check
	patch = completeHotel()
	patch.HotelID = ptr(int64(999))
	patch.RoomType = ptr("ANY")
	if _, err := svc.AddLine(ctx, p.ID, models.KindHotel, patch); err != nil {
		t.Fatalf("dangling hotel should degrade gracefully, got %v", err)
	}
}

func TestProposalService_FrozenAfterConfirm(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := newProposalService(store)
	p, _ := svc.Create(ctx, basicInfo())
	_, _ = svc.AddLine(ctx, p.ID, models.KindHotel, completeHotel())

	conf := ConfirmationService{Proposals: store, Now: func() time.Time { return fixedNow }}
	if _, err := conf.ConfirmProposal(ctx, p.ID, models.Selection{models.KindHotel: {1}}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := svc.AddLine(ctx, p.ID, models.KindFlight, nil); !domain.IsConflict(err) {
		t.Fatalf("add line after confirm: expected conflict, got %v", err)
	}
	if _, err := svc.UpdateBasicInfo(ctx, p.ID, BasicInfoPatch{Commission: ptr(models.NumText("1"))}); !domain.IsConflict(err) {
		t.Fatalf("update after confirm: expected conflict, got %v", err)
	}
	if _, err := svc.RemoveLine(ctx, p.ID, models.KindHotel, 1); !domain.IsConflict(err) {
		t.Fatalf("remove after confirm: expected conflict, got %v", err)
	}
	if _, err := svc.Cancel(ctx, p.ID); !domain.IsConflict(err) {
		t.Fatalf("cancel after confirm: expected conflict, got %v", err)
	}

	cp, err := svc.Copy(ctx, p.ID)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if cp.ID == p.ID || cp.Status != models.ProposalNew || cp.Reference == p.Reference {
		t.Fatalf("unexpected copy %+v", cp)
	}
	if cp.CopiedFrom == nil || *cp.CopiedFrom != p.ID || len(cp.Hotels) != 1 {
		t.Fatalf("copy must keep lines and origin: %+v", cp)
	}
	if _, err := svc.AddLine(ctx, cp.ID, models.KindFlight, nil); err != nil {
		t.Fatalf("copy should be editable: %v", err)
	}
}

func TestProposalService_CancelOnlyFromNew(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())
	p, _ := svc.Create(ctx, basicInfo())

	got, err := svc.Cancel(ctx, p.ID)
	if err != nil || got.Status != models.ProposalCancelled {
		t.Fatalf("cancel: %+v %v", got, err)
	}
	if _, err := svc.Cancel(ctx, p.ID); !domain.IsConflict(err) {
		t.Fatalf("second cancel: expected conflict, got %v", err)
	}
}

func TestProposalService_StaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())
	p, _ := svc.Create(ctx, basicInfo())

	if _, err := svc.UpdateBasicInfo(ctx, p.ID, BasicInfoPatch{Version: ptr(1), PDFLanguage: ptr("EN")}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if _, err := svc.UpdateBasicInfo(ctx, p.ID, BasicInfoPatch{Version: ptr(1), PDFLanguage: ptr("tr")}); !domain.IsConflict(err) {
		t.Fatalf("stale version: expected conflict, got %v", err)
	}
}

func TestProposalService_ValidateGates(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())
	p, _ := svc.Create(ctx, BasicInfoPatch{SourceID: ptr(int64(2))})
	for _, k := range models.AllKinds {
		if _, err := svc.AddLine(ctx, p.ID, k, nil); err != nil {
			t.Fatalf("add blank %s: %v", k, err)
		}
	}

	report, err := svc.Validate(ctx, p.ID, "all")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.Valid {
		t.Fatalf("expected failing report")
	}
	wantBasic := []string{"sales person is required", "at least one destination is required", "agency is required for an agency source"}
	if strings.Join(report.BasicInfo, "|") != strings.Join(wantBasic, "|") {
		t.Fatalf("unexpected basic errors %v", report.BasicInfo)
	}
	if len(report.Itinerary) != 1 || report.Itinerary[0] != "itinerary needs at least one service" {
		t.Fatalf("unexpected itinerary errors %v", report.Itinerary)
	}

	_, _ = svc.UpdateBasicInfo(ctx, p.ID, BasicInfoPatch{
		SalesPersonID: ptr(int64(3)), DestinationIDs: ptr([]int64{1}), AgencyID: ptr(int64(7)),
	})
	_, _ = svc.UpdateLine(ctx, p.ID, models.KindHotel, 1, completeHotel())
	report, _ = svc.Validate(ctx, p.ID, "")
	if !report.Valid {
		t.Fatalf("expected pass, got %+v", report)
	}

	if _, err := svc.Validate(ctx, p.ID, "payment"); !domain.IsValidation(err) {
		t.Fatalf("unknown phase: expected validation error, got %v", err)
	}
}

func TestProposalService_ViewLabels(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())
	in := basicInfo()
	in.DestinationIDs = ptr([]int64{1, 42})
	in.AgencyID = ptr(int64(77))
	p, _ := svc.Create(ctx, in)
	_, _ = svc.AddLine(ctx, p.ID, models.KindHotel, completeHotel())
	dangling := completeHotel()
	dangling.HotelID = ptr(int64(500))
	_, _ = svc.AddLine(ctx, p.ID, models.KindHotel, dangling)

	v, err := svc.View(ctx, p.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if v.SalesPersonName != "Selin" || v.SourceName != "Direct" || v.AgencyName != UnknownAgency {
		t.Fatalf("unexpected header labels %+v", v)
	}
	if len(v.DestinationNames) != 2 || v.DestinationNames[0] != "Istanbul" || v.DestinationNames[1] != UnknownDestination {
		t.Fatalf("unexpected destination labels %v", v.DestinationNames)
	}
	if len(v.LineLabels) != 2 || v.LineLabels[0].Hotel != "Pera Palace" || v.LineLabels[1].Hotel != UnknownHotel {
		t.Fatalf("unexpected line labels %+v", v.LineLabels)
	}
	if v.Totals.Subtotal != "2400.00" {
		t.Fatalf("unexpected subtotal %s", v.Totals.Subtotal)
	}
}

func TestProposalService_RemoveLineAndNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newProposalService(newStore())
	p, _ := svc.Create(ctx, basicInfo())
	_, _ = svc.AddLine(ctx, p.ID, models.KindFlight, nil)

	got, err := svc.RemoveLine(ctx, p.ID, models.KindFlight, 1)
	if err != nil || len(got.Flights) != 0 {
		t.Fatalf("remove: %+v %v", got.Flights, err)
	}
	if _, err := svc.RemoveLine(ctx, p.ID, models.KindFlight, 1); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Get(ctx, 999); !domain.IsNotFound(err) {
		t.Fatalf("expected not found proposal, got %v", err)
	}
}
