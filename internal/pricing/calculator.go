// Package pricing computes line totals and proposal totals. All arithmetic
// keeps full decimal precision; rounding to cents is done by Display.
package pricing

import (
	"tourquote/internal/domain/models"
	"tourquote/internal/utils"

	"github.com/shopspring/decimal"
)

// Totals is the aggregate of one proposal, in the proposal currency.
type Totals struct {
	Currency          string                                 `json:"currency"`
	ByKind            map[models.ServiceKind]decimal.Decimal `json:"byKind"`
	Subtotal          decimal.Decimal                        `json:"subtotal"`
	MarginPercent     decimal.Decimal                        `json:"marginPercent"`
	MarginAmount      decimal.Decimal                        `json:"marginAmount"`
	CommissionPercent decimal.Decimal                        `json:"commissionPercent"`
	CommissionAmount  decimal.Decimal                        `json:"commissionAmount"`
	GrandTotal        decimal.Decimal                        `json:"grandTotal"`
	// Excluded lists lines tagged with another currency. They are left out of
	// every sum above.
	Excluded []models.SelectionRef `json:"excluded"`
}

// DisplayTotals is Totals rounded to two decimals and rendered as text.
type DisplayTotals struct {
	Currency         string                        `json:"currency"`
	ByKind           map[models.ServiceKind]string `json:"byKind"`
	Subtotal         string                        `json:"subtotal"`
	MarginAmount     string                        `json:"marginAmount"`
	CommissionAmount string                        `json:"commissionAmount"`
	GrandTotal       string                        `json:"grandTotal"`
	Excluded         []models.SelectionRef         `json:"excluded"`
}

// HotelTotal is nights × pricePerNight × numRooms.
func HotelTotal(l models.HotelLine) decimal.Decimal {
	nights := decimal.NewFromInt(int64(utils.NightsBetween(l.Checkin, l.Checkout)))
	return nights.
		Mul(utils.ParseAmountOrZero(l.PricePerNight.String())).
		Mul(utils.ParseAmountOrZero(l.NumRooms.String()))
}

// TransportationTotal is pricePerDay × numDays × numVehicles.
func TransportationTotal(l models.TransportationLine) decimal.Decimal {
	return utils.ParseAmountOrZero(l.PricePerDay.String()).
		Mul(utils.ParseAmountOrZero(l.NumDays.String())).
		Mul(utils.ParseAmountOrZero(l.NumVehicles.String()))
}

// FlightTotal is pricePerPax × pax.
func FlightTotal(l models.FlightLine) decimal.Decimal {
	return utils.ParseAmountOrZero(l.PricePerPax.String()).
		Mul(utils.ParseAmountOrZero(l.Pax.String()))
}

// RentACarTotal is pricePerDay × numDays. The number of cars does not
// multiply the price.
func RentACarTotal(l models.RentACarLine) decimal.Decimal {
	return utils.ParseAmountOrZero(l.PricePerDay.String()).
		Mul(utils.ParseAmountOrZero(l.NumDays.String()))
}

// AdditionalServiceTotal is pricePerDay × numDays × numPeople.
func AdditionalServiceTotal(l models.AdditionalServiceLine) decimal.Decimal {
	return utils.ParseAmountOrZero(l.PricePerDay.String()).
		Mul(utils.ParseAmountOrZero(l.NumDays.String())).
		Mul(utils.ParseAmountOrZero(l.NumPeople.String()))
}

// ComputeLineTotal recomputes a line's total from its raw inputs. The stored
// TotalPrice is ignored.
func ComputeLineTotal(item models.LineItem) decimal.Decimal {
	switch l := item.(type) {
	case models.HotelLine:
		return HotelTotal(l)
	case *models.HotelLine:
		return HotelTotal(*l)
	case models.TransportationLine:
		return TransportationTotal(l)
	case *models.TransportationLine:
		return TransportationTotal(*l)
	case models.FlightLine:
		return FlightTotal(l)
	case *models.FlightLine:
		return FlightTotal(*l)
	case models.RentACarLine:
		return RentACarTotal(l)
	case *models.RentACarLine:
		return RentACarTotal(*l)
	case models.AdditionalServiceLine:
		return AdditionalServiceTotal(l)
	case *models.AdditionalServiceLine:
		return AdditionalServiceTotal(*l)
	default:
		return decimal.Zero
	}
}

// InCurrency reports whether line may be summed into a total kept in
// currency. A blank tag on either side means the proposal currency.
func InCurrency(line models.LineItem, currency string) bool {
	cur := utils.NormalizeCurrency(line.LineCurrency())
	currency = utils.NormalizeCurrency(currency)
	return cur == "" || currency == "" || cur == currency
}

// KindSubtotal sums ComputeLineTotal over the lines of one collection that
// are in currency. The refs of the other lines are returned as skipped.
func KindSubtotal(it models.Itinerary, kind models.ServiceKind, currency string) (decimal.Decimal, []models.SelectionRef) {
	sum := decimal.Zero
	var skipped []models.SelectionRef
	for _, l := range it.Lines(kind) {
		if !InCurrency(l, currency) {
			skipped = append(skipped, models.SelectionRef{Kind: kind, ID: l.LineID()})
			continue
		}
		sum = sum.Add(ComputeLineTotal(l))
	}
	return sum, skipped
}

// ComputeProposalTotals aggregates every line of p that is in the proposal
// currency. Margin and commission are both taken on the subtotal and added,
// never compounded.
func ComputeProposalTotals(p models.Proposal) Totals {
	t := Totals{
		Currency: utils.NormalizeCurrency(p.Currency),
		ByKind:   make(map[models.ServiceKind]decimal.Decimal, len(models.AllKinds)),
		Subtotal: decimal.Zero,
		Excluded: []models.SelectionRef{},
	}
	for _, k := range models.AllKinds {
		sub, skipped := KindSubtotal(p.Itinerary, k, t.Currency)
		t.ByKind[k] = sub
		t.Subtotal = t.Subtotal.Add(sub)
		t.Excluded = append(t.Excluded, skipped...)
	}
	t.MarginPercent = utils.ParsePercentOrZero(p.OverallMargin)
	t.CommissionPercent = utils.ParsePercentOrZero(p.Commission)
	t.MarginAmount = utils.ApplyPercent(t.Subtotal, t.MarginPercent)
	t.CommissionAmount = utils.ApplyPercent(t.Subtotal, t.CommissionPercent)
	t.GrandTotal = t.Subtotal.Add(t.MarginAmount).Add(t.CommissionAmount)
	return t
}

// Display rounds every amount to cents for presentation.
func (t Totals) Display() DisplayTotals {
	out := DisplayTotals{
		Currency:         t.Currency,
		ByKind:           make(map[models.ServiceKind]string, len(t.ByKind)),
		Subtotal:         utils.FormatMoney(t.Subtotal),
		MarginAmount:     utils.FormatMoney(t.MarginAmount),
		CommissionAmount: utils.FormatMoney(t.CommissionAmount),
		GrandTotal:       utils.FormatMoney(t.GrandTotal),
		Excluded:         append([]models.SelectionRef{}, t.Excluded...),
	}
	for k, v := range t.ByKind {
		out.ByKind[k] = utils.FormatMoney(v)
	}
	return out
}
