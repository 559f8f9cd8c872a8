package itinerary

import (
	"fmt"
	"sort"
	"strings"

	"tourquote/internal/domain/models"
	"tourquote/internal/pricing"
	"tourquote/internal/utils"
)

// LineResult is the outcome of validating one line.
type LineResult struct {
	Valid  bool     `json:"isValid"`
	Errors []string `json:"errors"`
}

func result(errs []string) LineResult {
	return LineResult{Valid: len(errs) == 0, Errors: errs}
}

// Every kind validator follows the same policy: a blank row is valid, a
// touched row must carry the kind's required fields. Price is never required.

func ValidateHotel(l models.HotelLine) LineResult {
	if l.IsBlank() {
		return result(nil)
	}
	var errs []string
	if l.DestinationID == 0 {
		errs = append(errs, "destination is required")
	}
	if l.HotelID == 0 {
		errs = append(errs, "hotel is required")
	}
	if blank(l.Checkin) && blank(l.Checkout) {
		errs = append(errs, "check-in or check-out date is required")
	}
	errs = append(errs, dateFormatErrors(map[string]string{"check-in": l.Checkin, "check-out": l.Checkout})...)
	if !blank(l.Checkin) && !blank(l.Checkout) && utils.NightsBetween(l.Checkin, l.Checkout) == 0 {
		errs = append(errs, "check-out must be after check-in")
	}
	if blank(l.RoomType) {
		errs = append(errs, "room type is required")
	}
	if blank(l.BoardType) {
		errs = append(errs, "board type is required")
	}
	return result(errs)
}

func ValidateTransportation(l models.TransportationLine) LineResult {
	if l.IsBlank() {
		return result(nil)
	}
	var errs []string
	if l.DestinationID == 0 {
		errs = append(errs, "destination is required")
	}
	if blank(l.VehicleType) {
		errs = append(errs, "vehicle type is required")
	}
	if blank(l.Date) {
		errs = append(errs, "date is required")
	}
	errs = append(errs, dateFormatErrors(map[string]string{"date": l.Date})...)
	return result(errs)
}

func ValidateFlight(l models.FlightLine) LineResult {
	if l.IsBlank() {
		return result(nil)
	}
	var errs []string
	if blank(l.FlightType) {
		errs = append(errs, "flight type is required")
	}
	if blank(l.Date) {
		errs = append(errs, "date is required")
	}
	errs = append(errs, dateFormatErrors(map[string]string{"date": l.Date})...)
	return result(errs)
}

func ValidateRentACar(l models.RentACarLine) LineResult {
	if l.IsBlank() {
		return result(nil)
	}
	var errs []string
	if l.DestinationID == 0 {
		errs = append(errs, "destination is required")
	}
	if blank(l.CarType) {
		errs = append(errs, "car type is required")
	}
	if blank(l.PickupDate) && blank(l.DropoffDate) {
		errs = append(errs, "pick-up or drop-off date is required")
	}
	errs = append(errs, dateFormatErrors(map[string]string{"pick-up": l.PickupDate, "drop-off": l.DropoffDate})...)
	return result(errs)
}

func ValidateAdditionalService(l models.AdditionalServiceLine) LineResult {
	if l.IsBlank() {
		return result(nil)
	}
	var errs []string
	if l.DestinationID == 0 {
		errs = append(errs, "destination is required")
	}
	if blank(l.ServiceType) {
		errs = append(errs, "service type is required")
	}
	if blank(l.Date) {
		errs = append(errs, "date is required")
	}
	errs = append(errs, dateFormatErrors(map[string]string{"date": l.Date})...)
	return result(errs)
}

// ValidateLine dispatches to the validator of the line's kind.
func ValidateLine(item models.LineItem) LineResult {
	switch l := item.(type) {
	case models.HotelLine:
		return ValidateHotel(l)
	case models.TransportationLine:
		return ValidateTransportation(l)
	case models.FlightLine:
		return ValidateFlight(l)
	case models.RentACarLine:
		return ValidateRentACar(l)
	case models.AdditionalServiceLine:
		return ValidateAdditionalService(l)
	default:
		return result([]string{fmt.Sprintf("unsupported line type %T", item)})
	}
}

// ValidateBasicInfo collects every missing basic-info field. It never
// mutates p and returns nil when p passes.
func ValidateBasicInfo(p models.Proposal) []string {
	var errs []string
	if p.SalesPersonID == 0 {
		errs = append(errs, "sales person is required")
	}
	if p.SourceID == 0 {
		errs = append(errs, "source is required")
	}
	if len(p.DestinationIDs) == 0 {
		errs = append(errs, "at least one destination is required")
	}
	if blank(p.Currency) {
		errs = append(errs, "proposal currency is required")
	}
	if !blank(p.StartDate) && !blank(p.EndDate) {
		start, errStart := utils.ParseDate(p.StartDate)
		end, errEnd := utils.ParseDate(p.EndDate)
		switch {
		case errStart != nil:
			errs = append(errs, "proposal start date is not a valid date")
		case errEnd != nil:
			errs = append(errs, "proposal end date is not a valid date")
		case end.Before(start):
			errs = append(errs, "proposal end date must not be before start date")
		}
	}
	return errs
}

// ValidateItinerary runs every line through its kind validator and requires
// at least one non-blank line overall. Touched lines must also sit inside
// the proposal date range and use the proposal currency.
func ValidateItinerary(p models.Proposal) []string {
	var errs []string
	proposalCur := utils.NormalizeCurrency(p.Currency)
	for _, line := range p.Itinerary.All() {
		prefix := fmt.Sprintf("%s #%d", line.Kind().Label(), line.LineID())
		for _, e := range ValidateLine(line).Errors {
			errs = append(errs, prefix+": "+e)
		}
		if line.IsBlank() {
			continue
		}
		for _, d := range line.EnteredDates() {
			if _, err := utils.ParseDate(d); err != nil {
				continue
			}
			if !utils.DateWithin(d, p.StartDate, p.EndDate) {
				errs = append(errs, fmt.Sprintf("%s: date %s is outside the proposal dates", prefix, d))
			}
		}
		if msg := CurrencyMismatch(line, proposalCur); msg != "" {
			errs = append(errs, prefix+": "+msg)
		}
	}
	if !p.Itinerary.HasEntries() {
		errs = append(errs, "itinerary needs at least one service")
	}
	return errs
}

// CurrencyMismatch returns a message when line carries a currency other than
// the proposal currency. A blank line currency means the proposal currency.
func CurrencyMismatch(line models.LineItem, proposalCurrency string) string {
	if pricing.InCurrency(line, proposalCurrency) {
		return ""
	}
	return fmt.Sprintf("currency %s differs from proposal currency %s",
		utils.NormalizeCurrency(line.LineCurrency()), utils.NormalizeCurrency(proposalCurrency))
}

func dateFormatErrors(fields map[string]string) []string {
	var errs []string
	for _, name := range sortedKeys(fields) {
		v := fields[name]
		if blank(v) {
			continue
		}
		if _, err := utils.ParseDate(v); err != nil {
			errs = append(errs, name+" is not a valid date")
		}
	}
	return errs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
