// Package itinerary edits and validates the line-item collections of a
// proposal. Edits go through typed patches per service kind so that the
// cascading clears on hotel lines cannot be skipped by a caller.
package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"

	"tourquote/internal/domain"
	"tourquote/internal/domain/models"
	"tourquote/internal/pricing"
	"tourquote/internal/utils"
)

// Patch is a PATCH-style change to one line; nil fields are left untouched.
type Patch interface {
	Kind() models.ServiceKind
}

type HotelPatch struct {
	DestinationID *int64          `json:"destinationId"`
	HotelID       *int64          `json:"hotelId"`
	Checkin       *string         `json:"checkin"`
	Checkout      *string         `json:"checkout"`
	RoomType      *string         `json:"roomType"`
	BoardType     *string         `json:"boardType"`
	NumRooms      *models.NumText `json:"numRooms"`
	PricePerNight *models.NumText `json:"pricePerNight"`
	Currency      *string         `json:"currency"`
}

type TransportationPatch struct {
	DestinationID *int64          `json:"destinationId"`
	Date          *string         `json:"date"`
	VehicleType   *string         `json:"vehicleType"`
	NumDays       *models.NumText `json:"numDays"`
	NumVehicles   *models.NumText `json:"numVehicles"`
	PricePerDay   *models.NumText `json:"pricePerDay"`
	Currency      *string         `json:"currency"`
}

type FlightPatch struct {
	Date          *string         `json:"date"`
	Departure     *string         `json:"departure"`
	Arrival       *string         `json:"arrival"`
	DepartureTime *string         `json:"departureTime"`
	ArrivalTime   *string         `json:"arrivalTime"`
	FlightType    *string         `json:"flightType"`
	Pax           *models.NumText `json:"pax"`
	PricePerPax   *models.NumText `json:"pricePerPax"`
	Currency      *string         `json:"currency"`
}

type RentACarPatch struct {
	DestinationID *int64          `json:"destinationId"`
	PickupDate    *string         `json:"pickupDate"`
	DropoffDate   *string         `json:"dropoffDate"`
	CarType       *string         `json:"carType"`
	NumDays       *models.NumText `json:"numDays"`
	NumCars       *models.NumText `json:"numCars"`
	PricePerDay   *models.NumText `json:"pricePerDay"`
	Currency      *string         `json:"currency"`
}

type AdditionalServicePatch struct {
	DestinationID *int64          `json:"destinationId"`
	Date          *string         `json:"date"`
	ServiceType   *string         `json:"serviceType"`
	NumDays       *models.NumText `json:"numDays"`
	NumPeople     *models.NumText `json:"numPeople"`
	PricePerDay   *models.NumText `json:"pricePerDay"`
	Currency      *string         `json:"currency"`
}

func (HotelPatch) Kind() models.ServiceKind             { return models.KindHotel }
func (TransportationPatch) Kind() models.ServiceKind    { return models.KindTransportation }
func (FlightPatch) Kind() models.ServiceKind            { return models.KindFlight }
func (RentACarPatch) Kind() models.ServiceKind          { return models.KindRentACar }
func (AdditionalServicePatch) Kind() models.ServiceKind { return models.KindAdditional }

// DecodePatch parses a JSON body into the patch type of kind.
func DecodePatch(kind models.ServiceKind, raw []byte) (Patch, error) {
	var (
		p   Patch
		err error
	)
	switch kind {
	case models.KindHotel:
		var v HotelPatch
		err = json.Unmarshal(raw, &v)
		p = v
	case models.KindTransportation:
		var v TransportationPatch
		err = json.Unmarshal(raw, &v)
		p = v
	case models.KindFlight:
		var v FlightPatch
		err = json.Unmarshal(raw, &v)
		p = v
	case models.KindRentACar:
		var v RentACarPatch
		err = json.Unmarshal(raw, &v)
		p = v
	case models.KindAdditional:
		var v AdditionalServicePatch
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		return nil, domain.ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown service kind %q", kind)}
	}
	if err != nil {
		return nil, domain.ValidationError{Field: "body", Msg: "invalid line payload", Err: err}
	}
	return p, nil
}

// ApplyHotelPatch applies p to l. A new destination clears the hotel and
// everything that depends on it; a new hotel clears room, board and
// currency. Explicit values in the same patch are applied after the clears.
func ApplyHotelPatch(l models.HotelLine, p HotelPatch) models.HotelLine {
	if p.DestinationID != nil && *p.DestinationID != l.DestinationID {
		l.DestinationID = *p.DestinationID
		l.HotelID = 0
		l.RoomType = ""
		l.BoardType = ""
		l.Currency = ""
	}
	if p.HotelID != nil && *p.HotelID != l.HotelID {
		l.HotelID = *p.HotelID
		l.RoomType = ""
		l.BoardType = ""
		l.Currency = ""
	}
	setString(&l.Checkin, p.Checkin)
	setString(&l.Checkout, p.Checkout)
	setString(&l.RoomType, p.RoomType)
	setString(&l.BoardType, p.BoardType)
	setNum(&l.NumRooms, p.NumRooms)
	setNum(&l.PricePerNight, p.PricePerNight)
	setCurrency(&l.Currency, p.Currency)
	return RefreshHotel(l)
}

func ApplyTransportationPatch(l models.TransportationLine, p TransportationPatch) models.TransportationLine {
	if p.DestinationID != nil {
		l.DestinationID = *p.DestinationID
	}
	setString(&l.Date, p.Date)
	setString(&l.VehicleType, p.VehicleType)
	setNum(&l.NumDays, p.NumDays)
	setNum(&l.NumVehicles, p.NumVehicles)
	setNum(&l.PricePerDay, p.PricePerDay)
	setCurrency(&l.Currency, p.Currency)
	l.TotalPrice = pricing.TransportationTotal(l)
	return l
}

func ApplyFlightPatch(l models.FlightLine, p FlightPatch) models.FlightLine {
	setString(&l.Date, p.Date)
	setString(&l.Departure, p.Departure)
	setString(&l.Arrival, p.Arrival)
	setString(&l.DepartureTime, p.DepartureTime)
	setString(&l.ArrivalTime, p.ArrivalTime)
	setString(&l.FlightType, p.FlightType)
	setNum(&l.Pax, p.Pax)
	setNum(&l.PricePerPax, p.PricePerPax)
	setCurrency(&l.Currency, p.Currency)
	l.TotalPrice = pricing.FlightTotal(l)
	return l
}

func ApplyRentACarPatch(l models.RentACarLine, p RentACarPatch) models.RentACarLine {
	if p.DestinationID != nil {
		l.DestinationID = *p.DestinationID
	}
	setString(&l.PickupDate, p.PickupDate)
	setString(&l.DropoffDate, p.DropoffDate)
	setString(&l.CarType, p.CarType)
	setNum(&l.NumDays, p.NumDays)
	setNum(&l.NumCars, p.NumCars)
	setNum(&l.PricePerDay, p.PricePerDay)
	setCurrency(&l.Currency, p.Currency)
	l.TotalPrice = pricing.RentACarTotal(l)
	return l
}

func ApplyAdditionalServicePatch(l models.AdditionalServiceLine, p AdditionalServicePatch) models.AdditionalServiceLine {
	if p.DestinationID != nil {
		l.DestinationID = *p.DestinationID
	}
	setString(&l.Date, p.Date)
	setString(&l.ServiceType, p.ServiceType)
	setNum(&l.NumDays, p.NumDays)
	setNum(&l.NumPeople, p.NumPeople)
	setNum(&l.PricePerDay, p.PricePerDay)
	setCurrency(&l.Currency, p.Currency)
	l.TotalPrice = pricing.AdditionalServiceTotal(l)
	return l
}

// RefreshHotel recomputes the derived nights and total of a hotel line.
func RefreshHotel(l models.HotelLine) models.HotelLine {
	l.Nights = utils.NightsBetween(l.Checkin, l.Checkout)
	l.TotalPrice = pricing.HotelTotal(l)
	return l
}

// Refresh recomputes every derived value in it. Used after loading rows
// written by older code, where stored totals cannot be trusted.
func Refresh(it *models.Itinerary) {
	for i := range it.Hotels {
		it.Hotels[i] = RefreshHotel(it.Hotels[i])
	}
	for i := range it.Transportation {
		it.Transportation[i].TotalPrice = pricing.TransportationTotal(it.Transportation[i])
	}
	for i := range it.Flights {
		it.Flights[i].TotalPrice = pricing.FlightTotal(it.Flights[i])
	}
	for i := range it.RentACar {
		it.RentACar[i].TotalPrice = pricing.RentACarTotal(it.RentACar[i])
	}
	for i := range it.AdditionalServices {
		it.AdditionalServices[i].TotalPrice = pricing.AdditionalServiceTotal(it.AdditionalServices[i])
	}
}

// AddLine appends a new line of kind with the next free id. The currency
// defaults to defaultCurrency; patch may be nil for a blank row.
func AddLine(it *models.Itinerary, kind models.ServiceKind, defaultCurrency string, patch Patch) (models.LineItem, error) {
	if patch != nil && patch.Kind() != kind {
		return nil, domain.ValidationError{Field: "kind", Msg: "patch does not match service kind"}
	}
	id := it.NextID(kind)
	cur := utils.NormalizeCurrency(defaultCurrency)
	switch kind {
	case models.KindHotel:
		it.Hotels = append(it.Hotels, models.HotelLine{ID: id, Currency: cur})
	case models.KindTransportation:
		it.Transportation = append(it.Transportation, models.TransportationLine{ID: id, Currency: cur})
	case models.KindFlight:
		it.Flights = append(it.Flights, models.FlightLine{ID: id, Currency: cur})
	case models.KindRentACar:
		it.RentACar = append(it.RentACar, models.RentACarLine{ID: id, Currency: cur})
	case models.KindAdditional:
		it.AdditionalServices = append(it.AdditionalServices, models.AdditionalServiceLine{ID: id, Currency: cur})
	default:
		return nil, domain.ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown service kind %q", kind)}
	}
	if patch == nil {
		line, _ := it.Find(kind, id)
		return line, nil
	}
	if _, err := UpdateLine(it, kind, id, patch); err != nil {
		return nil, err
	}
	// a hotel cascade in the same patch may have cleared the default
	fillBlankCurrency(it, kind, id, cur)
	line, _ := it.Find(kind, id)
	return line, nil
}

func fillBlankCurrency(it *models.Itinerary, kind models.ServiceKind, id int, cur string) {
	fill := func(dst *string) {
		if *dst == "" {
			*dst = cur
		}
	}
	switch kind {
	case models.KindHotel:
		for i := range it.Hotels {
			if it.Hotels[i].ID == id {
				fill(&it.Hotels[i].Currency)
			}
		}
	case models.KindTransportation:
		for i := range it.Transportation {
			if it.Transportation[i].ID == id {
				fill(&it.Transportation[i].Currency)
			}
		}
	case models.KindFlight:
		for i := range it.Flights {
			if it.Flights[i].ID == id {
				fill(&it.Flights[i].Currency)
			}
		}
	case models.KindRentACar:
		for i := range it.RentACar {
			if it.RentACar[i].ID == id {
				fill(&it.RentACar[i].Currency)
			}
		}
	case models.KindAdditional:
		for i := range it.AdditionalServices {
			if it.AdditionalServices[i].ID == id {
				fill(&it.AdditionalServices[i].Currency)
			}
		}
	}
}

// UpdateLine applies patch to the line (kind, id) in place and returns the
// updated line. Other lines are never touched.
func UpdateLine(it *models.Itinerary, kind models.ServiceKind, id int, patch Patch) (models.LineItem, error) {
	if patch == nil || patch.Kind() != kind {
		return nil, domain.ValidationError{Field: "kind", Msg: "patch does not match service kind"}
	}
	notFound := domain.NotFoundError{Resource: fmt.Sprintf("%s line %d", kind, id)}
	switch p := patch.(type) {
	case HotelPatch:
		for i := range it.Hotels {
			if it.Hotels[i].ID == id {
				it.Hotels[i] = ApplyHotelPatch(it.Hotels[i], p)
				return it.Hotels[i], nil
			}
		}
	case TransportationPatch:
		for i := range it.Transportation {
			if it.Transportation[i].ID == id {
				it.Transportation[i] = ApplyTransportationPatch(it.Transportation[i], p)
				return it.Transportation[i], nil
			}
		}
	case FlightPatch:
		for i := range it.Flights {
			if it.Flights[i].ID == id {
				it.Flights[i] = ApplyFlightPatch(it.Flights[i], p)
				return it.Flights[i], nil
			}
		}
	case RentACarPatch:
		for i := range it.RentACar {
			if it.RentACar[i].ID == id {
				it.RentACar[i] = ApplyRentACarPatch(it.RentACar[i], p)
				return it.RentACar[i], nil
			}
		}
	case AdditionalServicePatch:
		for i := range it.AdditionalServices {
			if it.AdditionalServices[i].ID == id {
				it.AdditionalServices[i] = ApplyAdditionalServicePatch(it.AdditionalServices[i], p)
				return it.AdditionalServices[i], nil
			}
		}
	default:
		return nil, domain.ValidationError{Field: "kind", Msg: "unsupported patch"}
	}
	return nil, notFound
}

// RemoveLine deletes the line (kind, id). Remaining ids are not renumbered.
func RemoveLine(it *models.Itinerary, kind models.ServiceKind, id int) error {
	removed := false
	switch kind {
	case models.KindHotel:
		it.Hotels, removed = removeByID(it.Hotels, id, func(l models.HotelLine) int { return l.ID })
	case models.KindTransportation:
		it.Transportation, removed = removeByID(it.Transportation, id, func(l models.TransportationLine) int { return l.ID })
	case models.KindFlight:
		it.Flights, removed = removeByID(it.Flights, id, func(l models.FlightLine) int { return l.ID })
	case models.KindRentACar:
		it.RentACar, removed = removeByID(it.RentACar, id, func(l models.RentACarLine) int { return l.ID })
	case models.KindAdditional:
		it.AdditionalServices, removed = removeByID(it.AdditionalServices, id, func(l models.AdditionalServiceLine) int { return l.ID })
	default:
		return domain.ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown service kind %q", kind)}
	}
	if !removed {
		return domain.NotFoundError{Resource: fmt.Sprintf("%s line %d", kind, id)}
	}
	return nil
}

func removeByID[T any](lines []T, id int, idOf func(T) int) ([]T, bool) {
	out := make([]T, 0, len(lines))
	removed := false
	for _, l := range lines {
		if idOf(l) == id {
			removed = true
			continue
		}
		out = append(out, l)
	}
	return out, removed
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setNum(dst *models.NumText, v *models.NumText) {
	if v != nil {
		*dst = models.NumText(strings.TrimSpace(v.String()))
	}
}

func setCurrency(dst *string, v *string) {
	if v != nil {
		*dst = utils.NormalizeCurrency(*v)
	}
}
