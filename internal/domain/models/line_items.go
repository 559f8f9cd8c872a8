package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is implemented by the five service-line variants. The concrete
// type tells which collection a line lives in.
type LineItem interface {
	Kind() ServiceKind
	LineID() int
	// LineDestination is 0 when not set or not applicable (flights).
	LineDestination() int64
	LineCurrency() string
	LineTotal() decimal.Decimal
	// EnteredDates returns the non-blank dates the user typed.
	EnteredDates() []string
	// IsBlank reports an untouched row: no user-entered field at all.
	// Id, currency default and derived values do not count as entries.
	IsBlank() bool
}

// HotelLine is a hotel stay: nights × pricePerNight × numRooms.
type HotelLine struct {
	ID            int             `json:"id"`
	DestinationID int64           `json:"destinationId"`
	HotelID       int64           `json:"hotelId"`
	Checkin       string          `json:"checkin"`
	Checkout      string          `json:"checkout"`
	Nights        int             `json:"nights"`
	RoomType      string          `json:"roomType"`
	BoardType     string          `json:"boardType"`
	NumRooms      NumText         `json:"numRooms"`
	PricePerNight NumText         `json:"pricePerNight"`
	Currency      string          `json:"currency"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

func (l HotelLine) Kind() ServiceKind          { return KindHotel }
func (l HotelLine) LineID() int                { return l.ID }
func (l HotelLine) LineDestination() int64     { return l.DestinationID }
func (l HotelLine) LineCurrency() string       { return l.Currency }
func (l HotelLine) LineTotal() decimal.Decimal { return l.TotalPrice }
func (l HotelLine) EnteredDates() []string     { return nonBlank(l.Checkin, l.Checkout) }

func (l HotelLine) IsBlank() bool {
	return l.DestinationID == 0 && l.HotelID == 0 &&
		allBlank(l.Checkin, l.Checkout, l.RoomType, l.BoardType) &&
		l.NumRooms.IsBlank() && l.PricePerNight.IsBlank()
}

// TransportationLine is a vehicle hire by the day: pricePerDay × numDays × numVehicles.
type TransportationLine struct {
	ID            int             `json:"id"`
	DestinationID int64           `json:"destinationId"`
	Date          string          `json:"date"`
	VehicleType   string          `json:"vehicleType"`
	NumDays       NumText         `json:"numDays"`
	NumVehicles   NumText         `json:"numVehicles"`
	PricePerDay   NumText         `json:"pricePerDay"`
	Currency      string          `json:"currency"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

func (l TransportationLine) Kind() ServiceKind          { return KindTransportation }
func (l TransportationLine) LineID() int                { return l.ID }
func (l TransportationLine) LineDestination() int64     { return l.DestinationID }
func (l TransportationLine) LineCurrency() string       { return l.Currency }
func (l TransportationLine) LineTotal() decimal.Decimal { return l.TotalPrice }
func (l TransportationLine) EnteredDates() []string     { return nonBlank(l.Date) }

func (l TransportationLine) IsBlank() bool {
	return l.DestinationID == 0 && allBlank(l.Date, l.VehicleType) &&
		l.NumDays.IsBlank() && l.NumVehicles.IsBlank() && l.PricePerDay.IsBlank()
}

// FlightLine is a flight segment: pricePerPax × pax. Flights carry no destination.
type FlightLine struct {
	ID            int             `json:"id"`
	Date          string          `json:"date"`
	Departure     string          `json:"departure"`
	Arrival       string          `json:"arrival"`
	DepartureTime string          `json:"departureTime"`
	ArrivalTime   string          `json:"arrivalTime"`
	FlightType    string          `json:"flightType"`
	Pax           NumText         `json:"pax"`
	PricePerPax   NumText         `json:"pricePerPax"`
	Currency      string          `json:"currency"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

func (l FlightLine) Kind() ServiceKind          { return KindFlight }
func (l FlightLine) LineID() int                { return l.ID }
func (l FlightLine) LineDestination() int64     { return 0 }
func (l FlightLine) LineCurrency() string       { return l.Currency }
func (l FlightLine) LineTotal() decimal.Decimal { return l.TotalPrice }
func (l FlightLine) EnteredDates() []string     { return nonBlank(l.Date) }

func (l FlightLine) IsBlank() bool {
	return allBlank(l.Date, l.Departure, l.Arrival, l.DepartureTime, l.ArrivalTime, l.FlightType) &&
		l.Pax.IsBlank() && l.PricePerPax.IsBlank()
}

// RentACarLine is a car rental: pricePerDay × numDays.
type RentACarLine struct {
	ID            int             `json:"id"`
	DestinationID int64           `json:"destinationId"`
	PickupDate    string          `json:"pickupDate"`
	DropoffDate   string          `json:"dropoffDate"`
	CarType       string          `json:"carType"`
	NumDays       NumText         `json:"numDays"`
	NumCars       NumText         `json:"numCars"`
	PricePerDay   NumText         `json:"pricePerDay"`
	Currency      string          `json:"currency"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

func (l RentACarLine) Kind() ServiceKind          { return KindRentACar }
func (l RentACarLine) LineID() int                { return l.ID }
func (l RentACarLine) LineDestination() int64     { return l.DestinationID }
func (l RentACarLine) LineCurrency() string       { return l.Currency }
func (l RentACarLine) LineTotal() decimal.Decimal { return l.TotalPrice }
func (l RentACarLine) EnteredDates() []string     { return nonBlank(l.PickupDate, l.DropoffDate) }

func (l RentACarLine) IsBlank() bool {
	return l.DestinationID == 0 && allBlank(l.PickupDate, l.DropoffDate, l.CarType) &&
		l.NumDays.IsBlank() && l.NumCars.IsBlank() && l.PricePerDay.IsBlank()
}

// AdditionalServiceLine is any other service: pricePerDay × numDays × numPeople.
type AdditionalServiceLine struct {
	ID            int             `json:"id"`
	DestinationID int64           `json:"destinationId"`
	Date          string          `json:"date"`
	ServiceType   string          `json:"serviceType"`
	NumDays       NumText         `json:"numDays"`
	NumPeople     NumText         `json:"numPeople"`
	PricePerDay   NumText         `json:"pricePerDay"`
	Currency      string          `json:"currency"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

func (l AdditionalServiceLine) Kind() ServiceKind          { return KindAdditional }
func (l AdditionalServiceLine) LineID() int                { return l.ID }
func (l AdditionalServiceLine) LineDestination() int64     { return l.DestinationID }
func (l AdditionalServiceLine) LineCurrency() string       { return l.Currency }
func (l AdditionalServiceLine) LineTotal() decimal.Decimal { return l.TotalPrice }
func (l AdditionalServiceLine) EnteredDates() []string     { return nonBlank(l.Date) }

func (l AdditionalServiceLine) IsBlank() bool {
	return l.DestinationID == 0 && allBlank(l.Date, l.ServiceType) &&
		l.NumDays.IsBlank() && l.NumPeople.IsBlank() && l.PricePerDay.IsBlank()
}

func allBlank(vals ...string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func nonBlank(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
