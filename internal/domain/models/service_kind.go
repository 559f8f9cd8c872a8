package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ServiceKind discriminates the five line-item collections. The string value
// is the wire value stored on vouchers.
type ServiceKind string

const (
	KindHotel          ServiceKind = "hotel"
	KindTransportation ServiceKind = "transportation"
	KindFlight         ServiceKind = "flight"
	KindRentACar       ServiceKind = "rentacar"
	KindAdditional     ServiceKind = "additional"
)

// AllKinds lists the kinds in the order collections are shown and confirmed.
var AllKinds = []ServiceKind{KindHotel, KindTransportation, KindFlight, KindRentACar, KindAdditional}

var kindAliases = map[string]ServiceKind{
	"hotel":               KindHotel,
	"hotels":              KindHotel,
	"transportation":      KindTransportation,
	"transportations":     KindTransportation,
	"transport":           KindTransportation,
	"flight":              KindFlight,
	"flights":             KindFlight,
	"rentacar":            KindRentACar,
	"rentacars":           KindRentACar,
	"rent_a_car":          KindRentACar,
	"additional":          KindAdditional,
	"additionalservice":   KindAdditional,
	"additionalservices":  KindAdditional,
	"additional_services": KindAdditional,
}

// ParseServiceKind accepts the wire value or a collection alias such as
// "hotels" or "rentACar", case-insensitively.
func ParseServiceKind(s string) (ServiceKind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if k, ok := kindAliases[key]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown service kind %q", s)
}

func (k ServiceKind) Valid() bool {
	for _, v := range AllKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Label is the human name used in validation messages.
func (k ServiceKind) Label() string {
	switch k {
	case KindHotel:
		return "Hotel"
	case KindTransportation:
		return "Transportation"
	case KindFlight:
		return "Flight"
	case KindRentACar:
		return "Rent a car"
	case KindAdditional:
		return "Additional service"
	default:
		return string(k)
	}
}

func (k *ServiceKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseServiceKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
