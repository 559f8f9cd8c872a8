package models

// Itinerary holds the five line-item collections of a proposal. Line ids are
// unique within one collection only.
type Itinerary struct {
	Hotels             []HotelLine             `json:"hotels"`
	Transportation     []TransportationLine    `json:"transportation"`
	Flights            []FlightLine            `json:"flights"`
	RentACar           []RentACarLine          `json:"rentACar"`
	AdditionalServices []AdditionalServiceLine `json:"additionalServices"`
}

// Clone returns a copy that shares no slice storage with it. Line structs
// hold only values, so copying the slices is a deep copy.
func (it Itinerary) Clone() Itinerary {
	return Itinerary{
		Hotels:             append([]HotelLine(nil), it.Hotels...),
		Transportation:     append([]TransportationLine(nil), it.Transportation...),
		Flights:            append([]FlightLine(nil), it.Flights...),
		RentACar:           append([]RentACarLine(nil), it.RentACar...),
		AdditionalServices: append([]AdditionalServiceLine(nil), it.AdditionalServices...),
	}
}

// Lines returns every line of one kind, in collection order.
func (it Itinerary) Lines(kind ServiceKind) []LineItem {
	var out []LineItem
	switch kind {
	case KindHotel:
		for _, l := range it.Hotels {
			out = append(out, l)
		}
	case KindTransportation:
		for _, l := range it.Transportation {
			out = append(out, l)
		}
	case KindFlight:
		for _, l := range it.Flights {
			out = append(out, l)
		}
	case KindRentACar:
		for _, l := range it.RentACar {
			out = append(out, l)
		}
	case KindAdditional:
		for _, l := range it.AdditionalServices {
			out = append(out, l)
		}
	}
	return out
}

// All returns every line across the five collections in AllKinds order.
func (it Itinerary) All() []LineItem {
	var out []LineItem
	for _, k := range AllKinds {
		out = append(out, it.Lines(k)...)
	}
	return out
}

// Find looks a line up by id within the collection of kind.
func (it Itinerary) Find(kind ServiceKind, id int) (LineItem, bool) {
	for _, l := range it.Lines(kind) {
		if l.LineID() == id {
			return l, true
		}
	}
	return nil, false
}

// NextID returns max(id)+1 for the collection of kind.
func (it Itinerary) NextID(kind ServiceKind) int {
	next := 1
	for _, l := range it.Lines(kind) {
		if l.LineID() >= next {
			next = l.LineID() + 1
		}
	}
	return next
}

// HasEntries reports whether at least one line anywhere is not blank.
func (it Itinerary) HasEntries() bool {
	for _, l := range it.All() {
		if !l.IsBlank() {
			return true
		}
	}
	return false
}
