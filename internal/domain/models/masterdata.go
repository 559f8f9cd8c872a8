package models

// Master data records are read-only inputs owned by another part of the
// application.

type Destination struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Hotel lists the room, board and currency options valid for its lines.
type Hotel struct {
	ID            int64    `json:"id"`
	DestinationID int64    `json:"destinationId"`
	Name          string   `json:"name"`
	RoomTypes     []string `json:"roomTypes"`
	BoardTypes    []string `json:"boardTypes"`
	Currencies    []string `json:"currencies"`
}

type Agency struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is a staff member. PasswordHash is a bcrypt hash and never leaves the
// repository layer in responses.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	PasswordHash string `json:"-"`
}

// Source is a booking channel. IsAgency marks channels that need an agency.
type Source struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsAgency bool   `json:"isAgency"`
}
