package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	intconfig "tourquote/internal/config"
	intdb "tourquote/internal/db"
	"tourquote/internal/domain"
	"tourquote/internal/domain/models"
)

// MySQLMasterDataRepository reads destinations, hotels, agencies, users and
// sources. It never writes.
type MySQLMasterDataRepository struct {
	DB *sql.DB
}

var _ MasterDataRepository = MySQLMasterDataRepository{}

func (r MySQLMasterDataRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func notFound(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	intdb.LogBadConn("[MASTERDATA "+strings.ToUpper(resource)+"]", err)
	return err
}

func (r MySQLMasterDataRepository) GetDestination(ctx context.Context, id int64) (models.Destination, error) {
	var d models.Destination
	err := r.db().QueryRowContext(ctx,
		`SELECT id, name, COALESCE(country,'') FROM destinations WHERE id=? LIMIT 1`, id).
		Scan(&d.ID, &d.Name, &d.Country)
	if err != nil {
		return models.Destination{}, notFound("destination", err)
	}
	return d, nil
}

func (r MySQLMasterDataRepository) GetHotel(ctx context.Context, id int64) (models.Hotel, error) {
	var (
		h                      models.Hotel
		rooms, boards, currRaw []byte
	)
	err := r.db().QueryRowContext(ctx,
		`SELECT id, destination_id, name, room_types, board_types, currencies FROM hotels WHERE id=? LIMIT 1`, id).
		Scan(&h.ID, &h.DestinationID, &h.Name, &rooms, &boards, &currRaw)
	if err != nil {
		return models.Hotel{}, notFound("hotel", err)
	}
	h.RoomTypes = decodeStringList(rooms)
	h.BoardTypes = decodeStringList(boards)
	h.Currencies = decodeStringList(currRaw)
	return h, nil
}

func (r MySQLMasterDataRepository) GetAgency(ctx context.Context, id int64) (models.Agency, error) {
	var a models.Agency
	err := r.db().QueryRowContext(ctx, `SELECT id, name FROM agencies WHERE id=? LIMIT 1`, id).Scan(&a.ID, &a.Name)
	if err != nil {
		return models.Agency{}, notFound("agency", err)
	}
	return a, nil
}

const userColumns = `id, name, username, email, role, status, password_hash`

func (r MySQLMasterDataRepository) GetUser(ctx context.Context, id int64) (models.User, error) {
	return r.scanUser(r.db().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id))
}

// FindUserByLogin matches username or email, case-insensitively.
func (r MySQLMasterDataRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	return r.scanUser(r.db().QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(username)=? OR LOWER(email)=? LIMIT 1`, login, login))
}

func (r MySQLMasterDataRepository) scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Role, &u.Status, &u.PasswordHash); err != nil {
		return models.User{}, notFound("user", err)
	}
	return u, nil
}

func (r MySQLMasterDataRepository) GetSource(ctx context.Context, id int64) (models.Source, error) {
	var s models.Source
	err := r.db().QueryRowContext(ctx, `SELECT id, name, is_agency FROM sources WHERE id=? LIMIT 1`, id).
		Scan(&s.ID, &s.Name, &s.IsAgency)
	if err != nil {
		return models.Source{}, notFound("source", err)
	}
	return s, nil
}

// decodeStringList tolerates NULL and malformed JSON columns as empty lists.
func decodeStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
