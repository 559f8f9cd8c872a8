package repositories

import (
	"context"
	"regexp"
	"testing"

	"tourquote/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMySQLMasterDataRepository_GetHotelToleratesBadJSON(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM hotels WHERE id=?")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "destination_id", "name", "room_types", "board_types", "currencies"}).
			AddRow(int64(10), int64(1), "Pera Palace", []byte(`["DBL","SGL"]`), []byte(`not json`), nil))

	h, err := MySQLMasterDataRepository{DB: conn}.GetHotel(context.Background(), 10)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(h.RoomTypes) != 2 || h.BoardTypes != nil || h.Currencies != nil {
		t.Fatalf("unexpected hotel %+v", h)
	}
}

func TestMySQLMasterDataRepository_FindUserByLogin(t *testing.T) {
	conn, mock := newMock(t)
	repo := MySQLMasterDataRepository{DB: conn}
	cols := []string{"id", "name", "username", "email", "role", "status", "password_hash"}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(username)=? OR LOWER(email)=?")).
		WithArgs("selin@example.com", "selin@example.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(3), "Selin", "selin", "selin@example.com", "sales", "active", "hash"))
	u, err := repo.FindUserByLogin(context.Background(), "  Selin@Example.com ")
	if err != nil || u.ID != 3 || u.PasswordHash != "hash" {
		t.Fatalf("unexpected user %+v %v", u, err)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(cols))
	if _, err := repo.GetUser(context.Background(), 99); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
