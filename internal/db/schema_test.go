package db

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestEnsureSchema_CreatesOnlyMissingTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer conn.Close()

	for _, tbl := range schema {
		q := mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.tables")).WithArgs(tbl.name)
		if tbl.name == "vouchers" {
			q.WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
			mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS vouchers")).WillReturnResult(sqlmock.NewResult(0, 0))
			continue
		}
		q.WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow(tbl.name))
	}

	if err := EnsureSchema(conn); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureSchema_NilConn(t *testing.T) {
	if err := EnsureSchema(nil); err == nil {
		t.Fatalf("expected error for nil connection")
	}
}
