package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "tourquote/internal/config"
	intdb "tourquote/internal/db"
	"tourquote/internal/domain"
	"tourquote/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

type MySQLVoucherRepository struct {
	DB *sql.DB
}

var _ VoucherRepository = MySQLVoucherRepository{}

func (r MySQLVoucherRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const voucherColumns = `id, proposal_id, proposal_reference, service_type, service_id, status,
	source_id, agency_id, sales_person_id, guests, adults, children, total_pax, notes,
	service_data, created_at, updated_at`

func scanVoucher(row rowScanner) (models.Voucher, error) {
	var (
		v           models.Voucher
		serviceType string
		status      string
		agencyID    sql.NullInt64
		guestsRaw   []byte
		dataRaw     []byte
	)
	err := row.Scan(
		&v.ID, &v.ProposalID, &v.ProposalReference, &serviceType, &v.ServiceID, &status,
		&v.SourceID, &agencyID, &v.SalesPersonID, &guestsRaw, &v.Adults, &v.Children, &v.TotalPax, &v.Notes,
		&dataRaw, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return models.Voucher{}, err
	}
	v.ServiceType = models.ServiceKind(serviceType)
	v.Status = models.VoucherStatus(status)
	v.AgencyID = intdb.Int64Ptr(agencyID)
	v.Guests = []models.Guest{}
	if len(guestsRaw) > 0 {
		if err := json.Unmarshal(guestsRaw, &v.Guests); err != nil {
			return models.Voucher{}, fmt.Errorf("decode guests of voucher %s: %w", v.ID, err)
		}
	}
	v.ServiceData = json.RawMessage(dataRaw)
	return v, nil
}

func (r MySQLVoucherRepository) GetVoucher(ctx context.Context, id string) (models.Voucher, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id=? LIMIT 1`, id)
	v, err := scanVoucher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voucher{}, domain.NotFoundError{Resource: "voucher", Err: err}
	}
	if err != nil {
		intdb.LogBadConn("[VOUCHER GET]", err)
		return models.Voucher{}, err
	}
	return v, nil
}

func (r MySQLVoucherRepository) ListVouchers(ctx context.Context, f models.VoucherFilter) ([]models.Voucher, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.ProposalID != 0 {
		where = append(where, "proposal_id=?")
		args = append(args, f.ProposalID)
	}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, string(f.Status))
	}
	rows, err := r.db().QueryContext(ctx,
		`SELECT `+voucherColumns+` FROM vouchers WHERE `+strings.Join(where, " AND ")+` ORDER BY created_at ASC, id ASC`,
		args...)
	if err != nil {
		intdb.LogBadConn("[VOUCHER LIST]", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SaveVoucher updates the mutable voucher fields: status and travellers.
func (r MySQLVoucherRepository) SaveVoucher(ctx context.Context, v *models.Voucher) error {
	guests, err := encodeGuests(v.Guests)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := r.db().ExecContext(ctx, `
		UPDATE vouchers SET status=?, guests=?, adults=?, children=?, total_pax=?, notes=?, updated_at=?
		WHERE id=?`,
		string(v.Status), guests, v.Adults, v.Children, v.TotalPax, v.Notes, now, v.ID)
	if err != nil {
		intdb.LogBadConn("[VOUCHER SAVE]", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundError{Resource: "voucher"}
	}
	v.UpdatedAt = now
	return nil
}

func insertVoucher(ctx context.Context, exec execer, v *models.Voucher) error {
	guests, err := encodeGuests(v.Guests)
	if err != nil {
		return err
	}
	data := []byte(v.ServiceData)
	if len(data) == 0 {
		data = []byte("{}")
	}
	_, err = exec.ExecContext(ctx, `
		INSERT INTO vouchers (
			id, proposal_id, proposal_reference, service_type, service_id, status,
			source_id, agency_id, sales_person_id, guests, adults, children, total_pax, notes,
			service_data, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		v.ID, v.ProposalID, v.ProposalReference, string(v.ServiceType), v.ServiceID, string(v.Status),
		v.SourceID, intdb.NullInt64(v.AgencyID), v.SalesPersonID, guests, v.Adults, v.Children, v.TotalPax, v.Notes,
		data, v.CreatedAt, v.UpdatedAt,
	)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return domain.ConflictError{
			Resource: "voucher",
			Msg:      fmt.Sprintf("voucher already exists for %s #%d", v.ServiceType, v.ServiceID),
			Err:      err,
		}
	}
	return err
}

func encodeGuests(g []models.Guest) ([]byte, error) {
	if g == nil {
		g = []models.Guest{}
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode guests: %w", err)
	}
	return b, nil
}
