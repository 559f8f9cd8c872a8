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
)

// MySQLProposalRepository stores proposals in MySQL. The itinerary and the
// destination list live in JSON columns.
type MySQLProposalRepository struct {
	DB *sql.DB
}

var _ ProposalRepository = MySQLProposalRepository{}

func (r MySQLProposalRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const proposalColumns = `id, reference, source_id, agency_id, sales_person_id, destination_ids,
	estimated_nights, status, overall_margin, commission, pdf_language, display_currency,
	proposal_currency, start_date, end_date, itinerary, copied_from, version,
	created_at, updated_at, confirmed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProposal(row rowScanner) (models.Proposal, error) {
	var (
		p           models.Proposal
		agencyID    sql.NullInt64
		copiedFrom  sql.NullInt64
		confirmedAt sql.NullTime
		destRaw     []byte
		itinRaw     []byte
		status      string
	)
	err := row.Scan(
		&p.ID, &p.Reference, &p.SourceID, &agencyID, &p.SalesPersonID, &destRaw,
		&p.EstimatedNights, &status, &p.OverallMargin, &p.Commission, &p.PDFLanguage, &p.DisplayCurrency,
		&p.Currency, &p.StartDate, &p.EndDate, &itinRaw, &copiedFrom, &p.Version,
		&p.CreatedAt, &p.UpdatedAt, &confirmedAt,
	)
	if err != nil {
		return models.Proposal{}, err
	}
	p.Status = models.ProposalStatus(status)
	p.AgencyID = intdb.Int64Ptr(agencyID)
	p.CopiedFrom = intdb.Int64Ptr(copiedFrom)
	if confirmedAt.Valid {
		t := confirmedAt.Time
		p.ConfirmedAt = &t
	}
	if len(destRaw) > 0 {
		if err := json.Unmarshal(destRaw, &p.DestinationIDs); err != nil {
			return models.Proposal{}, fmt.Errorf("decode destination_ids of proposal %d: %w", p.ID, err)
		}
	}
	if len(itinRaw) > 0 {
		if err := json.Unmarshal(itinRaw, &p.Itinerary); err != nil {
			return models.Proposal{}, fmt.Errorf("decode itinerary of proposal %d: %w", p.ID, err)
		}
	}
	return p, nil
}

func encodeProposalJSON(p *models.Proposal) (dest []byte, itin []byte, err error) {
	ids := p.DestinationIDs
	if ids == nil {
		ids = []int64{}
	}
	if dest, err = json.Marshal(ids); err != nil {
		return nil, nil, fmt.Errorf("encode destination_ids: %w", err)
	}
	if itin, err = json.Marshal(p.Itinerary); err != nil {
		return nil, nil, fmt.Errorf("encode itinerary: %w", err)
	}
	return dest, itin, nil
}

func (r MySQLProposalRepository) GetProposal(ctx context.Context, id int64) (models.Proposal, error) {
	if id <= 0 {
		return models.Proposal{}, domain.NotFoundError{Resource: "proposal"}
	}
	row := r.db().QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id=? LIMIT 1`, id)
	p, err := scanProposal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Proposal{}, domain.NotFoundError{Resource: "proposal", Err: err}
	}
	if err != nil {
		intdb.LogBadConn("[PROPOSAL GET]", err)
		return models.Proposal{}, err
	}
	return p, nil
}

func (r MySQLProposalRepository) ListProposals(ctx context.Context, f models.ProposalFilter) ([]models.Proposal, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, string(f.Status))
	}
	if f.SalesPersonID != 0 {
		where = append(where, "sales_person_id=?")
		args = append(args, f.SalesPersonID)
	}
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		intdb.LogBadConn("[PROPOSAL LIST]", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r MySQLProposalRepository) CreateProposal(ctx context.Context, p *models.Proposal) error {
	dest, itin, err := encodeProposalJSON(p)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if p.Status == "" {
		p.Status = models.ProposalNew
	}
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO proposals (
			reference, source_id, agency_id, sales_person_id, destination_ids,
			estimated_nights, status, overall_margin, commission, pdf_language, display_currency,
			proposal_currency, start_date, end_date, itinerary, copied_from, version,
			created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,1,?,?)`,
		p.Reference, p.SourceID, intdb.NullInt64(p.AgencyID), p.SalesPersonID, dest,
		p.EstimatedNights, string(p.Status), p.OverallMargin, p.Commission, p.PDFLanguage, p.DisplayCurrency,
		p.Currency, p.StartDate, p.EndDate, itin, intdb.NullInt64(p.CopiedFrom),
		now, now,
	)
	if err != nil {
		intdb.LogBadConn("[PROPOSAL CREATE]", err)
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	p.Version = 1
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r MySQLProposalRepository) SaveProposal(ctx context.Context, p *models.Proposal) error {
	return r.saveWithVersion(ctx, r.db(), p, "")
}

// saveWithVersion writes every mutable column guarded by the current version.
// requireStatus, when set, also guards on the stored status.
func (r MySQLProposalRepository) saveWithVersion(ctx context.Context, exec execer, p *models.Proposal, requireStatus models.ProposalStatus) error {
	dest, itin, err := encodeProposalJSON(p)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	var confirmedAt any
	if p.ConfirmedAt != nil {
		confirmedAt = *p.ConfirmedAt
	}

	query := `
		UPDATE proposals SET
			source_id=?, agency_id=?, sales_person_id=?, destination_ids=?,
			estimated_nights=?, status=?, overall_margin=?, commission=?, pdf_language=?, display_currency=?,
			proposal_currency=?, start_date=?, end_date=?, itinerary=?, copied_from=?,
			version=version+1, updated_at=?, confirmed_at=?
		WHERE id=? AND version=?`
	args := []any{
		p.SourceID, intdb.NullInt64(p.AgencyID), p.SalesPersonID, dest,
		p.EstimatedNights, string(p.Status), p.OverallMargin, p.Commission, p.PDFLanguage, p.DisplayCurrency,
		p.Currency, p.StartDate, p.EndDate, itin, intdb.NullInt64(p.CopiedFrom),
		now, confirmedAt,
		p.ID, p.Version,
	}
	if requireStatus != "" {
		query += ` AND status=?`
		args = append(args, string(requireStatus))
	}

	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		intdb.LogBadConn("[PROPOSAL SAVE]", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ConflictError{Resource: "proposal", Msg: "proposal was modified concurrently or is no longer " + string(models.ProposalNew)}
	}
	p.Version++
	p.UpdatedAt = now
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ConfirmProposal flips the proposal to CONFIRMED and inserts its vouchers in
// a single transaction. The unique key on (proposal_id, service_type,
// service_id) rejects a second voucher for the same line.
func (r MySQLProposalRepository) ConfirmProposal(ctx context.Context, p *models.Proposal, vouchers []models.Voucher) error {
	version := p.Version
	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		if err := r.saveWithVersion(ctx, tx, p, models.ProposalNew); err != nil {
			return err
		}
		for i := range vouchers {
			if err := insertVoucher(ctx, tx, &vouchers[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// the row was never committed, so the caller's copy keeps its version
		p.Version = version
		return err
	}
	return nil
}
