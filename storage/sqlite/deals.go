package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/aibanker/go-aibanker/deals"
	ierrors "github.com/aibanker/go-aibanker/internal/errors"
)

var _ deals.Repo = (*DealRepo)(nil)

// DealRepo is the SQLite implementation of deals.Repo. Updates carry the
// caller's version in the WHERE clause, so a stale write touches no rows
// and surfaces as a version conflict.
type DealRepo struct {
	db *sql.DB
}

func NewDealRepo(db *sql.DB) *DealRepo {
	return &DealRepo{db: db}
}

const dealColumns = `id, name, description, deal_type, status, target_company,
	target_industry, target_sector, target_revenue, target_ebitda, deal_value,
	deal_currency, transaction_fee, success_fee_rate, expected_close_date,
	actual_close_date, due_diligence_deadline, created_by,
	due_diligence_completed, pitchbook_generated, risk_analysis_completed,
	ai_processing_status, ai_processing_started, ai_processing_completed,
	ai_processing_errors, version, created_at, updated_at`

func (dr *DealRepo) Create(ctx context.Context, deal *deals.Deal) error {
	now := time.Now().UTC()
	result, err := dr.db.ExecContext(ctx,
		`INSERT INTO deals (name, description, deal_type, status, target_company,
			target_industry, target_sector, target_revenue, target_ebitda,
			deal_value, deal_currency, transaction_fee, success_fee_rate,
			expected_close_date, actual_close_date, due_diligence_deadline,
			created_by, due_diligence_completed, pitchbook_generated,
			risk_analysis_completed, ai_processing_status, ai_processing_started,
			ai_processing_completed, ai_processing_errors, version, created_at,
			updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		deal.Name, deal.Description, deal.DealType, deal.Status, deal.TargetCompany,
		deal.TargetIndustry, deal.TargetSector, deal.TargetRevenue, deal.TargetEBITDA,
		deal.DealValue, deal.DealCurrency, deal.TransactionFee, deal.SuccessFeeRate,
		nullTime(deal.ExpectedCloseDate), nullTime(deal.ActualCloseDate),
		nullTime(deal.DueDiligenceDeadline), deal.CreatedBy,
		deal.DueDiligenceCompleted, deal.PitchbookGenerated, deal.RiskAnalysisCompleted,
		deal.AIProcessingStatus, nullTime(deal.AIProcessingStarted),
		nullTime(deal.AIProcessingCompleted), deal.AIProcessingErrors, now, now,
	)
	if err != nil {
		return errors.Wrap(err, "[DealRepo.Create] insert deal")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "[DealRepo.Create] last insert id")
	}

	deal.ID = id
	deal.Version = 1
	deal.CreatedAt = now
	deal.UpdatedAt = now
	return nil
}

func (dr *DealRepo) Update(ctx context.Context, deal *deals.Deal) error {
	now := time.Now().UTC()
	result, err := dr.db.ExecContext(ctx,
		`UPDATE deals SET name = ?, description = ?, deal_type = ?, status = ?,
			target_company = ?, target_industry = ?, target_sector = ?,
			target_revenue = ?, target_ebitda = ?, deal_value = ?,
			deal_currency = ?, transaction_fee = ?, success_fee_rate = ?,
			expected_close_date = ?, actual_close_date = ?,
			due_diligence_deadline = ?, due_diligence_completed = ?,
			pitchbook_generated = ?, risk_analysis_completed = ?,
			ai_processing_status = ?, ai_processing_started = ?,
			ai_processing_completed = ?, ai_processing_errors = ?,
			version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		deal.Name, deal.Description, deal.DealType, deal.Status,
		deal.TargetCompany, deal.TargetIndustry, deal.TargetSector,
		deal.TargetRevenue, deal.TargetEBITDA, deal.DealValue,
		deal.DealCurrency, deal.TransactionFee, deal.SuccessFeeRate,
		nullTime(deal.ExpectedCloseDate), nullTime(deal.ActualCloseDate),
		nullTime(deal.DueDiligenceDeadline), deal.DueDiligenceCompleted,
		deal.PitchbookGenerated, deal.RiskAnalysisCompleted,
		deal.AIProcessingStatus, nullTime(deal.AIProcessingStarted),
		nullTime(deal.AIProcessingCompleted), deal.AIProcessingErrors,
		now, deal.ID, deal.Version,
	)
	if err != nil {
		return errors.Wrap(err, "[DealRepo.Update] update deal")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[DealRepo.Update] rows affected")
	}
	if affected == 0 {
		// Either the deal is gone or the caller read an older version.
		if _, err := dr.GetByID(ctx, deal.ID); err != nil {
			return err
		}
		return ierrors.ErrVersionConflict
	}

	deal.Version++
	deal.UpdatedAt = now
	return nil
}

func (dr *DealRepo) Delete(ctx context.Context, id int64) error {
	result, err := dr.db.ExecContext(ctx, "DELETE FROM deals WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "[DealRepo.Delete] delete deal")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[DealRepo.Delete] rows affected")
	}
	if affected == 0 {
		return ierrors.ErrNotFound
	}
	return nil
}

func (dr *DealRepo) GetByID(ctx context.Context, id int64) (*deals.Deal, error) {
	row := dr.db.QueryRowContext(ctx, "SELECT "+dealColumns+" FROM deals WHERE id = ?", id)
	deal, err := scanDeal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierrors.ErrNotFound
		}
		return nil, errors.Wrap(err, "[DealRepo.GetByID] scan deal")
	}
	return deal, nil
}

func (dr *DealRepo) List(ctx context.Context, offset, limit int) ([]*deals.Deal, error) {
	return dr.list(ctx, "SELECT "+dealColumns+" FROM deals ORDER BY id LIMIT ? OFFSET ?",
		sqlLimit(limit), offset)
}

func (dr *DealRepo) ListByCreator(ctx context.Context, userID int64, offset, limit int) ([]*deals.Deal, error) {
	return dr.list(ctx,
		"SELECT "+dealColumns+" FROM deals WHERE created_by = ? ORDER BY id LIMIT ? OFFSET ?",
		userID, sqlLimit(limit), offset)
}

func (dr *DealRepo) SetProcessing(ctx context.Context, id int64, status deals.ProcessingStatus) error {
	now := time.Now().UTC()

	var query string
	switch status {
	case deals.ProcessingInProgress:
		query = `UPDATE deals SET ai_processing_status = ?, ai_processing_started = ?,
			ai_processing_completed = NULL, version = version + 1, updated_at = ?
			WHERE id = ?`
	case deals.ProcessingCompleted, deals.ProcessingFailed:
		query = `UPDATE deals SET ai_processing_status = ?, ai_processing_completed = ?,
			version = version + 1, updated_at = ?
			WHERE id = ?`
	default:
		query = `UPDATE deals SET ai_processing_status = ?, updated_at = ?,
			version = version + 1
			WHERE id = ?`
	}

	var (
		result sql.Result
		err    error
	)
	if status == deals.ProcessingPending {
		result, err = dr.db.ExecContext(ctx, query, status, now, id)
	} else {
		result, err = dr.db.ExecContext(ctx, query, status, now, now, id)
	}
	if err != nil {
		return errors.Wrap(err, "[DealRepo.SetProcessing] update processing state")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[DealRepo.SetProcessing] rows affected")
	}
	if affected == 0 {
		return ierrors.ErrNotFound
	}
	return nil
}

func (dr *DealRepo) list(ctx context.Context, query string, args ...interface{}) ([]*deals.Deal, error) {
	rows, err := dr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "[DealRepo.list] query deals")
	}
	defer rows.Close()

	var dealList []*deals.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, errors.Wrap(err, "[DealRepo.list] scan deal")
		}
		dealList = append(dealList, deal)
	}
	return dealList, rows.Err()
}

func scanDeal(row rowScanner) (*deals.Deal, error) {
	var (
		deal                deals.Deal
		expectedClose       sql.NullTime
		actualClose         sql.NullTime
		ddDeadline          sql.NullTime
		processingStarted   sql.NullTime
		processingCompleted sql.NullTime
	)
	err := row.Scan(
		&deal.ID, &deal.Name, &deal.Description, &deal.DealType, &deal.Status,
		&deal.TargetCompany, &deal.TargetIndustry, &deal.TargetSector,
		&deal.TargetRevenue, &deal.TargetEBITDA, &deal.DealValue,
		&deal.DealCurrency, &deal.TransactionFee, &deal.SuccessFeeRate,
		&expectedClose, &actualClose, &ddDeadline, &deal.CreatedBy,
		&deal.DueDiligenceCompleted, &deal.PitchbookGenerated,
		&deal.RiskAnalysisCompleted, &deal.AIProcessingStatus,
		&processingStarted, &processingCompleted, &deal.AIProcessingErrors,
		&deal.Version, &deal.CreatedAt, &deal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	deal.ExpectedCloseDate = timeValue(expectedClose)
	deal.ActualCloseDate = timeValue(actualClose)
	deal.DueDiligenceDeadline = timeValue(ddDeadline)
	deal.AIProcessingStarted = timeValue(processingStarted)
	deal.AIProcessingCompleted = timeValue(processingCompleted)
	return &deal, nil
}

// sqlLimit converts the repo convention (0 means everything) into the
// SQLite convention (negative means no limit).
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
