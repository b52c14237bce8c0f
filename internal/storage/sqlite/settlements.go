package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitx/internal/models"
	"github.com/mmynk/splitx/internal/storage"
)

const settlementColumns = "s.id, s.group_id, s.from_user_id, s.to_user_id, s.amount, s.date, s.note, s.created_by, s.created_at"

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Date.IsZero() {
		settlement.Date = time.Unix(settlement.CreatedAt, 0).UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount, date, note, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, nullable(settlement.GroupID), settlement.FromUserID, settlement.ToUserID,
		settlement.Amount.String(), toMillis(settlement.Date), nullable(settlement.Note),
		settlement.CreatedBy, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for _, expenseID := range settlement.RelatedExpenseIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO settlement_expenses (settlement_id, expense_id) VALUES (?, ?)",
			settlement.ID, expenseID,
		)
		if err != nil {
			return fmt.Errorf("failed to link settlement to expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+settlementColumns+" FROM settlements s WHERE s.id = ?", settlementID)
	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	related, err := s.relatedExpenses(ctx, settlement.ID)
	if err != nil {
		return nil, err
	}
	settlement.RelatedExpenseIDs = related

	return settlement, nil
}

// ListSettlements returns settlements matching filter, newest first.
// RelatedExpenseIDs is not populated.
func (s *SQLiteStore) ListSettlements(ctx context.Context, filter storage.SettlementFilter) ([]*models.Settlement, error) {
	var w where
	switch {
	case filter.GroupID != "":
		w.add("s.group_id = ?", filter.GroupID)
	case filter.DirectOnly:
		w.add("s.group_id IS NULL")
	}
	if filter.UserID != "" {
		w.add("(s.from_user_id = ? OR s.to_user_id = ?)", filter.UserID, filter.UserID)
	}
	if !filter.Since.IsZero() {
		w.add("s.date >= ?", toMillis(filter.Since))
	}
	if !filter.Until.IsZero() {
		w.add("s.date < ?", toMillis(filter.Until))
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements s"+w.String()+" ORDER BY s.date DESC, s.id",
		w.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var (
		groupID sql.NullString
		amount  string
		date    int64
		note    sql.NullString
	)
	if err := row.Scan(
		&settlement.ID,
		&groupID,
		&settlement.FromUserID,
		&settlement.ToUserID,
		&amount,
		&date,
		&note,
		&settlement.CreatedBy,
		&settlement.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if settlement.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	settlement.GroupID = groupID.String
	settlement.Date = fromMillis(date)
	settlement.Note = note.String
	return settlement, nil
}

func (s *SQLiteStore) relatedExpenses(ctx context.Context, settlementID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id FROM settlement_expenses WHERE settlement_id = ? ORDER BY expense_id",
		settlementID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get related expenses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan related expense: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate related expenses: %w", err)
	}

	return ids, nil
}
