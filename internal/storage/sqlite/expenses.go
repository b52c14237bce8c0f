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

const expenseColumns = "e.id, e.description, e.category, e.amount, e.date, e.payer_id, e.split_type, e.group_id, e.created_by, e.created_at"

// CreateExpense persists an expense and its splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date.IsZero() {
		expense.Date = time.Unix(expense.CreatedAt, 0).UTC()
	}
	if expense.Category == "" {
		expense.Category = "Other"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, description, category, amount, date, payer_id, split_type, group_id, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Description, expense.Category, expense.Amount.String(), toMillis(expense.Date),
		expense.PayerID, string(expense.SplitType), nullable(expense.GroupID), expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, position, user_id, amount, paid) VALUES (?, ?, ?, ?, ?)",
			expense.ID, i, split.UserID, split.Amount.String(), split.Paid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID with its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses e WHERE e.id = ?", expenseID)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadSplits(ctx, []*models.Expense{expense}); err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes an expense; its splits go with it.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// ListExpenses returns expenses matching filter, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	var w where
	switch {
	case filter.GroupID != "":
		w.add("e.group_id = ?", filter.GroupID)
	case filter.DirectOnly:
		w.add("e.group_id IS NULL")
	}
	if filter.UserID != "" {
		w.add("(e.payer_id = ? OR EXISTS (SELECT 1 FROM expense_splits es WHERE es.expense_id = e.id AND es.user_id = ?))",
			filter.UserID, filter.UserID)
	}
	if !filter.Since.IsZero() {
		w.add("e.date >= ?", toMillis(filter.Since))
	}
	if !filter.Until.IsZero() {
		w.add("e.date < ?", toMillis(filter.Until))
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses e"+w.String()+" ORDER BY e.date DESC, e.id",
		w.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := s.loadSplits(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var (
		amount    string
		date      int64
		splitType string
		groupID   sql.NullString
	)
	if err := row.Scan(
		&expense.ID,
		&expense.Description,
		&expense.Category,
		&amount,
		&date,
		&expense.PayerID,
		&splitType,
		&groupID,
		&expense.CreatedBy,
		&expense.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if expense.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	expense.Date = fromMillis(date)
	expense.SplitType = models.SplitType(splitType)
	expense.GroupID = groupID.String
	return expense, nil
}

// splitBatch bounds the IN list of one split query.
const splitBatch = 500

// loadSplits fills in Splits for every expense, a batch of ids per query.
func (s *SQLiteStore) loadSplits(ctx context.Context, expenses []*models.Expense) error {
	for start := 0; start < len(expenses); start += splitBatch {
		end := min(start+splitBatch, len(expenses))
		if err := s.loadSplitBatch(ctx, expenses[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) loadSplitBatch(ctx context.Context, expenses []*models.Expense) error {
	byID := make(map[string]*models.Expense, len(expenses))
	args := make([]any, len(expenses))
	for i, e := range expenses {
		byID[e.ID] = e
		args[i] = e.ID
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, user_id, amount, paid FROM expense_splits WHERE expense_id IN ("+placeholders(len(args))+") ORDER BY expense_id, position",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			expenseID string
			split     models.Split
			amount    string
		)
		if err := rows.Scan(&expenseID, &split.UserID, &amount, &split.Paid); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		if split.Amount, err = parseAmount(amount); err != nil {
			return err
		}
		if e, ok := byID[expenseID]; ok {
			e.Splits = append(e.Splits, split)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}

	return nil
}
