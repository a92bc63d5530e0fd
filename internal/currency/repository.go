package currency

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/richxcame/currency-exchange/pkg/database"
	"github.com/richxcame/currency-exchange/pkg/pagination"
)

const transactionColumns = `transaction_id, source_currency, target_currency, amount, converted_amount, transaction_date`

// DBTX is the subset of *sql.DB used by the repository
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Repository stores conversion transactions in PostgreSQL
type Repository struct {
	db DBTX
}

// NewRepository creates a new transaction repository
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// Save inserts a conversion record
func (r *Repository) Save(ctx context.Context, record *ConversionRecord) error {
	query := fmt.Sprintf(`INSERT INTO transactions (%s) VALUES ($1, $2, $3, $4, $5, $6)`, transactionColumns)

	_, err := r.db.ExecContext(ctx, query,
		record.TransactionID,
		string(record.SourceCurrency),
		string(record.TargetCurrency),
		record.Amount,
		record.ConvertedAmount,
		record.TransactionDate,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", newKindError(ErrDuplicateTransaction, "Transaction already exists: %s", record.TransactionID), err)
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	return nil
}

// ExistsByID reports whether a transaction with the given id exists
func (r *Repository) ExistsByID(ctx context.Context, transactionID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM transactions WHERE transaction_id = $1)`,
		transactionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction: %w", err)
	}

	return exists, nil
}

// FindFiltered returns one page of transactions matching filter, newest first, and the total match count
func (r *Repository) FindFiltered(ctx context.Context, filter HistoryFilter, page pagination.Params) ([]*ConversionRecord, int64, error) {
	whereClause, args, argIdx := buildFilters(filter)

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM transactions WHERE %s`, whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY transaction_date DESC, transaction_id LIMIT $%d OFFSET $%d`,
		transactionColumns, whereClause, argIdx, argIdx+1)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	records := make([]*ConversionRecord, 0)
	for rows.Next() {
		record, err := scanConversionRecord(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return records, total, nil
}

// buildFilters constructs the WHERE clause and args for filter
func buildFilters(filter HistoryFilter) (string, []interface{}, int) {
	where := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if id := strings.TrimSpace(filter.TransactionID); id != "" {
		where = append(where, fmt.Sprintf("transaction_id = $%d", argIdx))
		args = append(args, id)
		argIdx++
	}
	if filter.Date != nil {
		from, to := filter.DayRange()
		where = append(where, fmt.Sprintf("transaction_date >= $%d AND transaction_date < $%d", argIdx, argIdx+1))
		args = append(args, from, to)
		argIdx += 2
	}

	return strings.Join(where, " AND "), args, argIdx
}

func scanConversionRecord(scan func(dest ...interface{}) error) (*ConversionRecord, error) {
	var (
		record         ConversionRecord
		source, target string
	)
	err := scan(
		&record.TransactionID, &source, &target,
		&record.Amount, &record.ConvertedAmount, &record.TransactionDate,
	)
	if err != nil {
		return nil, err
	}
	record.SourceCurrency = CurrencyCode(source)
	record.TargetCurrency = CurrencyCode(target)
	return &record, nil
}
