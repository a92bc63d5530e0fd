package currency

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/richxcame/currency-exchange/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

var transactionRowColumns = []string{
	"transaction_id", "source_currency", "target_currency", "amount", "converted_amount", "transaction_date",
}

func TestRepository_Save(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()
	record := &ConversionRecord{
		TransactionID:   "tx-1",
		SourceCurrency:  USD,
		TargetCurrency:  EUR,
		Amount:          decimal.NewFromInt(100),
		ConvertedAmount: decimal.RequireFromString("92.0000"),
		TransactionDate: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions (` + transactionColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`)).
		WithArgs("tx-1", "USD", "EUR", sqlmock.AnyArg(), sqlmock.AnyArg(), record.TransactionDate).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(ctx, record)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Save_Error(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("INSERT INTO transactions").WillReturnError(errors.New("disk full"))

	err := repo.Save(context.Background(), &ConversionRecord{TransactionID: "tx-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save transaction")
}

func TestRepository_Save_DuplicateID(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("INSERT INTO transactions").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "transactions_pkey"})

	err := repo.Save(context.Background(), &ConversionRecord{TransactionID: "tx-1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateTransaction))
	var kindErr *kindError
	require.True(t, errors.As(err, &kindErr))
	assert.Equal(t, "Transaction already exists: tx-1", kindErr.message)
}

func TestRepository_ExistsByID(t *testing.T) {
	repo, mock := newMockRepository(t)
	query := regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM transactions WHERE transaction_id = $1)`)

	mock.ExpectQuery(query).WithArgs("tx-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(query).WithArgs("tx-2").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsByID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByID(context.Background(), "tx-2")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindFiltered_ByTransactionID(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM transactions WHERE 1=1 AND transaction_id = $1`)).
		WithArgs("tx-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE 1=1 AND transaction_id = $1 ORDER BY transaction_date DESC, transaction_id LIMIT $2 OFFSET $3`)).
		WithArgs("tx-1", 20, 0).
		WillReturnRows(sqlmock.NewRows(transactionRowColumns).
			AddRow("tx-1", "USD", "EUR", "100", "92.0000", date))

	records, total, err := repo.FindFiltered(ctx, HistoryFilter{TransactionID: "tx-1"}, pagination.Params{Limit: 20, Offset: 0})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, "tx-1", records[0].TransactionID)
	assert.Equal(t, USD, records[0].SourceCurrency)
	assert.Equal(t, EUR, records[0].TargetCurrency)
	assert.Equal(t, "92.0000", records[0].ConvertedAmount.StringFixed(4))
	assert.Equal(t, date, records[0].TransactionDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindFiltered_ByDate(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	from, to := day, day.AddDate(0, 0, 1)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM transactions WHERE 1=1 AND transaction_date >= $1 AND transaction_date < $2`)).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))
	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT $3 OFFSET $4`)).
		WithArgs(from, to, 20, 40).
		WillReturnRows(sqlmock.NewRows(transactionRowColumns).
			AddRow("tx-9", "EUR", "TRY", "10", "351.0000", day.Add(time.Hour)))

	records, total, err := repo.FindFiltered(ctx, HistoryFilter{Date: &day}, pagination.Params{Limit: 20, Offset: 40})

	require.NoError(t, err)
	assert.Equal(t, int64(45), total)
	assert.Len(t, records, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindFiltered_CountError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("connection reset"))

	_, _, err := repo.FindFiltered(context.Background(), HistoryFilter{TransactionID: "tx"}, pagination.Params{Limit: 20})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count transactions")
}

func TestBuildFilters(t *testing.T) {
	day := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    HistoryFilter
		where     string
		argCount  int
		nextIndex int
	}{
		{name: "no filters", filter: HistoryFilter{}, where: "1=1", argCount: 0, nextIndex: 1},
		{name: "id only", filter: HistoryFilter{TransactionID: " tx-1 "}, where: "1=1 AND transaction_id = $1", argCount: 1, nextIndex: 2},
		{
			name:      "id and date",
			filter:    HistoryFilter{TransactionID: "tx-1", Date: &day},
			where:     "1=1 AND transaction_id = $1 AND transaction_date >= $2 AND transaction_date < $3",
			argCount:  3,
			nextIndex: 4,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			where, args, next := buildFilters(tc.filter)

			assert.Equal(t, tc.where, where)
			assert.Len(t, args, tc.argCount)
			assert.Equal(t, tc.nextIndex, next)
		})
	}
}

func TestHistoryFilter_DayRange(t *testing.T) {
	local := time.FixedZone("UTC+3", 3*60*60)
	date := time.Date(2024, 3, 1, 1, 0, 0, 0, local)

	from, to := HistoryFilter{Date: &date}.DayRange()

	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), to)
}
