package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/richxcame/currency-exchange/pkg/common"
	"github.com/richxcame/currency-exchange/pkg/logger"
	"github.com/richxcame/currency-exchange/pkg/pagination"
	"go.uber.org/zap"
)

// Service handles currency business logic
type Service struct {
	resolver *RateResolver
	pipeline *Pipeline
	batch    *BatchProcessor
	store    TransactionStore
}

// NewService creates a new currency service
func NewService(resolver *RateResolver, pipeline *Pipeline, batch *BatchProcessor, store TransactionStore) *Service {
	return &Service{
		resolver: resolver,
		pipeline: pipeline,
		batch:    batch,
		store:    store,
	}
}

// GetExchangeRate returns the current rate for a currency pair
func (s *Service) GetExchangeRate(ctx context.Context, source, target string) (*ExchangeRateResponse, error) {
	sourceCode, err := ParseCurrencyCode(source)
	if err != nil {
		return nil, toAppError(invalidCurrencyError("sourceCurrency", source))
	}
	targetCode, err := ParseCurrencyCode(target)
	if err != nil {
		return nil, toAppError(invalidCurrencyError("targetCurrency", target))
	}

	rate, err := s.resolver.Resolve(ctx, sourceCode, targetCode)
	if err != nil {
		return nil, toAppError(err)
	}

	return &ExchangeRateResponse{
		SourceCurrency: sourceCode,
		TargetCurrency: targetCode,
		Rate:           rate,
	}, nil
}

// ConvertOne converts a single request; every failure is returned to the caller
func (s *Service) ConvertOne(ctx context.Context, req ConversionRequest) (*ConversionResponse, error) {
	resp, err := s.pipeline.Run(ctx, req)
	if err != nil {
		conversionsTotal.WithLabelValues("single", "failed").Inc()
		return nil, toAppError(err)
	}

	conversionsTotal.WithLabelValues("single", "success").Inc()
	logger.WithContext(ctx).Info("Currency converted",
		zap.String("transaction_id", resp.TransactionID),
		zap.String("source", string(resp.SourceCurrency)),
		zap.String("target", string(resp.TargetCurrency)),
	)
	return resp, nil
}

// ConvertBatch converts rows, dropping the ones that fail
func (s *Service) ConvertBatch(ctx context.Context, rows []ConversionRequest) *BatchResult {
	return s.batch.Process(ctx, rows)
}

// Convert handles an optional single request followed by optional batch rows.
// The single request fails the call; batch rows that fail are dropped.
func (s *Service) Convert(ctx context.Context, req *ConversionRequest, rows []ConversionRequest) ([]*ConversionResponse, error) {
	results := make([]*ConversionResponse, 0, len(rows)+1)

	if req != nil {
		resp, err := s.ConvertOne(ctx, *req)
		if err != nil {
			return nil, err
		}
		results = append(results, resp)
	}

	if len(rows) > 0 {
		results = append(results, s.ConvertBatch(ctx, rows).Results...)
	}

	return results, nil
}

// GetHistory returns stored transactions filtered by id and/or day
func (s *Service) GetHistory(ctx context.Context, transactionID string, date *time.Time, page pagination.Params) (*HistoryPage, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" && date == nil {
		return nil, toAppError(newKindError(ErrMissingSearchCriteria, "At least one of transactionId or date must be provided."))
	}

	if transactionID != "" {
		exists, err := s.store.ExistsByID(ctx, transactionID)
		if err != nil {
			return nil, toAppError(fmt.Errorf("%w: %w", ErrStorageFailure, err))
		}
		if !exists {
			return nil, toAppError(newKindError(ErrTransactionNotFound, "Transaction not found: %s", transactionID))
		}
	}

	records, total, err := s.store.FindFiltered(ctx, HistoryFilter{TransactionID: transactionID, Date: date}, page)
	if err != nil {
		return nil, toAppError(fmt.Errorf("%w: %w", ErrStorageFailure, err))
	}

	items := make([]HistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, toHistoryItem(record))
	}

	return &HistoryPage{
		Items:  items,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

// toAppError maps domain errors to API errors, keeping the cause for errors.Is
func toAppError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	message := err.Error()
	var kindErr *kindError
	if errors.As(err, &kindErr) {
		message = kindErr.message
	}
	var fetchErr *RateFetchError
	if errors.As(err, &fetchErr) {
		message = fetchErr.Message()
	}

	switch {
	case errors.Is(err, ErrInvalidCurrency):
		return common.NewBadRequestError(message, err).WithErrorCode(CodeInvalidCurrency)
	case errors.Is(err, ErrInvalidAmount):
		return common.NewBadRequestError(message, err).WithErrorCode(CodeInvalidAmount)
	case errors.Is(err, ErrSameCurrency):
		return common.NewBadRequestError(message, err).WithErrorCode(CodeSameCurrency)
	case errors.Is(err, ErrInvalidArgument):
		return common.NewBadRequestError(message, err).WithErrorCode(CodeInvalidArgument)
	case errors.Is(err, ErrMissingSearchCriteria):
		return common.NewBadRequestError(message, err).WithErrorCode(CodeMissingSearchCriteria)
	case errors.Is(err, ErrTransactionNotFound):
		return common.NewNotFoundError(message, err).WithErrorCode(CodeTransactionNotFound)
	case errors.Is(err, ErrRateFetchFailed):
		return common.NewBadGatewayError(message, err).WithErrorCode(CodeExternalAPIFailure)
	case errors.Is(err, ErrRateNotFound):
		return common.NewNotFoundError(message, err).WithErrorCode(CodeRateNotFound)
	case errors.Is(err, ErrDuplicateTransaction):
		return common.NewConflictError(message, err).WithErrorCode(CodeDuplicateTransaction)
	case errors.Is(err, ErrStorageFailure):
		return common.NewInternalServerError("failed to access transaction storage", err).WithErrorCode(CodeStorageFailure)
	default:
		return common.NewInternalServerError("internal server error", err)
	}
}
