package currency

import (
	"context"
	"fmt"
	"time"

	"github.com/richxcame/currency-exchange/pkg/eventbus"
	"github.com/richxcame/currency-exchange/pkg/logger"
	"go.uber.org/zap"
)

// SubjectConverted is the event subject published after a conversion is stored
const SubjectConverted = "currency.converted"

// Pipeline runs one request through validate, resolve, convert and persist
type Pipeline struct {
	resolver  *RateResolver
	converter *Converter
	store     TransactionStore
	publisher eventbus.Publisher
	now       func() time.Time
}

// NewPipeline creates a conversion pipeline. A nil publisher disables events.
func NewPipeline(resolver *RateResolver, converter *Converter, store TransactionStore, publisher eventbus.Publisher) *Pipeline {
	if publisher == nil {
		publisher = eventbus.NopPublisher{}
	}
	return &Pipeline{
		resolver:  resolver,
		converter: converter,
		store:     store,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run converts req and stores the resulting transaction. Every failure is returned.
func (p *Pipeline) Run(ctx context.Context, req ConversionRequest) (*ConversionResponse, error) {
	if err := p.converter.Validate(&req); err != nil {
		return nil, err
	}

	rate, err := p.resolver.Resolve(ctx, req.SourceCurrency, req.TargetCurrency)
	if err != nil {
		return nil, err
	}

	converted, err := p.converter.Convert(&req.Amount, &rate)
	if err != nil {
		return nil, err
	}

	record := &ConversionRecord{
		TransactionID:   p.converter.GenerateTransactionID(),
		SourceCurrency:  req.SourceCurrency,
		TargetCurrency:  req.TargetCurrency,
		Amount:          req.Amount,
		ConvertedAmount: converted,
		TransactionDate: p.now(),
	}

	if err := p.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	resp := toConversionResponse(record)

	if err := p.publisher.Publish(ctx, SubjectConverted, resp); err != nil {
		logger.WithContext(ctx).Warn("Failed to publish conversion event",
			zap.String("transaction_id", record.TransactionID),
			zap.Error(err),
		)
	}

	return resp, nil
}
