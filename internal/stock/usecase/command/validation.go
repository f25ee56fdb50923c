package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// fieldErrors collects field -> failed rule pairs
type fieldErrors map[string]string

func (f fieldErrors) nonNegative(field string, d *decimal.Decimal) {
	if d != nil && d.IsNegative() {
		f[field] = "gte"
	}
}

// validateCommand runs struct tag rules plus any extra field errors
func validateCommand(cmd interface{}, extra fieldErrors) error {
	fields := fieldErrors{}
	if err := validate.Struct(cmd); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return fmt.Errorf("failed to validate command: %w", err)
		}
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
	}
	for k, v := range extra {
		fields[k] = v
	}
	if len(fields) > 0 {
		return domain.Validation("invalid input", fields)
	}
	return nil
}

// logTransition records a lot's lifecycle change after commit
func logTransition(ctx context.Context, lot *domain.Lot, before domain.LotState) {
	after := lot.State()
	if after == before {
		return
	}
	logger.ForLot(ctx, lot.ID).Info().
		Str("from", string(before)).
		Str("to", string(after)).
		Float64("quantity_available", lot.QuantityAvailable).
		Msg("Lot state changed")
}
