// Package currency provides the convert_currency tool: it obtains an
// exchange rate from a RateSource (live API or static table), converts the
// requested amount with half-up rounding to 2 decimals, and returns the
// conversion plus rate metadata.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmoretto/almanac/pkg/envelope"
	"github.com/nmoretto/almanac/pkg/fault"
	"github.com/nmoretto/almanac/pkg/progress"
	"github.com/nmoretto/almanac/pkg/toolbox"
)

// fallbackMessage is used when a failure carries no message of its own.
const fallbackMessage = "Failed to convert currency"

// Service owns the rate source for the currency tool.
type Service struct {
	source RateSource
	now    func() time.Time
}

// New creates a currency Service backed by the given rate source.
func New(source RateSource) *Service {
	return &Service{
		source: source,
		now:    time.Now,
	}
}

// Tools returns a ToolBox containing the currency tools.
func (s *Service) Tools() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(s.convertTool())

	return tb
}

// Conversion is the tool's stable output schema.
type Conversion struct {
	Amount           float64 `json:"amount"`
	From             string  `json:"from"`
	To               string  `json:"to"`
	Rate             float64 `json:"rate"`
	ConvertedAmount  float64 `json:"convertedAmount"`
	EquivalentString string  `json:"equivalentString"`
	GeneratedAt      string  `json:"generatedAt"`
	RateUpdatedAt    string  `json:"rateUpdatedAt,omitempty"`
}

func (s *Service) convertTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "convert_currency",
		Description: "Convert an amount between two currencies using the current exchange rate. Currency codes are ISO 4217, e.g. USD, EUR, JPY.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"amount":{"type":"number","description":"Amount to convert"},"from":{"type":"string","description":"Source currency code, e.g. USD"},"to":{"type":"string","description":"Target currency code, e.g. EUR"}},"required":["amount","from","to"]}`),
		Handler:     s.handleConvert,
	}
}

// convertInput uses a pointer for amount so a missing field can be told apart
// from an explicit zero.
type convertInput struct {
	Amount *float64 `json:"amount"`
	From   string   `json:"from"`
	To     string   `json:"to"`
}

func (s *Service) handleConvert(ctx context.Context, input json.RawMessage) (string, error) {
	return envelope.Run(fallbackMessage, func() (any, error) {
		return s.convert(ctx, input)
	}), nil
}

// convert runs the validate → fetch → normalize pipeline for one invocation.
func (s *Service) convert(ctx context.Context, input json.RawMessage) (*Conversion, error) {
	var in convertInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fault.Validation("invalid arguments: %v", err)
	}

	if in.Amount == nil {
		return nil, fault.Validation("amount is required")
	}
	if in.From == "" {
		return nil, fault.Validation("from is required")
	}
	if in.To == "" {
		return nil, fault.Validation("to is required")
	}

	from := strings.ToUpper(in.From)
	to := strings.ToUpper(in.To)

	progress.Notify(ctx, fmt.Sprintf("Fetching exchange rate for %s to %s...", from, to), 25)

	quote, err := s.source.Rate(ctx, from, to)
	if err != nil {
		return nil, err
	}

	progress.Notify(ctx, "Converting amount...", 50)

	amount := decimal.NewFromFloat(*in.Amount)
	rate := decimal.NewFromFloat(quote.Rate)
	converted := amount.Mul(rate).Round(2)

	conversion := &Conversion{
		Amount:          *in.Amount,
		From:            from,
		To:              to,
		Rate:            quote.Rate,
		ConvertedAmount: converted.InexactFloat64(),
		EquivalentString: fmt.Sprintf("%s %s = %s %s",
			amount.String(), from, converted.String(), to),
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
	}

	if !quote.UpdatedAt.IsZero() {
		conversion.RateUpdatedAt = quote.UpdatedAt.UTC().Format(time.RFC3339)
	}

	progress.Notify(ctx, "Conversion complete", 100)

	return conversion, nil
}
