package executor

import (
	"time"

	"github.com/google/uuid"

	"TradePilot/internal/model"
)

// Executor places orders on a venue. A nil receipt or an error means the
// order never reached the venue; the caller must leave the books untouched
// unless the receipt status is OrderFilled.
type Executor interface {
	PlaceOrder(ticker string, side model.Direction, quantity, price float64) (*model.OrderReceipt, error)
	Name() string
}

// PaperExecutor simulates a venue with instant fills at the quoted price.
type PaperExecutor struct{}

func NewPaperExecutor() *PaperExecutor { return &PaperExecutor{} }

func (e *PaperExecutor) Name() string { return "paper" }

func (e *PaperExecutor) PlaceOrder(ticker string, side model.Direction, quantity, price float64) (*model.OrderReceipt, error) {
	return &model.OrderReceipt{
		OrderID:  uuid.NewString(),
		Ticker:   ticker,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		Status:   model.OrderFilled,
		Venue:    e.Name(),
		Time:     time.Now(),
	}, nil
}
