package dto

import (
	"time"

	"github.com/fekuna/omnipos-stall-service/internal/model"
)

type CheckoutInput struct {
	Lines      []model.CartLine
	TerminalID string // Logged only
}

type SalesHistoryFilters struct {
	From *time.Time
	To   *time.Time
}
