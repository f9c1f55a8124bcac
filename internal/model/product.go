package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a row of the products catalog.
type Product struct {
	ID        int64
	Name      string
	Category  string
	Price     decimal.Decimal
	CreatedAt time.Time
}
