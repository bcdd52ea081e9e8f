package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Store struct {
	ID        int64
	CreatedAt time.Time
	Name      string
}

type Item struct {
	ID        int64
	CreatedAt time.Time
	Name      string
	Price     decimal.Decimal
	StoreID   int64
}

// Tag belongs to a single store; items of that store may be linked to it
type Tag struct {
	ID      int64
	Name    string
	StoreID int64
}
