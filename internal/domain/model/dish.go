package model

import "github.com/shopspring/decimal"

// メニューの料理。JSONカタログ由来でDBには保存しない。
type Dish struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
}
