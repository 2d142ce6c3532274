package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusWaiting OrderStatus = "waiting"
	OrderStatusReady   OrderStatus = "ready"
	OrderStatusPaid    OrderStatus = "paid"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusWaiting, OrderStatusReady, OrderStatusPaid:
		return true
	}
	return false
}

// 注文に含まれる料理IDの列。jsonbで保存（重複OK・順序維持）
type DishIDList []int64

func (d DishIDList) Value() (driver.Value, error) {
	if d == nil {
		d = DishIDList{}
	}
	return json.Marshal(d)
}

func (d *DishIDList) Scan(value interface{}) error {
	if value == nil {
		*d = DishIDList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	}
	return fmt.Errorf("cannot scan %T into DishIDList", value)
}

type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TableNumber int             `gorm:"not null;index" json:"table_number"`
	DishIDs     DishIDList      `gorm:"type:jsonb;not null;default:'[]'" json:"dish_ids"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	PaidAt      *time.Time      `json:"paid_at"`
}

// waiting/readyの注文だけがテーブルを占有する
func (o Order) IsActive() bool {
	return o.Status == OrderStatusWaiting || o.Status == OrderStatusReady
}
