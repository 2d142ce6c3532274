package repository

import (
	"context"
	"errors"
	"time"

	"cafeorders/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧の絞り込み
type OrderListFilter struct {
	TableNumber *int
	Status      string
}

// 注文の永続化（保存・取得・削除）だけを約束。
type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)
	Update(ctx context.Context, order model.Order) error
	Delete(ctx context.Context, orderID int64) error

	// 同じテーブルにwaiting/readyの注文が他にあるか（excludeID=0で全件対象）
	ExistsActive(ctx context.Context, tableNumber int, excludeID int64) (bool, error)
	// 売上レポート用：paid_atが[from, to]に入るpaid注文
	ListPaidBetween(ctx context.Context, from time.Time, to time.Time) ([]model.Order, error)
}
