package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cafeorders/internal/catalog"
	"cafeorders/internal/domain/model"
	repo "cafeorders/internal/repository"

	"github.com/shopspring/decimal"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 現在時刻の供給源。本番はtime.Now、テストは固定時刻。
type Clock interface {
	Now() time.Time
}

// 料理リストが空（または全て解決不能）のときの表示
const NoDishesLabel = "No dishes"

type OrderUsecase struct {
	tx      repo.TransactionManager
	catalog catalog.Provider
	clock   Clock
}

// DI
func NewOrderUsecase(tx repo.TransactionManager, c catalog.Provider, clock Clock) *OrderUsecase {
	return &OrderUsecase{tx: tx, catalog: c, clock: clock}
}

type CreateOrderInput struct {
	TableNumber int
	DishIDs     []int64
	Status      string
}

// nil = そのフィールドは送られていない（据え置き）
type UpdateOrderInput struct {
	TableNumber *int
	DishIDs     *[]int64
	Status      *string
}

type ListOrdersInput struct {
	TableNumber *int
	Status      string
}

type OrderOutput struct {
	ID          int64           `json:"id"`
	TableNumber int             `json:"table_number"`
	DishIDs     []int64         `json:"dish_ids"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	PaidAt      *time.Time      `json:"paid_at"`
	DishNames   string          `json:"dish_names"`
}

// 注文合計をカタログの現在価格から計算する。
// カタログに無いIDは0円扱いで黙ってスキップ（昔の注文が読めなくならないように）。
func RecomputeTotal(dishes []model.Dish, dishIDs []int64) decimal.Decimal {
	byID := make(map[int64]model.Dish, len(dishes))
	for _, d := range dishes {
		byID[d.ID] = d
	}

	total := decimal.Zero
	for _, id := range dishIDs {
		if d, ok := byID[id]; ok {
			total = total.Add(d.Price)
		}
	}
	return total
}

// 「名前 - 価格(小数2桁)」をカンマ区切りで並べた表示用文字列
func DishSummary(dishes []model.Dish, dishIDs []int64) string {
	byID := make(map[int64]model.Dish, len(dishes))
	for _, d := range dishes {
		byID[d.ID] = d
	}

	parts := make([]string, 0, len(dishIDs))
	for _, id := range dishIDs {
		if d, ok := byID[id]; ok {
			parts = append(parts, fmt.Sprintf("%s - %s", d.Name, d.Price.StringFixed(2)))
		}
	}
	if len(parts) == 0 {
		return NoDishesLabel
	}
	return strings.Join(parts, ", ")
}

func (u *OrderUsecase) Create(ctx context.Context, in CreateOrderInput) (OrderOutput, error) {
	if in.TableNumber <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "table_number must be positive")
	}

	status := model.OrderStatus(in.Status)
	if in.Status == "" {
		status = model.OrderStatusWaiting
	}
	if !status.Valid() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	dishes := u.catalog.Load()

	var out OrderOutput

	// 重複チェックと作成は同じTxで行う
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		taken, err := r.Orders().ExistsActive(ctx, in.TableNumber, 0)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if taken {
			return NewHTTPError(http.StatusBadRequest, "table already has an active order")
		}

		now := u.clock.Now()
		order := model.Order{
			TableNumber: in.TableNumber,
			DishIDs:     append(model.DishIDList{}, in.DishIDs...),
			TotalPrice:  RecomputeTotal(dishes, in.DishIDs),
			Status:      status,
			CreatedAt:   now,
		}
		// 最初からpaidならその場で支払時刻を打つ
		if status == model.OrderStatusPaid {
			order.PaidAt = &now
		}

		created, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(created, dishes)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) Update(ctx context.Context, orderID int64, in UpdateOrderInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if in.Status != nil && !model.OrderStatus(*in.Status).Valid() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if in.TableNumber != nil && *in.TableNumber <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "table_number must be positive")
	}

	dishes := u.catalog.Load()

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if in.TableNumber != nil {
			order.TableNumber = *in.TableNumber
		}
		if in.DishIDs != nil {
			order.DishIDs = append(model.DishIDList{}, (*in.DishIDs)...)
		}
		if in.Status != nil {
			order.Status = model.OrderStatus(*in.Status)
		}

		// 自分自身は除いて重複チェック
		taken, err := r.Orders().ExistsActive(ctx, order.TableNumber, order.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if taken {
			return NewHTTPError(http.StatusBadRequest, "table already has an active order")
		}

		// 合計は保存のたびに必ず計算し直す（クライアントの値は信用しない）
		order.TotalPrice = RecomputeTotal(dishes, order.DishIDs)

		// paid_atは一度だけ。以降は料理が変わっても更新しない。
		if order.Status == model.OrderStatusPaid && order.PaidAt == nil {
			now := u.clock.Now()
			order.PaidAt = &now
		}

		if err := r.Orders().Update(ctx, order); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(order, dishes)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) Get(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(order, u.catalog.Load())
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) List(ctx context.Context, in ListOrdersInput) ([]OrderOutput, error) {
	if in.Status != "" && !model.OrderStatus(in.Status).Valid() {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().List(ctx, repo.OrderListFilter{
			TableNumber: in.TableNumber,
			Status:      in.Status,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		dishes := u.catalog.Load()
		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			outs = append(outs, toOrderOutput(o, dishes))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) Delete(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Orders().Delete(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

func toOrderOutput(o model.Order, dishes []model.Dish) OrderOutput {
	return OrderOutput{
		ID:          o.ID,
		TableNumber: o.TableNumber,
		DishIDs:     append([]int64{}, o.DishIDs...),
		TotalPrice:  o.TotalPrice,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
		PaidAt:      o.PaidAt,
		DishNames:   DishSummary(dishes, o.DishIDs),
	}
}
