package validator

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"cafeorders/internal/catalog"
	"cafeorders/internal/repository"
	"cafeorders/internal/usecase"
)

// 入口（API/フォーム）での検証。
// Usecase側でも同じ重複チェックを行うが、どちらも単体で呼ばれ得るため二重に持つ。
type OrderValidator struct {
	orders  repository.OrderRepository
	catalog catalog.Provider
}

func NewOrderValidator(orders repository.OrderRepository, c catalog.Provider) *OrderValidator {
	return &OrderValidator{orders: orders, catalog: c}
}

// 送られてきたフィールドだけを検証する（nil = 未送信）。
// 新規作成はexcludeID=0で呼ぶ。
func (v *OrderValidator) ValidateOrder(ctx context.Context, tableNumber *int, dishIDs *[]int64, excludeID int64) error {
	if tableNumber != nil {
		if *tableNumber <= 0 {
			return usecase.NewHTTPError(http.StatusBadRequest, "table_number must be positive")
		}

		taken, err := v.orders.ExistsActive(ctx, *tableNumber, excludeID)
		if err != nil {
			return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if taken {
			return usecase.NewHTTPError(http.StatusBadRequest, "table already has an active order")
		}
	}

	if dishIDs != nil {
		// 入口では厳格：今のカタログに無いIDは全部挙げて弾く
		known := make(map[int64]bool)
		for _, d := range v.catalog.Load() {
			known[d.ID] = true
		}

		var invalid []string
		seen := make(map[int64]bool)
		for _, id := range *dishIDs {
			if !known[id] && !seen[id] {
				seen[id] = true
				invalid = append(invalid, strconv.FormatInt(id, 10))
			}
		}
		if len(invalid) > 0 {
			return usecase.NewHTTPError(http.StatusBadRequest, "invalid dish ids: "+strings.Join(invalid, ", "))
		}
	}

	return nil
}
