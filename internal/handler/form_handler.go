package handler

import (
	"net/http"
	"strconv"

	"cafeorders/internal/usecase"
	"cafeorders/internal/validator"

	"github.com/labstack/echo/v4"
)

// /web/orders のフォーム用サーフェス。
// JSON APIと同じvalidator/usecaseを通す（検証ルールは両面で同一）。
// HTML描画はしない：成功は一覧へ303リダイレクト、失敗は同じエラーメッセージをJSONで返す。
type FormHandler struct {
	uc  *usecase.OrderUsecase
	rev *usecase.RevenueUsecase
	v   *validator.OrderValidator
}

// DI
func NewFormHandler(uc *usecase.OrderUsecase, rev *usecase.RevenueUsecase, v *validator.OrderValidator) *FormHandler {
	return &FormHandler{uc: uc, rev: rev, v: v}
}

func (h *FormHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/web/orders")

	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/:id", h.update)
	g.POST("/:id/delete", h.remove)
	g.GET("/revenue", h.revenue)
}

func (h *FormHandler) list(c echo.Context) error {
	// q = テーブル番号での検索
	var tableNumber *int
	if v := c.QueryParam("q"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid q"})
		}
		tableNumber = &n
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListOrdersInput{
		TableNumber: tableNumber,
		Status:      c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FormHandler) create(c echo.Context) error {
	tableNumber, err := strconv.Atoi(c.FormValue("table_number"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "table_number must be a number"})
	}

	dishIDs, err := formDishIDs(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid dish_ids"})
	}

	ctx := c.Request().Context()

	if err := h.v.ValidateOrder(ctx, &tableNumber, &dishIDs, 0); err != nil {
		return writeError(c, err)
	}

	if _, err := h.uc.Create(ctx, usecase.CreateOrderInput{
		TableNumber: tableNumber,
		DishIDs:     dishIDs,
		Status:      c.FormValue("status"),
	}); err != nil {
		return writeError(c, err)
	}

	return c.Redirect(http.StatusSeeOther, "/web/orders")
}

func (h *FormHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	// フォームは全フィールド送信が前提
	tableNumber, err := strconv.Atoi(c.FormValue("table_number"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "table_number must be a number"})
	}

	dishIDs, err := formDishIDs(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid dish_ids"})
	}

	status := c.FormValue("status")

	ctx := c.Request().Context()

	if err := h.v.ValidateOrder(ctx, &tableNumber, &dishIDs, id); err != nil {
		return writeError(c, err)
	}

	if _, err := h.uc.Update(ctx, id, usecase.UpdateOrderInput{
		TableNumber: &tableNumber,
		DishIDs:     &dishIDs,
		Status:      &status,
	}); err != nil {
		return writeError(c, err)
	}

	return c.Redirect(http.StatusSeeOther, "/web/orders")
}

func (h *FormHandler) remove(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.Redirect(http.StatusSeeOther, "/web/orders")
}

func (h *FormHandler) revenue(c echo.Context) error {
	out, err := h.rev.Report(c.Request().Context(), usecase.RevenueInput{
		StartDate: c.QueryParam("start_date"),
		StartTime: c.QueryParam("start_time"),
		EndDate:   c.QueryParam("end_date"),
		EndTime:   c.QueryParam("end_time"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// dish_idsは同名フィールドの繰り返しで受ける
func formDishIDs(c echo.Context) ([]int64, error) {
	form, err := c.FormParams()
	if err != nil {
		return nil, err
	}

	values := form["dish_ids"]
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
