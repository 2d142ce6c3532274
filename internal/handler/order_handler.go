package handler

import (
	"net/http"
	"strconv"

	"cafeorders/internal/usecase"
	"cafeorders/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /orders のJSON API
type OrderHandler struct {
	uc *usecase.OrderUsecase
	v  *validator.OrderValidator
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase, v *validator.OrderValidator) *OrderHandler {
	return &OrderHandler{uc: uc, v: v}
}

type OrderCreateRequest struct {
	TableNumber int     `json:"table_number"`
	DishIDs     []int64 `json:"dish_ids"`
	Status      string  `json:"status"`
}

// 部分更新：nilのフィールドは据え置き
type OrderUpdateRequest struct {
	TableNumber *int     `json:"table_number"`
	DishIDs     *[]int64 `json:"dish_ids"`
	Status      *string  `json:"status"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/orders")

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.detail)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

func (h *OrderHandler) list(c echo.Context) error {
	var tableNumber *int
	if v := c.QueryParam("table_number"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid table_number"})
		}
		tableNumber = &n
	}

	status := c.QueryParam("status")

	out, err := h.uc.List(c.Request().Context(), usecase.ListOrdersInput{
		TableNumber: tableNumber,
		Status:      status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	ctx := c.Request().Context()

	if err := h.v.ValidateOrder(ctx, &req.TableNumber, &req.DishIDs, 0); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Create(ctx, usecase.CreateOrderInput{
		TableNumber: req.TableNumber,
		DishIDs:     req.DishIDs,
		Status:      req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	ctx := c.Request().Context()

	if err := h.v.ValidateOrder(ctx, req.TableNumber, req.DishIDs, id); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Update(ctx, id, usecase.UpdateOrderInput{
		TableNumber: req.TableNumber,
		DishIDs:     req.DishIDs,
		Status:      req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) remove(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
