package handler

import (
	"net/http"

	"cafeorders/internal/usecase"

	"github.com/labstack/echo/v4"
)

type RevenueHandler struct {
	uc *usecase.RevenueUsecase
}

// DI
func NewRevenueHandler(uc *usecase.RevenueUsecase) *RevenueHandler {
	return &RevenueHandler{uc: uc}
}

func (h *RevenueHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/orders/revenue", h.report)
}

func (h *RevenueHandler) report(c echo.Context) error {
	out, err := h.uc.Report(c.Request().Context(), usecase.RevenueInput{
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
