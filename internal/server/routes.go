package server

import (
	"cafeorders/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, orderH *handler.OrderHandler, revenueH *handler.RevenueHandler, formH *handler.FormHandler) {
	// /orders/revenueは静的パスなので/:idより優先される
	revenueH.RegisterRoutes(e)
	orderH.RegisterRoutes(e)
	formH.RegisterRoutes(e)
}
