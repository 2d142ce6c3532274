package usecase

import (
	"context"
	"net/http"
	"time"

	"cafeorders/internal/catalog"
	repo "cafeorders/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	defaultStartTime = "09:00"
	defaultEndTime   = "17:00"
)

// 売上レポート（読み取り専用）
type RevenueUsecase struct {
	orders  repo.OrderRepository
	catalog catalog.Provider
	clock   Clock
}

// DI
func NewRevenueUsecase(orders repo.OrderRepository, c catalog.Provider, clock Clock) *RevenueUsecase {
	return &RevenueUsecase{orders: orders, catalog: c, clock: clock}
}

// 日付はYYYY-MM-DD、時刻はHH:MM。日付が無ければ今日の09:00-17:00。
type RevenueInput struct {
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
}

type RevenueOutput struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	Orders        []OrderOutput   `json:"orders"`
	StartDatetime time.Time       `json:"start_datetime"`
	EndDatetime   time.Time       `json:"end_datetime"`
}

func (u *RevenueUsecase) Report(ctx context.Context, in RevenueInput) (RevenueOutput, error) {
	start, end, err := u.resolveWindow(in)
	if err != nil {
		return RevenueOutput{}, err
	}

	orders, err := u.orders.ListPaidBetween(ctx, start, end)
	if err != nil {
		return RevenueOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	dishes := u.catalog.Load()

	total := decimal.Zero
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		total = total.Add(o.TotalPrice)
		outs = append(outs, toOrderOutput(o, dishes))
	}

	return RevenueOutput{
		TotalRevenue:  total,
		Orders:        outs,
		StartDatetime: start,
		EndDatetime:   end,
	}, nil
}

// 集計区間を決める。start > endは入口によらず常にエラー。
func (u *RevenueUsecase) resolveWindow(in RevenueInput) (time.Time, time.Time, error) {
	now := u.clock.Now()
	loc := now.Location()

	if in.StartDate == "" || in.EndDate == "" {
		start := combine(now, 9, 0, loc)
		end := combine(now, 17, 0, loc)
		return start, end, nil
	}

	startTime := in.StartTime
	if startTime == "" {
		startTime = defaultStartTime
	}
	endTime := in.EndTime
	if endTime == "" {
		endTime = defaultEndTime
	}

	sd, err := time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, NewHTTPError(http.StatusBadRequest, "invalid start_date")
	}
	ed, err := time.Parse(dateLayout, in.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, NewHTTPError(http.StatusBadRequest, "invalid end_date")
	}
	st, err := time.Parse(timeLayout, startTime)
	if err != nil {
		return time.Time{}, time.Time{}, NewHTTPError(http.StatusBadRequest, "invalid start_time")
	}
	et, err := time.Parse(timeLayout, endTime)
	if err != nil {
		return time.Time{}, time.Time{}, NewHTTPError(http.StatusBadRequest, "invalid end_time")
	}

	start := time.Date(sd.Year(), sd.Month(), sd.Day(), st.Hour(), st.Minute(), 0, 0, loc)
	end := time.Date(ed.Year(), ed.Month(), ed.Day(), et.Hour(), et.Minute(), 0, 0, loc)

	if start.After(end) {
		return time.Time{}, time.Time{}, NewHTTPError(http.StatusBadRequest, "start must be before end")
	}
	return start, end, nil
}

func combine(day time.Time, hour int, min int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, loc)
}
