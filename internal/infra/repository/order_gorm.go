package repository

import (
	"context"
	"errors"
	"time"

	"cafeorders/internal/domain/model"
	repo "cafeorders/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

// DI
func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// 新しい注文が先頭（作成日時の降順）
func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	if f.TableNumber != nil {
		q = q.Where("table_number = ?", *f.TableNumber)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var items []model.Order
	err := q.Order("created_at desc").Order("id desc").Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderGormRepository) Update(ctx context.Context, order model.Order) error {
	// created_atは触らない
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"table_number": order.TableNumber,
			"dish_ids":     order.DishIDs,
			"total_price":  order.TotalPrice,
			"status":       order.Status,
			"paid_at":      order.PaidAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 物理削除
func (r *OrderGormRepository) Delete(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Order{}, orderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) ExistsActive(ctx context.Context, tableNumber int, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("table_number = ? AND status IN ?", tableNumber,
			[]model.OrderStatus{model.OrderStatusWaiting, model.OrderStatusReady})
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// 両端を含む
func (r *OrderGormRepository) ListPaidBetween(ctx context.Context, from time.Time, to time.Time) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND paid_at >= ? AND paid_at <= ?", model.OrderStatusPaid, from, to).
		Order("created_at desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}
