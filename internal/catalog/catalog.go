package catalog

import (
	"encoding/json"
	"os"

	"cafeorders/internal/domain/model"
)

// カタログは毎回読み直す（キャッシュしない）。差し替え可能にしてテストを楽にする。
type Provider interface {
	Load() []model.Dish
}

// JSONファイルからカタログを読む。
// 読めない/壊れている/配列でない場合は「料理なし」として空を返す（エラーにしない）。
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Load() []model.Dish {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return []model.Dish{}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return []model.Dish{}
	}

	dishes := make([]model.Dish, 0, len(entries))
	for _, e := range entries {
		var d model.Dish
		// オブジェクト以外の要素は読み飛ばす
		if err := json.Unmarshal(e, &d); err != nil {
			continue
		}
		dishes = append(dishes, d)
	}
	return dishes
}

// 固定リストを返すProvider（テスト・シード用）
type StaticProvider struct {
	dishes []model.Dish
}

func NewStaticProvider(dishes []model.Dish) *StaticProvider {
	return &StaticProvider{dishes: dishes}
}

func (p *StaticProvider) Load() []model.Dish {
	out := make([]model.Dish, len(p.dishes))
	copy(out, p.dishes)
	return out
}

// IDで料理を探す。毎回Load()し直した結果に対する線形探索。
func FindByID(p Provider, id int64) (model.Dish, bool) {
	for _, d := range p.Load() {
		if d.ID == id {
			return d, true
		}
	}
	return model.Dish{}, false
}
