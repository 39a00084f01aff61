// Package catalog は読み取り専用のホステルカタログを提供する。
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hitoshi/hostelhunt/internal/model"
)

// ページネーションの既定値と上限。
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ソート順。
const (
	SortDefault   = ""
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
)

// Filter はホステル検索の条件を表す。ゼロ値の項目は条件として扱わない。
type Filter struct {
	Query        string
	MinPrice     float64
	MaxPrice     float64
	RoomTypes    []string
	MinCapacity  int
	VerifiedOnly bool
	FeaturedOnly bool
	SortBy       string
	Page         int
	PerPage      int
}

// Page は検索結果の1ページ分を表す。
type Page struct {
	Hostels     []*model.Hostel `json:"hostels"`
	Total       int             `json:"total"`
	Pages       int             `json:"pages"`
	CurrentPage int             `json:"current_page"`
	PerPage     int             `json:"per_page"`
}

// Catalog はホステルの不変リストを保持する。
// 生成後に内容が変わることはなく、返す値はすべてコピー。
type Catalog struct {
	mu      sync.RWMutex
	hostels []*model.Hostel
	byID    map[int64]*model.Hostel
}

// New はホステル一覧からCatalogを生成する。
// IDが正でないもの、名前が空のもの、IDの重複がある場合はエラーを返す。
func New(hostels []model.Hostel) (*Catalog, error) {
	c := &Catalog{
		hostels: make([]*model.Hostel, 0, len(hostels)),
		byID:    make(map[int64]*model.Hostel, len(hostels)),
	}
	for i := range hostels {
		h := hostels[i].Clone()
		if h.ID <= 0 {
			return nil, fmt.Errorf("hostel at index %d: id must be positive", i)
		}
		if strings.TrimSpace(h.Name) == "" {
			return nil, fmt.Errorf("hostel %d: name is required", h.ID)
		}
		if _, dup := c.byID[h.ID]; dup {
			return nil, fmt.Errorf("duplicate hostel id %d", h.ID)
		}
		if h.Currency == "" {
			h.Currency = model.DefaultCurrency
		}
		c.hostels = append(c.hostels, h)
		c.byID[h.ID] = h
	}
	return c, nil
}

// GetByID はIDに一致するホステルのコピーを返す。存在しない場合はnil。
func (c *Catalog) GetByID(id int64) *model.Hostel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h, ok := c.byID[id]
	if !ok {
		return nil
	}
	return h.Clone()
}

// Contains はIDがカタログに存在するかを返す。
func (c *Catalog) Contains(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byID[id]
	return ok
}

// All は全ホステルのコピーをID登録順で返す。
func (c *Catalog) All() []*model.Hostel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*model.Hostel, len(c.hostels))
	for i, h := range c.hostels {
		out[i] = h.Clone()
	}
	return out
}

// Len はホステル数を返す。
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hostels)
}

// Featured はおすすめ表示対象のホステルを返す。
func (c *Catalog) Featured() []*model.Hostel {
	return c.Search(Filter{FeaturedOnly: true, PerPage: MaxPerPage}).Hostels
}

// Search は条件に一致するホステルをソートしてページ単位で返す。
func (c *Catalog) Search(f Filter) Page {
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	c.mu.RLock()
	matched := make([]*model.Hostel, 0, len(c.hostels))
	for _, h := range c.hostels {
		if f.matches(h) {
			matched = append(matched, h.Clone())
		}
	}
	c.mu.RUnlock()

	sortHostels(matched, f.SortBy)

	total := len(matched)
	pages := (total + perPage - 1) / perPage
	// ページ数を超える指定は空ページ。先に比較して乗算のオーバーフローを避ける
	start := total
	if page <= pages {
		start = (page - 1) * perPage
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return Page{
		Hostels:     matched[start:end],
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
		PerPage:     perPage,
	}
}

func (f Filter) matches(h *model.Hostel) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(h.Name), q) &&
			!strings.Contains(strings.ToLower(h.Location), q) &&
			!strings.Contains(strings.ToLower(h.University), q) {
			return false
		}
	}
	if f.MinPrice > 0 && h.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && h.Price > f.MaxPrice {
		return false
	}
	if len(f.RoomTypes) > 0 && !containsFold(f.RoomTypes, h.RoomType) {
		return false
	}
	if f.MinCapacity > 0 && h.Capacity < f.MinCapacity {
		return false
	}
	if f.VerifiedOnly && !h.IsVerified {
		return false
	}
	if f.FeaturedOnly && !h.IsFeatured {
		return false
	}
	return true
}

func sortHostels(hs []*model.Hostel, sortBy string) {
	switch sortBy {
	case SortPriceAsc:
		sort.SliceStable(hs, func(i, j int) bool { return hs[i].Price < hs[j].Price })
	case SortPriceDesc:
		sort.SliceStable(hs, func(i, j int) bool { return hs[i].Price > hs[j].Price })
	case SortRating:
		sort.SliceStable(hs, func(i, j int) bool { return hs[i].Rating > hs[j].Rating })
	default:
		sort.SliceStable(hs, func(i, j int) bool { return hs[i].ID < hs[j].ID })
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
