package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hitoshi/hostelhunt/internal/catalog"
	"github.com/hitoshi/hostelhunt/internal/model"
)

// CatalogService はホステルカタログの読み取りインターフェース。
type CatalogService interface {
	Search(f catalog.Filter) catalog.Page
	GetByID(id int64) *model.Hostel
	Featured() []*model.Hostel
}

// HostelHandler はホステルカタログAPIのHTTPハンドラー。
type HostelHandler struct {
	catalog CatalogService
}

// NewHostelHandler はHostelHandlerを生成する。
func NewHostelHandler(c CatalogService) *HostelHandler {
	return &HostelHandler{catalog: c}
}

// ListHostels は条件に一致するホステルをページ単位で返す。
// GET /api/hostels?q=&min_price=&max_price=&room_type=&min_capacity=&verified=&featured=&sort=&page=&per_page=
func (h *HostelHandler) ListHostels(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHostelFilter(r.URL.Query())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.Search(filter))
}

// GetHostel はホステル詳細を返す。
// GET /api/hostels/{id}
func (h *HostelHandler) GetHostel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeHostelNotFound(w, r, "id")
		return
	}
	hostel := h.catalog.GetByID(id)
	if hostel == nil {
		writeHostelNotFound(w, r, "id")
		return
	}
	writeJSON(w, http.StatusOK, hostel)
}

// parseHostelFilter はクエリパラメータから検索条件を組み立てる。
// room_type は複数指定とカンマ区切りのどちらも受け付ける。
func parseHostelFilter(q url.Values) (catalog.Filter, error) {
	var (
		f   catalog.Filter
		err error
	)
	f.Query = strings.TrimSpace(q.Get("q"))
	f.SortBy = q.Get("sort")

	if f.MinPrice, err = floatParam(q, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = floatParam(q, "max_price"); err != nil {
		return f, err
	}
	if f.MinCapacity, err = intParam(q, "min_capacity"); err != nil {
		return f, err
	}
	if f.Page, err = intParam(q, "page"); err != nil {
		return f, err
	}
	if f.PerPage, err = intParam(q, "per_page"); err != nil {
		return f, err
	}
	if f.VerifiedOnly, err = boolParam(q, "verified"); err != nil {
		return f, err
	}
	if f.FeaturedOnly, err = boolParam(q, "featured"); err != nil {
		return f, err
	}

	for _, v := range q["room_type"] {
		for _, rt := range strings.Split(v, ",") {
			if rt = strings.TrimSpace(rt); rt != "" {
				f.RoomTypes = append(f.RoomTypes, rt)
			}
		}
	}

	switch f.SortBy {
	case catalog.SortDefault, catalog.SortPriceAsc, catalog.SortPriceDesc, catalog.SortRating:
	default:
		return f, model.NewValidationError("sort は price_asc, price_desc, rating のいずれかです")
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return f, model.NewValidationError("min_price は max_price 以下にしてください")
	}
	return f, nil
}

func floatParam(q url.Values, key string) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, model.NewValidationError(key + " は0以上の数値です")
	}
	return v, nil
}

func intParam(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, model.NewValidationError(key + " は0以上の整数です")
	}
	return v, nil
}

func boolParam(q url.Values, key string) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, model.NewValidationError(key + " は true か false です")
	}
	return v, nil
}
