package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hitoshi/hostelhunt/internal/booking"
	"github.com/hitoshi/hostelhunt/internal/model"
)

// BookingService はBooking Storeのうちハンドラーが使う操作のインターフェース。
// booking.Storeが満たす。
type BookingService interface {
	CreateBooking(ctx context.Context, in booking.CreateInput) (int64, error)
	GetBookingByID(ctx context.Context, id int64) (*model.Booking, error)
	ListBookings(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id int64, next model.BookingStatus) (*model.Booking, error)
	ToggleFavorite(ctx context.Context, hostelID int64) (bool, error)
	Favorites(ctx context.Context) ([]int64, error)
	IsFavorite(ctx context.Context, hostelID int64) (bool, error)
	FavoriteHostels(ctx context.Context) ([]*model.Hostel, error)
	Analytics(ctx context.Context) (*booking.Analytics, error)
	GetHostelByID(id int64) *model.Hostel
	InitialStatus() model.BookingStatus
}

// BookingHandler は予約・お気に入りAPIのHTTPハンドラー。
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler はBookingHandlerを生成する。
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// updateStatusRequest はステータス更新リクエストのボディ。
type updateStatusRequest struct {
	Status model.BookingStatus `json:"status"`
}

// createBookingResponse は予約作成のAPIレスポンス。
type createBookingResponse struct {
	ID      int64          `json:"id"`
	Booking *model.Booking `json:"booking"`
}

// bookingListResponse は予約一覧のAPIレスポンス。
type bookingListResponse struct {
	Bookings []*model.Booking `json:"bookings"`
	Total    int              `json:"total"`
}

// favoritesResponse はお気に入り一覧のAPIレスポンス。
type favoritesResponse struct {
	HostelIDs []int64         `json:"hostel_ids"`
	Hostels   []*model.Hostel `json:"hostels"`
}

// toggleFavoriteResponse はお気に入り切り替えのAPIレスポンス。
type toggleFavoriteResponse struct {
	HostelID int64 `json:"hostel_id"`
	Favorite bool  `json:"favorite"`
}

// CreateBooking は予約を作成する。
// POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in booking.CreateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	id, err := h.service.CreateBooking(r.Context(), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	b, err := h.service.GetBookingByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/booking/confirmation/"+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusCreated, createBookingResponse{ID: id, Booking: b})
}

// ListBookings は予約を作成順に返す。
// GET /api/bookings?status=
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	filter := model.BookingFilter{Status: model.BookingStatus(r.URL.Query().Get("status"))}

	bookings, err := h.service.ListBookings(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	writeJSON(w, http.StatusOK, bookingListResponse{Bookings: bookings, Total: len(bookings)})
}

// GetBooking は予約を1件返す。
// GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBookingNotFound(w, r, "id")
		return
	}

	b, err := h.service.GetBookingByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if b == nil {
		writeBookingNotFound(w, r, "id")
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// UpdateStatus は予約ステータスを遷移させる。
// PATCH /api/bookings/{id}/status
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBookingNotFound(w, r, "id")
		return
	}

	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if b == nil {
		writeBookingNotFound(w, r, "id")
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// ListFavorites はお気に入りのホステルIDとホステル情報を返す。
// GET /api/favorites
func (h *BookingHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.Favorites(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	hostels, err := h.service.FavoriteHostels(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	if hostels == nil {
		hostels = []*model.Hostel{}
	}

	writeJSON(w, http.StatusOK, favoritesResponse{HostelIDs: ids, Hostels: hostels})
}

// ToggleFavorite はホステルのお気に入り状態を反転する。
// POST /api/favorites/{hostelId}/toggle
func (h *BookingHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	hostelID, ok := pathID(r, "hostelId")
	if !ok {
		writeHostelNotFound(w, r, "hostelId")
		return
	}

	favorite, err := h.service.ToggleFavorite(r.Context(), hostelID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleFavoriteResponse{HostelID: hostelID, Favorite: favorite})
}
