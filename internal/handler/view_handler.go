package handler

import (
	"net/http"
	"strconv"

	"github.com/hitoshi/hostelhunt/internal/booking"
	"github.com/hitoshi/hostelhunt/internal/catalog"
	"github.com/hitoshi/hostelhunt/internal/middleware"
	"github.com/hitoshi/hostelhunt/internal/model"
)

// ViewHandler は画面ごとの表示データをJSONで返すハンドラー。
// 状態を持たず、カタログとBooking Storeを読み取って組み立てる。
type ViewHandler struct {
	catalog  CatalogService
	bookings BookingService
}

// NewViewHandler はViewHandlerを生成する。
func NewViewHandler(c CatalogService, b BookingService) *ViewHandler {
	return &ViewHandler{catalog: c, bookings: b}
}

type homeView struct {
	Featured []*model.Hostel `json:"featured"`
	User     *model.User     `json:"user"`
}

type searchView struct {
	Query   string       `json:"query"`
	Sort    string       `json:"sort"`
	Results catalog.Page `json:"results"`
}

type hostelDetailView struct {
	Hostel      *model.Hostel `json:"hostel"`
	IsFavorite  bool          `json:"is_favorite"`
	BookingPath string        `json:"booking_path"`
}

type authView struct {
	Next   string      `json:"next"`
	Reason string      `json:"reason,omitempty"`
	User   *model.User `json:"user"`
}

type bookingFormView struct {
	Hostel        *model.Hostel       `json:"hostel"`
	Form          booking.CreateInput `json:"form"`
	InitialStatus model.BookingStatus `json:"initial_status"`
	MaxGuests     int                 `json:"max_guests"`
}

type confirmationView struct {
	Booking *model.Booking `json:"booking"`
	Hostel  *model.Hostel  `json:"hostel"`
}

// dashboardEntry はダッシュボードの予約1件分。
// Actionsは現在のステータスから遷移可能なステータス。
type dashboardEntry struct {
	*model.Booking
	HostelName string                `json:"hostel_name"`
	Actions    []model.BookingStatus `json:"actions"`
}

type dashboardView struct {
	User         *model.User                 `json:"user"`
	Filter       model.BookingStatus         `json:"filter"`
	Bookings     []dashboardEntry            `json:"bookings"`
	StatusCounts map[model.BookingStatus]int `json:"status_counts"`
}

type analyticsView struct {
	User      *model.User        `json:"user"`
	Analytics *booking.Analytics `json:"analytics"`
}

type favoritesView struct {
	User    *model.User     `json:"user"`
	Hostels []*model.Hostel `json:"hostels"`
}

// Home は注目のホステルを返す。
// GET /
func (h *ViewHandler) Home(w http.ResponseWriter, r *http.Request) {
	featured := h.catalog.Featured()
	if featured == nil {
		featured = []*model.Hostel{}
	}
	writeJSON(w, http.StatusOK, homeView{Featured: featured, User: optionalUser(r)})
}

// Search は検索結果を返す。条件は /api/hostels と同じ。
// GET /search
func (h *ViewHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHostelFilter(r.URL.Query())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchView{
		Query:   filter.Query,
		Sort:    filter.SortBy,
		Results: h.catalog.Search(filter),
	})
}

// HostelDetail はホステル詳細を返す。
// GET /hostel/{id}
func (h *ViewHandler) HostelDetail(w http.ResponseWriter, r *http.Request) {
	hostel, ok := h.hostelFromPath(w, r, "id")
	if !ok {
		return
	}

	fav, err := h.bookings.IsFavorite(r.Context(), hostel.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hostelDetailView{
		Hostel:      hostel,
		IsFavorite:  fav,
		BookingPath: "/booking/" + strconv.FormatInt(hostel.ID, 10),
	})
}

// Login はログイン画面の表示データを返す。
// GET /login?next=&reason=
func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, authView{
		Next:   safeRedirect(q.Get("next")),
		Reason: q.Get("reason"),
		User:   optionalUser(r),
	})
}

// Signup はサインアップ画面の表示データを返す。
// GET /signup?next=
func (h *ViewHandler) Signup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, authView{
		Next: safeRedirect(r.URL.Query().Get("next")),
		User: optionalUser(r),
	})
}

// BookingForm は予約フォームの初期値を返す。ログインユーザーのメールアドレスを補完する。
// GET /booking/{hostelId}
func (h *ViewHandler) BookingForm(w http.ResponseWriter, r *http.Request) {
	hostel, ok := h.hostelFromPath(w, r, "hostelId")
	if !ok {
		return
	}

	form := booking.CreateInput{HostelID: hostel.ID, Guests: 1}
	if user := middleware.UserFromContext(r.Context()); user != nil {
		form.GuestName = user.Name
		form.GuestEmail = user.Email
	}

	writeJSON(w, http.StatusOK, bookingFormView{
		Hostel:        hostel,
		Form:          form,
		InitialStatus: h.bookings.InitialStatus(),
		MaxGuests:     booking.MaxGuests,
	})
}

// Confirmation は予約完了画面の表示データを返す。
// GET /booking/confirmation/{bookingId}
func (h *ViewHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "bookingId")
	if !ok {
		writeBookingNotFound(w, r, "bookingId")
		return
	}

	b, err := h.bookings.GetBookingByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if b == nil {
		writeBookingNotFound(w, r, "bookingId")
		return
	}

	writeJSON(w, http.StatusOK, confirmationView{Booking: b, Hostel: h.bookings.GetHostelByID(b.HostelID)})
}

// Dashboard は予約履歴を返す。statusで絞り込める。
// GET /dashboard?status=
func (h *ViewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	filter := model.BookingFilter{Status: model.BookingStatus(r.URL.Query().Get("status"))}

	if filter.Status != "" && !filter.Status.IsValid() {
		handleServiceError(w, model.NewValidationError("status: 不明なステータスです"))
		return
	}
	all, err := h.bookings.ListBookings(r.Context(), model.BookingFilter{})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	counts := make(map[model.BookingStatus]int, len(model.AllBookingStatuses))
	for _, s := range model.AllBookingStatuses {
		counts[s] = 0
	}
	entries := make([]dashboardEntry, 0, len(all))
	for _, b := range all {
		counts[b.Status]++
		if !filter.Matches(b) {
			continue
		}
		entry := dashboardEntry{Booking: b, Actions: b.Status.NextStatuses()}
		if entry.Actions == nil {
			entry.Actions = []model.BookingStatus{}
		}
		if hostel := h.bookings.GetHostelByID(b.HostelID); hostel != nil {
			entry.HostelName = hostel.Name
		}
		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, dashboardView{
		User:         middleware.UserFromContext(r.Context()),
		Filter:       filter.Status,
		Bookings:     entries,
		StatusCounts: counts,
	})
}

// DashboardFavorites はお気に入りのホステルを返す。
// GET /dashboard/favorites
func (h *ViewHandler) DashboardFavorites(w http.ResponseWriter, r *http.Request) {
	hostels, err := h.bookings.FavoriteHostels(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if hostels == nil {
		hostels = []*model.Hostel{}
	}
	writeJSON(w, http.StatusOK, favoritesView{
		User:    middleware.UserFromContext(r.Context()),
		Hostels: hostels,
	})
}

// DashboardAnalytics は予約件数の集計を返す。
// GET /dashboard/analytics
func (h *ViewHandler) DashboardAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.bookings.Analytics(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analyticsView{
		User:      middleware.UserFromContext(r.Context()),
		Analytics: a,
	})
}

// hostelFromPath はパスのIDからホステルを引く。見つからなければ404を書き込む。
func (h *ViewHandler) hostelFromPath(w http.ResponseWriter, r *http.Request, key string) (*model.Hostel, bool) {
	id, ok := pathID(r, key)
	if !ok {
		writeHostelNotFound(w, r, key)
		return nil, false
	}
	hostel := h.catalog.GetByID(id)
	if hostel == nil {
		writeHostelNotFound(w, r, key)
		return nil, false
	}
	return hostel, true
}

// optionalUser は公開画面向けにログインユーザーを返す。
// Auth Storeが未解決・読み込み中・未ログインの場合はnil。
func optionalUser(r *http.Request) *model.User {
	store := middleware.AuthStoreFromContext(r.Context())
	if store == nil {
		return nil
	}
	user, _ := store.Current()
	return user
}
