// Package booking は予約とお気に入りを管理するBooking Storeを提供する。
// 予約は作成順に保持され、作成後に変更できるのはステータスのみ。
// 状態変更はSubscribeで登録したオブザーバーに同期的に通知される。
package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/hostelhunt/internal/model"
	"github.com/hitoshi/hostelhunt/internal/repository"
)

// HostelLookup はホステルカタログの参照インターフェース。
type HostelLookup interface {
	GetByID(id int64) *model.Hostel
	Contains(id int64) bool
}

// StructValidator は構造体タグによる入力検証インターフェース。
type StructValidator interface {
	Struct(s interface{}) error
}

// TextSanitizer は自由記述欄のサニタイズインターフェース。
type TextSanitizer interface {
	Sanitize(input string) string
}

// Dependencies はStoreが利用するコンポーネント。
// ValidatorとSanitizerはnilでもよい。
type Dependencies struct {
	Catalog   HostelLookup
	Bookings  repository.BookingRepository
	Favorites repository.FavoriteRepository
	Validator StructValidator
	Sanitizer TextSanitizer
}

// Options はStoreの動作設定。
type Options struct {
	// InitialStatus は作成直後の予約ステータス。空の場合はpending。
	InitialStatus model.BookingStatus
	// Now は現在時刻を返す関数。nilの場合はtime.Now。
	Now func() time.Time
}

// Snapshot はある時点のStoreの不変コピー。
type Snapshot struct {
	Bookings  []*model.Booking `json:"bookings"`
	Favorites []int64          `json:"favorites"`
	TakenAt   time.Time        `json:"taken_at"`
}

// Store はBooking Store。
type Store struct {
	catalog   HostelLookup
	bookings  repository.BookingRepository
	favorites repository.FavoriteRepository
	validator StructValidator
	sanitizer TextSanitizer

	ids           *IDGenerator
	initialStatus model.BookingStatus
	now           func() time.Time

	// mu は変更操作を直列化する。参照操作はリポジトリ側のロックに任せる。
	mu        sync.Mutex
	observers observerList
}

// NewStore はStoreを生成する。
// 既存の予約の最大IDを読み込み、以降の採番がそれを超えるようにする。
func NewStore(ctx context.Context, deps Dependencies, opts Options) (*Store, error) {
	if deps.Catalog == nil || deps.Bookings == nil || deps.Favorites == nil {
		return nil, fmt.Errorf("booking store requires catalog, bookings and favorites")
	}

	initial := opts.InitialStatus
	if initial == "" {
		initial = model.BookingStatusPending
	}
	if initial != model.BookingStatusPending && initial != model.BookingStatusConfirmed {
		return nil, fmt.Errorf("invalid initial booking status: %q", initial)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		catalog:       deps.Catalog,
		bookings:      deps.Bookings,
		favorites:     deps.Favorites,
		validator:     deps.Validator,
		sanitizer:     deps.Sanitizer,
		ids:           NewIDGenerator(now),
		initialStatus: initial,
		now:           now,
	}

	maxID, err := deps.Bookings.MaxID(ctx)
	if err != nil {
		return nil, fmt.Errorf("予約IDの初期化に失敗しました: %w", err)
	}
	s.ids.Observe(maxID)

	return s, nil
}

// InitialStatus は作成直後の予約ステータスを返す。
func (s *Store) InitialStatus() model.BookingStatus {
	return s.initialStatus
}

// Subscribe はオブザーバーを登録し、登録解除関数を返す。
// オブザーバーは変更操作の成功後、ロックの外で登録順に呼ばれる。
func (s *Store) Subscribe(fn Observer) func() {
	return s.observers.add(fn)
}

// CreateBooking は予約を作成し、採番したIDを返す。
// 入力が不正な場合、またはホステルがカタログに存在しない場合はVALIDATION_ERRORを返す。
func (s *Store) CreateBooking(ctx context.Context, in CreateInput) (int64, error) {
	in.normalize()
	if s.sanitizer != nil {
		in.sanitize(s.sanitizer)
	}

	if s.validator != nil {
		if err := s.validator.Struct(in); err != nil {
			return 0, err
		}
	}
	if err := checkStay(in.CheckIn, in.CheckOut); err != nil {
		return 0, err
	}
	if !s.catalog.Contains(in.HostelID) {
		return 0, model.NewValidationError(fmt.Sprintf("hostel_id: ホステル %d は存在しません", in.HostelID))
	}

	s.mu.Lock()
	now := s.now()
	b := &model.Booking{
		ID:              s.ids.Next(),
		HostelID:        in.HostelID,
		CheckIn:         in.CheckIn,
		CheckOut:        in.CheckOut,
		Guests:          in.Guests,
		Room:            in.Room,
		GuestName:       in.GuestName,
		GuestEmail:      in.GuestEmail,
		SpecialRequests: in.SpecialRequests,
		Extra:           in.Extra,
		Status:          s.initialStatus,
		BookingDate:     now.UTC().Format(model.DateLayout),
		UpdatedAt:       now,
	}
	err := s.bookings.Create(ctx, b)
	s.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("予約の保存に失敗しました: %w", err)
	}

	s.observers.notify(Event{Type: EventBookingCreated, Booking: b.Clone(), At: now})
	return b.ID, nil
}

// GetBookingByID は予約を返す。見つからない場合はnilを返す。
func (s *Store) GetBookingByID(ctx context.Context, id int64) (*model.Booking, error) {
	if id <= 0 {
		return nil, nil
	}
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("予約の取得に失敗しました: %w", err)
	}
	return b, nil
}

// ListBookings は予約を作成順で返す。filter.Statusが空でなければ一致するもののみ返す。
func (s *Store) ListBookings(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("status: %q は不明なステータスです", filter.Status))
	}
	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("予約一覧の取得に失敗しました: %w", err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, nil
}

// UpdateStatus は予約のステータスを変更し、変更後の予約を返す。
// 予約が存在しない場合はnilを返す。
// 許可されていない遷移はINVALID_TRANSITION、未定義のステータスはVALIDATION_ERRORになる。
func (s *Store) UpdateStatus(ctx context.Context, id int64, next model.BookingStatus) (*model.Booking, error) {
	if !next.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("status: %q は不明なステータスです", next))
	}
	if id <= 0 {
		return nil, nil
	}

	s.mu.Lock()
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("予約の取得に失敗しました: %w", err)
	}
	if b == nil {
		s.mu.Unlock()
		return nil, nil
	}

	from := b.Status
	if !from.CanTransitionTo(next) {
		s.mu.Unlock()
		return nil, model.NewInvalidTransitionError(from, next)
	}

	now := s.now()
	updated, err := s.bookings.UpdateStatus(ctx, id, from, next, now)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("予約ステータスの更新に失敗しました: %w", err)
	}
	if !updated {
		// 他プロセスが先に更新した
		current, err := s.bookings.FindByID(ctx, id)
		s.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("予約の取得に失敗しました: %w", err)
		}
		if current == nil {
			return nil, nil
		}
		return nil, model.NewInvalidTransitionError(current.Status, next)
	}
	s.mu.Unlock()

	b.Status = next
	b.UpdatedAt = now
	s.observers.notify(Event{Type: EventStatusChanged, Booking: b.Clone(), From: from, At: now})
	return b, nil
}

// ToggleFavorite はお気に入りの所属を反転し、反転後に所属しているかを返す。
func (s *Store) ToggleFavorite(ctx context.Context, hostelID int64) (bool, error) {
	s.mu.Lock()
	added, err := s.favorites.Toggle(ctx, hostelID)
	s.mu.Unlock()
	if err != nil {
		return false, fmt.Errorf("お気に入りの更新に失敗しました: %w", err)
	}

	s.observers.notify(Event{Type: EventFavoriteToggled, HostelID: hostelID, Favorite: added, At: s.now()})
	return added, nil
}

// Favorites はお気に入りのホステルIDを追加順で返す。
func (s *Store) Favorites(ctx context.Context) ([]int64, error) {
	ids, err := s.favorites.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("お気に入りの取得に失敗しました: %w", err)
	}
	return ids, nil
}

// IsFavorite はホステルがお気に入りに含まれるかを返す。
func (s *Store) IsFavorite(ctx context.Context, hostelID int64) (bool, error) {
	ok, err := s.favorites.Contains(ctx, hostelID)
	if err != nil {
		return false, fmt.Errorf("お気に入りの取得に失敗しました: %w", err)
	}
	return ok, nil
}

// FavoriteHostels はお気に入りのホステルを追加順で返す。
// カタログに存在しないIDは結果から除外する。
func (s *Store) FavoriteHostels(ctx context.Context) ([]*model.Hostel, error) {
	ids, err := s.Favorites(ctx)
	if err != nil {
		return nil, err
	}
	hostels := make([]*model.Hostel, 0, len(ids))
	for _, id := range ids {
		if h := s.catalog.GetByID(id); h != nil {
			hostels = append(hostels, h)
		}
	}
	return hostels, nil
}

// GetHostelByID はカタログからホステルを返す。見つからない場合はnil。
func (s *Store) GetHostelByID(id int64) *model.Hostel {
	return s.catalog.GetByID(id)
}

// Snapshot は予約とお気に入りの不変コピーを返す。
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.bookings.List(ctx, model.BookingFilter{})
	if err != nil {
		return nil, fmt.Errorf("予約一覧の取得に失敗しました: %w", err)
	}
	favorites, err := s.favorites.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("お気に入りの取得に失敗しました: %w", err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return &Snapshot{
		Bookings:  bookings,
		Favorites: favorites,
		TakenAt:   s.now(),
	}, nil
}
