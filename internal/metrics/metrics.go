// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/hostelhunt/internal/booking"
	"github.com/hitoshi/hostelhunt/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する。
// Booking Storeのオブザーバー、Auth StoreのListener、HTTPミドルウェアから利用する。
type Collector struct {
	bookingsCreated   prometheus.Counter
	statusTransitions *prometheus.CounterVec
	favoriteToggles   *prometheus.CounterVec
	logins            prometheus.Counter
	logouts           prometheus.Counter
	httpStatus        *prometheus.CounterVec
	requestDuration   prometheus.Histogram
	bookingsCompleted prometheus.Counter
	catalogHostels    prometheus.Gauge
}

// NewCollector はCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hostelhunt_bookings_created_total",
			Help: "作成された予約の合計数",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostelhunt_booking_status_transitions_total",
			Help: "予約ステータス遷移の合計数",
		}, []string{"from", "to"}),
		favoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostelhunt_favorite_toggles_total",
			Help: "お気に入りの追加・解除の合計数",
		}, []string{"action"}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hostelhunt_logins_total",
			Help: "ログインの合計数",
		}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hostelhunt_logouts_total",
			Help: "ログアウトの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostelhunt_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hostelhunt_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		bookingsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hostelhunt_bookings_auto_completed_total",
			Help: "完了スイープで completed に移行した予約の合計数",
		}),
		catalogHostels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hostelhunt_catalog_hostels",
			Help: "カタログに掲載されているホステル数",
		}),
	}

	reg.MustRegister(
		c.bookingsCreated,
		c.statusTransitions,
		c.favoriteToggles,
		c.logins,
		c.logouts,
		c.httpStatus,
		c.requestDuration,
		c.bookingsCompleted,
		c.catalogHostels,
	)

	return c
}

// ObserveBookingEvent はBooking Storeのイベントを記録する。
// booking.Store.Subscribe に渡して使用する。
func (c *Collector) ObserveBookingEvent(e booking.Event) {
	switch e.Type {
	case booking.EventBookingCreated:
		c.bookingsCreated.Inc()
	case booking.EventStatusChanged:
		if e.Booking != nil {
			c.statusTransitions.WithLabelValues(string(e.From), string(e.Booking.Status)).Inc()
		}
	case booking.EventFavoriteToggled:
		action := "removed"
		if e.Favorite {
			action = "added"
		}
		c.favoriteToggles.WithLabelValues(action).Inc()
	}
}

// OnLogin はログインを記録する。auth.Listenerを満たす。
func (c *Collector) OnLogin(_ *model.User) {
	c.logins.Inc()
}

// OnLogout はログアウトを記録する。auth.Listenerを満たす。
func (c *Collector) OnLogout() {
	c.logouts.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はHTTPリクエストの処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// RecordBookingsCompleted は完了スイープで移行した予約数を記録する。
func (c *Collector) RecordBookingsCompleted(count int) {
	c.bookingsCompleted.Add(float64(count))
}

// SetCatalogSize はカタログのホステル数を記録する。
func (c *Collector) SetCatalogSize(n int) {
	c.catalogHostels.Set(float64(n))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
