package booking

import (
	"sync"
	"time"
)

// IDGenerator は予約IDを採番する。
// 壁時計のミリ秒を基準にし、前回値以下になる場合は前回値+1を返すため、
// 同一ミリ秒内の連続採番や時計の巻き戻りでもIDは狭義単調増加になる。
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewIDGenerator はIDGeneratorを生成する。nowがnilの場合はtime.Nowを使う。
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next は新しいIDを返す。
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe は既存のIDを通知し、以降の採番がそれより大きくなるようにする。
func (g *IDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id > g.last {
		g.last = id
	}
}
