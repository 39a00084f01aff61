// Package model はドメインモデルを定義する。
package model

// Hostel はカタログに掲載されるホステルを表す。
// プロセス起動後は読み取り専用として扱う。
type Hostel struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	University  string   `json:"university,omitempty"`
	Latitude    float64  `json:"latitude,omitempty"`
	Longitude   float64  `json:"longitude,omitempty"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Capacity    int      `json:"capacity"`
	RoomType    string   `json:"room_type"`
	Rating      float64  `json:"rating"`
	Images      []string `json:"images"`
	Amenities   []string `json:"amenities"`
	IsVerified  bool     `json:"is_verified"`
	IsFeatured  bool     `json:"is_featured"`
}

// DefaultCurrency はホステル価格の既定通貨。
const DefaultCurrency = "KES"

// Clone はスライスを含めたディープコピーを返す。
func (h *Hostel) Clone() *Hostel {
	c := *h
	c.Images = append([]string(nil), h.Images...)
	c.Amenities = append([]string(nil), h.Amenities...)
	return &c
}
