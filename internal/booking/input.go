package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/hostelhunt/internal/model"
)

// MaxGuests は1予約あたりの最大人数。
const MaxGuests = 20

// CreateInput は予約作成の入力。
// ホステルIDと宿泊期間は必須、その他は任意。
type CreateInput struct {
	HostelID        int64             `json:"hostel_id" validate:"gt=0"`
	CheckIn         string            `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut        string            `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests          int               `json:"guests" validate:"min=1,max=20"`
	Room            string            `json:"room" validate:"max=100"`
	GuestName       string            `json:"guest_name" validate:"max=200"`
	GuestEmail      string            `json:"guest_email" validate:"omitempty,email,max=320"`
	SpecialRequests string            `json:"special_requests" validate:"max=1000"`
	Extra           map[string]string `json:"extra" validate:"max=20,dive,keys,min=1,max=50,endkeys,max=500"`
}

// normalize は空白を除去し、人数の既定値を補う。
func (in *CreateInput) normalize() {
	in.CheckIn = strings.TrimSpace(in.CheckIn)
	in.CheckOut = strings.TrimSpace(in.CheckOut)
	in.Room = strings.TrimSpace(in.Room)
	in.GuestName = strings.TrimSpace(in.GuestName)
	in.GuestEmail = strings.TrimSpace(in.GuestEmail)
	in.SpecialRequests = strings.TrimSpace(in.SpecialRequests)
	if in.Guests == 0 {
		in.Guests = 1
	}
}

// sanitize は自由記述欄からHTMLを取り除く。
func (in *CreateInput) sanitize(s TextSanitizer) {
	in.Room = s.Sanitize(in.Room)
	in.GuestName = s.Sanitize(in.GuestName)
	in.SpecialRequests = s.Sanitize(in.SpecialRequests)
	if len(in.Extra) > 0 {
		cleaned := make(map[string]string, len(in.Extra))
		for k, v := range in.Extra {
			cleaned[s.Sanitize(k)] = s.Sanitize(v)
		}
		in.Extra = cleaned
	}
}

// checkStay はチェックアウトがチェックインより後であることを検証する。
func checkStay(checkIn, checkOut string) error {
	in, err := time.Parse(model.DateLayout, checkIn)
	if err != nil {
		return model.NewValidationError(fmt.Sprintf("check_in: %q は YYYY-MM-DD 形式の日付ではありません", checkIn))
	}
	out, err := time.Parse(model.DateLayout, checkOut)
	if err != nil {
		return model.NewValidationError(fmt.Sprintf("check_out: %q は YYYY-MM-DD 形式の日付ではありません", checkOut))
	}
	if !out.After(in) {
		return model.NewValidationError("check_out は check_in より後の日付である必要があります")
	}
	return nil
}
