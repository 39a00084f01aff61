// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, booking, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeHostelNotFound    = "HOSTEL_NOT_FOUND"
	ErrCodeBookingNotFound   = "BOOKING_NOT_FOUND"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeSessionInvalid    = "SESSION_INVALID"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeAuthLoading       = "AUTH_LOADING"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeCSRFInvalid       = "CSRF_INVALID"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// HasCode はerrがAPIErrorであり、指定コードを持つかを判定する。
func HasCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// NewHostelNotFoundError はホステル未検出エラーを生成する。
func NewHostelNotFoundError(hostelID string) *APIError {
	return &APIError{
		Code:     ErrCodeHostelNotFound,
		Message:  fmt.Sprintf("指定されたホステルが見つかりません: %s", hostelID),
		Category: "catalog",
		Action:   "ホステルIDを確認してください。",
	}
}

// NewBookingNotFoundError は予約未検出エラーを生成する。
func NewBookingNotFoundError(bookingID string) *APIError {
	return &APIError{
		Code:     ErrCodeBookingNotFound,
		Message:  fmt.Sprintf("指定された予約が見つかりません: %s", bookingID),
		Category: "booking",
		Action:   "予約IDを確認してください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が正しくありません: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してから再度お試しください。",
	}
}

// NewInvalidTransitionError は許可されていない予約ステータス遷移のエラーを生成する。
func NewInvalidTransitionError(from, to BookingStatus) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("予約ステータスを %s から %s に変更することはできません。", from, to),
		Category: "booking",
		Action:   "pending は confirmed か cancelled に、confirmed は completed にのみ変更できます。",
	}
}

// NewSessionInvalidError は保存済みセッションが破損している場合のエラーを生成する。
func NewSessionInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionInvalid,
		Message:  "保存されたログイン情報が破損しています。",
		Category: "auth",
		Action:   "ログアウトしてから再度ログインしてください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewAuthLoadingError は認証状態の読み込み中エラーを生成する。
func NewAuthLoadingError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthLoading,
		Message:  "ログイン状態を読み込み中です。",
		Category: "auth",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewCSRFInvalidError はCSRFトークン検証失敗のエラーを生成する。
func NewCSRFInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFInvalid,
		Message:  "CSRFトークンの検証に失敗しました。",
		Category: "auth",
		Action:   "ページを再読み込みしてから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
