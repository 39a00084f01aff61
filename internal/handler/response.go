// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/hostelhunt/internal/middleware"
	"github.com/hitoshi/hostelhunt/internal/model"
)

// maxBodySize はJSONリクエストボディの上限（バイト）。
const maxBodySize = 1 << 20

// writeJSON は200以外も含めてJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// decodeJSON はリクエストボディをdstにデコードする。
// 失敗した場合は400を書き込んでfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return false
	}
	return true
}

// pathID はURLパラメータを正のIDとして解釈する。
// 数値でない、または正でない場合はfalseを返し、呼び出し側は404として扱う。
func pathID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeHostelNotFound, model.ErrCodeBookingNotFound:
		return http.StatusNotFound
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeInvalidTransition:
		return http.StatusConflict
	case model.ErrCodeSessionInvalid, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeCSRFInvalid:
		return http.StatusForbidden
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case model.ErrCodeAuthLoading:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeHostelNotFound(w http.ResponseWriter, r *http.Request, key string) {
	middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewHostelNotFoundError(chi.URLParam(r, key)))
}

func writeBookingNotFound(w http.ResponseWriter, r *http.Request, key string) {
	middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewBookingNotFoundError(chi.URLParam(r, key)))
}
