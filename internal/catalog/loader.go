package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hitoshi/hostelhunt/internal/model"
)

// URLValidator は取得前のURL検証インターフェース。
type URLValidator interface {
	Validate(rawURL string) error
}

// Loader は外部のJSONドキュメントからホステル一覧を取得する。
type Loader struct {
	client    *http.Client
	validator URLValidator
	maxSize   int64
}

// NewLoader はLoaderを生成する。
// clientにはSSRF防止付きのクライアントを渡す。validatorはnilでもよい。
func NewLoader(client *http.Client, validator URLValidator, maxSize int64) *Loader {
	return &Loader{
		client:    client,
		validator: validator,
		maxSize:   maxSize,
	}
}

// Fetch はURLからホステルのJSON配列を取得し、検証済みのCatalogを返す。
// maxSizeを超えるレスポンス、2xx以外のステータス、不正なドキュメントはエラーになる。
func (l *Loader) Fetch(ctx context.Context, rawURL string) (*Catalog, error) {
	if l.validator != nil {
		if err := l.validator.Validate(rawURL); err != nil {
			return nil, fmt.Errorf("catalog URL rejected: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hostelhunt/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if int64(len(body)) > l.maxSize {
		return nil, fmt.Errorf("catalog exceeds %d bytes", l.maxSize)
	}

	var hostels []model.Hostel
	if err := json.Unmarshal(body, &hostels); err != nil {
		return nil, fmt.Errorf("invalid catalog document: %w", err)
	}
	if len(hostels) == 0 {
		return nil, fmt.Errorf("catalog document is empty")
	}

	return New(hostels)
}
