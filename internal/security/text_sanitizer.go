package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxSanitizePasses は入れ子になった文字実体参照を展開する最大回数。
const maxSanitizePasses = 10

// plainEntities はStrictPolicyのエスケープのうち、HTMLとして解釈されない文字だけを元に戻す。
// "<" と ">" は &lt; &gt; のまま残す。
var plainEntities = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)

// TextSanitizer は予約フォームの自由記述欄からHTMLを取り除く。
// 出力は "<" と ">" を含まないため、そのままHTMLに埋め込んでもマークアップにならない。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はbluemondayのStrictPolicyを使うTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタグを除去し、前後の空白を取り除いたテキストを返す。
// 出力が変化しなくなるまで繰り返すため、結果を再度渡しても同じ値になる。
func (s *TextSanitizer) Sanitize(input string) string {
	out := input
	for i := 0; i < maxSanitizePasses; i++ {
		next := s.sanitizeOnce(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func (s *TextSanitizer) sanitizeOnce(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(plainEntities.Replace(s.policy.Sanitize(input)))
}
