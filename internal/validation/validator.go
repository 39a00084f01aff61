// Package validation は入力検証を提供する。
// go-playground/validatorの構造体タグで宣言的に検証し、
// 失敗時はmodel.APIError（VALIDATION_ERROR）に変換する。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hitoshi/hostelhunt/internal/model"
)

// Validator はvalidator.Validateのラッパー。
// validator.Validateは構造体情報をキャッシュするため、1インスタンスを共有する。
type Validator struct {
	v *validator.Validate
}

// New はValidatorを生成する。
// エラーメッセージのフィールド名にはjsonタグ名を使う。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct は構造体タグに従って検証する。
func (v *Validator) Struct(s interface{}) error {
	if err := v.v.Struct(s); err != nil {
		return toAPIError(err)
	}
	return nil
}

// Email はメールアドレス形式を検証する。
func (v *Validator) Email(email string) error {
	if err := v.v.Var(email, "required,email"); err != nil {
		return model.NewValidationError(fmt.Sprintf("email: %q は有効なメールアドレスではありません", email))
	}
	return nil
}

// toAPIError はvalidatorのエラーをVALIDATION_ERRORに変換する。
func toAPIError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.NewValidationError(err.Error())
	}

	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		reasons = append(reasons, describe(fe))
	}
	return model.NewValidationError(strings.Join(reasons, "; "))
}

// describe はフィールドエラーを人間向けの文言にする。
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s は必須です", fe.Field())
	case "email":
		return fmt.Sprintf("%s は有効なメールアドレスではありません", fe.Field())
	case "gt":
		return fmt.Sprintf("%s は %s より大きい必要があります", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s は %s 以上である必要があります", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s は %s 以下である必要があります", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s は %s 形式の日付である必要があります", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s が不正です (%s)", fe.Field(), fe.Tag())
	}
}
