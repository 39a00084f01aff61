// Package model はドメインモデルを定義する。
package model

// User はログイン中のユーザーを表す。
// 永続化形式は {"id","email","name"} のJSON。
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// MockUserID はモック認証で発行される固定ユーザーID。
const MockUserID int64 = 1

// MockUserName はモック認証で発行される固定ユーザー名。
const MockUserName = "John Doe"

// NewMockUser はメールアドレスから決定的にモックユーザーを生成する。
func NewMockUser(email string) *User {
	return &User{
		ID:    MockUserID,
		Email: email,
		Name:  MockUserName,
	}
}
