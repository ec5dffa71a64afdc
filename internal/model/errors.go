// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, idea, moderation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeLimitExceeded      = "LIMIT_EXCEEDED"
	ErrCodePendingExists      = "PENDING_EXISTS"
	ErrCodeNotOwner           = "NOT_OWNER"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeIdeaNotFound       = "IDEA_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeParseError         = "PARSE_ERROR"
	ErrCodeForbidden          = "FORBIDDEN"
)

// NewValidationError は入力バリデーションエラーを生成する。
// ユーザーが修正可能な入力不備に使用する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewLimitExceededError はアクティブアイデア数の上限超過エラーを生成する。
func NewLimitExceededError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeLimitExceeded,
		Message:  fmt.Sprintf("アクティブなアイデア数が上限（%d件）に達しています。", limit),
		Category: "idea",
		Action:   "不要なアイデアを削除してから、新しいアイデアを投稿してください。",
	}
}

// NewPendingExistsError は審査待ちアイデアが既に存在する場合のエラーを生成する。
// 審査待ちは同時に1件まで。
func NewPendingExistsError() *APIError {
	return &APIError{
		Code:     ErrCodePendingExists,
		Message:  "審査待ちのアイデアが既にあります。",
		Category: "idea",
		Action:   "審査が完了するまでお待ちください。",
	}
}

// NewNotOwnerError は他人のアイデアを操作しようとした場合のエラーを生成する。
func NewNotOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotOwner,
		Message:  "このアイデアを操作する権限がありません。",
		Category: "auth",
		Action:   "自分が投稿したアイデアのみ削除できます。",
	}
}

// NewEmailTakenError は登録済みメールアドレスでのサインアップエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレス不存在とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewIdeaNotFoundError はアイデア未検出エラーを生成する。
func NewIdeaNotFoundError(ideaID string) *APIError {
	return &APIError{
		Code:     ErrCodeIdeaNotFound,
		Message:  fmt.Sprintf("指定されたアイデアが見つかりません: %s", ideaID),
		Category: "idea",
		Action:   "アイデアIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewServiceUnavailableError は審査バックエンドへの接続失敗エラーを生成する。
// 呼び出し元はこのエラーを致命的エラーではなく却下理由として扱う。
func NewServiceUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeServiceUnavailable,
		Message:  "審査サービスに接続できませんでした。",
		Category: "moderation",
		Action:   "アイデアを再投稿してください。",
	}
}

// NewParseError は審査バックエンドの応答解析失敗エラーを生成する。
// ServiceUnavailableと同様、呼び出し元で却下理由に吸収される。
func NewParseError() *APIError {
	return &APIError{
		Code:     ErrCodeParseError,
		Message:  "審査サービスの応答を解析できませんでした。",
		Category: "moderation",
		Action:   "アイデアを再投稿してください。",
	}
}

// NewForbiddenError は管理者権限が必要な操作へのアクセス拒否エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作には管理者権限が必要です。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}
