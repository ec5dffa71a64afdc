// Package model はドメインモデルを定義する。
package model

// DefaultMaxIdeasPerUser はユーザーあたりのアクティブアイデア数のデフォルト上限。
const DefaultMaxIdeasPerUser = 10

// AppConfig は管理者が実行時に変更可能なアプリケーション設定を表す。
// 環境変数のconfig.Configと異なり、settingsコレクションに永続化される。
type AppConfig struct {
	// ModerationAPIKey はOpenRouter APIの認証キー。
	// 空の場合はルールベースの審査が使用される。
	ModerationAPIKey string
	// MaxIdeasPerUser はユーザーあたりのアクティブ（却下以外）アイデア数の上限。
	MaxIdeasPerUser int
}

// DefaultAppConfig はAppConfigのデフォルト値を返す。
func DefaultAppConfig() AppConfig {
	return AppConfig{
		ModerationAPIKey: "",
		MaxIdeasPerUser:  DefaultMaxIdeasPerUser,
	}
}
