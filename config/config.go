package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBaseURL はPivotalTracker API v5のベースURLです
const DefaultBaseURL = "https://www.pivotaltracker.com/services/v5"

// DefaultFileName はホームディレクトリ直下の設定ファイル名です
const DefaultFileName = ".pt"

// ErrMissingSetting は必須の設定が無い場合のエラーです
var ErrMissingSetting = errors.New("必須の設定がありません")

// Config はアプリケーション全体の設定を保持します。
// 起動時に一度だけ作成され、以降は変更されません。
type Config struct {
	// PivotalTracker API設定
	APIToken  string
	ProjectID string
	Usernames []string
	BaseURL   string

	// 表示設定
	DisableMarkdown bool
	LogLevel        string

	// 設定ファイルのパス
	Path string
}

// StatusMapping は update コマンドのキーワードからTrackerの状態へのマッピングです。
// finish はストーリー種別によって決まるためここには含みません。
var StatusMapping = map[string]string{
	"unstart": "unstarted",
	"start":   "started",
	"deliver": "delivered",
}

// StatusKeywords は update コマンドで受け付けるキーワードです
var StatusKeywords = []string{"unstart", "start", "deliver", "finish"}

// LoadConfig は設定ファイルと環境変数から設定を読み込みます。
// path が空の場合は PT_CONFIG、次に ~/.pt を使います。
func LoadConfig(path string) (Config, *Document, error) {
	// .envファイルを読み込む
	_ = godotenv.Load()

	v := newViper()

	if path == "" {
		path = v.GetString("config")
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, nil, err
		}
		path = p
	}

	doc, err := ReadDocument(path)
	if err != nil {
		return Config{}, nil, err
	}

	cfg := Config{
		APIToken:        firstNonEmpty(v.GetString("api_token"), doc.schema.APIToken),
		ProjectID:       firstNonEmpty(v.GetString("project_id"), doc.schema.ProjectID),
		Usernames:       doc.Usernames(),
		BaseURL:         strings.TrimRight(v.GetString("base_url"), "/"),
		DisableMarkdown: v.GetBool("disable_markdown"),
		LogLevel:        v.GetString("log_level"),
		Path:            path,
	}
	if env := splitList(v.GetString("usernames")); len(env) > 0 {
		cfg.Usernames = env
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, doc, nil
}

// Validate は必須の設定があるか確認します
func (c Config) Validate() error {
	if c.APIToken == "" {
		return fmt.Errorf("%w: api_token", ErrMissingSetting)
	}
	if c.ProjectID == "" {
		return fmt.Errorf("%w: project_id", ErrMissingSetting)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url", ErrMissingSetting)
	}
	return nil
}

// DefaultPath は ~/.pt のパスを返します
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("ホームディレクトリ取得エラー: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PT")
	v.AutomaticEnv()

	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("log_level", "warn")
	v.SetDefault("disable_markdown", false)

	for _, k := range []string{"config", "api_token", "project_id", "usernames", "base_url", "log_level"} {
		_ = v.BindEnv(k)
	}
	_ = v.BindEnv("disable_markdown", "DISABLE_MARKDOWN")
	return v
}

// カンマ区切りの値を分割します
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
