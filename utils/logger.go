package utils

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger はパッケージ全体で共有するロガーです
var logger *zap.SugaredLogger

// init関数はパッケージがインポートされたときに自動的に実行されます
func init() {
	logger = newLogger(zapcore.WarnLevel)
}

// InitLogger はログレベルを指定してロガーを初期化します
func InitLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	logger = newLogger(lvl)
	return nil
}

// SetLogger は任意のロガーに差し替えます（テスト用）
func SetLogger(l *zap.SugaredLogger) {
	logger = l
}

// 標準出力はコマンドの結果に使うため、ログは標準エラーに出します
func newLogger(level zapcore.Level) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core).Sugar()
}

// LogDebug はデバッグレベルのメッセージをログに記録します
func LogDebug(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}

// LogInfo は情報レベルのメッセージをログに記録します
func LogInfo(format string, v ...interface{}) {
	logger.Infof(format, v...)
}

// LogWarn は警告レベルのメッセージをログに記録します
func LogWarn(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

// LogError はエラーレベルのメッセージをログに記録します
func LogError(format string, v ...interface{}) {
	logger.Errorf(format, v...)
}

// Sync はバッファされたログを書き出します
func Sync() {
	_ = logger.Sync()
}

// TrackTime は関数の実行時間を計測して出力するユーティリティです
func TrackTime(start time.Time, name string) {
	elapsed := time.Since(start)
	LogDebug("%s 完了時間: %s", name, elapsed)
}
