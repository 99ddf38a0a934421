package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/d60-Lab/posts-api/config"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
	// 包级函数使用，跳过本包一层调用栈
	pkgLog = zap.NewNop()
)

// Init 按配置构建全局 logger；未调用前所有输出被丢弃
func Init(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "time"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	Set(l)
	return l, nil
}

// Set 替换全局 logger（测试中可注入 zaptest/observer）
func Set(l *zap.Logger) {
	mu.Lock()
	log = l
	pkgLog = l.WithOptions(zap.AddCallerSkip(1))
	mu.Unlock()
}

// L 返回当前全局 logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func pkgL() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return pkgLog
}

func Debug(msg string, fields ...zap.Field) { pkgL().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { pkgL().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { pkgL().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { pkgL().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { pkgL().Fatal(msg, fields...) }

// Sync 刷新缓冲，进程退出前调用
func Sync() error { return L().Sync() }
