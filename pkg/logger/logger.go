// Package logger 构建应用使用的 zap 日志记录器
package logger

import (
	"github.com/gonewx/gridworld/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 根据日志配置创建记录器
// format 为 "json" 时使用生产配置，否则使用带颜色级别的控制台输出。
// outputs 为空时输出到 stderr；终端宿主应传入文件路径，避免破坏屏幕内容。
func New(cfg config.LoggingConfig, outputs ...string) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
		if len(outputs) > 0 {
			// 写入文件时不输出颜色控制码
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if len(outputs) > 0 {
		zapCfg.OutputPaths = outputs
		zapCfg.ErrorOutputPaths = outputs
	}

	return zapCfg.Build()
}

// Or 返回 log，为 nil 时返回空记录器
func Or(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
