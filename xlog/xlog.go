package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Debug 输出"Debug"级别日志信息；
func Debug(args ...any) {
	root().Debug(args...)
}

func Debugf(format string, args ...any) {
	root().Debugf(format, args...)
}

func Debugw(msg string, keysAndValues ...any) {
	root().Debugw(msg, keysAndValues...)
}

func Debugx(msg string, fields ...zapcore.Field) {
	root().Debugx(msg, fields...)
}

// Info 输出"Info"级别日志信息；
func Info(args ...any) {
	root().Info(args...)
}

func Infof(format string, args ...any) {
	root().Infof(format, args...)
}

func Infow(msg string, keysAndValues ...any) {
	root().Infow(msg, keysAndValues...)
}

func Infox(msg string, fields ...zapcore.Field) {
	root().Infox(msg, fields...)
}

// Warn 输出"Warn"级别日志信息；
func Warn(args ...any) {
	root().Warn(args...)
}

func Warnf(format string, args ...any) {
	root().Warnf(format, args...)
}

func Warnw(msg string, keysAndValues ...any) {
	root().Warnw(msg, keysAndValues...)
}

func Warnx(msg string, fields ...zapcore.Field) {
	root().Warnx(msg, fields...)
}

// Error 输出"Error"级别日志信息；
func Error(args ...any) {
	root().Error(args...)
}

func Errorf(format string, args ...any) {
	root().Errorf(format, args...)
}

func Errorw(msg string, keysAndValues ...any) {
	root().Errorw(msg, keysAndValues...)
}

func Errorx(msg string, fields ...zapcore.Field) {
	root().Errorx(msg, fields...)
}

// With 获取一个带固定字段的子logger
func With(fields ...zap.Field) ILogger {
	return root().With(fields...)
}

// Named 获取一个带名称的子logger
func Named(name string) ILogger {
	return root().Named(name)
}
