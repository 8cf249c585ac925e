package xlog

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/DeRuina/timberjack"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// levelController 日志输出级别控制器
	levelController = zap.NewAtomicLevelAt(zap.InfoLevel)

	// rootLogger 包级日志，未调用 SetupLogger 时首次使用自动以默认配置初始化
	rootLogger atomic.Pointer[zLogger]
)

func root() *zLogger {
	if l := rootLogger.Load(); l != nil {
		return l
	}
	SetupLogger("")
	return rootLogger.Load()
}

// CloseLogger 将日志落盘
func CloseLogger() {
	if l := rootLogger.Load(); l != nil {
		_ = l.Sync()
	}
}

// SetupLogger 配置根logger，logfile 为空时输出到标准错误，否则输出到滚动切割文件
func SetupLogger(logfile string) {
	config := zapcore.EncoderConfig{
		CallerKey:     "line",
		LevelKey:      "level",
		MessageKey:    "message",
		TimeKey:       "time",
		NameKey:       "logger",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(t.Format("2006-01-02 15:04:05.999"))
		},
		EncodeLevel: func(level zapcore.Level, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(strings.ToTitle(level.String()))
		},
		EncodeCaller: func(caller zapcore.EntryCaller, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString("[" + caller.TrimmedPath() + "]")
		},
		EncodeDuration:   zapcore.SecondsDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
	encoder := zapcore.NewConsoleEncoder(config)

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if logfile != "" {
		sink = zapcore.AddSync(fileWriter(logfile))
	}
	core := zapcore.NewCore(encoder, sink, levelController)

	// 调用点上跳2层（包函数 -> zLogger -> zap），Error级别输出堆栈
	rootLogger.Store(newzLogger(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel))))
}

// ReplaceLogger 替换根logger，返回恢复函数，常用于测试中捕获日志
func ReplaceLogger(logger *zap.Logger) (restore func()) {
	prev := rootLogger.Swap(newzLogger(logger))
	return func() {
		rootLogger.Store(prev)
	}
}

func SetLevel(l zapcore.Level) {
	levelController.SetLevel(l)
}

func fileWriter(path string) io.Writer {
	return &timberjack.Logger{
		Filename:         path,                  // 日志文件路径
		MaxBackups:       7,                     // 最多保留7个备份
		MaxSize:          50,                    // 日志文件最大M
		MaxAge:           7,                     // 最大保存天数
		Compression:      "none",                // 压缩方式, none, gzip, zstd
		LocalTime:        true,                  // 是否使用本地时间
		RotationInterval: 24 * time.Hour,        // 日志轮转时间间隔
		BackupTimeFormat: "2006-01-02-15-04-05", // 日志轮转时间格式
	}
}
