package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"io"
	"os"
	"strings"
	"sync"
)

// BaseLogger пишет сообщения через zap. Префикс попадает в поле component,
// чтобы строки одного адаптера можно было отфильтровать.
type BaseLogger struct {
	mu     sync.Mutex
	prefix string
	core   zapcore.Core
	sugar  *zap.SugaredLogger
}

// NewLogger создает логгер, который пишет в writer (и дублирует в stderr, если writer не stderr).
func NewLogger(writer io.Writer, prefix string) *BaseLogger {
	return newWithMode(writer, prefix, os.Getenv("LOG_MODE"))
}

// NewLoggerWithMode как NewLogger, но режим задается явно: "prod" пишет JSON, остальное консольный вывод.
func NewLoggerWithMode(writer io.Writer, prefix, mode string) *BaseLogger {
	return newWithMode(writer, prefix, mode)
}

func newWithMode(writer io.Writer, prefix, mode string) *BaseLogger {
	var encoder zapcore.Encoder
	switch strings.ToLower(mode) {
	case "prod", "production":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	syncers := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}
	if writer != nil && writer != os.Stderr {
		syncers = append(syncers, zapcore.AddSync(writer))
	}
	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), zapcore.DebugLevel)
	return fromCore(core, prefix)
}

// NewNop возвращает логгер, который ничего не пишет. Используется в тестах.
func NewNop() *BaseLogger {
	return fromCore(zapcore.NewNopCore(), "")
}

func fromCore(core zapcore.Core, prefix string) *BaseLogger {
	l := &BaseLogger{core: core}
	l.setPrefixLocked(prefix)
	return l
}

func (l *BaseLogger) setPrefixLocked(prefix string) {
	l.prefix = prefix
	z := zap.New(l.core)
	if prefix != "" {
		z = z.With(zap.String("component", prefix))
	}
	l.sugar = z.Sugar()
}

func (l *BaseLogger) Log(format string, v ...interface{}) {
	l.mu.Lock()
	s := l.sugar
	l.mu.Unlock()
	s.Infof(format, v...)
}

func (l *BaseLogger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	s := l.sugar
	l.mu.Unlock()
	s.Errorf(format, v...)
}

func (l *BaseLogger) WithPrefix(extraPrefix string) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	prefix := extraPrefix
	if l.prefix != "" {
		prefix = l.prefix + " " + extraPrefix
	}
	return fromCore(l.core, prefix)
}

func (l *BaseLogger) SetPrefix(prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setPrefixLocked(prefix)
}

// Sync сбрасывает буферы zap. Ошибку sync для stderr игнорируем.
func (l *BaseLogger) Sync() {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.sugar.Sync()
}
