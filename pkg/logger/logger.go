package logger

type Logger interface {
	Log(format string, v ...interface{})
	Error(format string, v ...interface{})
	WithPrefix(extraPrefix string) Logger
	SetPrefix(prefix string)
}
