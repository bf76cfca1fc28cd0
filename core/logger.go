package core

// Logger is the application logger.
// expected args fmt: error | map[string]interface{} | Session (the person to attach)
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warning(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
