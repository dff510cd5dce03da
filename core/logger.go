package core

// Logger is the application-wide logging contract. Failures recovered at
// the store boundaries are reported here and never bubbled to callers.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
