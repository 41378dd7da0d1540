package core

// Logger is any structured logger/reporter.
// args may contain errors, the *http.Request being served, map[string]interface{} extras and the user.User concerned.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
