package logsvc

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// ConsoleLogger writes leveled key/value lines to a terminal (or any writer).
type ConsoleLogger struct {
	std *log.Logger
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(w io.Writer, prefix string, debug bool) *ConsoleLogger {
	std := log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	if debug {
		std.SetLevel(log.DebugLevel)
	}
	return &ConsoleLogger{std: std}
}

// NewDiscardLogger drops everything; for tests.
func NewDiscardLogger() *ConsoleLogger {
	return NewConsoleLogger(io.Discard, "", false)
}

// keyvals flattens args: errors, the *http.Request, map[string]interface{} extras and the user.User concerned.
func keyvals(args []interface{}) []interface{} {
	kv := make([]interface{}, 0, len(args)*2)
	for i, arg := range args {
		switch a := arg.(type) {
		case error:
			kv = append(kv, "err", a.Error())
		case map[string]interface{}:
			for k, v := range a {
				kv = append(kv, k, v)
			}
		case *http.Request:
			kv = append(kv, "route", a.Method+" "+a.URL.Path)
		case user.User:
			kv = append(kv, "user_id", a.ID)
		default:
			kv = append(kv, fmt.Sprintf("arg%d", i), a)
		}
	}
	return kv
}

func (l ConsoleLogger) Debug(msg string, args ...interface{}) { l.std.Debug(msg, keyvals(args)...) }
func (l ConsoleLogger) Info(msg string, args ...interface{})  { l.std.Info(msg, keyvals(args)...) }
func (l ConsoleLogger) Warn(msg string, args ...interface{})  { l.std.Warn(msg, keyvals(args)...) }
func (l ConsoleLogger) Error(msg string, args ...interface{}) { l.std.Error(msg, keyvals(args)...) }

func (l ConsoleLogger) Fatal(msg string, args ...interface{}) {
	l.std.Error(msg, keyvals(args)...)
	os.Exit(1)
}
