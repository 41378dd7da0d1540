package logsvc

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// RollbarLogger reports to Rollbar and mirrors every entry to the console.
type RollbarLogger struct {
	console *ConsoleLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(console *ConsoleLogger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetCustom(map[string]interface{}{"app": conf.AppName, "relay_url": conf.Relay.BaseURL + conf.Relay.Path})
	return &RollbarLogger{console: console}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// report is one Rollbar item built from Logger args.
type report struct {
	args   []interface{} // msg, then at most one error, one *http.Request and one extras map
	person *user.User
}

// newReport groups args the way rollbar.Log expects them.
// rollbar keeps only the last extras map, so every map is merged into one.
// The request route and the user role travel as extras; unknown values are kept under argN.
func newReport(msg string, args []interface{}) report {
	var (
		rep    report
		err    error
		req    *http.Request
		extras = make(map[string]interface{})
	)
	for i, arg := range args {
		switch a := arg.(type) {
		case error:
			if err == nil {
				err = a
			} else {
				extras[fmt.Sprintf("err%d", i)] = a.Error()
			}
		case *http.Request:
			req = a
			extras["route"] = a.Method + " " + a.URL.Path
		case map[string]interface{}:
			for k, v := range a {
				extras[k] = v
			}
		case user.User:
			if rep.person == nil { // only set one User
				usr := a
				rep.person = &usr
				if usr.Role != "" {
					extras["user_role"] = usr.Role
				}
			}
		default:
			extras[fmt.Sprintf("arg%d", i)] = a
		}
	}

	rep.args = append(rep.args, msg)
	if err != nil {
		rep.args = append(rep.args, err)
	}
	if req != nil {
		rep.args = append(rep.args, req)
	}
	if len(extras) > 0 {
		rep.args = append(rep.args, extras)
	}
	return rep
}

// expected fmt: msg | error, *http.Request, map[string]interface{}, user.User
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	rep := newReport(msg, args)
	if rep.person != nil {
		rollbar.SetPerson(strconv.Itoa(rep.person.ID), rep.person.Name, rep.person.Email)
	} else {
		rollbar.ClearPerson()
	}
	return rep.args
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.console.Debug(msg, args...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.console.Info(msg, args...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.console.Warn(msg, args...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.console.Error(msg, args...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.console.Fatal(msg, args...)
}
