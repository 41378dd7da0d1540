package relaysvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/submission"
	logsvc "github.com/trezcool/darasa/services/logger"
)

func newTestClient(url string, timeout time.Duration) *Client {
	return newTestClientWithLogger(url, timeout, logsvc.NewDiscardLogger())
}

func newTestClientWithLogger(url string, timeout time.Duration, logger core.Logger) *Client {
	conf := &core.Config{
		AppName: "Darasa",
		Build:   "test",
		Relay:   core.RelayConfig{BaseURL: url, Path: "/posts", Timeout: timeout},
	}
	return NewClient(conf, logger)
}

type logEntry struct {
	level string
	msg   string
	args  []interface{}
}

// recordingLogger keeps Info and Error entries; Debug hooks are ignored.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
	delay   time.Duration
	panics  bool
}

func (l *recordingLogger) record(level, msg string, args []interface{}) {
	time.Sleep(l.delay)
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{level, msg, args})
	l.mu.Unlock()
	if l.panics {
		panic("logger is down")
	}
}

func (l *recordingLogger) logged() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), l.entries...)
}

func (l *recordingLogger) Debug(string, ...interface{}) {}
func (l *recordingLogger) Info(msg string, args ...interface{}) { l.record("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...interface{}) { l.record("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...interface{}) { l.record("error", msg, args) }
func (l *recordingLogger) Fatal(msg string, args ...interface{}) { l.record("fatal", msg, args) }

func TestClient_Relay(t *testing.T) {
	submittedAt := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	entry := submission.RelayEntry{SubmissionID: 42, AssignmentID: 1, Content: "answer", SubmittedAt: submittedAt, StudentID: 9}

	var (
		mu      sync.Mutex
		gotBody map[string]interface{}
		gotKey  string
		gotPath string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101}`))
	}))
	defer srv.Close()

	data, err := newTestClient(srv.URL, time.Second).Relay(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"id": float64(101)}, data)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/posts", gotPath)
	assert.Equal(t, IdempotencyKey(42), gotKey)
	assert.Equal(t, map[string]interface{}{
		"assignment_id": float64(1),
		"submitted_at":  "2024-05-01T10:30:00Z",
		"student_id":    float64(9),
	}, gotBody)
}

func TestClient_Relay_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
		want    interface{}
		wantErr bool
	}{
		{
			name: "error status with json body is delivered",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"down"}`))
			},
			want: map[string]interface{}{"error": "down"},
		},
		{
			name: "json array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[1,2]`))
			},
			want: []interface{}{float64(1), float64(2)},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
			wantErr: true,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			wantErr: true,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
				_, _ = w.Write([]byte(`{}`))
			},
			timeout: 20 * time.Millisecond,
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			timeout := tc.timeout
			if timeout == 0 {
				timeout = time.Second
			}
			data, err := newTestClient(srv.URL, timeout).Relay(context.Background(), submission.RelayEntry{SubmissionID: 1})
			if tc.wantErr {
				assert.Error(t, err)
				assert.Nil(t, data)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, data)
		})
	}
}

func TestClient_Relay_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, time.Second).Relay(context.Background(), submission.RelayEntry{SubmissionID: 1})
	assert.Error(t, err)
}

func TestIdempotencyKey(t *testing.T) {
	assert.Equal(t, IdempotencyKey(7), IdempotencyKey(7))
	assert.NotEqual(t, IdempotencyKey(7), IdempotencyKey(8))
}

func TestClient_Relay_Logging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Idempotency-Key") == IdempotencyKey(2) {
			_, _ = w.Write([]byte(`<html>`))
			return
		}
		_, _ = w.Write([]byte(`{"id":101}`))
	}))
	defer srv.Close()

	t.Run("success is logged at info with the data", func(t *testing.T) {
		logger := &recordingLogger{}
		_, err := newTestClientWithLogger(srv.URL, time.Second, logger).Relay(context.Background(), submission.RelayEntry{SubmissionID: 1})
		require.NoError(t, err)

		logged := logger.logged()
		require.Len(t, logged, 1)
		assert.Equal(t, "info", logged[0].level)
		assert.Equal(t, "Submission logged to external service", logged[0].msg)
		assert.Equal(t, []interface{}{map[string]interface{}{
			"submission_id": 1,
			"data":          map[string]interface{}{"id": float64(101)},
		}}, logged[0].args)
	})

	t.Run("failure is logged at error with the error", func(t *testing.T) {
		logger := &recordingLogger{}
		_, relayErr := newTestClientWithLogger(srv.URL, time.Second, logger).Relay(context.Background(), submission.RelayEntry{SubmissionID: 2})
		require.Error(t, relayErr)

		logged := logger.logged()
		require.Len(t, logged, 1)
		assert.Equal(t, "error", logged[0].level)
		assert.Equal(t, "Failed to log submission to external service", logged[0].msg)
		require.Len(t, logged[0].args, 2)
		assert.Equal(t, relayErr, logged[0].args[0])
		assert.Equal(t, map[string]interface{}{"submission_id": 2}, logged[0].args[1])
	})

	t.Run("slow or panicking logger leaves the outcome unchanged", func(t *testing.T) {
		for _, logger := range []*recordingLogger{{delay: 50 * time.Millisecond}, {panics: true}} {
			client := newTestClientWithLogger(srv.URL, time.Second, logger)

			data, err := client.Relay(context.Background(), submission.RelayEntry{SubmissionID: 1})
			require.NoError(t, err)
			assert.Equal(t, map[string]interface{}{"id": float64(101)}, data)

			data, err = client.Relay(context.Background(), submission.RelayEntry{SubmissionID: 2})
			assert.Error(t, err)
			assert.Nil(t, data)

			assert.Len(t, logger.logged(), 2)
		}
	})
}
