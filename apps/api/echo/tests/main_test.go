package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/submission"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/services/relay"
	"github.com/trezcool/darasa/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

// collector is a fake external collector recording every relayed submission.
type collector struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []collected
	respond  func(w http.ResponseWriter, body map[string]interface{}, n int) // n: 1-based request number
}

type collected struct {
	Header http.Header
	Body   map[string]interface{}
}

func newCollector(t *testing.T) *collector {
	c := &collector{
		respond: func(w http.ResponseWriter, _ map[string]interface{}, _ int) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 101}`))
		},
	}
	c.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)

		c.mu.Lock()
		c.requests = append(c.requests, collected{Header: r.Header.Clone(), Body: body})
		n := len(c.requests)
		respond := c.respond
		c.mu.Unlock()

		respond(w, body, n)
	}))
	t.Cleanup(c.srv.Close)
	return c
}

func (c *collector) received() []collected {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]collected(nil), c.requests...)
}

func (c *collector) setResponder(fn func(w http.ResponseWriter, body map[string]interface{}, n int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.respond = fn
}

// testApp is a Server wired to in-memory repositories and a fake collector.
type testApp struct {
	*Server
	conf      *core.Config
	mailSvc   *emailsvc.ConsoleServiceMock
	collector *collector

	usrRepo user.Repository
	crsRepo course.Repository
	asgRepo assignment.Repository
	subRepo submission.Repository
}

func newTestConfig(relayURL string) *core.Config {
	return &core.Config{
		AppName:          "Darasa",
		Build:            "test",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "test-secret-key",
		DefaultFromEmail: mail.Address{Name: "Darasa", Address: "noreply@test.cd"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
		},
		Relay: core.RelayConfig{
			BaseURL:        relayURL,
			Path:           "/posts",
			Timeout:        2 * time.Second,
			MaxConcurrency: submission.MaxBatchSize,
		},
	}
}

func setup(t *testing.T) *testApp {
	coll := newCollector(t)
	conf := newTestConfig(coll.srv.URL)
	logger := logsvc.NewDiscardLogger()

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)
	asgRepo := inmemdb.NewAssignmentRepository(db)
	subRepo := inmemdb.NewSubmissionRepository(db)

	// set up validators
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	relayClient := relaysvc.NewClient(conf, logger)

	srv := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       user.NewService(usrRepo, mailSvc, conf),
		CourseSvc:     course.NewService(crsRepo),
		AssignmentSvc: assignment.NewService(asgRepo),
		SubmissionSvc: submission.NewService(subRepo, relayClient, conf.Relay.MaxConcurrency),
		Validate:      validate,
		Translator:    translator,
	})

	return &testApp{
		Server:    srv,
		conf:      conf,
		mailSvc:   mailSvc,
		collector: coll,
		usrRepo:   usrRepo,
		crsRepo:   crsRepo,
		asgRepo:   asgRepo,
		subRepo:   subRepo,
	}
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr, app.conf), app.conf)
	require.NoError(t, err, "GenerateToken()")
	return token
}

// do serves a request and returns the recorded response.
func (app *testApp) do(method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	require.NoError(t, err, "json.Marshal()")
	return data
}

func unmarshalBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), "body: %s", rec.Body.String())
}

func validationErr(errs map[string][]string) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"message": core.ErrInvalidData.Error(),
		"errors":  errs,
	})
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}
