package scopehttp_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/suite"

	"github.com/centraunit/digo"
	"github.com/centraunit/digo/mock"
	"github.com/centraunit/digo/scopehttp"
)

type HTTPTestSuite struct {
	suite.Suite
	c       *digo.Container
	counter *mock.Counter
	rec     *mock.Recorder
	router  chi.Router
}

func (s *HTTPTestSuite) SetupTest() {
	s.c = digo.New(digo.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.counter = &mock.Counter{}
	s.rec = &mock.Recorder{}

	s.Require().NoError(digo.AddScoped[mock.Counted](s.c, s.counter.Constructor()))
	s.Require().NoError(digo.AddScoped[mock.Resource](s.c, func() *mock.DisposableResource {
		return mock.NewDisposableResource("request", s.rec, nil)
	}))

	s.router = chi.NewRouter()
	s.router.Use(middleware.Recoverer)
	s.router.Use(scopehttp.Middleware(s.c))
}

func (s *HTTPTestSuite) serve(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (s *HTTPTestSuite) TestRequestScopeLifecycle() {
	var mu sync.Mutex
	var seen []int64

	s.router.Get("/counted", func(w http.ResponseWriter, r *http.Request) {
		first, err := scopehttp.Get[mock.Counted](s.c, r)
		s.NoError(err)
		second, err := digo.Get[mock.Counted](scopehttp.Scope(r))
		s.NoError(err)
		s.Same(first, second, "one instance per request")

		// the request scope is also the current scope of the serving goroutine
		s.Same(scopehttp.Scope(r), s.c.CurrentScope())

		_, err = digo.Get[mock.Resource](s.c)
		s.NoError(err)

		mu.Lock()
		seen = append(seen, first.ID())
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	s.Equal(http.StatusOK, s.serve("/counted").Code)
	s.Equal(http.StatusOK, s.serve("/counted").Code)

	s.Equal([]int64{1, 2}, seen, "each request gets its own instance")
	s.Equal([]string{"dispose request", "dispose request"}, s.rec.Events())
	s.Nil(s.c.CurrentScope())
}

func (s *HTTPTestSuite) TestScopeExitedOnPanic() {
	s.router.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		_, _ = digo.Get[mock.Resource](scopehttp.Scope(r))
		panic("handler failed")
	})

	s.Equal(http.StatusInternalServerError, s.serve("/panic").Code)
	s.Equal([]string{"dispose request"}, s.rec.Events())
	s.Nil(s.c.CurrentScope())
}

func (s *HTTPTestSuite) TestOnError() {
	var got error
	router := chi.NewRouter()
	router.Use(scopehttp.Middleware(s.c, scopehttp.OnError(func(r *http.Request, err error) {
		got = err
	})))
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		// exiting the scope early makes the middleware's exit fail
		s.NoError(scopehttp.Scope(r).Exit())
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var scopeErr *digo.ScopeError
	s.ErrorAs(got, &scopeErr)
}

func (s *HTTPTestSuite) TestOutsideMiddleware() {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	s.Nil(scopehttp.Scope(r))

	_, err := scopehttp.Get[mock.Counted](s.c, r)
	var scopeErr *digo.ScopeError
	s.ErrorAs(err, &scopeErr)
}

func TestHTTPSuite(t *testing.T) {
	suite.Run(t, new(HTTPTestSuite))
}
