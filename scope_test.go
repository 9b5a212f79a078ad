package digo_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/centraunit/digo"
	"github.com/centraunit/digo/mock"
	"github.com/stretchr/testify/suite"
)

// OtherResource is a second disposable interface so two scoped resources can
// live side by side.
type OtherResource interface {
	Name() string
}

type ScopeTestSuite struct {
	suite.Suite
	c   *digo.Container
	rec *mock.Recorder
}

func (s *ScopeTestSuite) SetupTest() {
	s.c = newContainer()
	s.rec = &mock.Recorder{}
}

func (s *ScopeTestSuite) TestEnterExit() {
	scope := s.c.CreateScope()
	s.False(scope.Active())
	s.Nil(s.c.CurrentScope())

	entered, err := scope.Enter()
	s.NoError(err)
	s.Same(scope, entered)
	s.True(scope.Active())
	s.Same(scope, s.c.CurrentScope())

	s.NoError(scope.Exit())
	s.False(scope.Active())
	s.Nil(s.c.CurrentScope())
}

func (s *ScopeTestSuite) TestMisuse() {
	scope, err := s.c.CreateScope().Enter()
	s.Require().NoError(err)

	var scopeErr *digo.ScopeError
	_, err = scope.Enter()
	s.ErrorAs(err, &scopeErr, "already active")

	s.NoError(scope.Exit())
	s.ErrorAs(scope.Exit(), &scopeErr, "already exited")

	_, err = scope.Enter()
	s.ErrorAs(err, &scopeErr, "disposed scopes cannot be re-entered")

	s.ErrorAs(s.c.CreateScope().Exit(), &scopeErr, "never entered")
}

func (s *ScopeTestSuite) TestDisposalOrder() {
	s.NoError(digo.AddScoped[mock.Resource](s.c, func(other OtherResource) *mock.DisposableResource {
		return mock.NewDisposableResource("first", s.rec, nil)
	}))
	s.NoError(digo.AddScoped[OtherResource](s.c, func() *mock.ClosableResource {
		return mock.NewClosableResource("second", s.rec)
	}))
	s.NoError(digo.AddTransient[mock.Database](s.c, mock.NewMockDB))

	var transient *mock.MockDB
	err := s.c.WithScope(func(scope *digo.Scope) error {
		// the dependency finishes construction first
		_ = digo.MustGet[mock.Resource](scope)
		transient = digo.MustGet[mock.Database](scope).(*mock.MockDB)
		return nil
	})
	s.NoError(err)

	s.Equal([]string{"close second", "dispose first"}, s.rec.Events())
	s.False(transient.Disposed(), "transient instances are not tracked")
}

func (s *ScopeTestSuite) TestDisposalIsBestEffort() {
	boom := errors.New("boom")
	s.NoError(digo.AddScoped[mock.Resource](s.c, func() *mock.DisposableResource {
		return mock.NewDisposableResource("failing", s.rec, boom)
	}))
	s.NoError(digo.AddScoped[OtherResource](s.c, func() *mock.ClosableResource {
		return mock.NewClosableResource("healthy", s.rec)
	}))

	scope, err := s.c.CreateScope().Enter()
	s.Require().NoError(err)
	_ = digo.MustGet[mock.Resource](scope)
	_ = digo.MustGet[OtherResource](scope)

	err = scope.Exit()
	s.ErrorIs(err, boom)
	var disposeErr *digo.DisposeError
	s.Require().ErrorAs(err, &disposeErr)
	s.Equal("mock.Resource", disposeErr.Type)

	s.Equal([]string{"dispose failing", "close healthy"}, s.rec.Events())
	s.Nil(s.c.CurrentScope(), "scope is popped even when disposal fails")
}

func (s *ScopeTestSuite) TestInstances() {
	scope := s.c.CreateScope()
	t := typeFor[mock.Resource]()

	_, ok := scope.GetInstance(t)
	s.False(ok)

	res := mock.NewDisposableResource("manual", s.rec, nil)
	scope.AddInstance(t, res)
	got, ok := scope.GetInstance(t)
	s.True(ok)
	s.Same(res, got)

	_, err := scope.Enter()
	s.Require().NoError(err)
	s.NoError(scope.Exit())
	s.Equal([]string{"dispose manual"}, s.rec.Events())
}

func (s *ScopeTestSuite) TestScopesAreGoroutineLocal() {
	outer, err := s.c.CreateScope().Enter()
	s.Require().NoError(err)
	defer func() { s.NoError(outer.Exit()) }()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Nil(s.c.CurrentScope())

		inner, err := s.c.CreateScope().Enter()
		s.NoError(err)
		s.Same(inner, s.c.CurrentScope())
		s.NoError(inner.Exit())
	}()
	wg.Wait()

	s.Same(outer, s.c.CurrentScope())
}

func TestScopeSuite(t *testing.T) {
	suite.Run(t, new(ScopeTestSuite))
}

type ScopeStackTestSuite struct {
	suite.Suite
	stack *digo.ScopeStack
}

func (s *ScopeStackTestSuite) SetupTest() {
	s.stack = digo.NewScopeStack(discardLogger())
}

func (s *ScopeStackTestSuite) TestPushPop() {
	s.Nil(s.stack.Current())
	s.Equal(0, s.stack.Depth())

	a := digo.NewScope(s.stack, nil, discardLogger())
	b := digo.NewScope(s.stack, nil, discardLogger())
	s.NotEqual(a.ID(), b.ID())

	s.stack.Push(a)
	s.stack.Push(b)
	s.Equal(2, s.stack.Depth())
	s.Same(b, s.stack.Current())

	s.NoError(s.stack.Pop())
	s.Same(a, s.stack.Current())
	s.NoError(s.stack.Pop())
	s.Nil(s.stack.Current())
}

func (s *ScopeStackTestSuite) TestPopEmpty() {
	var scopeErr *digo.ScopeError
	s.Require().ErrorAs(s.stack.Pop(), &scopeErr)
	s.Contains(scopeErr.Error(), "no scope to pop")
}

func TestScopeStackSuite(t *testing.T) {
	suite.Run(t, new(ScopeStackTestSuite))
}
