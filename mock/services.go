package mock

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/centraunit/digo"
)

// Core interfaces
type Database interface {
	Connect() error
	IsConnected() bool
	DSN() string
}

type Cache interface {
	Get(key string) interface{}
	DB() Database
}

// Mock implementations
type MockDB struct {
	dsn         string
	isConnected bool
	disposed    atomic.Bool
}

func NewMockDB() *MockDB {
	return &MockDB{dsn: "memory", isConnected: true}
}

// NewMockDBWithDSN is registered with WithParams("dsn") in tests.
func NewMockDBWithDSN(dsn string) *MockDB {
	return &MockDB{dsn: dsn, isConnected: true}
}

func (m *MockDB) Connect() error {
	m.isConnected = true
	return nil
}

func (m *MockDB) IsConnected() bool {
	return m.isConnected
}

func (m *MockDB) DSN() string {
	return m.dsn
}

func (m *MockDB) Dispose() error {
	m.isConnected = false
	m.disposed.Store(true)
	return nil
}

func (m *MockDB) Disposed() bool {
	return m.disposed.Load()
}

type MockCache struct {
	db Database
}

func NewMockCache(db Database) *MockCache {
	return &MockCache{db: db}
}

func (m *MockCache) Get(key string) interface{} {
	return nil
}

func (m *MockCache) DB() Database {
	return m.db
}

// ErrBoot is returned by NewFailingDB.
var ErrBoot = errors.New("simulated boot failure")

func NewFailingDB() (*MockDB, error) {
	return nil, ErrBoot
}

// End-to-end pair
type IServiceA interface {
	Value() string
}

type IServiceB interface {
	A() IServiceA
}

type ServiceA struct {
	value string
}

func NewServiceA() *ServiceA {
	return &ServiceA{value: "A"}
}

func (a *ServiceA) Value() string { return a.value }

type ServiceB struct {
	a IServiceA
}

func NewServiceB(a IServiceA) *ServiceB {
	return &ServiceB{a: a}
}

func (b *ServiceB) A() IServiceA { return b.a }

// Circular dependency test types
type CircularService1 interface {
	GetService2() CircularService2
}

type CircularService2 interface {
	GetService1() CircularService1
}

type CircularImpl1 struct {
	svc2 CircularService2
}

func NewCircularImpl1(svc2 CircularService2) *CircularImpl1 {
	return &CircularImpl1{svc2: svc2}
}

func (i *CircularImpl1) GetService2() CircularService2 { return i.svc2 }

type CircularImpl2 struct {
	svc1 CircularService1
}

func NewCircularImpl2(svc1 CircularService1) *CircularImpl2 {
	return &CircularImpl2{svc1: svc1}
}

func (i *CircularImpl2) GetService1() CircularService1 { return i.svc1 }

// FactoryImpl2 breaks the cycle by resolving CircularService1 on demand.
type FactoryImpl2 struct {
	factory digo.Factory[CircularService1]
}

func NewFactoryImpl2(factory digo.Factory[CircularService1]) *FactoryImpl2 {
	return &FactoryImpl2{factory: factory}
}

func (i *FactoryImpl2) GetService1() CircularService1 {
	return i.factory.MustGet()
}

// SelfDependent needs itself.
type SelfDependent interface {
	Self() SelfDependent
}

type SelfImpl struct{ self SelfDependent }

func NewSelfImpl(self SelfDependent) *SelfImpl { return &SelfImpl{self: self} }

func (s *SelfImpl) Self() SelfDependent { return s.self }

// Deep chain
type DeepService3 interface {
	GetValue() string
}

type DeepService2 interface {
	GetService3() DeepService3
}

type DeepService1 interface {
	GetService2() DeepService2
}

type DeepImpl3 struct {
	Value string
}

func NewDeepImpl3() *DeepImpl3 {
	return &DeepImpl3{Value: "deep"}
}

func (d *DeepImpl3) GetValue() string {
	return d.Value
}

type DeepImpl2 struct {
	svc3 DeepService3
}

func NewDeepImpl2(svc3 DeepService3) *DeepImpl2 {
	return &DeepImpl2{svc3: svc3}
}

func (d *DeepImpl2) GetService3() DeepService3 {
	return d.svc3
}

type DeepImpl1 struct {
	svc2 DeepService2
}

func NewDeepImpl1(svc2 DeepService2) *DeepImpl1 {
	return &DeepImpl1{svc2: svc2}
}

func (d *DeepImpl1) GetService2() DeepService2 {
	return d.svc2
}

// Counted records how many instances its constructor built.
type Counted interface {
	ID() int64
}

type CountedService struct {
	id int64
}

func (c *CountedService) ID() int64 { return c.id }

// Counter hands out constructors that count their calls.
type Counter struct {
	calls atomic.Int64
}

func (c *Counter) Constructor() func() *CountedService {
	return func() *CountedService {
		return &CountedService{id: c.calls.Add(1)}
	}
}

func (c *Counter) Calls() int64 {
	return c.calls.Load()
}

// Recorder keeps the order in which services were disposed.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) Record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Resource is a disposable service that reports to a Recorder.
type Resource interface {
	Name() string
}

type DisposableResource struct {
	name string
	rec  *Recorder
	err  error
}

func NewDisposableResource(name string, rec *Recorder, err error) *DisposableResource {
	return &DisposableResource{name: name, rec: rec, err: err}
}

func (d *DisposableResource) Name() string { return d.name }

func (d *DisposableResource) Dispose() error {
	d.rec.Record("dispose " + d.name)
	return d.err
}

// ClosableResource is released through io.Closer.
type ClosableResource struct {
	name string
	rec  *Recorder
}

func NewClosableResource(name string, rec *Recorder) *ClosableResource {
	return &ClosableResource{name: name, rec: rec}
}

func (c *ClosableResource) Name() string { return c.name }

func (c *ClosableResource) Close() error {
	c.rec.Record("close " + c.name)
	return nil
}

// Complex service
type ComplexServiceInterface interface {
	GetDB() Database
	GetCache() Cache
}

type ComplexService struct {
	DB    Database
	Cache Cache
	Name  string
}

func NewComplexService(db Database, cache Cache, name string) *ComplexService {
	return &ComplexService{DB: db, Cache: cache, Name: name}
}

func (c *ComplexService) GetDB() Database {
	return c.DB
}

func (c *ComplexService) GetCache() Cache {
	return c.Cache
}

func (c *ComplexService) String() string {
	return fmt.Sprintf("ComplexService(%s)", c.Name)
}
