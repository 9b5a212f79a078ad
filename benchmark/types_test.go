package benchmark

import (
	"io"
	"log/slog"

	"github.com/centraunit/digo"
)

type Config struct {
	Host string
	Port int
}

type Logger struct {
	Level string
}

type Database struct {
	Config *Config
	Logger *Logger
}

type Cache struct {
	Logger *Logger
}

type Repository struct {
	DB    *Database
	Cache *Cache
}

type Service struct {
	Repo   *Repository
	Logger *Logger
}

type Request struct {
	Service *Service
}

func newConfig() *Config { return &Config{Host: "localhost", Port: 8080} }
func newLogger() *Logger { return &Logger{Level: "info"} }
func newDatabase(cfg *Config, log *Logger) *Database { return &Database{Config: cfg, Logger: log} }
func newCache(log *Logger) *Cache { return &Cache{Logger: log} }
func newRepository(db *Database, c *Cache) *Repository { return &Repository{DB: db, Cache: c} }
func newService(repo *Repository, log *Logger) *Service {
	return &Service{Repo: repo, Logger: log}
}
func newRequest(svc *Service) *Request { return &Request{Service: svc} }

func newDigo() *digo.Container {
	return digo.New(digo.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// digoChain registers the full chain with the given lifetime for the leaves
// and singletons for the shared infrastructure.
func digoChain(c *digo.Container, service digo.Lifetime) {
	must(digo.AddSingleton[*Config](c, newConfig))
	must(digo.AddSingleton[*Logger](c, newLogger))
	must(digo.AddSingleton[*Database](c, newDatabase))
	must(digo.AddSingleton[*Cache](c, newCache))
	must(digo.AddSingleton[*Repository](c, newRepository))
	must(digo.Register[*Service](c, newService, digo.WithLifetime(service)))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
