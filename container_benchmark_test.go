package digo_test

import (
	"testing"

	"github.com/centraunit/digo"
	"github.com/centraunit/digo/mock"
)

func BenchmarkRegistration(b *testing.B) {
	b.Run("Transient", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			c := newContainer()
			_ = digo.AddTransient[mock.Database](c, mock.NewMockDB)
		}
	})

	b.Run("WithParams", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			c := newContainer()
			_ = digo.AddTransient[mock.ComplexServiceInterface](c, mock.NewComplexService,
				digo.WithParams("db", "cache", "name"), digo.WithDefault("name", "bench"))
		}
	})
}

func BenchmarkResolution(b *testing.B) {
	b.Run("TransientResolution", func(b *testing.B) {
		c := newContainer()
		mustRegister(digo.AddTransient[mock.Database](c, mock.NewMockDB))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = digo.Get[mock.Database](c)
		}
	})

	b.Run("ScopedResolution", func(b *testing.B) {
		c := newContainer()
		mustRegister(digo.AddScoped[mock.Database](c, mock.NewMockDB))
		scope, _ := c.CreateScope().Enter()
		defer func() { _ = scope.Exit() }()
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = digo.Get[mock.Database](scope)
		}
	})

	b.Run("SingletonResolution", func(b *testing.B) {
		c := newContainer()
		mustRegister(digo.AddSingleton[mock.Database](c, mock.NewMockDB))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = digo.Get[mock.Database](c)
		}
	})

	b.Run("ParallelSingleton", func(b *testing.B) {
		c := newContainer()
		mustRegister(digo.AddSingleton[mock.Database](c, mock.NewMockDB))
		b.ReportAllocs()
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_, _ = digo.Get[mock.Database](c)
			}
		})
	})
}

func BenchmarkComplexResolution(b *testing.B) {
	b.Run("DeepDependencyChain", func(b *testing.B) {
		c := newContainer()
		mustRegister(digo.AddTransient[mock.DeepService3](c, mock.NewDeepImpl3))
		mustRegister(digo.AddTransient[mock.DeepService2](c, mock.NewDeepImpl2))
		mustRegister(digo.AddTransient[mock.DeepService1](c, mock.NewDeepImpl1))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = digo.Get[mock.DeepService1](c)
		}
	})

	b.Run("ScopeLifecycle", func(b *testing.B) {
		c := newContainer()
		mustRegister(digo.AddScoped[mock.Database](c, mock.NewMockDB))
		mustRegister(digo.AddTransient[mock.Cache](c, mock.NewMockCache))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = c.WithScope(func(scope *digo.Scope) error {
				_, err := digo.Get[mock.Cache](scope)
				return err
			})
		}
	})
}
