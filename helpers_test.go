package digo_test

import (
	"io"
	"log/slog"
	"reflect"

	"github.com/centraunit/digo"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newContainer(opts ...digo.Option) *digo.Container {
	return digo.New(append([]digo.Option{digo.WithLogger(discardLogger())}, opts...)...)
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
