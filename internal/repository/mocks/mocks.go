package mocks

import (
	"context"

	"github.com/rpggio/capsim/internal/generator"
	"github.com/stretchr/testify/mock"
)

// Writer is a mock for generator.Writer.
type Writer struct {
	mock.Mock
}

func (m *Writer) Write(ctx context.Context, ds *generator.Dataset) error {
	args := m.Called(ctx, ds)
	return args.Error(0)
}
