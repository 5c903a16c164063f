package sphinxql

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"
)

// MockConnection is a mock implementation of Connection. Escape behaves like
// the server so that compiled statements can be asserted literally.
type MockConnection struct {
	mock.Mock
}

var mockEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func (m *MockConnection) Escape(value string) (string, error) {
	return "'" + mockEscaper.Replace(value) + "'", nil
}

func (m *MockConnection) Query(ctx context.Context, query string) (*ResultSet, error) {
	args := m.Called(ctx, query)
	result, _ := args.Get(0).(*ResultSet)
	return result, args.Error(1)
}

func (m *MockConnection) MultiQuery(ctx context.Context, queue []string) (*MultiResultSet, error) {
	args := m.Called(ctx, queue)
	result, _ := args.Get(0).(*MultiResultSet)
	return result, args.Error(1)
}

var _ Connection = (*MockConnection)(nil)
