package sphinxql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("server has gone away")

	dbErr := &DatabaseError{Code: 1064, Message: "syntax error", Query: "SELEC 1"}
	assert.True(t, IsDatabase(dbErr))
	assert.False(t, IsConnection(dbErr))
	assert.Equal(t, "sphinxql: [1064] syntax error [SELEC 1]", dbErr.Error())

	connErr := &ConnectionError{Op: "query", Cause: cause}
	assert.True(t, IsConnection(connErr))
	assert.ErrorIs(t, connErr, cause)
	assert.Equal(t, "sphinxql: query: server has gone away", connErr.Error())

	wrapped := fmt.Errorf("batch: %w", ErrEmptyQueue)
	assert.True(t, IsConfiguration(wrapped))
	assert.False(t, IsDatabase(wrapped))
}
