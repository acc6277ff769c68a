package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	assert.ErrorIs(t, classify(sql.ErrNoRows), ErrNotFound)

	assert.ErrorIs(t, classify(&pq.Error{Code: "23505"}), ErrConflict)
	assert.ErrorIs(t, classify(&pq.Error{Code: "23514"}), ErrValidation)
	assert.ErrorIs(t, classify(&pq.Error{Message: "permission denied for table payments"}), ErrPermission)

	assert.ErrorIs(t, classify(errors.New("dial tcp: connection refused")), ErrConnection)
	assert.ErrorIs(t, classify(errors.New("failed to connect to host")), ErrConnection)
	assert.ErrorIs(t, classify(errors.New("permission denied for relation users")), ErrPermission)

	plain := errors.New("syntax error at or near SELECT")
	assert.Equal(t, plain, classify(plain))
}

func TestClassifyKeepsCauseInChain(t *testing.T) {
	cause := &pq.Error{Code: "23505", Message: "duplicate key"}
	err := classify(cause)

	var pqErr *pq.Error
	assert.ErrorAs(t, err, &pqErr)
	assert.Equal(t, "duplicate key", pqErr.Message)
}
