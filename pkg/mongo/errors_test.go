package mongo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	drv "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/authsvc/pkg/mongo"
)

func TestIsDuplicateKeyError(t *testing.T) {
	t.Parallel()

	dup := drv.WriteException{WriteErrors: []drv.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}

	assert.True(t, mongo.IsDuplicateKeyError(dup))
	assert.True(t, mongo.IsDuplicateKeyError(fmt.Errorf("insert: %w", dup)))
	assert.False(t, mongo.IsDuplicateKeyError(drv.WriteException{WriteErrors: []drv.WriteError{{Code: 121}}}))
	assert.False(t, mongo.IsDuplicateKeyError(errors.New("boom")))
	assert.False(t, mongo.IsDuplicateKeyError(nil))
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, mongo.IsNotFoundError(drv.ErrNoDocuments))
	assert.True(t, mongo.IsNotFoundError(fmt.Errorf("find: %w", drv.ErrNoDocuments)))
	assert.False(t, mongo.IsNotFoundError(errors.New("mongo: no documents in result")))
}

func TestConnect_RequiresURL(t *testing.T) {
	t.Parallel()
	_, err := mongo.Connect(context.Background(), mongo.Config{})
	assert.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)
}
