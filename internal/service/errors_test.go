package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	stock := &InsufficientStockError{ProductID: uuid.New(), ProductName: "Tea", Available: decimal.NewFromInt(3), Requested: decimal.NewFromInt(5)}

	assert.Equal(t, KindInsufficientStock, KindOf(stock))
	assert.Equal(t, KindInsufficientStock, KindOf(fmt.Errorf("wrapped: %w", stock)))
	assert.Equal(t, KindNotFound, KindOf(NotFound("product '%s' not found", "x")))
	assert.Equal(t, KindConflict, KindOf(Conflict("dup")))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))

	assert.Equal(t, "insufficient stock for 'Tea': available 3, requested 5", stock.Error())
}

func TestStorageError(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(storageError(gorm.ErrRecordNotFound, "product", 5)))
	assert.Equal(t, KindConflict, KindOf(storageError(gorm.ErrDuplicatedKey, "product", 5)))
	assert.Equal(t, KindValidation, KindOf(storageError(gorm.ErrCheckConstraintViolated, "product", 5)))
	assert.Equal(t, KindUnexpected, KindOf(storageError(errors.New("io"), "product", 5)))
	assert.NoError(t, storageError(nil, "product", 5))

	already := Validation("bad")
	assert.Same(t, already, storageError(already, "product", 5))
}
