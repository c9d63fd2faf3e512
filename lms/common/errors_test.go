package common_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-lms/lms/lms/common"
)

func TestErrorfCarriesKind(t *testing.T) {
	err := common.Errorf(common.VerifyFailed, "root mismatch")
	assert.True(t, common.IsKind(err, common.VerifyFailed))
	assert.False(t, common.IsKind(err, common.BadInput))

	var ce *common.Error
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, common.VerifyFailed, ce.Kind())
}

func TestWrapErrorfUnwraps(t *testing.T) {
	inner := errors.New("disk full")
	err := common.WrapErrorf(common.StateIOError, inner, "failed to persist counter")

	assert.True(t, common.IsKind(err, common.StateIOError))
	assert.True(t, errors.Is(err, inner))
	assert.ErrorContains(t, err, "disk full")
	assert.ErrorContains(t, err, "failed to persist counter")
}

func TestIsKindFalseForPlainError(t *testing.T) {
	assert.False(t, common.IsKind(errors.New("plain"), common.BadInput))
}
