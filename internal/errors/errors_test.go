package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	bare := Validation(ReasonMissingReferenceNumber, "reference number is required")
	assert.Equal(t, "reference number is required", bare.Error())

	cause := errors.New("connection reset")
	wrapped := Dependency(ReasonParserFailure, "document parser failed", cause)
	assert.Equal(t, "document parser failed: connection reset", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestClassPredicates(t *testing.T) {
	cases := []struct {
		err  error
		pred func(error) bool
		code ErrorCode
	}{
		{Validation("", "bad input"), IsValidation, ErrCodeValidation},
		{State(ReasonInvalidTransition, "wrong status"), IsState, ErrCodeState},
		{Dependency("", "collaborator down", nil), IsDependency, ErrCodeDependency},
		{NotFound("missing"), IsNotFound, ErrCodeNotFound},
		{Conflict("exists"), IsConflict, ErrCodeConflict},
		{Internal("broken"), IsInternal, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.True(t, tc.pred(tc.err))
			assert.Equal(t, tc.code, GetCode(tc.err))
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := ValidationField(ReasonNegativeAmount, "quantity", "quantity must be positive")
	outer := fmt.Errorf("create job: %w", inner)

	assert.True(t, IsValidation(outer))
	assert.Equal(t, ReasonNegativeAmount, GetReason(outer))
	assert.Equal(t, "quantity", GetField(outer))
}

func TestPlainErrorsHaveNoTaxonomy(t *testing.T) {
	err := errors.New("plain")
	assert.False(t, IsValidation(err))
	assert.Empty(t, GetCode(err))
	assert.Empty(t, GetReason(err))
	assert.Empty(t, GetField(err))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "ignored %d", 1))
}

func TestStatef(t *testing.T) {
	err := Statef(ReasonInvalidTransition, "cannot edit a %s job", "completed")
	require.NotNil(t, err)
	assert.Equal(t, "cannot edit a completed job", err.Message)
	assert.Equal(t, ReasonInvalidTransition, err.Reason)
}
