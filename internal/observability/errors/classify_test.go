package errors

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/pressrun/backoffice/internal/errors"
)

func TestClassifyNil(t *testing.T) {
	assert.Empty(t, Classify(nil))
}

func TestClassifyPlainError(t *testing.T) {
	assert.Equal(t, "errors_errorstring", Classify(errors.New("boom")))
}

func TestClassifyUnwrapsToInnermost(t *testing.T) {
	inner := &net.OpError{Op: "dial"}
	wrapped := fmt.Errorf("deliver event: %w", apperrors.Wrap(inner, apperrors.ErrCodeDependency, "sink failed"))
	assert.Equal(t, "net_operror", Classify(wrapped))
}

func TestClassifyAppError(t *testing.T) {
	assert.Equal(t, "errors_apperror", Classify(apperrors.Validation("", "bad")))
}
