package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_String(t *testing.T) {
	cause := errors.New("connection refused")

	assert.Equal(t, "listing.ListTools: CONNECTION: connection refused",
		E(CodeConnection, "listing.ListTools", "", cause).Error())
	assert.Equal(t, "PROTOCOL: unexpected reply",
		E(CodeProtocol, "", "unexpected reply", nil).Error())
	assert.Equal(t, "port.token: UNAUTHENTICATED",
		E(CodeUnauthenticated, "port.token", "", nil).Error())
}

func TestWrap_PreservesExistingCode(t *testing.T) {
	inner := E(CodeProtocol, "", "missing result", nil)
	wrapped := Wrap(CodeConnection, "listing.ListTools", inner)

	assert.True(t, IsCode(wrapped, CodeProtocol))
	assert.Equal(t, "listing.ListTools", wrapped.Op)
}

func TestWrap_KeepsInnerOp(t *testing.T) {
	inner := E(CodeInvalidCommand, "command.Parse", "no tokens", nil)
	wrapped := Wrap(CodeInternal, "sync", inner)

	assert.Same(t, inner, wrapped)
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(CodeConnection, "op", nil))
}

func TestCodeFrom(t *testing.T) {
	err := fmt.Errorf("outer: %w", E(CodeUnavailable, "port.FetchServers", "", errors.New("502")))

	code, ok := CodeFrom(err)
	assert.True(t, ok)
	assert.Equal(t, CodeUnavailable, code)

	_, ok = CodeFrom(errors.New("plain"))
	assert.False(t, ok)
}
