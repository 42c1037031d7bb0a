package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenTraceID(t *testing.T) {
	a := GenTraceID()
	b := GenTraceID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestTraceIDFrom(t *testing.T) {
	a := TraceIDFrom("deposit-user-asset-1")
	b := TraceIDFrom("deposit-user-asset-1")
	c := TraceIDFrom("deposit-user-asset-2")

	assert.Len(t, a, 36)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
