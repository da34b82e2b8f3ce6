//go:build !cgo || !nativede

package de

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNativeUnavailable(t *testing.T) {
	s, err := NewNativeSolver()
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNativeUnavailable)

	_, err = Minimize(&NativeSolver{}, &counter{}, 1, 0, 1, DefaultConfig(), sum)
	assert.ErrorIs(t, err, ErrNativeUnavailable)
	assert.Zero(t, registered())
}
