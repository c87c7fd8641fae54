package request

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroValueIsIdle(t *testing.T) {
	var s State[int]
	assert.True(t, s.IsIdle())
	assert.Equal(t, "idle", s.Status().String())
	_, ok := s.Value()
	assert.False(t, ok)
	assert.NoError(t, s.Err())
}

func TestTransitions(t *testing.T) {
	p := Start[string]()
	assert.True(t, p.IsPending())

	ok := Succeed("answer")
	v, has := ok.Value()
	assert.True(t, has)
	assert.Equal(t, "answer", v)
	assert.NoError(t, ok.Err())

	boom := errors.New("boom")
	f := Fail[string](boom)
	assert.True(t, f.IsFailure())
	assert.ErrorIs(t, f.Err(), boom)
	_, has = f.Value()
	assert.False(t, has)
}
