package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	var m Memory
	require.NoError(t, m.WriteText("hello"))
	got, err := m.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	m.Err = &DeniedError{Op: "write", Err: errors.New("locked")}
	err = m.WriteText("again")
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "clipboard write denied: locked", denied.Error())
	assert.Equal(t, "hello", m.Text)
}

func TestSystemImplementsInterfaces(t *testing.T) {
	var _ Writer = System{}
	var _ Reader = System{}
	var _ Writer = (*Memory)(nil)
}
