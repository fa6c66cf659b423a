package rooms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAll(t *testing.T) {
	all := All()
	assert.Len(t, all, 5)
	assert.Equal(t, "verdade-absoluta", all[0].ID)

	// callers must not be able to mutate the registry
	all[0].Label = "changed"
	assert.Equal(t, "Verdade Absoluta", All()[0].Label)
}

func TestGet(t *testing.T) {
	r, ok := Get("doutrina")
	assert.True(t, ok)
	assert.Equal(t, "Doutrina e Discipulado", r.Label)

	_, ok = Get("matematica")
	assert.False(t, ok)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("primeira-pedro"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("Doutrina")) // ids are exact, lowercase slugs
}
