package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

func TestHandlerRegistry_Register(t *testing.T) {
	t.Run("specific types", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newRecordingHandler()

		r.Register(h, "A", "B")

		assert.Equal(t, []shared.EventHandler{h}, r.Handlers("A"))
		assert.Equal(t, []shared.EventHandler{h}, r.Handlers("B"))
		assert.Empty(t, r.Handlers("C"))
	})

	t.Run("wildcard handlers come after specific ones", func(t *testing.T) {
		r := NewHandlerRegistry()
		wildcard := newRecordingHandler()
		specific := newRecordingHandler()

		r.Register(wildcard)
		r.Register(specific, "A")

		assert.Equal(t, []shared.EventHandler{specific, wildcard}, r.Handlers("A"))
		assert.Equal(t, []shared.EventHandler{wildcard}, r.Handlers("B"))
	})

	t.Run("duplicate registration is ignored", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newRecordingHandler()

		r.Register(h, "A")
		r.Register(h, "A")
		r.Register(h)

		require.Len(t, r.Handlers("A"), 1)
		assert.Equal(t, 1, r.Count())
	})
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	r := NewHandlerRegistry()
	keep := newRecordingHandler()
	drop := newRecordingHandler()
	r.Register(keep, "A")
	r.Register(drop, "A", "B")
	r.Register(drop)

	r.Unregister(drop)

	assert.Equal(t, []shared.EventHandler{keep}, r.Handlers("A"))
	assert.Empty(t, r.Handlers("B"))
	assert.Equal(t, 1, r.Count())
}
