package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptState(t *testing.T) {
	t.Run("open records the redirect target", func(t *testing.T) {
		p := NewPromptState()
		assert.False(t, p.IsOpen())

		p.OpenAuthPrompt("/dashboard")
		assert.True(t, p.IsOpen())
		assert.Equal(t, "/dashboard", p.RedirectPath())
	})

	t.Run("empty redirect keeps the previous target", func(t *testing.T) {
		p := NewPromptState()
		p.OpenAuthPrompt("/dashboard")
		p.Close()

		p.OpenAuthPrompt("")
		assert.True(t, p.IsOpen())
		assert.Equal(t, "/dashboard", p.RedirectPath())
	})

	t.Run("close leaves the redirect for post-login navigation", func(t *testing.T) {
		p := NewPromptState()
		p.OpenAuthPrompt("/dashboard")
		p.Close()

		assert.False(t, p.IsOpen())
		assert.Equal(t, "/dashboard", p.RedirectPath())

		p.ClearRedirect()
		assert.Equal(t, "", p.RedirectPath())
	})
}
