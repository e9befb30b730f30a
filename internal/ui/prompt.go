// Package ui holds the auth-prompt state the guard collaborates with:
// whether the prompt is open and which path to return to after login.
package ui

import "sync"

type PromptState struct {
	mu           sync.Mutex
	open         bool
	redirectPath string
}

func NewPromptState() *PromptState {
	return &PromptState{}
}

// OpenAuthPrompt implements guard.Prompter.
func (p *PromptState) OpenAuthPrompt(redirectTo string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if redirectTo != "" {
		p.redirectPath = redirectTo
	}
	p.open = true
}

func (p *PromptState) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
}

func (p *PromptState) ClearRedirect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.redirectPath = ""
}

func (p *PromptState) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// RedirectPath returns the recorded post-login target, or "".
func (p *PromptState) RedirectPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.redirectPath
}
