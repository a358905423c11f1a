package table

import "sync"

// Token tags an async request so its response can be matched to the newest
// request of the same scope.
type Token uint64

// Tokens issues request tokens per scope.
type Tokens struct {
	mu     sync.Mutex
	next   Token
	latest map[string]Token
}

// NewTokens creates an empty token source.
func NewTokens() *Tokens {
	return &Tokens{latest: make(map[string]Token)}
}

// Issue returns a new token for scope, superseding earlier ones.
func (t *Tokens) Issue(scope string) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.latest[scope] = t.next
	return t.next
}

// Accept reports whether tok is the newest token issued for scope.
func (t *Tokens) Accept(scope string, tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	latest, ok := t.latest[scope]
	return ok && latest == tok
}
