package digo

import (
	"log/slog"
	"sync"
)

// ScopeStack tracks the active scopes of every goroutine. Each goroutine has
// its own stack; the innermost entered scope is the current one.
type ScopeStack struct {
	mu     sync.Mutex
	stacks map[int64][]*Scope
	logger *slog.Logger
}

// NewScopeStack creates an empty stack set. A nil logger uses slog.Default.
func NewScopeStack(logger *slog.Logger) *ScopeStack {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScopeStack{
		stacks: make(map[int64][]*Scope),
		logger: logger,
	}
}

// Push makes scope the current scope of the calling goroutine.
func (s *ScopeStack) Push(scope *Scope) {
	id := goid()

	s.mu.Lock()
	s.stacks[id] = append(s.stacks[id], scope)
	depth := len(s.stacks[id])
	s.mu.Unlock()

	s.logger.Debug("pushed scope", "scope", scope.ID(), "depth", depth)
}

// Pop discards the current scope of the calling goroutine. It returns a
// ScopeError when the goroutine has no active scope.
func (s *ScopeStack) Pop() error {
	id := goid()

	s.mu.Lock()
	stack := s.stacks[id]
	if len(stack) == 0 {
		s.mu.Unlock()
		return &ScopeError{Reason: "no scope to pop"}
	}

	top := stack[len(stack)-1]
	stack[len(stack)-1] = nil
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		// finished goroutines must not keep entries alive
		delete(s.stacks, id)
	} else {
		s.stacks[id] = stack
	}
	s.mu.Unlock()

	s.logger.Debug("popped scope", "scope", top.ID(), "depth", len(stack))
	return nil
}

// Current returns the innermost active scope of the calling goroutine, or
// nil if none is active.
func (s *ScopeStack) Current() *Scope {
	id := goid()

	s.mu.Lock()
	defer s.mu.Unlock()

	stack := s.stacks[id]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// Depth returns how many scopes the calling goroutine has entered.
func (s *ScopeStack) Depth() int {
	id := goid()

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.stacks[id])
}
