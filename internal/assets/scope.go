package assets

// Scope names the environment a lookup is issued against. The empty scope
// targets the global (primary) environment.
type Scope string

// ScopeGlobal is the unscoped fallback context.
const ScopeGlobal Scope = ""

// ScopeStrategy is the ordered list of lookup contexts tried when resolving
// an upload: the configured environment first, then the global fallback. An
// asset may have been created in a different scope than the one configured,
// so a not-found answer advances to the next context for the remainder of
// the retry window; the first success wins.
type ScopeStrategy struct {
	scopes  []Scope
	current int
}

// NewScopeStrategy builds the lookup order for the given environment. An
// empty environment collapses to the global scope only.
func NewScopeStrategy(environment string) *ScopeStrategy {
	scopes := []Scope{}
	if environment != "" {
		scopes = append(scopes, Scope(environment))
	}
	scopes = append(scopes, ScopeGlobal)
	return &ScopeStrategy{scopes: scopes}
}

// Current returns the scope the next lookup should use.
func (s *ScopeStrategy) Current() Scope {
	return s.scopes[s.current]
}

// Advance moves to the next scope after a not-found answer. It reports
// whether a new scope was available; once exhausted the strategy stays on
// the last scope.
func (s *ScopeStrategy) Advance() bool {
	if s.current+1 < len(s.scopes) {
		s.current++
		return true
	}
	return false
}

// Scopes exposes the lookup order, first to last.
func (s *ScopeStrategy) Scopes() []Scope {
	out := make([]Scope, len(s.scopes))
	copy(out, s.scopes)
	return out
}
