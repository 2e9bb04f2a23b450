package domain

// OutcomeState identifies which of the three lookup states holds.
type OutcomeState string

const (
	OutcomeNotSearched OutcomeState = "not_searched"
	OutcomeFound       OutcomeState = "found"
	OutcomeNotFound    OutcomeState = "not_found"
)

// String returns the state name.
func (s OutcomeState) String() string { return string(s) }

// SearchOutcome is the result of the most recent lookup. Exactly one state
// holds. The zero value is NotSearched.
type SearchOutcome struct {
	state   OutcomeState
	results []LookupResult
}

// NotSearched is the outcome before any lookup has completed.
func NotSearched() SearchOutcome {
	return SearchOutcome{state: OutcomeNotSearched}
}

// NotFound is the outcome of a lookup that yielded nothing usable.
func NotFound() SearchOutcome {
	return SearchOutcome{state: OutcomeNotFound}
}

// Found wraps the entries of a successful lookup. An empty slice collapses to
// NotFound; both render the same "no such word" message.
func Found(results []LookupResult) SearchOutcome {
	if len(results) == 0 {
		return NotFound()
	}
	return SearchOutcome{state: OutcomeFound, results: CloneResults(results)}
}

// State reports which variant holds.
func (o SearchOutcome) State() OutcomeState {
	if o.state == "" {
		return OutcomeNotSearched
	}
	return o.state
}

// Results returns a copy of every entry; nil unless the state is Found.
func (o SearchOutcome) Results() []LookupResult {
	return CloneResults(o.results)
}

// First returns the entry surfaced to rendering. ok is false unless the
// state is Found.
func (o SearchOutcome) First() (LookupResult, bool) {
	if len(o.results) == 0 {
		return LookupResult{}, false
	}
	return o.results[0].Clone(), true
}
