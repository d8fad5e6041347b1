package familiarity

import "sort"

// State maps an action name to its learning progress.
type State map[string]Record

func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Normalize returns a copy with every record normalized.
func (s State) Normalize() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v.Normalize()
	}
	return out
}

// Lookup returns the record for actionName or zero completions.
func (s State) Lookup(actionName string) Record {
	if r, ok := s[actionName]; ok {
		return r
	}
	return Completions(0)
}

type Stats struct {
	Actions   int `json:"actions"`
	Completed int `json:"completed"`
	Partial   int `json:"partial"`
}

func (s State) Stats() Stats {
	out := Stats{Actions: len(s)}
	for _, r := range s {
		switch r.Type {
		case KindCompletions:
			if r.Value > 0 {
				out.Completed++
			}
		case KindTimeCompleted:
			out.Partial++
		}
	}
	return out
}

// Restrict keeps only entries whose name is known and returns the sorted
// names that were dropped.
func (s State) Restrict(known func(string) bool) (State, []string) {
	out := make(State, len(s))
	var unknown []string
	for name, r := range s {
		if known(name) {
			out[name] = r
			continue
		}
		unknown = append(unknown, name)
	}
	sort.Strings(unknown)
	return out, unknown
}

// Names returns the action names in lexical order.
func (s State) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
