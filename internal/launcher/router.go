package launcher

import "strings"

// Action is an auxiliary program bound to a reserved token.
type Action struct {
	Token   string
	Name    string
	Command []string
}

// Launcher starts the program behind an Action.
type Launcher interface {
	Launch(a Action)
}

// DefaultActions is the built-in token table.
func DefaultActions() []Action {
	return []Action{
		{Token: "/b", Name: "open-browser", Command: []string{"x-www-browser"}},
		{Token: "/f", Name: "open-file-manager", Command: []string{"thunar"}},
		{Token: "/t", Name: "open-terminal", Command: []string{"xfce4-terminal"}},
	}
}

// Router maps submitted text to auxiliary actions.
type Router struct {
	table map[string]Action
}

func NewRouter(actions []Action) *Router {
	r := &Router{table: make(map[string]Action, len(actions))}
	for _, a := range actions {
		if a.Token == "" || len(a.Command) == 0 {
			continue
		}
		r.table[a.Token] = a
	}
	return r
}

// Match returns the action whose token equals text exactly, ignoring
// surrounding whitespace.
func (r *Router) Match(text string) (Action, bool) {
	if r == nil {
		return Action{}, false
	}
	a, ok := r.table[strings.TrimSpace(text)]
	return a, ok
}
