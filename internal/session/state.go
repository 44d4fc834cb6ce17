package session

import "strings"

// State is a node of the menu state machine.
type State int

const (
	StateMenu State = iota
	StateWeather
	StateNews
	StateStocks
	StateExit
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "MENU"
	case StateWeather:
		return "WEATHER"
	case StateNews:
		return "NEWS"
	case StateStocks:
		return "STOCKS"
	case StateExit:
		return "EXIT"
	}
	return "UNKNOWN"
}

// choices maps validated menu input to the next state.
var choices = map[string]State{
	"1":    StateWeather,
	"2":    StateNews,
	"3":    StateStocks,
	"4":    StateExit,
	"exit": StateExit,
}

// ParseChoice returns the state selected by input. Unknown input keeps the
// loop on the menu and reports false.
func ParseChoice(input string) (State, bool) {
	next, ok := choices[strings.ToLower(strings.TrimSpace(input))]
	if !ok {
		return StateMenu, false
	}
	return next, true
}
