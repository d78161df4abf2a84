// Package lifecycle holds the status rules shared by the kitchen backend, the
// dashboard and the counter. Everything here is pure.
package lifecycle

import (
	"github.com/appetiteclub/kitchenscreen/pkg/enums/orderstatus"
)

type Status = orderstatus.Status

var (
	draft   = orderstatus.Statuses.Draft
	waiting = orderstatus.Statuses.Waiting
	ready   = orderstatus.Statuses.Ready
	cancel  = orderstatus.Statuses.Cancel
)

// Normalize maps a missing status to draft. Any other value is returned as is.
func Normalize(name string) Status {
	if name == "" {
		return draft
	}
	return Status{Name: name}
}

type transition struct {
	from Status
	to   Status
}

var orderTransitions = map[transition]bool{
	{draft, waiting}:  true,
	{waiting, ready}:  true,
	{draft, cancel}:   true,
	{waiting, cancel}: true,
	{ready, cancel}:   true,
}

var lineTransitions = map[transition]bool{
	{waiting, ready}: true,
	{ready, waiting}: true,
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to Status) bool {
	return orderTransitions[transition{Normalize(from.Name), to}]
}

// CanTransitionLine reports whether a line may move from one status to another.
func CanTransitionLine(from, to Status) bool {
	return lineTransitions[transition{Normalize(from.Name), to}]
}

// ToggleLine returns the status a line takes when the cook taps it:
// ready goes back to waiting, anything else becomes ready.
func ToggleLine(current Status) Status {
	if current == ready {
		return waiting
	}
	return ready
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(s Status) bool {
	return s == cancel
}

// Action is a cook decision on a whole order.
type Action struct {
	Name string
}

func (a Action) Code() string {
	return a.Name
}

// Target is the status an order ends in once the action succeeds.
func (a Action) Target() Status {
	switch a {
	case Actions.Accept:
		return waiting
	case Actions.Cancel:
		return cancel
	case Actions.Done:
		return ready
	default:
		return Status{}
	}
}

type ActionEnum struct {
	Accept Action
	Cancel Action
	Done   Action
}

var Actions = ActionEnum{
	Accept: Action{Name: "accept"},
	Cancel: Action{Name: "cancel"},
	Done:   Action{Name: "done"},
}

var AllActions = []Action{
	Actions.Accept,
	Actions.Cancel,
	Actions.Done,
}

// ActionByName returns the action for a given name, or nil if not found
func ActionByName(name string) *Action {
	for _, a := range AllActions {
		if a.Name == name {
			return &a
		}
	}
	return nil
}
