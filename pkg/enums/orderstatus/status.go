package orderstatus

import (
	"strings"
)

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

// Label is the kitchen-facing name. Waiting orders are shown as "Cooking".
func (s Status) Label() string {
	if s.Name == Statuses.Waiting.Name {
		return "Cooking"
	}
	if len(s.Name) == 0 {
		return ""
	}
	return strings.ToUpper(s.Name[:1]) + s.Name[1:]
}

func (s Status) IsZero() bool {
	return s.Name == ""
}

type Enum struct {
	Draft   Status
	Waiting Status
	Ready   Status
	Cancel  Status
}

var Statuses = Enum{
	Draft:   Status{Name: "draft"},
	Waiting: Status{Name: "waiting"},
	Ready:   Status{Name: "ready"},
	Cancel:  Status{Name: "cancel"},
}

var All = []Status{
	Statuses.Draft,
	Statuses.Waiting,
	Statuses.Ready,
	Statuses.Cancel,
}

// Stages are the lanes shown on the kitchen board, in display order.
var Stages = []Status{
	Statuses.Draft,
	Statuses.Waiting,
	Statuses.Ready,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// StageByName returns the board stage for a given name, or nil if it is not a lane.
func StageByName(name string) *Status {
	for _, s := range Stages {
		if s.Name == name {
			return &s
		}
	}
	return nil
}
