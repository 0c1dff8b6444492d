package model

import (
	"fmt"
	"strings"
)

// Action is the kind of play recorded by an event.
type Action string

// Recognised actions.
const (
	ServePoint    Action = "serve_point"
	ServeError    Action = "serve_error"
	AttackPoint   Action = "attack_point"
	AttackError   Action = "attack_error"
	ReceptionGood Action = "reception_good"
	ReceptionBad  Action = "reception_bad"
)

// Category groups actions that share an efficiency ratio.
type Category string

// Action categories.
const (
	CategoryServe     Category = "serve"
	CategoryAttack    Category = "attack"
	CategoryReception Category = "reception"
)

// Kind classifies an action as a point, an error or a reception.
type Kind string

// Action kinds.
const (
	KindPoint     Kind = "point"
	KindError     Kind = "error"
	KindReception Kind = "reception"
)

// Actions lists every action in display order.
func Actions() []Action {
	return []Action{ServePoint, ServeError, AttackPoint, AttackError, ReceptionGood, ReceptionBad}
}

// Categories lists every ratio category in display order.
func Categories() []Category {
	return []Category{CategoryAttack, CategoryServe, CategoryReception}
}

// ParseAction converts s into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.TrimSpace(s))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
	return a, nil
}

// Valid reports whether a is one of the recognised actions.
func (a Action) Valid() bool {
	switch a {
	case ServePoint, ServeError, AttackPoint, AttackError, ReceptionGood, ReceptionBad:
		return true
	}
	return false
}

// Category returns the ratio the action contributes to.
func (a Action) Category() Category {
	switch a {
	case ServePoint, ServeError:
		return CategoryServe
	case AttackPoint, AttackError:
		return CategoryAttack
	default:
		return CategoryReception
	}
}

// Kind returns whether a scored, erred or was a reception.
func (a Action) Kind() Kind {
	switch {
	case strings.Contains(string(a), "point"):
		return KindPoint
	case strings.Contains(string(a), "error"):
		return KindError
	default:
		return KindReception
	}
}

// Positive reports whether a counts in the numerator of its ratio.
func (a Action) Positive() bool {
	return a == ServePoint || a == AttackPoint || a == ReceptionGood
}

func (a Action) String() string { return string(a) }
