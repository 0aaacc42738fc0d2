// Package element defines the eight damage affinities and the asymmetric
// effectiveness relations between them.
package element

import "fmt"

// Element is one of the eight fixed damage/resistance categories.
type Element string

const (
	Fire      Element = "Fire"
	Ice       Element = "Ice"
	Lightning Element = "Lightning"
	Water     Element = "Water"
	Earth     Element = "Earth"
	Wind      Element = "Wind"
	Shadow    Element = "Shadow"
	Light     Element = "Light"
)

// All returns the eight elements in canonical order.
//
// Postcondition: Returns a fresh slice of length 8.
func All() []Element {
	return []Element{Fire, Ice, Lightning, Water, Earth, Wind, Shadow, Light}
}

// Valid reports whether e is one of the eight declared elements.
func (e Element) Valid() bool {
	switch e {
	case Fire, Ice, Lightning, Water, Earth, Wind, Shadow, Light:
		return true
	default:
		return false
	}
}

// Parse converts a string into an Element.
//
// Postcondition: Returns the Element or an error naming the invalid input.
func Parse(s string) (Element, error) {
	e := Element(s)
	if !e.Valid() {
		return "", fmt.Errorf("unknown element %q", s)
	}
	return e, nil
}
