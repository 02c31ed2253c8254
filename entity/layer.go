package entity

import (
	"errors"
	"fmt"
)

// Layer is a single film in the stack: a material identifier and a
// physical thickness in nanometers. Zero thickness is valid and
// contributes no phase.
type Layer struct {
	Material  string
	Thickness float64
}

func NewLayer(material string, thickness float64) (Layer, error) {
	if material == "" {
		return Layer{}, errors.New("material is empty")
	}
	if thickness < 0 {
		return Layer{}, fmt.Errorf("negative thickness: %g", thickness)
	}
	return Layer{Material: material, Thickness: thickness}, nil
}

// Stack is an ordered sequence of layers. Index 0 is nearest the
// incident medium, the last layer is nearest the substrate.
type Stack []Layer

// Clone returns an independent copy of the stack.
func (s Stack) Clone() Stack {
	out := make(Stack, len(s))
	copy(out, s)
	return out
}

// WithThickness returns a copy of the stack with layer i (0-based)
// set to the given thickness. The receiver is not modified.
func (s Stack) WithThickness(i int, thickness float64) Stack {
	out := s.Clone()
	out[i].Thickness = thickness
	return out
}
