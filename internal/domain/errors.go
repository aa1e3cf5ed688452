package domain

import "errors"

// ErrInvalidTransition is returned by entity transition methods when the
// requested transition is not legal from the current state. State fields
// are only ever mutated through those methods, so no entity can hold a
// status outside its state machine.
var ErrInvalidTransition = errors.New("invalid state transition")
