// panic.go converts recovered panic values into errors.

package eventsink

import (
	"fmt"
	"runtime/debug"
)

// PanicError is delivered to error handlers when a listener panics.
type PanicError struct {
	// Value is the value passed to panic.
	Value any

	// Stack is the goroutine stack captured at recovery.
	Stack string
}

func newPanicError(recovered any) *PanicError {
	return &PanicError{
		Value: recovered,
		Stack: string(debug.Stack()),
	}
}

func (e *PanicError) Error() string {
	return "panic: " + formatRecovered(e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
