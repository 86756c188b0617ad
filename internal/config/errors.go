package config

import "fmt"

// DeclarationError reports a structurally invalid declaration: duplicate job
// names, unknown dependency targets, cyclic dependencies, malformed blocks.
// A pipeline that produces one is rejected before any job is dispatched.
type DeclarationError struct {
	Detail string
}

func (e *DeclarationError) Error() string {
	return "invalid declaration: " + e.Detail
}

// Declarationf builds a DeclarationError from a format string.
func Declarationf(format string, args ...any) error {
	return &DeclarationError{Detail: fmt.Sprintf(format, args...)}
}
