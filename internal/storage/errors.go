package storage

import "fmt"

// PersistenceError reports that the store medium could not be read or written.
type PersistenceError struct {
	Op   string // "load", "save", "init"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s store at %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) UserMessage() string {
	if e.Op == "save" {
		return fmt.Sprintf("your changes could not be saved to %s (%v). Nothing was lost from the previous save; please retry once the problem is fixed.", e.Path, e.Err)
	}
	return fmt.Sprintf("the store at %s could not be %s (%v)", e.Path, opPast(e.Op), e.Err)
}

func opPast(op string) string {
	switch op {
	case "load":
		return "read"
	case "init":
		return "initialized"
	}
	return op + "ed"
}
