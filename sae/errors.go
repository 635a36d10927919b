package sae

import "fmt"

// ShapeError reports a dimension or hyperparameter mismatch detected before
// any computation runs.
type ShapeError struct {
	Op  string
	Msg string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("sae: %s: %s", e.Op, e.Msg)
}

func shapeErrorf(op, format string, args ...any) error {
	return &ShapeError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// LoadError reports a failure to reconstruct a model from disk: missing file,
// unreadable blob, or stored tensor shapes disagreeing with the declared
// hyperparameters. Callers are expected to treat the subsystem as unavailable
// and carry on.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("sae: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ResourceError reports that a batched computation could not be sized within
// available resources. The whole batch is aborted; retry with a smaller chunk.
type ResourceError struct {
	Op  string
	Msg string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("sae: %s: %s", e.Op, e.Msg)
}
