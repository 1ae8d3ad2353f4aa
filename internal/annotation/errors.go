package annotation

import "fmt"

// UnknownShapeError reports a marker shape that is not recognized.
type UnknownShapeError struct {
	Shape string
}

func (e *UnknownShapeError) Error() string {
	return fmt.Sprintf("unknown marker shape %q", e.Shape)
}

// UnknownKindError reports an annotation type that is not recognized.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown annotation type %q", e.Kind)
}

// MalformedAnnotationError reports an annotation whose fields are unusable.
type MalformedAnnotationError struct {
	Reason string
}

func (e *MalformedAnnotationError) Error() string {
	return "malformed annotation: " + e.Reason
}
