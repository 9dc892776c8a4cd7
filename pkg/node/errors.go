package node

import "fmt"

// Stage is the bring-up stage an error belongs to.
type Stage string

// Stages in bring-up order.
const (
	StageInit        Stage = "initialization"
	StageAssociation Stage = "association"
	StageConnection  Stage = "connection"
	StageIO          Stage = "relay"
)

// Error is a failure of a role, tagged with the stage.
type Error struct {
	Stage Stage
	Err   error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: stage, Err: err}
}
