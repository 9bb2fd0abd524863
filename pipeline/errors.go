package pipeline

import "fmt"

const (
	StageRead    = "read"
	StageFormat  = "format"
	StageSave    = "save markup"
	StageRender  = "render"
	StageCount   = "count"
	StageOverlay = "overlay"
	StageMerge   = "merge"
	StageAppend  = "append"
)

// StageError reports the chapter and pipeline step a failure happened in.
type StageError struct {
	Chapter string
	Stage   string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("chapter %s: %s: %v", e.Chapter, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
