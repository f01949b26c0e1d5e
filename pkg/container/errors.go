package container

import "github.com/appwire/framework/pkg/errors"

var newContainerCode = errors.WithPrefix("CONTAINER")

var (
	ErrProvider       = newContainerCode().New("provider {{.provider}} failed")
	ErrHookStart      = newContainerCode().New("hook {{.hook}} failed to start")
	ErrTaskStart      = newContainerCode().New("task {{.task}} failed to start")
	ErrAlreadyStarted = newContainerCode().New("container is already started")
	ErrRelease        = newContainerCode().New("release of {{.resource}} failed")
)

var newLookupCode = errors.WithPrefix("LOOKUP")

var (
	ErrHookNotFound     = newLookupCode().New("no submitted hook satisfies {{.capability}}")
	ErrResourceNotFound = newLookupCode().New("no provided resource satisfies {{.capability}}")
	ErrTaskNotFound     = newLookupCode().New("no submitted task named {{.name}}")
	ErrSettingsNotFound = newLookupCode().New("settings carry no section of type {{.type}}")
)

var newTaskCode = errors.WithPrefix("TASK")

var (
	ErrTaskNotBound    = newTaskCode().New("task {{.task}} is not bound to a container")
	ErrTaskNotStarted  = newTaskCode().New("task {{.task}} was never started")
	ErrTaskPending     = newTaskCode().New("task {{.task}} is still running")
	ErrTaskCancelled   = newTaskCode().New("task {{.task}} was cancelled")
	ErrTaskFailed      = newTaskCode().New("task {{.task}} failed")
	ErrTaskStopTimeout = newTaskCode().New("task {{.task}} did not stop in time")
)

var newSettingsCode = errors.WithPrefix("SETTINGS")

var (
	ErrSettingsLoad    = newSettingsCode().New("could not load settings from {{.source}}")
	ErrSettingsInvalid = newSettingsCode().New("invalid settings: {{.reason}}")
)
