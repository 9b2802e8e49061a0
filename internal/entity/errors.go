package entity

import "errors"

var (
	ErrForbidden          = errors.New("forbidden: access denied")
	ErrUnauthorized       = errors.New("unauthorized: missing or invalid session")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrTaskNotFound       = errors.New("task not found")
	ErrBoardNotFound      = errors.New("board not found")
	ErrColumnNotFound     = errors.New("column not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrInvalidTaskData    = errors.New("invalid task data")
	ErrShareNotFound      = errors.New("share link not found")

	ErrInvalidBoardData   = errors.New("invalid board data")
	ErrColumnNotEmpty     = errors.New("column still has tasks, pass move_to to relocate them")
	ErrInvalidColumnOrder = errors.New("column order must list every column exactly once")

	ErrTitleRequired   = errors.New("task title is required")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrDuplicateTag    = errors.New("tag already exists on this task")
	ErrEmptyTag        = errors.New("tag name is empty")
	ErrEmptyComment    = errors.New("comment has neither text nor images")
	ErrPendingNotFound = errors.New("pending item not found")
	ErrItemNotFound    = errors.New("checklist item not found")
	ErrInvalidDueTime  = errors.New("due time must be HH:MM")

	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrTaskNotPersisted    = errors.New("task has no server identity yet")

	ErrTimerAlreadyRunning = errors.New("timer is already running")
	ErrTimerNotRunning     = errors.New("timer is not running")
	ErrTimerRunning        = errors.New("timer must be stopped first")
	ErrInvalidRounding     = errors.New("invalid rounding policy")
	ErrInvalidHourlyRate   = errors.New("hourly rate must not be negative")
)
