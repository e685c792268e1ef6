package errors

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrMissingLabel        = errors.New("label must be provided")
	ErrEmptyContent        = errors.New("content must be a non-empty string")
	ErrContentTooLong      = errors.New("content exceeds maximum length")
	ErrMissingSession      = errors.New("session id is required")
	ErrInvalidRole         = errors.New("invalid chat role")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrEmptyFile           = errors.New("uploaded file is empty")
	ErrInvalidEncoding     = errors.New("invalid utf-8 payload")
	ErrMalformedCSV        = errors.New("malformed csv payload")
	ErrMalformedDocx       = errors.New("malformed docx payload")
	ErrEmptyPrompt         = errors.New("prompt must be a non-empty string")
	ErrMissingAPIKey       = errors.New("gemini api key is not configured")
	ErrEmptyCompletion     = errors.New("llm returned an empty response")
	ErrUpstreamLLM         = errors.New("llm request failed")
	ErrDuplicateTaskID     = errors.New("duplicate task id")
	ErrMissingTaskFields   = errors.New("task id and name are required")
	ErrInvalidTaskDate     = errors.New("invalid task date")
	ErrPlanExists          = errors.New("plan already exists")
	ErrMissingPlanName     = errors.New("plan name is required")
)
