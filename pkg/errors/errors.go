package errors

import (
	"errors"
	"fmt"
)

// Error represents a guidl error with context
type Error struct {
	// Code is the error code (e.g., "LAYOUT_PARSE_ERROR")
	Code string
	// Message is the human-readable error message
	Message string
	// Cause describes why the error occurred
	Cause string
	// Action suggests what the user should do
	Action string
	// Underlying is the wrapped error
	Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates a new Error
func New(code, message, cause, action string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Action:  action,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code, message, cause, action string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Cause:      cause,
		Action:     action,
		Underlying: err,
	}
}

// Common error codes
const (
	// Input file errors
	ErrCodeFileNotFound = "FILE_NOT_FOUND"
	ErrCodeFileEmpty    = "FILE_EMPTY"
	ErrCodeFileRead     = "FILE_READ_ERROR"

	// Layout description errors
	ErrCodeLayoutParse = "LAYOUT_PARSE_ERROR"

	// Settings errors
	ErrCodeSettingsParse      = "SETTINGS_PARSE_ERROR"
	ErrCodeSettingsValidation = "SETTINGS_VALIDATION_ERROR"

	// Tooling errors
	ErrCodeHistory     = "HISTORY_ERROR"
	ErrCodeRunNotFound = "RUN_NOT_FOUND"
	ErrCodeExport      = "EXPORT_ERROR"
	ErrCodeWatch       = "WATCH_ERROR"
)

// Common error constructors

// FileNotFound creates a file not found error
func FileNotFound(path string) *Error {
	return New(
		ErrCodeFileNotFound,
		fmt.Sprintf("File not found: %s", path),
		"The specified file does not exist",
		"Check the file path and try again",
	)
}

// FileEmpty creates an empty input file error
func FileEmpty(path string) *Error {
	return New(
		ErrCodeFileEmpty,
		fmt.Sprintf("File is empty: %s", path),
		"The layout description file contains no data",
		"Select a file that contains a Window description",
	)
}

// FileRead creates a file read error
func FileRead(path string, err error) *Error {
	return Wrap(
		err,
		ErrCodeFileRead,
		fmt.Sprintf("Failed to read file: %s", path),
		"Permission denied or file is not readable",
		"Check file permissions with 'ls -l' and ensure the file is readable",
	)
}

// LayoutParseError creates a layout description parse error
func LayoutParseError(name string, err error) *Error {
	return Wrap(
		err,
		ErrCodeLayoutParse,
		fmt.Sprintf("Failed to parse layout description: %s", name),
		"The layout description contains invalid syntax",
		"Fix the reported line and parse the file again",
	)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// HasCode reports whether err's chain contains an *Error with the given code
func HasCode(err error, code string) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Code == code {
				return true
			}
			err = e.Underlying
			continue
		}
		return false
	}
	return false
}
