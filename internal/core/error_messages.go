package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. When users encounter errors, they can quote the error code to
// support staff for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Split the export into smaller files
//	          Patterns: "file too large"
//
//	FILE002 - Unreadable file: The file could not be parsed
//	          Action: Check the file opens in a spreadsheet tool and re-export it
//	          Patterns: "unreadable"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a file to upload
//	          Patterns: "no file provided"
//
//	FILE006 - Unsupported format: File type is not supported
//	          Action: Upload a CSV, XLSX, XLS or XLSB file
//	          Patterns: "unsupported file format"
//
//	FILE007 - Sheet required: The workbook sheet was not chosen
//	          Action: List the sheets first, then choose one
//	          Patterns: "sheet name required"
//
//	FILE008 - Sheet not found: The chosen sheet is not in the workbook
//	          Action: Pick one of the listed sheet names
//	          Patterns: "sheet not found"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL004 - Missing columns: None of the layer's columns are in the file
//	         Action: Check the selected layer matches the export
//	         Patterns: "required columns not found"
//
//	VAL007 - Unknown layer: The layer is not configured
//	         Action: Choose SPF, Closed or Reopen
//	         Patterns: "unknown layer"
//
//	VAL008 - Invalid request: Request parameters are invalid
//	         Action: Check the request fields and try again
//	         Patterns: "invalid request"
//
//	VAL009 - Output unavailable: The requested output was not produced
//	         Action: Check the run warnings, or download the full archive
//	         Patterns: "artifact not available"
//
// # Run Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many runs in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many runs"
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the reference at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the export into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unreadable",
		msg: UserMessage{
			Message: "The file could not be parsed",
			Action:  "Check the file opens in a spreadsheet tool and re-export it",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "File type is not supported",
			Action:  "Upload a CSV, XLSX, XLS or XLSB file",
			Code:    "FILE006",
		},
	},
	{
		pattern: "sheet name required",
		msg: UserMessage{
			Message: "The workbook sheet was not chosen",
			Action:  "List the sheets first, then choose one",
			Code:    "FILE007",
		},
	},
	{
		pattern: "sheet not found",
		msg: UserMessage{
			Message: "The chosen sheet is not in the workbook",
			Action:  "Pick one of the listed sheet names",
			Code:    "FILE008",
		},
	},

	// =========================================================================
	// Validation Errors
	// =========================================================================
	{
		pattern: "required columns not found",
		msg: UserMessage{
			Message: "Required columns not found in file",
			Action:  "Check the selected layer matches the export",
			Code:    "VAL004",
		},
	},
	{
		pattern: "unknown layer",
		msg: UserMessage{
			Message: "Unknown layer",
			Action:  "Choose SPF, Closed or Reopen",
			Code:    "VAL007",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "Request parameters are invalid",
			Action:  "Check the request fields and try again",
			Code:    "VAL008",
		},
	},
	{
		pattern: "artifact not available",
		msg: UserMessage{
			Message: "The requested output was not produced",
			Action:  "Check the run warnings, or download the full archive",
			Code:    "VAL009",
		},
	},

	// =========================================================================
	// Run Errors
	// =========================================================================
	{
		pattern: "too many runs",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Rate Limiting
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := &SchemaMismatchError{Layer: LayerSPF}
//	msg := MapError(err)
//	// msg.Code == "VAL004"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether an error matches a known pattern, as
// opposed to the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message. The
// original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a
// user-friendly message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
