// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"

	FieldEvent     = "event"
	FieldComponent = "component"

	// Chess / motion fields
	FieldPly      = "ply"
	FieldMove     = "move"
	FieldSquare   = "square"
	FieldSegments = "segments"
	FieldCommands = "commands"
	FieldMode     = "mode"

	// Printer fields
	FieldBaseURL   = "base_url"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldAttempt   = "attempt"

	FieldPath = "path"
)
