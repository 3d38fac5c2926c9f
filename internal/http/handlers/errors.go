// Package handlers defines the user-facing messages returned by API endpoints.
//
// Error categories are not listed here: every error envelope is keyed by the
// standard status text of its HTTP status (see fail), so a 404 always reads
// {"error": {"Not Found": "..."}}.
//
// Example response:
//
//	HTTP/1.1 404 Not Found
//	{"error": {"Not Found": "Sorry a cafe with that id was not found in the database."}}
package handlers

const (
	MsgCafeNotFound     = "Sorry a cafe with that id was not found in the database."
	MsgNoCafes          = "Sorry, there are no cafes in the database."
	MsgMissingLocation  = "Missing required query parameter: loc."
	MsgMissingNewPrice  = "Missing required query parameter: new_price."
	MsgRouteNotFound    = "Sorry, that page does not exist."
	MsgMethodNotAllowed = "Sorry, that method is not allowed for this endpoint."
)
