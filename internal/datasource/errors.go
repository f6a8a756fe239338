package datasource

import (
	"errors"
	"fmt"
	"net/http"
)

// User-facing messages for the data-absent and failure cases.
const (
	MsgNoGraph        = "No valid graph data found for this Acknowledgement No."
	MsgNoTransactions = "No transactions found for this Acknowledgement No."
	MsgNoHolds        = "No put-on-hold transactions found for this complaint."
	MsgHoldsFailed    = "Failed to load put-on-hold transactions."
	MsgGraphNotFound  = "Graph data not found. Please check the Acknowledgement No."
	MsgServerError    = "Server error occurred while processing graph data. Please contact support."
	MsgLoadFailed     = "Error loading graph data. Please try again later."
	MsgTxnNotFound    = "Transaction not found"
)

// ErrReadOnly is returned by sources that cannot persist KYC records.
var ErrReadOnly = errors.New("source is read-only")

// NoDataError reports that the server answered but had nothing to show.
// It is informational, not a failure.
type NoDataError struct {
	Message string
}

func (e *NoDataError) Error() string {
	return e.Message
}

// IsNoData reports whether err is a data-absent condition.
func IsNoData(err error) bool {
	var nd *NoDataError
	return errors.As(err, &nd)
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.Op, e.Code, http.StatusText(e.Code))
}

// NotFound reports a 404.
func (e *StatusError) NotFound() bool {
	return e.Code == http.StatusNotFound
}

// ServerError reports a 5xx.
func (e *StatusError) ServerError() bool {
	return e.Code >= 500
}

// KYCError carries the server's message for a rejected KYC save.
type KYCError struct {
	Message string
}

func (e *KYCError) Error() string {
	if e.Message == "" {
		return "Error saving KYC"
	}
	return "Error saving KYC: " + e.Message
}

// UserMessage turns a graph load error into the text shown in place of the
// tree.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var nd *NoDataError
	if errors.As(err, &nd) {
		return nd.Message
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.ServerError():
			return MsgServerError
		case se.NotFound():
			return MsgGraphNotFound
		}
	}
	var ke *KYCError
	if errors.As(err, &ke) {
		return ke.Error()
	}
	return MsgLoadFailed
}
