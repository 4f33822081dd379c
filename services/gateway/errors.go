package gateway

import (
	"context"
	"errors"
	"fmt"
)

// ErrNetwork marks transport failures where no response was received.
var ErrNetwork = errors.New("network failure")

// RequestFailed is returned for any non-2xx response. Data holds the parsed
// JSON body, or the body text when the response was not JSON.
type RequestFailed struct {
	Status int
	Data   interface{}
}

func (e *RequestFailed) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("request failed: status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("request failed: status %d", e.Status)
}

// Message returns the server-supplied "error" field, if any.
func (e *RequestFailed) Message() string {
	body, ok := e.Data.(map[string]interface{})
	if !ok {
		return ""
	}
	msg, _ := body["error"].(string)
	return msg
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var rf *RequestFailed
	if errors.As(err, &rf) {
		return rf.Status
	}
	return 0
}

// ServerMessage returns the server's error text for err, or "".
func ServerMessage(err error) string {
	var rf *RequestFailed
	if errors.As(err, &rf) {
		return rf.Message()
	}
	return ""
}

// IsCancelled reports an aborted request. Callers treat it like a superseded one.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
