package kit

import (
	"encoding/json"
	"errors"
	"net/http"
)

const defaultErrorMessage = "Internal Server Error"

type FailureResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode,omitempty"`
	Message    string `json:"message"`
}

// HTTPError carries a status code for WriteError.
type HTTPError struct {
	Status  int
	Message string
}

func NewHTTPError(status int, msg string) *HTTPError {
	return &HTTPError{Status: status, Message: msg}
}

func (e *HTTPError) Error() string { return e.Message }

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteFailure is the handler-local failure body: {success:false, message}.
func WriteFailure(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, FailureResponse{Message: msg})
}

// WriteError reports an error that escaped a handler. Only *HTTPError messages
// reach the client; anything else becomes a 500 with the default message.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := defaultErrorMessage

	var he *HTTPError
	if errors.As(err, &he) {
		if he.Status != 0 {
			status = he.Status
		}
		if he.Message != "" {
			msg = he.Message
		}
	}

	WriteJSON(w, status, FailureResponse{StatusCode: status, Message: msg})
}

func NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, NewHTTPError(http.StatusNotFound, "Not Found"))
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
}
