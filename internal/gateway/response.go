package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// InvalidRequestMessage is returned for any method and route pair that does
// not map to an operation.
const InvalidRequestMessage = "Invalid Request. Make sure you are using the correct method and endpoint"

// Response is the fixed-shape result of every invocation.
type Response struct {
	IsBase64Encoded   bool                `json:"isBase64Encoded"`
	StatusCode        int                 `json:"statusCode"`
	Headers           map[string]string   `json:"headers"`
	MultiValueHeaders map[string][]string `json:"multiValueHeaders"`
	Body              string              `json:"body"`
}

// ErrorBody is the JSON envelope of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func newResponse(status int, body string) Response {
	return Response{
		IsBase64Encoded:   false,
		StatusCode:        status,
		Headers:           map[string]string{},
		MultiValueHeaders: map[string][]string{},
		Body:              body,
	}
}

// JSON returns a response whose body is v encoded as JSON. A value that cannot
// be encoded yields a 500 response.
func JSON(status int, v any) Response {
	data, err := json.Marshal(v)
	if err != nil {
		return Failure(http.StatusInternalServerError, "Could not encode response", err)
	}
	return newResponse(status, string(data))
}

// Message returns an error response carrying only a human-readable message.
func Message(status int, message string) Response {
	return JSON(status, ErrorBody{Message: message})
}

// Failure returns an error response carrying a message and the detail of err.
func Failure(status int, message string, err error) Response {
	body := ErrorBody{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	data, mErr := json.Marshal(body)
	if mErr != nil {
		// ErrorBody only holds strings; this cannot happen in practice.
		return newResponse(status, fmt.Sprintf(`{"message":%q}`, message))
	}
	return newResponse(status, string(data))
}

// InvalidRequest is the response for requests that match no operation.
func InvalidRequest() Response {
	return Message(http.StatusBadRequest, InvalidRequestMessage)
}

// Recovered converts a recovered panic value into a 400 response.
func Recovered(r any) Response {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	return Failure(http.StatusBadRequest, "Unexpected error", err)
}
