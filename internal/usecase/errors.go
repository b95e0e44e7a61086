package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// handlerでステータスとメッセージに変換される
type HTTPError struct {
	Status  int
	Message string
	// 500のときの原因。ログにだけ出してレスポンスには含めない
	Cause error
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Cause }

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// DBエラーなど
func internalError(cause error) error {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		Cause:   cause,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
