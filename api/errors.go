package api

import "fmt"

// GenericErrorMessage はサービスからエラーメッセージが得られなかった場合の文言です
const GenericErrorMessage = "Failed to reach API."

// APIError はTracker APIの呼び出し失敗を表します
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"code"`
	Kind        string `json:"kind"`
	Message     string `json:"error"`
	Requirement string `json:"requirement"`

	cause error
}

// Error はサービスのメッセージ、無ければ汎用メッセージを返します
func (e *APIError) Error() string {
	if e.Message == "" {
		return GenericErrorMessage
	}
	return e.Message
}

// Unwrap は通信エラーなどの元のエラーを返します
func (e *APIError) Unwrap() error {
	return e.cause
}

// Detail はログ向けの詳細な説明を返します
func (e *APIError) Detail() string {
	s := fmt.Sprintf("status=%d code=%s message=%q", e.StatusCode, e.Code, e.Error())
	if e.Requirement != "" {
		s += fmt.Sprintf(" requirement=%q", e.Requirement)
	}
	if e.cause != nil {
		s += fmt.Sprintf(" cause=%v", e.cause)
	}
	return s
}

func transportError(err error) *APIError {
	return &APIError{Message: GenericErrorMessage, cause: err}
}
