package control

import "time"

// Result is the outcome of one controller operation. FailureDetail is set if
// and only if Succeeded is false. Duration is stamped by the dispatcher.
type Result struct {
	Succeeded     bool          `json:"succeeded"`
	Message       string        `json:"message"`
	Duration      time.Duration `json:"duration"`
	Output        string        `json:"output,omitempty"`
	FailureDetail string        `json:"failure_detail,omitempty"`
}

func ok(message string) Result {
	return Result{Succeeded: true, Message: message}
}

func okOutput(message, output string) Result {
	return Result{Succeeded: true, Message: message, Output: output}
}

func fail(message, detail string) Result {
	if detail == "" {
		detail = message
	}
	return Result{Succeeded: false, Message: message, FailureDetail: detail}
}
