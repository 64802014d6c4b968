package analyst

import "errors"

// ErrModelInvocation wraps transport or empty-response failures from the
// model client; it is the only pipeline error surfaced with an error status.
var ErrModelInvocation = errors.New("model invocation failed")

const (
	ErrorCodeInputDecode     = "INPUT_DECODE_ERROR"
	ErrorCodeConfig          = "CONFIG_ERROR"
	ErrorCodeModelInvocation = "MODEL_INVOCATION_ERROR"
)
