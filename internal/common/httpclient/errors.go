package httpclient

import (
	"encoding/json"

	pkgerrors "codearena/pkg/errors"
)

// detailBody is the error shape the backend framework emits.
type detailBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Detail extracts the "detail" field of an error body, if the body has one.
func Detail(body []byte) (string, bool) {
	var parsed detailBody
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Detail) == 0 {
		return "", false
	}
	var text string
	if err := json.Unmarshal(parsed.Detail, &text); err == nil {
		return text, true
	}
	return string(parsed.Detail), true
}

// StatusError converts a non-2xx response into a transport error carrying the raw body text.
func StatusError(action string, status int, body []byte) *pkgerrors.Error {
	err := pkgerrors.UpstreamError(action, status, string(body))
	if detail, ok := Detail(body); ok {
		err.WithDetail("detail", detail)
	}
	if status == 429 {
		err.WithDetail("rate_limited", true)
	}
	return err
}

// RequestError converts a failure to send or read a request.
func RequestError(action string, err error) error {
	if ctxErr := pkgerrors.FromContext(err); ctxErr != err {
		return ctxErr
	}
	return pkgerrors.Wrapf(err, pkgerrors.UpstreamRequestFailed, "%s: %v", action, err)
}
