package tools

import "io"

// DrainAndClose fully consumes and closes a response body so the underlying
// connection can be reused.
func DrainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
