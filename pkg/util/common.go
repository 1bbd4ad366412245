package util

import (
	"io"
	"log/slog"
)

// CloseLogged closes c and logs, rather than returns, a failure. It is
// meant for deferred closes of read-only inputs.
func CloseLogged(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Error("close", "name", name, "err", err)
	}
}
