package publishers

import "github.com/samvad-hq/samvad-httpkit/pkg/httpclient"

// Logger is the logging surface publishers share with the HTTP client.
type Logger = httpclient.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return httpclient.NopLogger{}
	}
	return log
}
