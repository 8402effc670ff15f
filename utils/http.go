package utils

import (
	"net/http"
	"time"
)

// HTTPClient is the shared client for outbound calls (store server, proxy
// upstream). Timeout covers slow uplinks without hanging requests forever.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
