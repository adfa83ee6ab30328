package customHttpClient

import (
	"net/http"
	"time"

	"github.com/mkrish/PartnerDocsAPI/internal/config"
)

// One pooled transport for every outbound collaborator call; fresh clients
// per call would re-handshake TLS on every request.
var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}
