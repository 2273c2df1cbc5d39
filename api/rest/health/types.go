package health

import "context"

// anything that can confirm the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
