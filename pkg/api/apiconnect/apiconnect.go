// Package apiconnect wires the splitx.v1 services to Connect: procedure
// names, HTTP handlers and typed clients.
package apiconnect

import (
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/pkg/api"
)

// HTTPClient is the interface Connect clients need.
type HTTPClient = connect.HTTPClient

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
}

// route collects a service's unary handlers behind its path prefix.
type route struct {
	prefix string
	mux    *http.ServeMux
}

func newRoute(service string) *route {
	return &route{prefix: "/" + service + "/", mux: http.NewServeMux()}
}

func (r *route) handle(procedure string, h http.Handler) {
	r.mux.Handle(procedure, h)
}

func (r *route) build() (string, http.Handler) {
	return r.prefix, r.mux
}

func procedureURL(baseURL, procedure string) string {
	return strings.TrimRight(baseURL, "/") + procedure
}
