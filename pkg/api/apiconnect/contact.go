package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/pkg/api"
)

// ContactServiceName is the fully-qualified name of the ContactService.
const ContactServiceName = "splitx.v1.ContactService"

const (
	// ContactServiceListContactsProcedure is the fully-qualified name of the ContactService's ListContacts RPC.
	ContactServiceListContactsProcedure = "/splitx.v1.ContactService/ListContacts"
)

// ContactServiceHandler is implemented by the server side of splitx.v1.ContactService.
type ContactServiceHandler interface {
	ListContacts(context.Context, *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error)
}

// NewContactServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewContactServiceHandler(svc ContactServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := newRoute(ContactServiceName)
	r.handle(ContactServiceListContactsProcedure, connect.NewUnaryHandler(ContactServiceListContactsProcedure, svc.ListContacts, opts...))
	return r.build()
}

// ContactServiceClient is a client for the splitx.v1.ContactService service.
type ContactServiceClient interface {
	ListContacts(context.Context, *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error)
}

// NewContactServiceClient constructs a client for the splitx.v1.ContactService service.
func NewContactServiceClient(httpClient HTTPClient, baseURL string, opts ...connect.ClientOption) ContactServiceClient {
	opts = clientOptions(opts)
	return &contactServiceClient{
		listContacts: connect.NewClient[api.ListContactsRequest, api.ListContactsResponse](httpClient, procedureURL(baseURL, ContactServiceListContactsProcedure), opts...),
	}
}

type contactServiceClient struct {
	listContacts *connect.Client[api.ListContactsRequest, api.ListContactsResponse]
}

func (c *contactServiceClient) ListContacts(ctx context.Context, req *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error) {
	return c.listContacts.CallUnary(ctx, req)
}
