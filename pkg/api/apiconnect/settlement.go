package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = "splitx.v1.SettlementService"

const (
	// SettlementServiceCreateSettlementProcedure is the fully-qualified name of the SettlementService's CreateSettlement RPC.
	SettlementServiceCreateSettlementProcedure = "/splitx.v1.SettlementService/CreateSettlement"
	// SettlementServiceGetSettlementDataProcedure is the fully-qualified name of the SettlementService's GetSettlementData RPC.
	SettlementServiceGetSettlementDataProcedure = "/splitx.v1.SettlementService/GetSettlementData"
)

// SettlementServiceHandler is implemented by the server side of splitx.v1.SettlementService.
type SettlementServiceHandler interface {
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	GetSettlementData(context.Context, *connect.Request[api.GetSettlementDataRequest]) (*connect.Response[api.GetSettlementDataResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := newRoute(SettlementServiceName)
	r.handle(SettlementServiceCreateSettlementProcedure, connect.NewUnaryHandler(SettlementServiceCreateSettlementProcedure, svc.CreateSettlement, opts...))
	r.handle(SettlementServiceGetSettlementDataProcedure, connect.NewUnaryHandler(SettlementServiceGetSettlementDataProcedure, svc.GetSettlementData, opts...))
	return r.build()
}

// SettlementServiceClient is a client for the splitx.v1.SettlementService service.
type SettlementServiceClient interface {
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	GetSettlementData(context.Context, *connect.Request[api.GetSettlementDataRequest]) (*connect.Response[api.GetSettlementDataResponse], error)
}

// NewSettlementServiceClient constructs a client for the splitx.v1.SettlementService service.
func NewSettlementServiceClient(httpClient HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	opts = clientOptions(opts)
	return &settlementServiceClient{
		createSettlement:  connect.NewClient[api.CreateSettlementRequest, api.CreateSettlementResponse](httpClient, procedureURL(baseURL, SettlementServiceCreateSettlementProcedure), opts...),
		getSettlementData: connect.NewClient[api.GetSettlementDataRequest, api.GetSettlementDataResponse](httpClient, procedureURL(baseURL, SettlementServiceGetSettlementDataProcedure), opts...),
	}
}

type settlementServiceClient struct {
	createSettlement  *connect.Client[api.CreateSettlementRequest, api.CreateSettlementResponse]
	getSettlementData *connect.Client[api.GetSettlementDataRequest, api.GetSettlementDataResponse]
}

func (c *settlementServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) GetSettlementData(ctx context.Context, req *connect.Request[api.GetSettlementDataRequest]) (*connect.Response[api.GetSettlementDataResponse], error) {
	return c.getSettlementData.CallUnary(ctx, req)
}
