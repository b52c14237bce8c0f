package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/pkg/api"
)

// DashboardServiceName is the fully-qualified name of the DashboardService.
const DashboardServiceName = "splitx.v1.DashboardService"

const (
	// DashboardServiceGetUserBalancesProcedure is the fully-qualified name of the DashboardService's GetUserBalances RPC.
	DashboardServiceGetUserBalancesProcedure = "/splitx.v1.DashboardService/GetUserBalances"
	// DashboardServiceGetUserGroupsProcedure is the fully-qualified name of the DashboardService's GetUserGroups RPC.
	DashboardServiceGetUserGroupsProcedure = "/splitx.v1.DashboardService/GetUserGroups"
	// DashboardServiceGetTotalSpentProcedure is the fully-qualified name of the DashboardService's GetTotalSpent RPC.
	DashboardServiceGetTotalSpentProcedure = "/splitx.v1.DashboardService/GetTotalSpent"
	// DashboardServiceGetMonthlySpendingProcedure is the fully-qualified name of the DashboardService's GetMonthlySpending RPC.
	DashboardServiceGetMonthlySpendingProcedure = "/splitx.v1.DashboardService/GetMonthlySpending"
)

// DashboardServiceHandler is implemented by the server side of splitx.v1.DashboardService.
type DashboardServiceHandler interface {
	GetUserBalances(context.Context, *connect.Request[api.GetUserBalancesRequest]) (*connect.Response[api.GetUserBalancesResponse], error)
	GetUserGroups(context.Context, *connect.Request[api.GetUserGroupsRequest]) (*connect.Response[api.GetUserGroupsResponse], error)
	GetTotalSpent(context.Context, *connect.Request[api.GetTotalSpentRequest]) (*connect.Response[api.GetTotalSpentResponse], error)
	GetMonthlySpending(context.Context, *connect.Request[api.GetMonthlySpendingRequest]) (*connect.Response[api.GetMonthlySpendingResponse], error)
}

// NewDashboardServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewDashboardServiceHandler(svc DashboardServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := newRoute(DashboardServiceName)
	r.handle(DashboardServiceGetUserBalancesProcedure, connect.NewUnaryHandler(DashboardServiceGetUserBalancesProcedure, svc.GetUserBalances, opts...))
	r.handle(DashboardServiceGetUserGroupsProcedure, connect.NewUnaryHandler(DashboardServiceGetUserGroupsProcedure, svc.GetUserGroups, opts...))
	r.handle(DashboardServiceGetTotalSpentProcedure, connect.NewUnaryHandler(DashboardServiceGetTotalSpentProcedure, svc.GetTotalSpent, opts...))
	r.handle(DashboardServiceGetMonthlySpendingProcedure, connect.NewUnaryHandler(DashboardServiceGetMonthlySpendingProcedure, svc.GetMonthlySpending, opts...))
	return r.build()
}

// DashboardServiceClient is a client for the splitx.v1.DashboardService service.
type DashboardServiceClient interface {
	GetUserBalances(context.Context, *connect.Request[api.GetUserBalancesRequest]) (*connect.Response[api.GetUserBalancesResponse], error)
	GetUserGroups(context.Context, *connect.Request[api.GetUserGroupsRequest]) (*connect.Response[api.GetUserGroupsResponse], error)
	GetTotalSpent(context.Context, *connect.Request[api.GetTotalSpentRequest]) (*connect.Response[api.GetTotalSpentResponse], error)
	GetMonthlySpending(context.Context, *connect.Request[api.GetMonthlySpendingRequest]) (*connect.Response[api.GetMonthlySpendingResponse], error)
}

// NewDashboardServiceClient constructs a client for the splitx.v1.DashboardService service.
func NewDashboardServiceClient(httpClient HTTPClient, baseURL string, opts ...connect.ClientOption) DashboardServiceClient {
	opts = clientOptions(opts)
	return &dashboardServiceClient{
		getUserBalances:    connect.NewClient[api.GetUserBalancesRequest, api.GetUserBalancesResponse](httpClient, procedureURL(baseURL, DashboardServiceGetUserBalancesProcedure), opts...),
		getUserGroups:      connect.NewClient[api.GetUserGroupsRequest, api.GetUserGroupsResponse](httpClient, procedureURL(baseURL, DashboardServiceGetUserGroupsProcedure), opts...),
		getTotalSpent:      connect.NewClient[api.GetTotalSpentRequest, api.GetTotalSpentResponse](httpClient, procedureURL(baseURL, DashboardServiceGetTotalSpentProcedure), opts...),
		getMonthlySpending: connect.NewClient[api.GetMonthlySpendingRequest, api.GetMonthlySpendingResponse](httpClient, procedureURL(baseURL, DashboardServiceGetMonthlySpendingProcedure), opts...),
	}
}

type dashboardServiceClient struct {
	getUserBalances    *connect.Client[api.GetUserBalancesRequest, api.GetUserBalancesResponse]
	getUserGroups      *connect.Client[api.GetUserGroupsRequest, api.GetUserGroupsResponse]
	getTotalSpent      *connect.Client[api.GetTotalSpentRequest, api.GetTotalSpentResponse]
	getMonthlySpending *connect.Client[api.GetMonthlySpendingRequest, api.GetMonthlySpendingResponse]
}

func (c *dashboardServiceClient) GetUserBalances(ctx context.Context, req *connect.Request[api.GetUserBalancesRequest]) (*connect.Response[api.GetUserBalancesResponse], error) {
	return c.getUserBalances.CallUnary(ctx, req)
}

func (c *dashboardServiceClient) GetUserGroups(ctx context.Context, req *connect.Request[api.GetUserGroupsRequest]) (*connect.Response[api.GetUserGroupsResponse], error) {
	return c.getUserGroups.CallUnary(ctx, req)
}

func (c *dashboardServiceClient) GetTotalSpent(ctx context.Context, req *connect.Request[api.GetTotalSpentRequest]) (*connect.Response[api.GetTotalSpentResponse], error) {
	return c.getTotalSpent.CallUnary(ctx, req)
}

func (c *dashboardServiceClient) GetMonthlySpending(ctx context.Context, req *connect.Request[api.GetMonthlySpendingRequest]) (*connect.Response[api.GetMonthlySpendingResponse], error) {
	return c.getMonthlySpending.CallUnary(ctx, req)
}
