package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "splitx.v1.GroupService"

const (
	// GroupServiceCreateGroupProcedure is the fully-qualified name of the GroupService's CreateGroup RPC.
	GroupServiceCreateGroupProcedure = "/splitx.v1.GroupService/CreateGroup"
	// GroupServiceGetGroupProcedure is the fully-qualified name of the GroupService's GetGroup RPC.
	GroupServiceGetGroupProcedure = "/splitx.v1.GroupService/GetGroup"
	// GroupServiceListGroupsProcedure is the fully-qualified name of the GroupService's ListGroups RPC.
	GroupServiceListGroupsProcedure = "/splitx.v1.GroupService/ListGroups"
	// GroupServiceGetGroupExpensesProcedure is the fully-qualified name of the GroupService's GetGroupExpenses RPC.
	GroupServiceGetGroupExpensesProcedure = "/splitx.v1.GroupService/GetGroupExpenses"
)

// GroupServiceHandler is implemented by the server side of splitx.v1.GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	GetGroupExpenses(context.Context, *connect.Request[api.GetGroupExpensesRequest]) (*connect.Response[api.GetGroupExpensesResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := newRoute(GroupServiceName)
	r.handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	r.handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	r.handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	r.handle(GroupServiceGetGroupExpensesProcedure, connect.NewUnaryHandler(GroupServiceGetGroupExpensesProcedure, svc.GetGroupExpenses, opts...))
	return r.build()
}

// GroupServiceClient is a client for the splitx.v1.GroupService service.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	GetGroupExpenses(context.Context, *connect.Request[api.GetGroupExpensesRequest]) (*connect.Response[api.GetGroupExpensesResponse], error)
}

// NewGroupServiceClient constructs a client for the splitx.v1.GroupService service.
func NewGroupServiceClient(httpClient HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:      connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, procedureURL(baseURL, GroupServiceCreateGroupProcedure), opts...),
		getGroup:         connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, procedureURL(baseURL, GroupServiceGetGroupProcedure), opts...),
		listGroups:       connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, procedureURL(baseURL, GroupServiceListGroupsProcedure), opts...),
		getGroupExpenses: connect.NewClient[api.GetGroupExpensesRequest, api.GetGroupExpensesResponse](httpClient, procedureURL(baseURL, GroupServiceGetGroupExpensesProcedure), opts...),
	}
}

type groupServiceClient struct {
	createGroup      *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup         *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups       *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	getGroupExpenses *connect.Client[api.GetGroupExpensesRequest, api.GetGroupExpensesResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupExpenses(ctx context.Context, req *connect.Request[api.GetGroupExpensesRequest]) (*connect.Response[api.GetGroupExpensesResponse], error) {
	return c.getGroupExpenses.CallUnary(ctx, req)
}
