package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService.
const ExpenseServiceName = "splitx.v1.ExpenseService"

const (
	// ExpenseServiceCreateExpenseProcedure is the fully-qualified name of the ExpenseService's CreateExpense RPC.
	ExpenseServiceCreateExpenseProcedure = "/splitx.v1.ExpenseService/CreateExpense"
	// ExpenseServiceDeleteExpenseProcedure is the fully-qualified name of the ExpenseService's DeleteExpense RPC.
	ExpenseServiceDeleteExpenseProcedure = "/splitx.v1.ExpenseService/DeleteExpense"
	// ExpenseServiceGetExpensesBetweenUsersProcedure is the fully-qualified name of the ExpenseService's GetExpensesBetweenUsers RPC.
	ExpenseServiceGetExpensesBetweenUsersProcedure = "/splitx.v1.ExpenseService/GetExpensesBetweenUsers"
)

// ExpenseServiceHandler is implemented by the server side of splitx.v1.ExpenseService.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	GetExpensesBetweenUsers(context.Context, *connect.Request[api.GetExpensesBetweenUsersRequest]) (*connect.Response[api.GetExpensesBetweenUsersResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := newRoute(ExpenseServiceName)
	r.handle(ExpenseServiceCreateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	r.handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	r.handle(ExpenseServiceGetExpensesBetweenUsersProcedure, connect.NewUnaryHandler(ExpenseServiceGetExpensesBetweenUsersProcedure, svc.GetExpensesBetweenUsers, opts...))
	return r.build()
}

// ExpenseServiceClient is a client for the splitx.v1.ExpenseService service.
type ExpenseServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	GetExpensesBetweenUsers(context.Context, *connect.Request[api.GetExpensesBetweenUsersRequest]) (*connect.Response[api.GetExpensesBetweenUsersResponse], error)
}

// NewExpenseServiceClient constructs a client for the splitx.v1.ExpenseService service.
func NewExpenseServiceClient(httpClient HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	opts = clientOptions(opts)
	return &expenseServiceClient{
		createExpense:           connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, procedureURL(baseURL, ExpenseServiceCreateExpenseProcedure), opts...),
		deleteExpense:           connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, procedureURL(baseURL, ExpenseServiceDeleteExpenseProcedure), opts...),
		getExpensesBetweenUsers: connect.NewClient[api.GetExpensesBetweenUsersRequest, api.GetExpensesBetweenUsersResponse](httpClient, procedureURL(baseURL, ExpenseServiceGetExpensesBetweenUsersProcedure), opts...),
	}
}

type expenseServiceClient struct {
	createExpense           *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	deleteExpense           *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	getExpensesBetweenUsers *connect.Client[api.GetExpensesBetweenUsersRequest, api.GetExpensesBetweenUsersResponse]
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpensesBetweenUsers(ctx context.Context, req *connect.Request[api.GetExpensesBetweenUsersRequest]) (*connect.Response[api.GetExpensesBetweenUsersResponse], error) {
	return c.getExpensesBetweenUsers.CallUnary(ctx, req)
}
