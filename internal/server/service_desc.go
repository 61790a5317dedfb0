package server

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"

	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/extraction"
	"github.com/joseph-ayodele/invoice-tracker/internal/feedback"
	"github.com/joseph-ayodele/invoice-tracker/internal/invoices"
	"github.com/joseph-ayodele/invoice-tracker/internal/profiles"
)

const ServiceName = "invoicetracker.v1.InvoiceService"

// InvoiceServiceServer is the server API for the invoice service.
type InvoiceServiceServer interface {
	Extract(context.Context, *extraction.Request) (*extraction.Response, error)
	SubmitFeedback(context.Context, *json.RawMessage) (*feedback.Result, error)
	GetCompany(context.Context, *Empty) (*entity.Company, error)
	UpdateCompany(context.Context, *profiles.UpdateCompanyRequest) (*entity.Company, error)
	SaveInvoice(context.Context, *invoices.SaveInvoiceRequest) (*entity.Invoice, error)
	GetInvoice(context.Context, *GetInvoiceRequest) (*entity.Invoice, error)
	ListInvoices(context.Context, *ListInvoicesRequest) (*ListInvoicesResponse, error)
	IngestDirectory(context.Context, *IngestDirectoryRequest) (*IngestDirectoryResponse, error)
	Export(context.Context, *ExportRequest) (*ExportResponse, error)
}

// unary builds the method descriptor for one request/response call.
func unary[Req, Resp any](name string, call func(InvoiceServiceServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(InvoiceServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(InvoiceServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes InvoiceService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InvoiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Extract", InvoiceServiceServer.Extract),
		unary("SubmitFeedback", InvoiceServiceServer.SubmitFeedback),
		unary("GetCompany", InvoiceServiceServer.GetCompany),
		unary("UpdateCompany", InvoiceServiceServer.UpdateCompany),
		unary("SaveInvoice", InvoiceServiceServer.SaveInvoice),
		unary("GetInvoice", InvoiceServiceServer.GetInvoice),
		unary("ListInvoices", InvoiceServiceServer.ListInvoices),
		unary("IngestDirectory", InvoiceServiceServer.IngestDirectory),
		unary("Export", InvoiceServiceServer.Export),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "invoicetracker/v1/invoice_service",
}

func RegisterInvoiceServiceServer(s grpc.ServiceRegistrar, srv InvoiceServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client is a thin client for InvoiceService over the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Extract(ctx context.Context, in *extraction.Request, opts ...grpc.CallOption) (*extraction.Response, error) {
	return invoke[extraction.Response](ctx, c, "Extract", in, opts...)
}

func (c *Client) SubmitFeedback(ctx context.Context, body json.RawMessage, opts ...grpc.CallOption) (*feedback.Result, error) {
	return invoke[feedback.Result](ctx, c, "SubmitFeedback", &body, opts...)
}

func (c *Client) GetCompany(ctx context.Context, opts ...grpc.CallOption) (*entity.Company, error) {
	return invoke[entity.Company](ctx, c, "GetCompany", &Empty{}, opts...)
}

func (c *Client) UpdateCompany(ctx context.Context, in *profiles.UpdateCompanyRequest, opts ...grpc.CallOption) (*entity.Company, error) {
	return invoke[entity.Company](ctx, c, "UpdateCompany", in, opts...)
}

func (c *Client) ListInvoices(ctx context.Context, in *ListInvoicesRequest, opts ...grpc.CallOption) (*ListInvoicesResponse, error) {
	return invoke[ListInvoicesResponse](ctx, c, "ListInvoices", in, opts...)
}

func (c *Client) Export(ctx context.Context, in *ExportRequest, opts ...grpc.CallOption) (*ExportResponse, error) {
	return invoke[ExportResponse](ctx, c, "Export", in, opts...)
}
