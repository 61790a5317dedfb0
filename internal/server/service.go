package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/invoice-tracker/internal/app"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/export"
	"github.com/joseph-ayodele/invoice-tracker/internal/extraction"
	"github.com/joseph-ayodele/invoice-tracker/internal/feedback"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
	"github.com/joseph-ayodele/invoice-tracker/internal/invoices"
	"github.com/joseph-ayodele/invoice-tracker/internal/profiles"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

// InvoiceService implements InvoiceServiceServer on top of the app services.
// Errors are returned as AppErrors; the interceptor maps them to statuses.
type InvoiceService struct {
	app    *app.App
	logger *slog.Logger
}

var _ InvoiceServiceServer = (*InvoiceService)(nil)

func NewInvoiceService(a *app.App, logger *slog.Logger) *InvoiceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceService{app: a, logger: logger}
}

func (s *InvoiceService) Extract(ctx context.Context, req *extraction.Request) (*extraction.Response, error) {
	return s.app.Extraction.Extract(ctx, *req)
}

func (s *InvoiceService) SubmitFeedback(ctx context.Context, body *json.RawMessage) (*feedback.Result, error) {
	if body == nil || len(bytes.TrimSpace(*body)) == 0 {
		return nil, common.InvalidArgument("feedback body is required")
	}
	return s.app.Feedback.Submit(ctx, *body)
}

func (s *InvoiceService) GetCompany(ctx context.Context, _ *Empty) (*entity.Company, error) {
	return s.app.Company.Get(ctx)
}

func (s *InvoiceService) UpdateCompany(ctx context.Context, req *profiles.UpdateCompanyRequest) (*entity.Company, error) {
	return s.app.Company.Update(ctx, *req)
}

func (s *InvoiceService) SaveInvoice(ctx context.Context, req *invoices.SaveInvoiceRequest) (*entity.Invoice, error) {
	return s.app.Invoices.Save(ctx, *req)
}

func (s *InvoiceService) GetInvoice(ctx context.Context, req *GetInvoiceRequest) (*entity.Invoice, error) {
	return s.app.Invoices.Get(ctx, req.ID)
}

func (s *InvoiceService) ListInvoices(ctx context.Context, req *ListInvoicesRequest) (*ListInvoicesResponse, error) {
	invs, err := s.app.Invoices.List(ctx, invoices.ListInvoicesRequest{
		FromDate:       strings.TrimSpace(req.FromDate),
		ToDate:         strings.TrimSpace(req.ToDate),
		VendorName:     req.VendorName,
		Classification: req.Classification,
		Limit:          req.Limit,
	})
	if err != nil {
		return nil, err
	}
	if invs == nil {
		invs = []*entity.Invoice{}
	}
	return &ListInvoicesResponse{Invoices: invs}, nil
}

// IngestDirectory processes the files below a server-local directory.
func (s *InvoiceService) IngestDirectory(ctx context.Context, req *IngestDirectoryRequest) (*IngestDirectoryResponse, error) {
	root := strings.TrimSpace(req.RootPath)
	if root == "" {
		s.logger.Error("ingest request missing root_path")
		return nil, common.InvalidArgument("root_path is required")
	}
	skipHidden := req.SkipHidden == nil || *req.SkipHidden

	s.logger.Info("starting directory ingest", "root", root, "skip_hidden", skipHidden)
	results, stats, err := s.app.Ingestor.IngestDirectory(ctx, root, skipHidden)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []ingest.Result{}
	}
	return &IngestDirectoryResponse{Results: results, Stats: stats}, nil
}

func (s *InvoiceService) Export(ctx context.Context, req *ExportRequest) (*ExportResponse, error) {
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	var buf bytes.Buffer
	var (
		format string
		rows   int
		err    error
	)
	switch kind {
	case "", "invoices":
		kind = "invoices"
		format = export.ParseFormat(req.Format, export.FormatXLSX)
		rows, err = s.app.Export.Invoices(ctx, &buf, format, strings.TrimSpace(req.FromDate), strings.TrimSpace(req.ToDate))
	case "feedbacks":
		format = export.ParseFormat(req.Format, export.FormatCSV)
		rows, err = s.app.Export.Feedbacks(ctx, &buf, format, repository.FeedbackFilter{})
	default:
		return nil, common.InvalidArgumentf("unknown export kind %q", req.Kind)
	}
	if err != nil {
		s.logger.Error("export.failed", "kind", kind, "format", format, "err", err)
		return nil, err
	}
	ct, ext := export.ContentType(format)
	return &ExportResponse{
		Filename:    export.Filename(kind, req.FromDate, req.ToDate, ext),
		ContentType: ct,
		Rows:        rows,
		Content:     buf.Bytes(),
	}, nil
}
