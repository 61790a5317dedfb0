package httpapi

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/export"
	"github.com/joseph-ayodele/invoice-tracker/internal/extraction"
	"github.com/joseph-ayodele/invoice-tracker/internal/invoices"
	"github.com/joseph-ayodele/invoice-tracker/internal/profiles"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

func (h *Handler) health(c *gin.Context) {
	if err := h.app.DB.HealthCheck(c.Request.Context(), h.pingTimeout, h.logger); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": common.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": h.app.DB.Dialect()})
}

func (h *Handler) extract(c *gin.Context) {
	var req extraction.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.InvalidArgumentf("invalid JSON body: %v", err))
		return
	}
	resp, err := h.app.Extraction.Extract(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func rawBody(c *gin.Context) ([]byte, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, common.InvalidArgumentf("read body: %v", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, common.InvalidArgument("request body is required")
	}
	return body, nil
}

func (h *Handler) submitFeedback(c *gin.Context) {
	body, err := rawBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.app.Feedback.Submit(c.Request.Context(), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) getCompany(c *gin.Context) {
	company, err := h.app.Company.Get(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *Handler) updateCompany(c *gin.Context) {
	var req profiles.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.InvalidArgumentf("invalid JSON body: %v", err))
		return
	}
	company, err := h.app.Company.Update(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *Handler) saveInvoice(c *gin.Context) {
	var req invoices.SaveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.InvalidArgumentf("invalid JSON body: %v", err))
		return
	}
	inv, err := h.app.Invoices.Save(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func queryLimit(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, common.InvalidArgument("limit must be a non-negative integer")
	}
	return n, nil
}

func (h *Handler) listInvoices(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	invs, err := h.app.Invoices.List(c.Request.Context(), invoices.ListInvoicesRequest{
		FromDate:       c.Query("from_date"),
		ToDate:         c.Query("to_date"),
		VendorName:     c.Query("vendor"),
		Classification: c.Query("classification"),
		Limit:          limit,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invs, "count": len(invs)})
}

func (h *Handler) getInvoice(c *gin.Context) {
	inv, err := h.app.Invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) listFeedbacks(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.app.Feedback.List(c.Request.Context(), repository.FeedbackFilter{
		RequestID: c.Query("request_id"),
		InvoiceID: c.Query("invoice_id"),
		Limit:     limit,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedbacks": rows, "count": len(rows)})
}

func (h *Handler) recordFeedback(c *gin.Context) {
	body, err := rawBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	fb, err := h.app.Feedback.Record(c.Request.Context(), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, fb)
}

// ocr accepts a PDF upload in the multipart field "file" and returns its
// text. With ?extract=true the text is also run through extraction.
func (h *Handler) ocr(c *gin.Context) {
	if c.Request.ContentLength > h.uploadMaxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadMaxBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		h.fail(c, common.InvalidArgument("multipart field \"file\" is required"))
		return
	}
	if constants.NormalizeExt(filepath.Ext(fh.Filename)) != constants.ExtPDF {
		h.fail(c, common.InvalidArgument("only PDF uploads are accepted"))
		return
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		if _, ok := constants.UploadContentTypes[strings.ToLower(ct)]; !ok {
			h.fail(c, common.InvalidArgumentf("unsupported content type %q", ct))
			return
		}
	}

	path, err := saveUpload(fh)
	if err != nil {
		h.fail(c, common.Internal("failed to store upload", err))
		return
	}
	defer os.Remove(path)

	ctx := c.Request.Context()
	res, err := h.app.Text.Extract(ctx, path)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := gin.H{
		"ocrText":    res.Text,
		"method":     res.Method,
		"pages":      res.Pages,
		"confidence": res.Confidence,
		"warnings":   res.Warnings,
	}
	if c.Query("extract") == "true" {
		resp, err := h.app.Extraction.Extract(ctx, extraction.TextRequest(c.Query("request_id"), res.Text))
		if err != nil {
			h.fail(c, err)
			return
		}
		out["extraction"] = resp
	}
	c.JSON(http.StatusOK, out)
}

func saveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "invoice-upload-*.pdf")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func (h *Handler) export(c *gin.Context) {
	ctx := c.Request.Context()
	from, to := c.Query("from_date"), c.Query("to_date")
	kind := strings.ToLower(c.DefaultQuery("kind", "invoices"))

	var buf bytes.Buffer
	var format string
	var err error
	switch kind {
	case "invoices":
		format = export.ParseFormat(c.Query("format"), export.FormatXLSX)
		_, err = h.app.Export.Invoices(ctx, &buf, format, from, to)
	case "feedbacks":
		format = export.ParseFormat(c.Query("format"), export.FormatCSV)
		_, err = h.app.Export.Feedbacks(ctx, &buf, format, repository.FeedbackFilter{RequestID: c.Query("request_id")})
	default:
		err = common.InvalidArgumentf("unknown export kind %q", kind)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	ct, ext := export.ContentType(format)
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(kind, from, to, ext)+`"`)
	c.Data(http.StatusOK, ct, buf.Bytes())
}
