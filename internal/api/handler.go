package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/guttosm/permitpulse/internal/domain/dto"
	"github.com/guttosm/permitpulse/internal/domain/models"
	"github.com/guttosm/permitpulse/internal/ingestion"
	"github.com/guttosm/permitpulse/internal/logger"
	"github.com/guttosm/permitpulse/internal/middleware"
	"github.com/guttosm/permitpulse/internal/render"
	"github.com/guttosm/permitpulse/internal/service"
)

const (
	dateLayout       = "2006-01-02"
	defaultRunsLimit = 20
	maxRunsLimit     = 100

	// multipartMemory matches gin's default MaxMultipartMemory.
	multipartMemory = 32 << 20
)

// errInvalidForm marks problems with the submitted form fields themselves.
var errInvalidForm = errors.New("invalid form")

// Handler provides the HTTP handlers for report generation and history.
//
// Responsibilities:
//   - Read the multipart upload (start_date, end_date, file)
//   - Call the report service with the request context
//   - Answer with HTML, a PDF attachment or JSON depending on the route
//   - Map domain errors to HTTP status codes
type Handler struct {
	svc      service.ReportService
	branding render.Branding
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.ReportService, branding render.Branding) *Handler {
	return &Handler{svc: svc, branding: branding}
}

// UploadForm handles GET / and renders the upload page.
func (h *Handler) UploadForm(c *gin.Context) {
	c.HTML(http.StatusOK, "upload.html", render.UploadView{Title: h.branding.Title})
}

// CreateReport handles POST /reports from the upload page.
//
// Form fields:
//   - start_date, end_date (YYYY-MM-DD, required)
//   - file (.xlsx, .xlsm or .csv, required)
//   - save_pdf (optional): when present the PDF is returned as an attachment
//
// Errors re-render the upload page with a message and a 4xx/5xx status.
func (h *Handler) CreateReport(c *gin.Context) {
	res, err := h.generate(c)
	if err != nil {
		status, msg := classify(err)
		h.logFailure(c, status, err)
		c.HTML(status, "upload.html", render.UploadView{
			Title:     h.branding.Title,
			StartDate: c.PostForm("start_date"),
			EndDate:   c.PostForm("end_date"),
			Error:     msg,
		})
		return
	}

	if _, ok := c.GetPostForm("save_pdf"); ok {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions_report-%s.pdf"`, res.Report.ID))
		c.Data(http.StatusOK, "application/pdf", res.PDF)
		return
	}

	c.HTML(http.StatusOK, "report.html", render.NewReportView(h.branding, res.Report, pdfURL(res.Report.ID)))
}

// CreateReportAPI godoc
// @Summary      Generate a transaction report
// @Description  Uploads a permit spreadsheet and returns the filtered rows and metrics for the date range. The PDF is kept for download for a limited time.
// @Tags         reports
// @Accept       multipart/form-data
// @Produce      json
// @Param        start_date  formData  string  true  "Start date (YYYY-MM-DD)" example(2024-01-01)
// @Param        end_date    formData  string  true  "End date (YYYY-MM-DD)"   example(2024-01-31)
// @Param        file        formData  file    true  "Transactions spreadsheet (.xlsx, .xlsm or .csv)"
// @Success      200  {object}  dto.ReportResponse  "Success"
// @Failure      400  {object}  dto.ErrorResponse   "Bad Request"
// @Failure      413  {object}  dto.ErrorResponse   "Upload too large"
// @Failure      422  {object}  dto.ErrorResponse   "Unprocessable upload"
// @Failure      500  {object}  dto.ErrorResponse   "Internal Error"
// @Router       /api/v1/reports [post]
func (h *Handler) CreateReportAPI(c *gin.Context) {
	res, err := h.generate(c)
	if err != nil {
		status, msg := classify(err)
		h.logFailure(c, status, err)
		middleware.AbortWithError(c, status, msg, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewReportResponse(res.Report))
}

// GetReportPDF godoc
// @Summary      Download a generated report as PDF
// @Tags         reports
// @Produce      application/pdf
// @Param        id   path      string  true  "Report id"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse  "Unknown or expired report"
// @Router       /api/v1/reports/{id}/pdf [get]
func (h *Handler) GetReportPDF(c *gin.Context) {
	id := c.Param("id")
	doc, err := h.svc.PDF(id)
	if err != nil {
		middleware.AbortWithError(c, http.StatusNotFound, "report not found", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="transactions_report-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// ListRuns godoc
// @Summary      List recent report runs
// @Tags         runs
// @Produce      json
// @Param        limit  query     int  false  "Maximum runs to return (1-100)" default(20)
// @Success      200    {object}  dto.RunsResponse
// @Failure      400    {object}  dto.ErrorResponse  "Bad Request"
// @Failure      503    {object}  dto.ErrorResponse  "History not configured"
// @Failure      500    {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/runs [get]
func (h *Handler) ListRuns(c *gin.Context) {
	limit := defaultRunsLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxRunsLimit {
			middleware.AbortWithError(c, http.StatusBadRequest, "limit must be between 1 and 100", err)
			return
		}
		limit = n
	}

	runs, err := h.svc.Runs(c.Request.Context(), limit)
	if err != nil {
		h.historyError(c, err)
		return
	}
	if runs == nil {
		runs = []models.ReportRun{}
	}
	c.JSON(http.StatusOK, dto.RunsResponse{Runs: runs})
}

// GetRun godoc
// @Summary      Get one report run
// @Tags         runs
// @Produce      json
// @Param        id   path      string  true  "Report id"
// @Success      200  {object}  models.ReportRun
// @Failure      404  {object}  dto.ErrorResponse  "Unknown or malformed id"
// @Failure      503  {object}  dto.ErrorResponse  "History not configured"
// @Failure      500  {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/runs/{id} [get]
func (h *Handler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, http.StatusNotFound, "run not found", nil)
		return
	}
	run, err := h.svc.Run(c.Request.Context(), id.String())
	if err != nil {
		h.historyError(c, err)
		return
	}
	if run == nil {
		middleware.AbortWithError(c, http.StatusNotFound, "run not found", nil)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) historyError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrHistoryDisabled) {
		middleware.AbortWithError(c, http.StatusServiceUnavailable, "report history unavailable", err)
		return
	}
	_ = c.Error(err)
}

// generate reads the multipart form and runs the report service.
//
// The form is parsed up front so that an oversized body surfaces as
// *http.MaxBytesError instead of as missing fields.
func (h *Handler) generate(c *gin.Context) (*service.Result, error) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: expected a multipart form upload", errInvalidForm)
	}

	r, err := parseRange(c.PostForm("start_date"), c.PostForm("end_date"))
	if err != nil {
		return nil, err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: a transactions file is required", errInvalidForm)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	return h.svc.Generate(c.Request.Context(), service.GenerateRequest{
		Filename:  fh.Filename,
		Content:   f,
		Range:     r,
		RenderPDF: true,
	})
}

func (h *Handler) logFailure(c *gin.Context, status int, err error) {
	log := logger.WithRequest(c.GetString(middleware.RequestIDKey))
	ev := log.Info()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Int("status", status).Msg("report generation failed")
}

func parseRange(start, end string) (models.DateRange, error) {
	s, err := parseDate("start_date", start)
	if err != nil {
		return models.DateRange{}, err
	}
	e, err := parseDate("end_date", end)
	if err != nil {
		return models.DateRange{}, err
	}
	return models.NewDateRange(s, e), nil
}

func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", errInvalidForm, field)
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", errInvalidForm, field)
	}
	return t, nil
}

// classify maps a generation error to its HTTP status and user-facing message.
func classify(err error) (int, string) {
	var (
		missing  *ingestion.MissingColumnsError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.Is(err, errInvalidForm):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), errInvalidForm.Error()+": ")
	case errors.Is(err, service.ErrInvalidRange):
		return http.StatusBadRequest, "Start date must not be after end date."
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "The uploaded file is too large."
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity, "The uploaded file is missing required columns: " + strings.Join(missing.Missing, ", ")
	case errors.Is(err, ingestion.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity, "Unsupported file type, upload an .xlsx or .csv file."
	case errors.Is(err, ingestion.ErrEmptyUpload):
		return http.StatusUnprocessableEntity, "The uploaded file is empty."
	case errors.Is(err, service.ErrRevenueOverflow):
		return http.StatusUnprocessableEntity, "The permit fees in range add up to more than can be reported."
	default:
		return http.StatusInternalServerError, "An error occurred while generating the report."
	}
}

func pdfURL(id string) string {
	return "/api/v1/reports/" + id + "/pdf"
}
