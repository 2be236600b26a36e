package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docsift/internal/domain"
	"docsift/internal/export"
	"docsift/internal/service"
)

// maxUploadMemory bounds the multipart form parse buffer; larger uploads
// spill to temp files. The service applies the real size ceiling.
const maxUploadMemory = 32 << 20

// DocumentHandler handles document extraction endpoints.
type DocumentHandler struct {
	svc service.ExtractionService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(svc service.ExtractionService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// extractRequest is the JSON body for URL and path ingestion.
type extractRequest struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Extract handles POST /api/v1/documents/extract
//
//	@Summary      Extract structured fields from a document
//	@Description  Accepts a multipart file upload, an HTTPS URL, or a local path (when enabled) and returns categorized extraction results.
//	@Tags         documents
//	@Accept       mpfd,json
//	@Produce      json
//	@Param        file  formData  file    false  "Document file (pdf, png, jpeg)"
//	@Param        url   formData  string  false  "HTTPS document URL"
//	@Param        path  formData  string  false  "Local document path (capability-gated)"
//	@Success      200  {object}  handler.APIResponse
//	@Failure      400  {object}  handler.APIResponse
//	@Failure      413  {object}  handler.APIResponse
//	@Failure      415  {object}  handler.APIResponse
//	@Router       /documents/extract [post]
func (h *DocumentHandler) Extract(c *gin.Context) {
	ref, err := parseReference(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	resp, err := h.svc.Extract(c.Request.Context(), ref)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, resp)
}

// Ingest handles POST /api/v1/documents/ingest
//
//	@Summary      Ingest a document from an HTTPS URL
//	@Description  URL-only ingestion endpoint with a larger download ceiling than the generic extract endpoints.
//	@Tags         documents
//	@Accept       json
//	@Produce      json
//	@Param        request  body  handler.extractRequest  true  "HTTPS document URL"
//	@Success      200  {object}  handler.APIResponse
//	@Failure      400  {object}  handler.APIResponse
//	@Failure      413  {object}  handler.APIResponse
//	@Router       /documents/ingest [post]
func (h *DocumentHandler) Ingest(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		HandleError(c, domain.ErrMissingReference)
		return
	}

	ref := domain.NewIngestURLReference(strings.TrimSpace(req.URL))
	resp, err := h.svc.Extract(c.Request.Context(), ref)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, resp)
}

// ExtractFlat handles POST /api/v1/documents/extract/flat
//
//	@Summary      Extract a single flattened document record
//	@Tags         documents
//	@Accept       mpfd,json
//	@Produce      json
//	@Success      200  {object}  handler.APIResponse
//	@Router       /documents/extract/flat [post]
func (h *DocumentHandler) ExtractFlat(c *gin.Context) {
	ref, err := parseReference(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	flat, err := h.svc.ExtractFlat(c.Request.Context(), ref)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, flat)
}

// Export handles POST /api/v1/documents/extract/export?format=csv|xlsx
//
//	@Summary      Extract and download results as CSV or XLSX
//	@Tags         documents
//	@Accept       mpfd,json
//	@Produce      text/csv
//	@Param        format  query  string  false  "csv (default) or xlsx"
//	@Success      200  {file}  file
//	@Router       /documents/extract/export [post]
func (h *DocumentHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	ref, err := parseReference(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	resp, err := h.svc.Extract(c.Request.Context(), ref)
	if err != nil {
		HandleError(c, err)
		return
	}

	baseName := exportBaseName(ref)
	filename := export.BuildFilename(baseName, format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if format == "xlsx" {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := export.WriteXLSX(c.Writer, resp); err != nil {
			HandleError(c, err)
		}
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	if _, err := c.Writer.Write(export.BOM); err != nil {
		return
	}
	w := export.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteResponse(resp); err != nil {
		return
	}
	w.Flush()
}

// parseReference resolves exactly one document reference from the request.
// Precedence when several are supplied: file > url > path.
func parseReference(c *gin.Context) (domain.DocumentReference, error) {
	contentType := c.ContentType()

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := c.Request.ParseMultipartForm(maxUploadMemory); err == nil {
			if file, header, err := c.Request.FormFile("file"); err == nil {
				defer file.Close()
				data, err := io.ReadAll(file)
				if err != nil {
					return domain.DocumentReference{}, err
				}
				return domain.NewFileReference(data, header.Filename), nil
			}
		}
		if u := strings.TrimSpace(c.PostForm("url")); u != "" {
			return domain.NewURLReference(u), nil
		}
		if p := strings.TrimSpace(c.PostForm("path")); p != "" {
			return domain.NewPathReference(p), nil
		}
		return domain.DocumentReference{}, domain.ErrMissingReference
	}

	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return domain.DocumentReference{}, domain.ErrMissingReference
	}
	if req.URL != "" {
		return domain.NewURLReference(strings.TrimSpace(req.URL)), nil
	}
	if req.Path != "" {
		return domain.NewPathReference(strings.TrimSpace(req.Path)), nil
	}
	return domain.DocumentReference{}, domain.ErrMissingReference
}

func exportBaseName(ref domain.DocumentReference) string {
	switch ref.Source {
	case domain.SourceFile:
		return ref.Filename
	case domain.SourceURL:
		if i := strings.LastIndexByte(ref.URL, '/'); i >= 0 && i+1 < len(ref.URL) {
			return ref.URL[i+1:]
		}
		return "extraction"
	case domain.SourcePath:
		if i := strings.LastIndexByte(ref.Path, '/'); i >= 0 && i+1 < len(ref.Path) {
			return ref.Path[i+1:]
		}
		return ref.Path
	}
	return "extraction"
}
