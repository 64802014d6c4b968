package analyst

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"analyst-backend/internal/scrape"
	"analyst-backend/internal/shared/server/respond"
	"analyst-backend/internal/shared/telemetry"
	"analyst-backend/internal/shared/util"
)

const maxUploadBytes = 20 << 20

const (
	partQuestions = "questions.txt"
	partImage     = "image.png"
	partCSV       = "data.csv"
)

// Handler exposes the analysis pipeline over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler constructs a Handler around the pipeline service.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the analysis endpoint on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/", h.process)
}

func (h *Handler) process(c *gin.Context) {
	if h.svc.Model == nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeConfig,
			"GEMINI_API_KEY environment variable not set", nil)
		return
	}

	req, ok := h.assembleRequest(c)
	if !ok {
		return
	}

	if scrape.ShouldScrape(req.Questions) {
		if url, found := scrape.FirstURL(req.Questions); found {
			c.Set("scrapeUrl", url)
		}
	}

	outcome, err := h.svc.Analyze(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrModelInvocation) {
			respond.Error(c, http.StatusBadGateway, ErrorCodeModelInvocation,
				"failed to get a response from the model", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "analysis failed", nil)
		return
	}

	c.Set("promptHash", util.HashPrompt(outcome.Prompt))

	if !outcome.Result.Recovered() {
		// Deliberate contract: the pipeline ran, the output was unusable.
		// That is a 200 with a structured failure, not a server fault.
		telemetry.Info("analysis.recovery_failed", map[string]any{
			"request_id": c.GetString("requestId"),
			"detail":     outcome.Result.Failure.Detail,
		})
		respond.OK(c, outcome.Result.Failure)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", outcome.Result.Value)
}

// assembleRequest decodes the three multipart slots. The questions part is
// required and must be UTF-8; the CSV part must be UTF-8 when present; the
// image part contributes only its presence and filename.
func (h *Handler) assembleRequest(c *gin.Context) (AnalysisRequest, bool) {
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeInputDecode,
			"invalid multipart form", nil)
		return AnalysisRequest{}, false
	}

	var req AnalysisRequest

	questions, ok := readTextPart(c, partQuestions, true)
	if !ok {
		return AnalysisRequest{}, false
	}
	req.Questions = questions

	if filePart(c, partCSV) != nil {
		csvText, ok := readTextPart(c, partCSV, false)
		if !ok {
			return AnalysisRequest{}, false
		}
		req.HasCSV = true
		req.CSVText = csvText
	}

	if header := filePart(c, partImage); header != nil {
		req.HasImage = true
		if name, err := util.SanitizeFileName(header.Filename); err == nil {
			req.ImageFilename = name
		} else {
			req.ImageFilename = partImage
		}
	}

	return req, true
}

func filePart(c *gin.Context, name string) *multipart.FileHeader {
	header, err := c.FormFile(name)
	if err != nil {
		return nil
	}
	return header
}

func readTextPart(c *gin.Context, name string, required bool) (string, bool) {
	header, err := c.FormFile(name)
	if err != nil {
		if required {
			respond.Error(c, http.StatusBadRequest, ErrorCodeInputDecode,
				name+" is required", nil)
			return "", false
		}
		return "", true
	}

	file, err := header.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeInputDecode,
			"failed to read "+name, nil)
		return "", false
	}
	defer file.Close()

	// Read one byte past the limit so oversized parts are rejected
	// rather than silently clipped.
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeInputDecode,
			"failed to read "+name, nil)
		return "", false
	}
	if len(data) > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, ErrorCodeInputDecode,
			name+" exceeds the upload size limit", nil)
		return "", false
	}
	if !utf8.Valid(data) {
		respond.Error(c, http.StatusBadRequest, ErrorCodeInputDecode,
			name+" is not valid UTF-8", nil)
		return "", false
	}
	return string(data), true
}
