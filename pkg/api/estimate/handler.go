package estimate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"bsr_estimator/pkg/api/httputil"
	"bsr_estimator/pkg/core/calibration"
	coreEstimate "bsr_estimator/pkg/core/estimate"
	"bsr_estimator/pkg/core/pipeline"
	"bsr_estimator/pkg/core/report"
	"bsr_estimator/pkg/core/utils"
	"bsr_estimator/pkg/core/validate"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes bounds request bodies; a request is three small fields.
const maxBodyBytes = 64 << 10

var (
	errInvalidBody  = errors.New("invalid request body")
	errBodyTooLarge = errors.New("request body too large")
)

// Request is the body of POST /api/estimate. Rank and Price accept either a
// JSON number or the raw text typed into the form ("12,345", "19.99", "").
type Request struct {
	Category string          `json:"category"`
	Rank     json.RawMessage `json:"rank"`
	Price    json.RawMessage `json:"price"`
}

// Response is the body of a successful POST /api/estimate.
type Response struct {
	RequestID string `json:"request_id"`
	report.Result
}

// CategoryInfo describes one servable category.
type CategoryInfo struct {
	Name    string  `json:"name"`
	Points  int     `json:"points"`
	MinRank float64 `json:"min_rank"`
	MaxRank float64 `json:"max_rank"`
}

// Handler holds dependencies for estimate endpoints.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	table        *calibration.Table
}

// NewHandler creates a handler serving estimates from table.
func NewHandler(table *calibration.Table) *Handler {
	return &Handler{
		orchestrator: pipeline.ForEstimator(coreEstimate.NewEstimator(table)),
		table:        table,
	}
}

// SetupRoutes registers the estimate endpoints under group (normally /api).
func SetupRoutes(group *gin.RouterGroup, h *Handler) {
	group.POST("/estimate", h.HandleEstimate)
	group.POST("/estimate/report", h.HandleReport)
	group.GET("/categories", h.HandleCategories)
}

func (h *Handler) HandleEstimate(c *gin.Context) {
	res, ok := h.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Response{RequestID: httputil.RequestIDFrom(c), Result: res})
}

// HandleReport renders the estimate as Markdown or, with ?format=html, HTML.
func (h *Handler) HandleReport(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "markdown"))
	if format != "markdown" && format != "html" {
		httputil.RespondError(c, http.StatusBadRequest, fmt.Sprintf("Unsupported report format: %s", format))
		return
	}

	res, ok := h.run(c)
	if !ok {
		return
	}

	if format == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(res)))
		return
	}
	html, err := report.HTML(res)
	if err != nil {
		fmt.Printf("[API] Report rendering failed: %v\n", err)
		httputil.RespondError(c, http.StatusInternalServerError, "Failed to render report")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handler) HandleCategories(c *gin.Context) {
	names := h.table.Categories()
	out := make([]CategoryInfo, 0, len(names))
	for _, name := range names {
		rec, _ := h.table.Lookup(name)
		out = append(out, CategoryInfo{
			Name:    name,
			Points:  rec.Len(),
			MinRank: rec.MinRank(),
			MaxRank: rec.MaxRank(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// run decodes, validates and estimates. On failure it has already responded.
func (h *Handler) run(c *gin.Context) (report.Result, bool) {
	in, err := decodeInput(c.Request)
	if err != nil {
		httputil.RespondInvalid(c, err)
		return report.Result{}, false
	}

	res, err := h.orchestrator.Run(in)
	if err != nil {
		if errors.Is(err, validate.ErrInvalidInput) {
			httputil.RespondInvalid(c, err)
			return report.Result{}, false
		}
		fmt.Printf("[API] Estimation failed for %q: %v\n", in.Category, err)
		httputil.RespondError(c, http.StatusInternalServerError, "Estimation failed")
		return report.Result{}, false
	}

	fmt.Printf("[API] %s rank=%d -> %d units/month (%s)\n", res.Category, res.Rank, res.MonthlyUnits, res.Method)
	return res, true
}

func decodeInput(r *http.Request) (validate.EstimationInput, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return validate.EstimationInput{}, errInvalidBody
	}
	if len(body) > maxBodyBytes {
		return validate.EstimationInput{}, errBodyTooLarge
	}

	var req Request
	if _, err := utils.SmartParse(string(body), &req); err != nil {
		return validate.EstimationInput{}, errInvalidBody
	}

	// Unparsable values become NaN so validate.Input reports them in rule order.
	rank, err := parseRank(req.Rank)
	if err != nil {
		rank = math.NaN()
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		nan := math.NaN()
		price = &nan
	}

	return validate.EstimationInput{
		Category: strings.TrimSpace(req.Category),
		Rank:     rank,
		Price:    price,
	}, nil
}

// rawText returns the textual form of a JSON scalar: strings are unquoted,
// numbers are returned as written, null and missing values are "".
func rawText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if isJSONString(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(raw), nil
}

func isJSONString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func parseRank(raw json.RawMessage) (float64, error) {
	text, err := rawText(raw)
	if err != nil {
		return 0, &validate.InvalidInputError{Field: validate.FieldRank, Message: validate.MsgRankInvalid}
	}
	// A bare JSON number such as 1e3 or 12.0 is allowed when it is a whole
	// number. Strings are read as typed text: digits and separators only.
	if !isJSONString(raw) && text != "" {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, &validate.InvalidInputError{Field: validate.FieldRank, Message: validate.MsgRankInvalid}
		}
		return v, nil
	}
	return validate.ParseRank(text)
}

func parsePrice(raw json.RawMessage) (*float64, error) {
	text, err := rawText(raw)
	if err != nil {
		return nil, &validate.InvalidInputError{Field: validate.FieldPrice, Message: validate.MsgPriceInvalid}
	}
	return validate.ParsePrice(text)
}
