package currency

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/currency-exchange/pkg/common"
	"github.com/richxcame/currency-exchange/pkg/logger"
	"github.com/richxcame/currency-exchange/pkg/middleware"
	"github.com/richxcame/currency-exchange/pkg/pagination"
	"go.uber.org/zap"
)

const historyDateLayout = "2006-01-02"

// Handler handles HTTP requests for currency
type Handler struct {
	service        ServiceInterface
	parser         RequestParser
	maxUploadBytes int64
	readTimeout    time.Duration
}

// NewHandler creates a new currency handler. readTimeout bounds the lookup
// routes; zero leaves them unbounded.
func NewHandler(service ServiceInterface, parser RequestParser, maxUploadBytes int64, readTimeout time.Duration) *Handler {
	return &Handler{
		service:        service,
		parser:         parser,
		maxUploadBytes: maxUploadBytes,
		readTimeout:    readTimeout,
	}
}

type rateQuery struct {
	SourceCurrency string `form:"sourceCurrency" validate:"required"`
	TargetCurrency string `form:"targetCurrency" validate:"required"`
}

type historyQuery struct {
	TransactionID string `form:"transactionId" validate:"omitempty,max=64"`
	Date          string `form:"date" validate:"omitempty,datetime=2006-01-02"`
}

// GetCurrencies lists the supported currencies
func (h *Handler) GetCurrencies(c *gin.Context) {
	codes := SupportedCurrencies()
	responses := make([]CurrencyResponse, len(codes))
	for i, code := range codes {
		responses[i] = CurrencyResponse{Code: code, Description: code.Description()}
	}

	common.SuccessResponse(c, responses)
}

// GetExchangeRate returns the rate between two currencies
func (h *Handler) GetExchangeRate(c *gin.Context) {
	var query rateQuery
	if !middleware.ValidateAndBindQuery(c, &query) {
		return
	}

	rate, err := h.service.GetExchangeRate(c.Request.Context(), query.SourceCurrency, query.TargetCurrency)
	if err != nil {
		h.respondError(c, err, "failed to get exchange rate")
		return
	}

	common.SuccessResponse(c, rate)
}

// Convert converts a JSON request, or a multipart form carrying an optional
// "data" JSON part and an optional "file" batch upload.
func (h *Handler) Convert(c *gin.Context) {
	var (
		req  *ConversionRequest
		rows []ConversionRequest
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if data := c.PostForm("data"); data != "" {
			var body ConversionRequest
			if err := json.Unmarshal([]byte(data), &body); err != nil {
				common.ErrorResponse(c, http.StatusBadRequest, "invalid data part: "+err.Error())
				return
			}
			req = &body
		}

		fileHeader, err := c.FormFile("file")
		switch {
		case err == nil:
			file, err := fileHeader.Open()
			if err != nil {
				common.ErrorResponse(c, http.StatusBadRequest, "failed to read uploaded file")
				return
			}
			defer file.Close()

			logger.WithContext(c.Request.Context()).Info("Received batch conversion file",
				zap.String("filename", fileHeader.Filename),
				zap.Int64("size", fileHeader.Size),
			)

			rows, err = h.parser.Parse(fileHeader.Filename, file)
			if err != nil {
				common.AppErrorResponse(c, fileErrorToAppError(err))
				return
			}
		case !errors.Is(err, http.ErrMissingFile):
			common.ErrorResponse(c, http.StatusBadRequest, "invalid multipart form: "+err.Error())
			return
		}
	} else {
		var body ConversionRequest
		if !middleware.ValidateAndBind(c, &body) {
			return
		}
		req = &body
	}

	if req == nil && len(rows) == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "either data or file must be provided")
		return
	}

	results, err := h.service.Convert(c.Request.Context(), req, rows)
	if err != nil {
		h.respondError(c, err, "failed to convert currency")
		return
	}

	common.SuccessResponse(c, results)
}

// GetHistory returns stored conversions filtered by transaction id and/or date
func (h *Handler) GetHistory(c *gin.Context) {
	var query historyQuery
	if !middleware.ValidateAndBindQuery(c, &query) {
		return
	}

	var date *time.Time
	if query.Date != "" {
		parsed, err := time.Parse(historyDateLayout, query.Date)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		date = &parsed
	}

	params := pagination.ParseParams(c)

	page, err := h.service.GetHistory(c.Request.Context(), query.TransactionID, date, params)
	if err != nil {
		h.respondError(c, err, "failed to get history")
		return
	}

	common.SuccessResponseWithMeta(c, page.Items, pagination.BuildMeta(page.Limit, page.Offset, page.Total))
}

// RegisterRoutes registers currency routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	curr := rg.Group("/currency")

	// Convert streams multipart uploads, which the buffered timeout writer cannot hold
	curr.POST("/convert", middleware.MaxBodySize(h.maxUploadBytes), h.Convert)

	lookups := curr.Group("")
	if h.readTimeout > 0 {
		lookups.Use(middleware.Timeout(h.readTimeout))
	}
	{
		lookups.GET("/currencies", h.GetCurrencies)
		lookups.GET("/rate", h.GetExchangeRate)
		lookups.GET("/history", h.GetHistory)
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	if appErr, ok := err.(*common.AppError); ok {
		common.AppErrorResponse(c, appErr)
		return
	}
	_ = c.Error(err)
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}

// fileErrorToAppError maps batch file parsing failures to API errors
func fileErrorToAppError(err error) *common.AppError {
	if errors.Is(err, ErrUnsupportedFileType) {
		return common.NewBadRequestError(err.Error(), err).WithErrorCode(CodeUnsupportedFileType)
	}

	code := CodeCSVFormat
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		code = coded.ErrorCode()
	}
	return common.NewBadRequestError(err.Error(), err).WithErrorCode(code)
}
