package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/bbquotes/internal/adapters/http/dto"
	"github.com/jsamuelsen/bbquotes/internal/app"
)

// QuoteHandler serves the synchronous quote flow.
type QuoteHandler struct {
	fetcher app.Fetcher
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(fetcher app.Fetcher) *QuoteHandler {
	if fetcher == nil {
		panic("handlers: fetcher is required")
	}

	return &QuoteHandler{fetcher: fetcher}
}

// GetRandomQuote handles GET /api/v1/quotes/random?production={show}.
// It runs the quote and character lookups within the request and answers
// with both, or with the mapped error.
//
// @Summary Get a random quote with its character
// @Tags quotes
// @Produce json
// @Param production query string true "Show name, sent to the quotes API verbatim"
// @Success 200 {object} dto.QuoteWithCharacterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	var req dto.RandomQuoteRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	quote, character, err := h.fetcher.FetchQuoteAndCharacter(c.Request.Context(), req.Production)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if quote == nil || character == nil {
		dto.HandleError(c, errors.New("fetch returned no result"))
		return
	}

	c.JSON(http.StatusOK, dto.QuoteWithCharacterResponse{
		Quote:     dto.FromQuote(*quote),
		Character: dto.FromCharacter(*character),
	})
}

// RegisterRoutes registers the quote routes on rg.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes/random", h.GetRandomQuote)
}

func respondBindError(c *gin.Context, err error) {
	if dto.IsValidationError(err) {
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
		return
	}

	dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
}
