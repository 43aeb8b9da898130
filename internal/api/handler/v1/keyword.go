package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loca-app/loca-api/internal/api/handler/v1/request"
	"github.com/loca-app/loca-api/internal/api/handler/v1/response"
	"github.com/loca-app/loca-api/internal/domain"
)

type KeywordService interface {
	CreateKeyword(ctx context.Context, keyword domain.Keyword) (domain.Keyword, error)
	GetKeyword(ctx context.Context, id uint) (domain.Keyword, error)
	ListKeywords(ctx context.Context, limit, offset int) ([]domain.Keyword, error)
	RandomKeyword(ctx context.Context) (domain.Keyword, error)
	SearchKeywords(ctx context.Context, q string, limit int) ([]domain.Keyword, error)
}

type KeywordHandler struct {
	svc KeywordService
}

func NewKeywordHandler(svc KeywordService) *KeywordHandler {
	return &KeywordHandler{
		svc: svc,
	}
}

// HandleCreateKeyword godoc
// @Summary      Create a keyword prompt
// @Tags         keywords
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateKeywordRequest  true  "request body"
// @Success      201      {object}  domain.Keyword
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /keywords [post]
func (h *KeywordHandler) HandleCreateKeyword(ctx *gin.Context) {
	var req request.CreateKeywordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateKeyword(ctx.Request.Context(), domain.Keyword{
		Keyword:  req.Keyword,
		Category: req.Category,
	})
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleCreateKeyword -> h.svc.CreateKeyword", err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleListKeywords godoc
// @Summary      List keywords
// @Tags         keywords
// @Produce      json
// @Param        limit   query     int  false  "page size"
// @Param        offset  query     int  false  "page offset"
// @Success      200     {array}   domain.Keyword
// @Failure      400     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /keywords [get]
func (h *KeywordHandler) HandleListKeywords(ctx *gin.Context) {
	var q request.PageQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := q.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	keywords, err := h.svc.ListKeywords(ctx.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleListKeywords -> h.svc.ListKeywords", err))
		return
	}

	ctx.JSON(http.StatusOK, keywords)
}

// HandleRandomKeyword godoc
// @Summary      Pick a random keyword
// @Tags         keywords
// @Produce      json
// @Success      200  {object}  domain.Keyword
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /keywords/random [get]
func (h *KeywordHandler) HandleRandomKeyword(ctx *gin.Context) {
	keyword, err := h.svc.RandomKeyword(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleRandomKeyword -> h.svc.RandomKeyword", err))
		return
	}

	ctx.JSON(http.StatusOK, keyword)
}

// HandleGetKeyword godoc
// @Summary      Get a keyword by ID
// @Tags         keywords
// @Produce      json
// @Param        keywordID  path      int  true  "keyword id"
// @Success      200        {object}  domain.Keyword
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /keywords/{keywordID} [get]
func (h *KeywordHandler) HandleGetKeyword(ctx *gin.Context) {
	keywordID, respErr := parseID(ctx, "keywordID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	keyword, err := h.svc.GetKeyword(ctx.Request.Context(), keywordID)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleGetKeyword -> h.svc.GetKeyword", err))
		return
	}

	ctx.JSON(http.StatusOK, keyword)
}

// HandleSearchKeywords godoc
// @Summary      Search keywords by text
// @Tags         search
// @Produce      json
// @Param        q      query     string  true   "search text"
// @Param        limit  query     int     false  "max results"
// @Success      200    {array}   domain.Keyword
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /search/keywords [get]
func (h *KeywordHandler) HandleSearchKeywords(ctx *gin.Context) {
	var q request.KeywordSearchQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := q.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	keywords, err := h.svc.SearchKeywords(ctx.Request.Context(), q.Q, q.Limit)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleSearchKeywords -> h.svc.SearchKeywords", err))
		return
	}

	ctx.JSON(http.StatusOK, keywords)
}
