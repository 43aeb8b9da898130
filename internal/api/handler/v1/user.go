package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loca-app/loca-api/internal/api/handler/v1/request"
	"github.com/loca-app/loca-api/internal/api/handler/v1/response"
	"github.com/loca-app/loca-api/internal/domain"
)

type UserService interface {
	CreateUser(ctx context.Context, nickname string) (domain.User, error)
	GetUser(ctx context.Context, id uint) (domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
	GetUserStats(ctx context.Context, id uint) (domain.UserStats, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleCreateUser godoc
// @Summary      Create a user
// @Description  New users start with 10000 points.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateUserRequest  true  "request body"
// @Success      201      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users [post]
func (h *UserHandler) HandleCreateUser(ctx *gin.Context) {
	var req request.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.CreateUser(ctx.Request.Context(), req.Nickname)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleCreateUser -> h.svc.CreateUser", err))
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// HandleListUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        limit   query     int  false  "page size"
// @Param        offset  query     int  false  "page offset"
// @Success      200     {array}   domain.User
// @Failure      400     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /users [get]
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	var q request.PageQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := q.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	users, err := h.svc.ListUsers(ctx.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleListUsers -> h.svc.ListUsers", err))
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleGetUser godoc
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        userID  path      int  true  "user id"
// @Success      200     {object}  domain.User
// @Failure      400     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /users/{userID} [get]
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	userID, respErr := parseID(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleGetUser -> h.svc.GetUser", err))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleGetUserStats godoc
// @Summary      Get activity counters of a user
// @Tags         users
// @Produce      json
// @Param        userID  path      int  true  "user id"
// @Success      200     {object}  domain.UserStats
// @Failure      400     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /users/{userID}/stats [get]
func (h *UserHandler) HandleGetUserStats(ctx *gin.Context) {
	userID, respErr := parseID(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stats, err := h.svc.GetUserStats(ctx.Request.Context(), userID)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleGetUserStats -> h.svc.GetUserStats", err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
