package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loca-app/loca-api/internal/api/handler/v1/request"
	"github.com/loca-app/loca-api/internal/api/handler/v1/response"
	"github.com/loca-app/loca-api/internal/config"
	"github.com/loca-app/loca-api/internal/domain"
)

type ContestService interface {
	CreateContest(ctx context.Context, contest domain.Contest) (domain.Contest, error)
	GetContest(ctx context.Context, id uint) (domain.Contest, error)
	ListContests(ctx context.Context, filter domain.ContestFilter) ([]domain.Contest, error)
	ListAppliedContests(ctx context.Context, userID uint, limit, offset int) ([]domain.Contest, error)
	UpdateContest(ctx context.Context, contestID, callerID uint, patch domain.ContestPatch) (domain.Contest, error)
	CancelContest(ctx context.Context, contestID, callerID uint) (domain.Contest, error)
	SubmitPhoto(ctx context.Context, contestID, userID uint, image domain.Image, geo domain.Geo, description *string) (domain.ContestPhoto, error)
	ListContestPhotos(ctx context.Context, contestID uint) ([]domain.ContestPhoto, error)
	SelectWinner(ctx context.Context, contestID, photoID, callerID uint) (domain.Selection, error)
	DeleteContest(ctx context.Context, contestID, callerID uint) error
}

// EventPublisher fans contest changes out to live subscribers.
type EventPublisher interface {
	Publish(event ContestEvent)
}

type ContestHandler struct {
	conf   *config.APIConfig
	svc    ContestService
	events EventPublisher
}

func NewContestHandler(conf *config.APIConfig, svc ContestService, events EventPublisher) *ContestHandler {
	return &ContestHandler{
		conf:   conf,
		svc:    svc,
		events: events,
	}
}

// HandleCreateContest godoc
// @Summary      Create a contest
// @Description  Creates an active contest owned by user_id. The stake is checked against the owner balance only at selection time.
// @Tags         contests
// @Accept       json
// @Produce      json
// @Param        user_id   query     int                            true  "owner id"
// @Param        request   body      request.CreateContestRequest   true  "request body"
// @Success      201       {object}  domain.Contest
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /contests [post]
func (h *ContestHandler) HandleCreateContest(ctx *gin.Context) {
	var caller request.CallerQuery
	if err := ctx.ShouldBindQuery(&caller); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := caller.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.CreateContestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateContest(ctx.Request.Context(), req.ToDomain(caller.UserID))
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleCreateContest -> h.svc.CreateContest", err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleListContests godoc
// @Summary      List contests
// @Tags         contests
// @Produce      json
// @Param        status    query     string  false  "active, completed or cancelled"
// @Param        user_id   query     int     false  "owner id"
// @Param        limit     query     int     false  "page size"
// @Param        offset    query     int     false  "page offset"
// @Success      200       {array}   domain.Contest
// @Failure      400       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /contests [get]
func (h *ContestHandler) HandleListContests(ctx *gin.Context) {
	var q request.ListContestsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := q.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	contests, err := h.svc.ListContests(ctx.Request.Context(), domain.ContestFilter{
		Status:  domain.ContestStatus(q.Status),
		OwnerID: q.UserID,
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleListContests -> h.svc.ListContests", err))
		return
	}

	ctx.JSON(http.StatusOK, contests)
}

// HandleListAppliedContests godoc
// @Summary      List contests a user submitted to
// @Tags         contests
// @Produce      json
// @Param        user_id   query     int  true   "submitter id"
// @Param        limit     query     int  false  "page size"
// @Param        offset    query     int  false  "page offset"
// @Success      200       {array}   domain.Contest
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /contests/applied [get]
func (h *ContestHandler) HandleListAppliedContests(ctx *gin.Context) {
	var q request.AppliedContestsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := q.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	contests, err := h.svc.ListAppliedContests(ctx.Request.Context(), q.UserID, q.Limit, q.Offset)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleListAppliedContests -> h.svc.ListAppliedContests", err))
		return
	}

	ctx.JSON(http.StatusOK, contests)
}

// HandleGetContest godoc
// @Summary      Get a contest
// @Tags         contests
// @Produce      json
// @Param        contestID  path      int  true  "contest id"
// @Success      200        {object}  domain.Contest
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /contests/{contestID} [get]
func (h *ContestHandler) HandleGetContest(ctx *gin.Context) {
	contestID, respErr := parseID(ctx, "contestID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	contest, err := h.svc.GetContest(ctx.Request.Context(), contestID)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleGetContest -> h.svc.GetContest", err))
		return
	}

	ctx.JSON(http.StatusOK, contest)
}

// HandleUpdateContest godoc
// @Summary      Edit an active contest
// @Description  Only the owner may edit, and only while the contest is active. The stake cannot change.
// @Tags         contests
// @Accept       json
// @Produce      json
// @Param        contestID  path      int                            true  "contest id"
// @Param        user_id    query     int                            true  "caller id"
// @Param        request    body      request.UpdateContestRequest   true  "request body"
// @Success      200        {object}  domain.Contest
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /contests/{contestID} [patch]
func (h *ContestHandler) HandleUpdateContest(ctx *gin.Context) {
	contestID, respErr := parseID(ctx, "contestID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var caller request.CallerQuery
	if err := ctx.ShouldBindQuery(&caller); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := caller.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.UpdateContestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateContest(ctx.Request.Context(), contestID, caller.UserID, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleUpdateContest -> h.svc.UpdateContest", err))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleCancelContest godoc
// @Summary      Cancel an active contest
// @Description  Closes the contest without a winner. No points move.
// @Tags         contests
// @Produce      json
// @Param        contestID  path      int  true  "contest id"
// @Param        user_id    query     int  true  "caller id"
// @Success      200        {object}  domain.Contest
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /contests/{contestID}/cancel [post]
func (h *ContestHandler) HandleCancelContest(ctx *gin.Context) {
	contestID, respErr := parseID(ctx, "contestID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var caller request.CallerQuery
	if err := ctx.ShouldBindQuery(&caller); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := caller.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	cancelled, err := h.svc.CancelContest(ctx.Request.Context(), contestID, caller.UserID)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleCancelContest -> h.svc.CancelContest", err))
		return
	}

	h.events.Publish(ContestEvent{Type: EventContestCancelled, ContestID: contestID, Contest: &cancelled})

	ctx.JSON(http.StatusOK, cancelled)
}

// HandleSubmitPhoto godoc
// @Summary      Submit a photo to a contest
// @Tags         contests
// @Accept       mpfd
// @Produce      json
// @Param        contestID    path      int     true   "contest id"
// @Param        file         formData  file    true   "image"
// @Param        user_id      formData  int     true   "submitter id"
// @Param        description  formData  string  false  "description"
// @Param        location     formData  string  false  "place name"
// @Param        latitude     formData  number  false  "latitude"
// @Param        longitude    formData  number  false  "longitude"
// @Success      201          {object}  domain.ContestPhoto
// @Failure      400          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      413          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /contests/{contestID}/photos [post]
func (h *ContestHandler) HandleSubmitPhoto(ctx *gin.Context) {
	contestID, respErr := parseID(ctx, "contestID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	limitBody(ctx, h.conf.MaxUploadBytes)

	var form request.SubmitContestPhotoForm
	if err := ctx.ShouldBind(&form); err != nil {
		response.RenderErr(ctx, bindErr(err, h.conf.MaxUploadBytes))
		return
	}

	if err := form.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	image, respErr := readImage(ctx, h.conf.MaxUploadBytes)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var description *string
	if form.Description != "" {
		description = &form.Description
	}

	created, err := h.svc.SubmitPhoto(ctx.Request.Context(), contestID, form.UserID, image, form.GeoForm.ToDomain(), description)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleSubmitPhoto -> h.svc.SubmitPhoto", err))
		return
	}

	h.events.Publish(ContestEvent{Type: EventPhotoSubmitted, ContestID: contestID, Photo: &created})

	ctx.JSON(http.StatusCreated, created)
}

// HandleListContestPhotos godoc
// @Summary      List the submissions of a contest
// @Tags         contests
// @Produce      json
// @Param        contestID  path      int  true  "contest id"
// @Success      200        {array}   domain.ContestPhoto
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /contests/{contestID}/photos [get]
func (h *ContestHandler) HandleListContestPhotos(ctx *gin.Context) {
	contestID, respErr := parseID(ctx, "contestID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	photos, err := h.svc.ListContestPhotos(ctx.Request.Context(), contestID)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleListContestPhotos -> h.svc.ListContestPhotos", err))
		return
	}

	ctx.JSON(http.StatusOK, photos)
}

// HandleSelectWinner godoc
// @Summary      Select the winning submission
// @Description  Completes the contest and moves its stake from the owner to the author of the photo, atomically.
// @Tags         contests
// @Produce      json
// @Param        contestID  path      int  true  "contest id"
// @Param        photo_id   query     int  true  "winning submission id"
// @Param        user_id    query     int  true  "caller id"
// @Success      200        {object}  response.SelectWinner
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /contests/{contestID}/select [put]
func (h *ContestHandler) HandleSelectWinner(ctx *gin.Context) {
	contestID, respErr := parseID(ctx, "contestID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var q request.SelectWinnerQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := q.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	selection, err := h.svc.SelectWinner(ctx.Request.Context(), contestID, q.PhotoID, q.UserID)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleSelectWinner -> h.svc.SelectWinner", err))
		return
	}

	h.events.Publish(ContestEvent{Type: EventWinnerSelected, ContestID: contestID, Contest: &selection.Contest, WinnerID: selection.WinnerID})

	ctx.JSON(http.StatusOK, response.NewSelectWinner(selection))
}

// HandleDeleteContest godoc
// @Summary      Delete a completed contest
// @Description  Removes the contest, every submission row and every submission image.
// @Tags         contests
// @Produce      json
// @Param        contestID  path      int  true  "contest id"
// @Param        user_id    query     int  true  "caller id"
// @Success      200        {object}  response.Message
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /contests/{contestID} [delete]
func (h *ContestHandler) HandleDeleteContest(ctx *gin.Context) {
	contestID, respErr := parseID(ctx, "contestID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var caller request.CallerQuery
	if err := ctx.ShouldBindQuery(&caller); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := caller.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.DeleteContest(ctx.Request.Context(), contestID, caller.UserID); err != nil {
		response.RenderErr(ctx, serviceErr("HandleDeleteContest -> h.svc.DeleteContest", err))
		return
	}

	h.events.Publish(ContestEvent{Type: EventContestDeleted, ContestID: contestID})

	ctx.JSON(http.StatusOK, response.Message{Message: "Contest deleted successfully"})
}
