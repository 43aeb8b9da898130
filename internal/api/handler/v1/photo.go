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

type PhotoService interface {
	UploadPhoto(ctx context.Context, userID, keywordID uint, image domain.Image, geo domain.Geo) (domain.Photo, error)
	GetPhoto(ctx context.Context, id uint) (domain.Photo, error)
	ListPhotos(ctx context.Context, filter domain.PhotoFilter) ([]domain.Photo, error)
	SearchPhotos(ctx context.Context, q string, sort domain.PhotoSort, limit, offset int) ([]domain.Photo, error)
	LikePhoto(ctx context.Context, userID, photoID uint) (domain.Like, error)
	UnlikePhoto(ctx context.Context, userID, photoID uint) error
}

type PhotoHandler struct {
	conf *config.APIConfig
	svc  PhotoService
}

func NewPhotoHandler(conf *config.APIConfig, svc PhotoService) *PhotoHandler {
	return &PhotoHandler{
		conf: conf,
		svc:  svc,
	}
}

// HandleUploadPhoto godoc
// @Summary      Upload a keyword photo
// @Description  Stores the photo and returns it with a generated description. Captioning failures fall back to a fixed text.
// @Tags         photos
// @Accept       mpfd
// @Produce      json
// @Param        file        formData  file    true   "image"
// @Param        user_id     formData  int     true   "uploader id"
// @Param        keyword_id  formData  int     true   "keyword id"
// @Param        location    formData  string  false  "place name"
// @Param        latitude    formData  number  false  "latitude"
// @Param        longitude   formData  number  false  "longitude"
// @Success      201         {object}  domain.Photo
// @Failure      400         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      413         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /photos/upload [post]
func (h *PhotoHandler) HandleUploadPhoto(ctx *gin.Context) {
	limitBody(ctx, h.conf.MaxUploadBytes)

	var form request.UploadPhotoForm
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

	photo, err := h.svc.UploadPhoto(ctx.Request.Context(), form.UserID, form.KeywordID, image, form.GeoForm.ToDomain())
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleUploadPhoto -> h.svc.UploadPhoto", err))
		return
	}

	ctx.JSON(http.StatusCreated, photo)
}

// HandleListPhotos godoc
// @Summary      List keyword photos
// @Tags         photos
// @Produce      json
// @Param        keyword_id  query     int  false  "keyword id"
// @Param        user_id     query     int  false  "uploader id"
// @Param        limit       query     int  false  "page size"
// @Param        offset      query     int  false  "page offset"
// @Success      200         {array}   domain.Photo
// @Failure      400         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /photos [get]
func (h *PhotoHandler) HandleListPhotos(ctx *gin.Context) {
	var q request.ListPhotosQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := q.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	photos, err := h.svc.ListPhotos(ctx.Request.Context(), domain.PhotoFilter{
		KeywordID: q.KeywordID,
		UserID:    q.UserID,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleListPhotos -> h.svc.ListPhotos", err))
		return
	}

	ctx.JSON(http.StatusOK, photos)
}

// HandleGetPhoto godoc
// @Summary      Get a photo by ID
// @Tags         photos
// @Produce      json
// @Param        photoID  path      int  true  "photo id"
// @Success      200      {object}  domain.Photo
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /photos/{photoID} [get]
func (h *PhotoHandler) HandleGetPhoto(ctx *gin.Context) {
	photoID, respErr := parseID(ctx, "photoID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	photo, err := h.svc.GetPhoto(ctx.Request.Context(), photoID)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleGetPhoto -> h.svc.GetPhoto", err))
		return
	}

	ctx.JSON(http.StatusOK, photo)
}

// HandleLikePhoto godoc
// @Summary      Like a photo
// @Tags         photos
// @Produce      json
// @Param        photoID  path      int  true  "photo id"
// @Param        user_id  query     int  true  "caller id"
// @Success      201      {object}  domain.Like
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /photos/{photoID}/like [post]
func (h *PhotoHandler) HandleLikePhoto(ctx *gin.Context) {
	photoID, respErr := parseID(ctx, "photoID")
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

	like, err := h.svc.LikePhoto(ctx.Request.Context(), caller.UserID, photoID)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleLikePhoto -> h.svc.LikePhoto", err))
		return
	}

	ctx.JSON(http.StatusCreated, like)
}

// HandleUnlikePhoto godoc
// @Summary      Remove a like
// @Tags         photos
// @Produce      json
// @Param        photoID  path      int  true  "photo id"
// @Param        user_id  query     int  true  "caller id"
// @Success      200      {object}  response.Message
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /photos/{photoID}/like [delete]
func (h *PhotoHandler) HandleUnlikePhoto(ctx *gin.Context) {
	photoID, respErr := parseID(ctx, "photoID")
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

	if err := h.svc.UnlikePhoto(ctx.Request.Context(), caller.UserID, photoID); err != nil {
		response.RenderErr(ctx, serviceErr("HandleUnlikePhoto -> h.svc.UnlikePhoto", err))
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "Like removed"})
}

// HandleSearchPhotos godoc
// @Summary      Search photos by caption or keyword
// @Tags         search
// @Produce      json
// @Param        q        query     string  true   "search text"
// @Param        sort_by  query     string  false  "latest or likes"
// @Param        limit    query     int     false  "page size"
// @Param        offset   query     int     false  "page offset"
// @Success      200      {object}  response.Search
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /search/photos [get]
func (h *PhotoHandler) HandleSearchPhotos(ctx *gin.Context) {
	var q request.SearchQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := q.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sort := domain.PhotoSort(q.SortBy)
	if sort == "" {
		sort = domain.SortLatest
	}

	photos, err := h.svc.SearchPhotos(ctx.Request.Context(), q.Q, sort, q.Limit, q.Offset)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleSearchPhotos -> h.svc.SearchPhotos", err))
		return
	}

	ctx.JSON(http.StatusOK, response.Search{
		Query:  q.Q,
		SortBy: string(sort),
		Count:  len(photos),
		Photos: photos,
	})
}
