package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/loca-app/loca-api/internal/api/handler/v1/response"
	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/service"
)

const imageField = "file"

var (
	notFoundErrs = []error{
		service.ErrUserNotFound,
		service.ErrContestNotFound,
		service.ErrContestPhotoNotFound,
		service.ErrKeywordNotFound,
		service.ErrPhotoNotFound,
		service.ErrLikeNotFound,
	}
	invalidStateErrs = []error{
		service.ErrContestNotActive,
		service.ErrContestNotCompleted,
	}
	badRequestErrs = []error{
		service.ErrInsufficientPoints,
		service.ErrInvalidImage,
		service.ErrNegativeStake,
	}
	conflictErrs = []error{
		service.ErrAlreadyLiked,
		service.ErrNicknameExists,
		service.ErrKeywordExists,
	}
)

// serviceErr maps an error returned by a service to its HTTP rendering.
// Anything unclassified, including storage and integrity failures, is a 500.
func serviceErr(op string, err error) *response.Err {
	for _, target := range notFoundErrs {
		if errors.Is(err, target) {
			return response.ErrResourceNotFound(target)
		}
	}

	if errors.Is(err, service.ErrNotContestOwner) {
		return response.ErrPermissionDenied(service.ErrNotContestOwner)
	}

	for _, target := range invalidStateErrs {
		if errors.Is(err, target) {
			return response.ErrInvalidState(target)
		}
	}

	for _, target := range badRequestErrs {
		if errors.Is(err, target) {
			return response.ErrBadRequest(err)
		}
	}

	for _, target := range conflictErrs {
		if errors.Is(err, target) {
			return response.ErrConflict(target)
		}
	}

	return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
}

func parseID(ctx *gin.Context, param string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s: %q", param, ctx.Param(param)))
	}

	return uint(id), nil
}

// limitBody caps the request body so oversized uploads fail while the form is parsed.
func limitBody(ctx *gin.Context, maxUploadBytes int64) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxUploadBytes+1<<20)
}

func bindErr(err error, maxUploadBytes int64) *response.Err {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return response.ErrPayloadTooLarge(maxUploadBytes)
	}

	return response.ErrBadRequest(err)
}

func readImage(ctx *gin.Context, maxUploadBytes int64) (domain.Image, *response.Err) {
	header, err := ctx.FormFile(imageField)
	if err != nil {
		return domain.Image{}, bindErr(fmt.Errorf("%s is required: %w", imageField, err), maxUploadBytes)
	}

	if header.Size > maxUploadBytes {
		return domain.Image{}, response.ErrPayloadTooLarge(maxUploadBytes)
	}

	f, err := header.Open()
	if err != nil {
		return domain.Image{}, response.ErrBadRequest(fmt.Errorf("header.Open -> %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return domain.Image{}, response.ErrBadRequest(fmt.Errorf("io.ReadAll -> %w", err))
	}
	if int64(len(data)) > maxUploadBytes {
		return domain.Image{}, response.ErrPayloadTooLarge(maxUploadBytes)
	}
	if len(data) == 0 {
		return domain.Image{}, response.ErrBadRequest(errors.New("uploaded file is empty"))
	}

	return domain.Image{
		Filename: header.Filename,
		Data:     data,
	}, nil
}
