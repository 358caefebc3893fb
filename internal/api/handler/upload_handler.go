package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
	"github.com/hyceate/moody-sub000/internal/core/service"
	"github.com/hyceate/moody-sub000/internal/infrastructure/storage"
	"github.com/hyceate/moody-sub000/internal/pkg/metrics"
)

// UploadHandler accepts image uploads for pins and avatars.
type UploadHandler struct {
	images   ports.ImageStore
	users    ports.UserService
	maxBytes int64
	log      zerolog.Logger
}

func NewUploadHandler(images ports.ImageStore, users ports.UserService, maxBytes int64, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{images: images, users: users, maxBytes: maxBytes, log: log}
}

type uploadResponse struct {
	Path   string `json:"path"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type avatarResponse struct {
	uploadResponse
	User *domain.User `json:"user"`
}

// Upload stores a pin image under the caller's upload prefix. The returned
// path is passed to the createPin mutation.
//
// @Summary      Upload a pin image
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "jpeg, png, gif or webp image"
// @Success      201    {object}  uploadResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      413    {object}  map[string]string
// @Security     BearerAuth
// @Router       /upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	res, err := h.store(c, service.PinImagePrefix(userID))
	if err != nil {
		return err
	}
	metrics.UploadsTotal.WithLabelValues("pin").Inc()
	return c.JSON(http.StatusCreated, res)
}

// UploadAvatar stores an image and makes it the caller's avatar.
//
// @Summary      Upload an avatar
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "jpeg, png, gif or webp image"
// @Success      201    {object}  avatarResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      413    {object}  map[string]string
// @Security     BearerAuth
// @Router       /upload/avatar [post]
func (h *UploadHandler) UploadAvatar(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	res, err := h.store(c, service.AvatarImagePrefix(userID))
	if err != nil {
		return err
	}
	user, err := h.users.UpdateAvatar(c.Request().Context(), userID, res.Path)
	if err != nil {
		h.discard(c.Request().Context(), res.Path)
		return err
	}
	metrics.UploadsTotal.WithLabelValues("avatar").Inc()
	return c.JSON(http.StatusCreated, avatarResponse{uploadResponse: res, User: user})
}

func (h *UploadHandler) store(c echo.Context, prefix string) (uploadResponse, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return uploadResponse{}, echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return uploadResponse{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image is too large")
	}
	src, err := fh.Open()
	if err != nil {
		return uploadResponse{}, echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer src.Close()

	var body io.Reader = src
	if h.maxBytes > 0 {
		body = io.LimitReader(src, h.maxBytes)
	}
	img, body, err := storage.Sniff(body)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return uploadResponse{}, echo.NewHTTPError(http.StatusBadRequest, "image must be jpeg, png, gif or webp")
		}
		return uploadResponse{}, echo.NewHTTPError(http.StatusBadRequest, "unreadable image")
	}

	key, err := storage.NewKey(prefix, img.ContentType)
	if err != nil {
		return uploadResponse{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.images.Save(c.Request().Context(), key, body, img.ContentType); err != nil {
		return uploadResponse{}, err
	}

	h.log.Info().Str("key", key).Int64("bytes", fh.Size).Msg("image uploaded")
	return uploadResponse{Path: key, URL: h.images.URL(key), Width: img.Width, Height: img.Height}, nil
}

func (h *UploadHandler) discard(ctx context.Context, key string) {
	if err := h.images.Delete(context.WithoutCancel(ctx), key); err != nil {
		h.log.Warn().Err(err).Str("key", key).Msg("failed to discard upload")
	}
}
