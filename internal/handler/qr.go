package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gymcore/access-api/internal/access"
	"github.com/gymcore/access-api/internal/repository"
	"github.com/gymcore/access-api/internal/utils"
)

// QrHandler manages the per-user QR credential: generation, retrieval
// and deletion.  Fetch and generate allow the target user themselves or
// a privileged role; delete is privileged-only.
type QrHandler struct {
	Users *repository.UserRepo
	Qr    *repository.QrRepo
}

func NewQrHandler(u *repository.UserRepo, q *repository.QrRepo) *QrHandler {
	return &QrHandler{Users: u, Qr: q}
}

// requester pulls the authenticated identity out of the context values
// set by the JWT middleware.
func requester(c echo.Context) (uint64, string, bool) {
	id, okID := c.Get("user_id").(uint64)
	role, okRole := c.Get("role").(string)
	return id, role, okID && okRole
}

// targetUserID parses the :id path parameter.
func targetUserID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// GenerateQr creates or replaces the QR token for the target user.  The
// old token value stops resolving as soon as the row is overwritten.
func (h *QrHandler) GenerateQr(c echo.Context) error {
	reqID, reqRole, ok := requester(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, nil, "Access token invalid, missing or expired.")
	}
	userID, err := targetUserID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, nil, "Invalid user id.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, nil, "User not found.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	if !access.Allow(reqRole, reqID, user.ID, true, access.RoleAdmin, access.RoleReceptionist) {
		return respondErr(c, http.StatusForbidden, nil, "You do not have permission to perform this action.")
	}

	token := uuid.NewString()
	if err := h.Qr.Replace(ctx, user.ID, token); err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	qrImage, err := utils.QrDataURL(token)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	return respondOK(c, http.StatusCreated, echo.Map{
		"user_id":         user.ID,
		"qr_token":        token,
		"qr_image_base64": qrImage,
	}, "QR code generated.")
}

// GetQr returns the target user's current QR token and its rendered
// image.
func (h *QrHandler) GetQr(c echo.Context) error {
	reqID, reqRole, ok := requester(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, nil, "Access token invalid, missing or expired.")
	}
	userID, err := targetUserID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, nil, "Invalid user id.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, nil, "User not found.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	if !access.Allow(reqRole, reqID, user.ID, true, access.RoleAdmin, access.RoleReceptionist) {
		return respondErr(c, http.StatusForbidden, nil, "You do not have permission to perform this action.")
	}

	qr, err := h.Qr.GetByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, nil, "No QR code found for the user.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	qrImage, err := utils.QrDataURL(qr.QrToken)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	return respondOK(c, http.StatusOK, echo.Map{
		"user_id":         user.ID,
		"qr_token":        qr.QrToken,
		"qr_image_base64": qrImage,
	}, "QR code retrieved.")
}

// DeleteQr removes the target user's QR token.  Unlike fetch and
// generate there is no self-service exception: the route runs behind
// RequireRole("admin", "receptionist").
func (h *QrHandler) DeleteQr(c echo.Context) error {
	userID, err := targetUserID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, nil, "Invalid user id.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, nil, "User not found.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	if _, err := h.Qr.GetByUser(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, nil, "No QR code found for the user.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}
	if err := h.Qr.DeleteByUser(ctx, user.ID); err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	return respondOK(c, http.StatusOK, echo.Map{"user_id": user.ID}, "QR code deleted.")
}
