package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymcore/access-api/internal/config"
	"github.com/gymcore/access-api/internal/queue"
	"github.com/gymcore/access-api/internal/repository"
	notifier "github.com/gymcore/access-api/internal/service"
)

// NotificationHandler exposes the direct push/email delivery endpoints.
// Both publish to the broker; the consumer owns actual delivery.  Unlike
// the recovery-mail path, these endpoints exist to send a notification,
// so a publish failure here is surfaced as a 500 instead of being
// swallowed.
type NotificationHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewNotificationHandler(cfg config.Config, u *repository.UserRepo) *NotificationHandler {
	return &NotificationHandler{Cfg: cfg, Users: u}
}

type pushReq struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
type emailReq struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendPush delivers a push notification to the caller's own registered
// device token.
func (h *NotificationHandler) SendPush(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, nil, "Access token invalid, missing or expired.")
	}

	var req pushReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, nil, "Invalid request body.")
	}
	if req.Title == "" || req.Body == "" {
		return respondErr(c, http.StatusBadRequest, nil, "Missing parameters (title, body).")
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
	if user.FCMToken == nil || *user.FCMToken == "" {
		return respondErr(c, http.StatusBadRequest, nil, "No device token is registered for this account.")
	}

	ev := queue.PushRequestedEvent{
		UserID:      user.ID,
		DeviceToken: *user.FCMToken,
		Title:       req.Title,
		Body:        req.Body,
	}
	if err := notifier.PublishPush(ctx, ev); err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Could not send the push notification.")
	}

	return respondOK(c, http.StatusOK, echo.Map{"user_id": user.ID}, "Push notification sent.")
}

// SendEmail delivers an email to the authenticated caller's own address.
func (h *NotificationHandler) SendEmail(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, nil, "Access token invalid, missing or expired.")
	}

	var req emailReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, nil, "Invalid request body.")
	}
	if req.Subject == "" || req.Body == "" {
		return respondErr(c, http.StatusBadRequest, nil, "Missing parameters (subject, body).")
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

	ev := queue.EmailRequestedEvent{
		To:      user.Email,
		From:    h.Cfg.MailFrom,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := notifier.PublishEmail(ctx, ev); err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Could not send the email.")
	}

	return respondOK(c, http.StatusOK, echo.Map{"user_id": user.ID, "email": user.Email}, "Email sent.")
}
