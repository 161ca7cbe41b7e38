package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymcore/access-api/internal/access"
	"github.com/gymcore/access-api/internal/repository"
)

// EntryHandler exposes the physical entry decision and the app-tier
// gate.  The QR endpoint takes no session: the device-presented token
// is the credential.
type EntryHandler struct {
	Decider *access.Decider
	Users   *repository.UserRepo
}

func NewEntryHandler(d *access.Decider, u *repository.UserRepo) *EntryHandler {
	return &EntryHandler{Decider: d, Users: u}
}

type qrEntryReq struct {
	QrToken string `json:"qr_token"`
}

// AccessByQr runs the staged entry pipeline for a scanned QR token and
// renders the verdict.  The response is advisory: the turnstile
// controller acts on it, the service itself unlocks nothing.
func (h *EntryHandler) AccessByQr(c echo.Context) error {
	var req qrEntryReq
	if err := c.Bind(&req); err != nil || req.QrToken == "" {
		return respondErr(c, http.StatusBadRequest, nil, "QR token required.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	decision, err := h.Decider.AuthorizeEntry(ctx, req.QrToken)
	if err != nil {
		// Missing membership rows and driver faults land here. These are
		// internal inconsistencies, not user-facing denials.
		log.Printf("entry: decision failed for token %q: %v", req.QrToken, err)
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	switch decision.Verdict {
	case access.TokenNotRegistered:
		return respondErr(c, http.StatusNotFound, nil, "QR invalid or not registered.")
	case access.UserNotFound:
		return respondErr(c, http.StatusNotFound, nil, "User not found.")
	case access.UserInactive:
		return respondErr(c, http.StatusForbidden, echo.Map{
			"user_id": decision.UserID,
		}, "Inactive user. Contact the front desk.")
	case access.SubscriptionExpired:
		return respondErr(c, http.StatusForbidden, echo.Map{
			"user_id":             decision.UserID,
			"subscription_status": decision.SubscriptionStatus,
		}, "Subscription expired. Entry not allowed.")
	}

	return respondOK(c, http.StatusOK, echo.Map{
		"user_id":             decision.UserID,
		"email":               decision.Email,
		"subscription_status": decision.SubscriptionStatus,
		"membership":          decision.Membership,
		"valid_until":         decision.ValidUntil.Format("2006-01-02"),
		"access_time":         decision.AccessTime.Format(time.RFC3339),
	}, fmt.Sprintf("Entry granted. Welcome %s.", decision.Email))
}

// AccessApp decides whether the caller's role tier may use the
// requesting application.  The role is re-read from the database rather
// than trusted from the token, so a role change takes effect before the
// access token expires.
func (h *EntryHandler) AccessApp(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, nil, "Access token invalid, missing or expired.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusUnauthorized, nil, "User not found in the database.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	app := c.QueryParam("app")
	if app == "" {
		app = access.AppWeb
	}

	if !access.AppAllowed(user.RoleID, app) {
		return respondErr(c, http.StatusUnauthorized, nil, "Access denied.")
	}
	return respondOK(c, http.StatusOK, nil, "Access granted to "+app+".")
}
