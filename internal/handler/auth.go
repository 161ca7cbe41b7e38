package handler

import (
	"context" // context with cancellation for DB calls
	"errors"  // sentinel comparisons against repository errors
	"log"     // anomaly logging for refresh token reuse
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"      // external user identifiers
	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/gymcore/access-api/internal/config"     // app configuration
	"github.com/gymcore/access-api/internal/credential" // OTP and refresh-token lifecycle services
	"github.com/gymcore/access-api/internal/queue"      // notification event payloads
	"github.com/gymcore/access-api/internal/repository" // DB repositories
	notifier "github.com/gymcore/access-api/internal/service"
	"github.com/gymcore/access-api/internal/utils" // helper functions (hashing, token issuing)
)

// reuseAnomalyWindow is how close together two exchanges of the same
// refresh token must be before the second one is logged as a
// concurrent-use anomaly.  Refresh tokens are deliberately non-rotating,
// so reuse itself is legal; only suspiciously rapid reuse is flagged.
const reuseAnomalyWindow = 10 * time.Second

// AuthHandler bundles dependencies for the credential endpoints: token
// exchange, logout, and the password recovery and change flows.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Roles    *repository.RoleRepo
	Sessions *credential.Sessions
	Recovery *credential.Recovery
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, r *repository.RoleRepo, s *credential.Sessions, rec *credential.Recovery) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Roles: r, Sessions: s, Recovery: rec}
}

// ----- DTOs -----

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   uint64 `json:"role_id"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type forgotPasswordReq struct {
	Email string `json:"email"`
}
type resetPasswordReq struct {
	Email                string `json:"email"`
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}
type changePasswordReq struct {
	CurrentPassword         string `json:"current_password"`
	NewPassword             string `json:"new_password"`
	NewPasswordConfirmation string `json:"new_password_confirmation"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// issueTokens mints an access/refresh pair for a user.  The refresh
// secret's hash is persisted by the session service.  Every successful
// login, registration, reset, profile completion and refresh goes
// through here.
func (h *AuthHandler) issueTokens(ctx context.Context, userID uint64, userUUID string, roleID uint64) (tokenPart, tokenPart, error) {
	role, err := h.Roles.GetByID(ctx, roleID)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, userUUID, role.Name, role.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	refresh, err := h.Sessions.Mint(ctx, userID)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	return tokenPart{Token: access.Token, Expires: access.Exp},
		tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, nil
}

// CreateUser: back-office bootstrap endpoint that creates an active user
// with an explicit role.  Registration for members goes through the
// OAuth flow instead, but the password policy applies here all the same.
func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, nil, "Invalid request body.")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.RoleID == 0 {
		return respondErr(c, http.StatusBadRequest, nil, "email, password and role_id are required.")
	}
	if !utils.StrongPassword(req.Password) {
		return respondErr(c, http.StatusBadRequest, nil, "The password does not meet the security requirements.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, uuid.NewString(), req.RoleID, true, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return respondErr(c, http.StatusConflict, echo.Map{"email": req.Email}, "The email address is already registered.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Could not create the user.")
	}
	return respondOK(c, http.StatusCreated, echo.Map{"user_id": uid, "email": req.Email}, "User created.")
}

// Refresh: exchange a presented refresh token for a fresh access/refresh
// pair.  The presented token stays valid after the exchange
// (non-rotating, multi-device friendly); rapid reuse of the same token is
// logged as a possible concurrent-use anomaly but never rejected.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return respondErr(c, http.StatusBadRequest, nil, "refresh_token is required.")
	}
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, lastUsed, err := h.Sessions.Exchange(ctx, raw)
	if err != nil {
		if errors.Is(err, credential.ErrRefreshInvalid) {
			return respondErr(c, http.StatusUnauthorized, nil, "Invalid or expired refresh token.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}
	if lastUsed != nil && time.Since(*lastUsed) < reuseAnomalyWindow {
		log.Printf("auth: refresh token for user %d reused %s after previous exchange", userID, time.Since(*lastUsed))
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusUnauthorized, nil, "Invalid or expired refresh token.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	access, refresh, err := h.issueTokens(ctx, u.ID, u.UUID, u.RoleID)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}
	return respondOK(c, http.StatusOK, echo.Map{
		"token":        access,
		"refreshToken": refresh,
	}, "Token refreshed.")
}

// Logout: delete every refresh token the caller owns.  This is
// deliberately "logout everywhere": all devices are signed out, not just
// the session presenting the request.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, nil, "Access token invalid, missing or expired.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.RevokeAll(ctx, userID); err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Could not close the session. Try again.")
	}
	return respondOK(c, http.StatusOK, nil, "Session closed.")
}

// ForgotPassword: issue a recovery code for a registered email and send
// it by mail.  This endpoint intentionally reveals whether the email is
// registered; login does not.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return respondErr(c, http.StatusBadRequest, nil, "email is required.")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, echo.Map{"email": email}, "The email address is not registered.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	code, err := h.Recovery.Issue(ctx, user.ID)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	// Mail delivery is fire-and-forget: the OTP is already committed and
	// a broker outage must not fail this request.
	h.sendRecoveryMail(email, code)

	return respondOK(c, http.StatusOK, echo.Map{"email": email}, "A recovery code has been sent to your email address.")
}

func (h *AuthHandler) sendRecoveryMail(email, code string) {
	ev := queue.EmailRequestedEvent{
		To:      email,
		From:    h.Cfg.MailFrom,
		Subject: "Recover your password",
		Body:    "Your recovery code is: " + code,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := notifier.PublishEmail(ctx, ev); err != nil {
			log.Printf("auth: recovery mail for %s not delivered: %v", email, err)
		}
	}()
}

// ResetPassword: consume a recovery code and set a new password.  The
// code is single-use; a consumed or superseded code fails the lookup the
// same way a wrong one does.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, nil, "Invalid request body.")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, echo.Map{"email": email}, "No user was found with the provided email.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	otp, err := h.Recovery.Verify(ctx, user.ID, strings.TrimSpace(req.Token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, echo.Map{"email": email}, "The provided token is not correct.")
		}
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	if !utils.StrongPassword(req.Password) {
		return respondErr(c, http.StatusBadRequest, nil, "The new password does not meet the security requirements.")
	}
	if req.Password != req.PasswordConfirmation {
		return respondErr(c, http.StatusBadRequest, nil, "The passwords do not match.")
	}

	if err := h.Recovery.Consume(ctx, otp.ID); err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}
	if err := h.Users.UpdatePassword(ctx, user.ID, req.Password, h.Cfg.BcryptCost); err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}

	return respondOK(c, http.StatusOK, echo.Map{"email": email}, "Password reset successfully. You can now sign in with your new password.")
}

// ChangePassword: authenticated password change, verifying the current
// password before applying the policy to the new one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, nil, "Access token invalid, missing or expired.")
	}

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, nil, "Invalid request body.")
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

	if !utils.VerifyPassword(user.PasswordHash, req.CurrentPassword) {
		return respondErr(c, http.StatusUnauthorized, nil, "The current password is incorrect.")
	}
	if !utils.StrongPassword(req.NewPassword) {
		return respondErr(c, http.StatusBadRequest, nil, "The new password does not meet the security requirements.")
	}
	if req.NewPassword != req.NewPasswordConfirmation {
		return respondErr(c, http.StatusBadRequest, nil, "The new password confirmation does not match.")
	}

	if err := h.Users.UpdatePassword(ctx, user.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return respondErr(c, http.StatusInternalServerError, nil, "Unexpected server error")
	}
	return respondOK(c, http.StatusOK, nil, "Password updated.")
}
