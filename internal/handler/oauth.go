package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gymcore/access-api/internal/config"
	"github.com/gymcore/access-api/internal/credential"
	"github.com/gymcore/access-api/internal/model"
	"github.com/gymcore/access-api/internal/queue"
	"github.com/gymcore/access-api/internal/repository"
	notifier "github.com/gymcore/access-api/internal/service"
	"github.com/gymcore/access-api/internal/utils"
)

// clientRoleID is assigned to every self-registered member.
const clientRoleID uint64 = 5

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// oauthPage carries the data every OAuth template can reference.  A
// single struct keeps missing-field rendering impossible: unset fields
// are empty strings, which the templates treat as absent.
type oauthPage struct {
	RedirectURI  string
	Error        string
	Info         string
	Email        string
	OldEmail     string
	Token        string
	UserID       string
	OldFullName  string
	OldPhone     string
	OldBirthDate string
	OldGender    string
}

// OAuthHandler implements the browser-facing flows: login, registration,
// password recovery and profile completion.  Pages render server-side;
// on success the browser is redirected to the caller-supplied
// redirect_uri with the access token appended as a query parameter.
type OAuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Roles    *repository.RoleRepo
	Recovery *credential.Recovery
	Profiles *repository.ProfileRepo
}

func NewOAuthHandler(cfg config.Config, u *repository.UserRepo, r *repository.RoleRepo, rec *credential.Recovery, p *repository.ProfileRepo) *OAuthHandler {
	return &OAuthHandler{Cfg: cfg, Users: u, Roles: r, Recovery: rec, Profiles: p}
}

// sanitizeRedirect parses a caller-supplied redirect_uri.  Only absolute
// URLs are accepted; anything else sends the browser back to the login
// page instead of redirecting into the void.
func sanitizeRedirect(raw string) (*url.URL, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

// issueAccess mints the access token a browser session receives on the
// redirect.  No refresh token is persisted for browser flows: the
// redirect can only carry the access token, so a stored refresh secret
// would be a credential nobody ever holds.  When the access token
// expires the browser signs in again through the form.
func (h *OAuthHandler) issueAccess(ctx context.Context, user model.User) (utils.AccessToken, error) {
	role, err := h.Roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return utils.AccessToken{}, err
	}
	return utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, user.UUID, role.Name, role.ID, h.Cfg.AccessTTLMin)
}

// redirectWithToken appends the access token to the redirect URL and
// sends the browser there.
func redirectWithToken(c echo.Context, target *url.URL, accessToken string) error {
	qs := target.Query()
	qs.Set("access_token", accessToken)
	target.RawQuery = qs.Encode()
	return c.Redirect(http.StatusFound, target.String())
}

// ----- Views -----

func (h *OAuthHandler) ShowLogin(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", oauthPage{RedirectURI: c.QueryParam("redirect_uri")})
}

func (h *OAuthHandler) ShowRegister(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", oauthPage{RedirectURI: c.QueryParam("redirect_uri")})
}

func (h *OAuthHandler) ShowForgotPassword(c echo.Context) error {
	return c.Render(http.StatusOK, "forgotpassword.html", oauthPage{RedirectURI: c.QueryParam("redirect_uri")})
}

func (h *OAuthHandler) ShowResetPassword(c echo.Context) error {
	return c.Render(http.StatusOK, "resetpassword.html", oauthPage{RedirectURI: c.QueryParam("redirect_uri")})
}

func (h *OAuthHandler) ShowRegisterProfile(c echo.Context) error {
	return c.Render(http.StatusOK, "registerprofile.html", oauthPage{
		RedirectURI: c.QueryParam("redirect_uri"),
		UserID:      c.Param("user_id"),
	})
}

// ----- Login -----

// Login verifies the submitted credentials.  A missing user and a wrong
// password render the same generic error, so the form does not reveal
// which emails are registered.
func (h *OAuthHandler) Login(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")
	redirectURI := c.FormValue("redirect_uri")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil || !utils.VerifyPassword(user.PasswordHash, password) {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Printf("oauth: login lookup failed: %v", err)
		}
		return c.Render(http.StatusOK, "login.html", oauthPage{
			RedirectURI: redirectURI,
			Error:       "Invalid credentials",
			OldEmail:    email,
		})
	}

	access, err := h.issueAccess(ctx, user)
	if err != nil {
		return c.Render(http.StatusOK, "login.html", oauthPage{
			RedirectURI: redirectURI,
			Error:       "Something went wrong. Try again.",
			OldEmail:    email,
		})
	}

	target, ok := sanitizeRedirect(redirectURI)
	if !ok {
		return c.Redirect(http.StatusFound, "/oauth/login")
	}
	return redirectWithToken(c, target, access.Token)
}

// ----- Registration -----

// Register creates a member account (role 5) and moves on to profile
// completion.  Tokens are not minted until the profile step finishes.
func (h *OAuthHandler) Register(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")
	redirectURI := c.FormValue("redirect_uri")

	renderErr := func(msg string) error {
		return c.Render(http.StatusOK, "register.html", oauthPage{
			RedirectURI: redirectURI,
			Error:       msg,
			OldEmail:    email,
		})
	}

	if !utils.StrongPassword(password) {
		return renderErr("The password must be at least 8 characters with an uppercase letter, a lowercase letter, a digit and a symbol.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Users.Create(ctx, email, password, uuid.NewString(), clientRoleID, true, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return renderErr("The email address is already registered")
		}
		return renderErr("Something went wrong. Try again.")
	}

	return c.Render(http.StatusOK, "registerprofile.html", oauthPage{
		RedirectURI: redirectURI,
		UserID:      strconv.FormatUint(userID, 10),
	})
}

// ----- Forgot / reset password -----

// ForgotPassword issues a recovery code and mails it.  Like the JSON
// endpoint this reveals whether the email is registered.
func (h *OAuthHandler) ForgotPassword(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	redirectURI := c.FormValue("redirect_uri")

	if email == "" {
		return c.Render(http.StatusOK, "forgotpassword.html", oauthPage{
			RedirectURI: redirectURI,
			Error:       "Please enter an email address.",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		return c.Render(http.StatusOK, "forgotpassword.html", oauthPage{
			RedirectURI: redirectURI,
			Error:       "The email address is not registered.",
			Email:       email,
		})
	}

	code, err := h.Recovery.Issue(ctx, user.ID)
	if err != nil {
		return c.Render(http.StatusOK, "forgotpassword.html", oauthPage{
			RedirectURI: redirectURI,
			Error:       "Something went wrong. Try again.",
			Email:       email,
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ev := queue.EmailRequestedEvent{
			To:      email,
			From:    h.Cfg.MailFrom,
			Subject: "Recover your password",
			Body:    "Your recovery code is: " + code,
		}
		if err := notifier.PublishEmail(ctx, ev); err != nil {
			log.Printf("oauth: recovery mail for %s not delivered: %v", email, err)
		}
	}()

	return c.Render(http.StatusOK, "resetpassword.html", oauthPage{
		RedirectURI: redirectURI,
		Email:       email,
		Info:        "A recovery code has been sent to your email.",
	})
}

// ResetPassword consumes the recovery code, sets the new password and,
// unlike the JSON endpoint, signs the user straight in via the redirect.
func (h *OAuthHandler) ResetPassword(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	token := strings.TrimSpace(c.FormValue("token"))
	password := c.FormValue("password")
	confirmation := c.FormValue("password_confirmation")
	redirectURI := c.FormValue("redirect_uri")

	renderErr := func(msg string) error {
		return c.Render(http.StatusOK, "resetpassword.html", oauthPage{
			RedirectURI: redirectURI,
			Error:       msg,
			Email:       email,
			Token:       token,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		return renderErr("No user was found with the provided email.")
	}

	otp, err := h.Recovery.Verify(ctx, user.ID, token)
	if err != nil {
		return renderErr("The provided token is not correct.")
	}

	if !utils.StrongPassword(password) {
		return renderErr("The new password does not meet the security requirements.")
	}
	if password != confirmation {
		return renderErr("The passwords do not match.")
	}

	if err := h.Recovery.Consume(ctx, otp.ID); err != nil {
		return renderErr("Something went wrong. Try again.")
	}
	if err := h.Users.UpdatePassword(ctx, user.ID, password, h.Cfg.BcryptCost); err != nil {
		return renderErr("Something went wrong. Try again.")
	}

	access, err := h.issueAccess(ctx, user)
	if err != nil {
		return renderErr("Something went wrong. Try again.")
	}

	target, ok := sanitizeRedirect(redirectURI)
	if !ok {
		return c.Redirect(http.StatusFound, "/oauth/login")
	}
	return redirectWithToken(c, target, access.Token)
}

// ----- Profile completion -----

// RegisterProfile records the member's personal data and issues the
// first token pair of the account.  A user gets exactly one profile.
func (h *OAuthHandler) RegisterProfile(c echo.Context) error {
	redirectURI := c.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = c.QueryParam("redirect_uri")
	}
	userIDRaw := c.Param("user_id")
	fullName := strings.TrimSpace(c.FormValue("full_name"))
	phone := strings.TrimSpace(c.FormValue("phone"))
	birthDateRaw := c.FormValue("birth_date")
	gender := c.FormValue("gender")

	renderErr := func(msg string) error {
		return c.Render(http.StatusOK, "registerprofile.html", oauthPage{
			RedirectURI:  redirectURI,
			Error:        msg,
			UserID:       userIDRaw,
			OldFullName:  fullName,
			OldPhone:     phone,
			OldBirthDate: birthDateRaw,
			OldGender:    gender,
		})
	}

	userID, err := strconv.ParseUint(userIDRaw, 10, 64)
	if err != nil || fullName == "" || birthDateRaw == "" || gender == "" {
		return renderErr("Missing required fields: full name, birth date or gender.")
	}

	birthDate, err := time.Parse("2006-01-02", birthDateRaw)
	if err != nil {
		return renderErr("The birth date is not valid.")
	}

	if phone != "" && !phonePattern.MatchString(phone) {
		return renderErr("The phone number must be 10 digits.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profile := model.Profile{
		UserID:    userID,
		FullName:  fullName,
		BirthDate: birthDate,
		Gender:    gender,
	}
	if phone != "" {
		profile.Phone = &phone
	}
	if err := h.Profiles.Create(ctx, &profile); err != nil {
		if errors.Is(err, repository.ErrProfileExists) {
			return renderErr("A profile already exists for this user.")
		}
		log.Printf("oauth: profile create failed: %v", err)
		return renderErr("An error occurred while creating the profile. Try again.")
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return renderErr("The associated user was not found.")
	}

	access, err := h.issueAccess(ctx, user)
	if err != nil {
		return renderErr("An error occurred while creating the profile. Try again.")
	}

	target, ok := sanitizeRedirect(redirectURI)
	if !ok {
		return c.Redirect(http.StatusFound, "/oauth/login")
	}
	return redirectWithToken(c, target, access.Token)
}
