package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/hirelane/recruitment-service/internal/api/dto"
	"github.com/hirelane/recruitment-service/internal/auth"
	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/service"
	"github.com/hirelane/recruitment-service/internal/verification"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

const (
	PasswordResetPath         = "/accounts/password/reset"
	PasswordResetDonePath     = "/accounts/password/reset/done"
	PasswordResetCompletePath = "/accounts/password/reset/complete"

	flagResetDone     = "can_view_password_reset_done"
	flagResetComplete = "can_view_password_reset_complete"
)

// AccountsHandler exposes registration, login and the emailed link flows.
type AccountsHandler struct {
	auth     *service.AuthService
	profiles *service.ProfileService
	sessions *session.Store
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(authService *service.AuthService, profiles *service.ProfileService, sessions *session.Store) *AccountsHandler {
	return &AccountsHandler{auth: authService, profiles: profiles, sessions: sessions}
}

// Register handles POST /accounts/register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	birth, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		FirstNames:       req.FirstNames,
		LastNames:        req.LastNames,
		Email:            req.Email,
		Username:         req.Username,
		BirthDate:        birth,
		NationalIDType:   domain.NationalIDType(req.NationalIDType),
		NationalIDNumber: req.NationalIDNumber,
		AcceptedTOS:      req.AcceptedTOS,
		Password1:        req.Password1,
		Password2:        req.Password2,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user":    userResponse(*user, nil),
			"message": "check your inbox for the activation link",
		},
	})
}

// Verify handles GET /accounts/register/verify/:uidb64/:token.
func (h *AccountsHandler) Verify(c *fiber.Ctx) error {
	return h.linkFlow(c, h.auth.VerificationFlow(), "Registration complete", "Verification unsuccessful")
}

// ResetConfirmForm handles GET /accounts/password/reset/confirm/:uidb64/:token.
func (h *AccountsHandler) ResetConfirmForm(c *fiber.Ctx) error {
	return h.linkFlow(c, h.auth.ResetFlow(), "Enter new password", "Password reset unsuccessful")
}

// linkFlow drives one request through flow. A freshly accepted token is moved into the
// session and the caller is redirected to the sentinel URL; link failures render a 200.
func (h *AccountsHandler) linkFlow(c *fiber.Ctx, flow *verification.Flow, okTitle, failTitle string) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	out, err := flow.Handle(c.UserContext(), c.Params("uidb64"), c.Params("token"), sess)
	if err != nil {
		return err
	}
	if err := sess.Save(); err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set("Referrer-Policy", "no-referrer")
	if out.Redirect() {
		return c.Redirect(out.RedirectTo, http.StatusFound)
	}
	if !out.ValidLink {
		return c.JSON(dto.LinkResponse{ValidLink: false, Title: failTitle})
	}
	return c.JSON(dto.LinkResponse{ValidLink: true, Title: okTitle, Username: out.User.Username})
}

// ResetConfirm handles POST /accounts/password/reset/confirm/:uidb64/:token. Only the sentinel
// URL accepts a new password; the token itself must already sit in the session.
func (h *AccountsHandler) ResetConfirm(c *fiber.Ctx) error {
	invalid := dto.LinkResponse{ValidLink: false, Title: "Password reset unsuccessful"}
	if c.Params("token") != h.auth.ResetFlow().Sentinel {
		return c.JSON(invalid)
	}
	var req dto.SetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	err = h.auth.ResetPassword(c.UserContext(), c.Params("uidb64"), sess, req.NewPassword1, req.NewPassword2)
	if errors.Is(err, service.ErrInvalidLink) {
		return c.JSON(invalid)
	}
	if err != nil {
		return err
	}
	sess.Set(flagResetComplete, true)
	if err := sess.Save(); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_reset", "next": PasswordResetCompletePath}})
}

// RequestPasswordReset handles POST /accounts/password/reset. The response is the same whether
// or not the address belongs to an account.
func (h *AccountsHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	sess.Set(flagResetDone, true)
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"status": "reset_requested", "next": PasswordResetDonePath}})
}

// ResetDone handles GET /accounts/password/reset/done.
func (h *AccountsHandler) ResetDone(c *fiber.Ctx) error {
	return h.oneShot(c, flagResetDone, "Password reset sent")
}

// ResetComplete handles GET /accounts/password/reset/complete.
func (h *AccountsHandler) ResetComplete(c *fiber.Ctx) error {
	return h.oneShot(c, flagResetComplete, "Password reset complete")
}

// oneShot renders a confirmation page once per flag; without the flag the caller is sent back
// to the reset form.
func (h *AccountsHandler) oneShot(c *fiber.Ctx, flag, title string) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	if allowed, _ := sess.Get(flag).(bool); !allowed {
		return c.Redirect(PasswordResetPath, http.StatusFound)
	}
	sess.Delete(flag)
	if err := sess.Save(); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"title": title}})
}

// Login handles POST /accounts/login.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(*res.User, res.Groups),
			"auth": dto.AuthResponse{Token: res.Token, ExpiresAt: res.Access.ExpiresAt},
		},
	})
}

// Logout handles POST /accounts/logout.
func (h *AccountsHandler) Logout(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), claims); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangePassword handles POST /accounts/password/change.
func (h *AccountsHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.PasswordChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), principal.User.ID, req.OldPassword, req.NewPassword1, req.NewPassword2); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
}

// Me handles GET /accounts/me.
func (h *AccountsHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	account, err := h.profiles.GetAccount(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accountResponse(account)})
}

// UpdateProfile handles PATCH /accounts/me/profile.
func (h *AccountsHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ProfileUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.ProfileInput{Bio: req.Bio}
	if req.Gender != nil {
		g := domain.Gender(*req.Gender)
		in.Gender = &g
	}
	profile, err := h.profiles.UpdateProfile(c.UserContext(), principal.User.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(*profile)})
}

// PictureUpload handles POST /accounts/me/picture.
func (h *AccountsHandler) PictureUpload(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.PictureUploadRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	upload, err := h.profiles.PictureUpload(c.UserContext(), principal.User.ID, req.Filename, req.ContentType)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.PictureUploadResponse{
		Key:       upload.Key,
		URL:       upload.URL,
		Method:    upload.Method,
		ExpiresAt: upload.ExpiresAt,
	}})
}

// PublicProfile handles GET /accounts/profile/:username.
func (h *AccountsHandler) PublicProfile(c *fiber.Ctx) error {
	profile, err := h.profiles.PublicProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PublicProfileResponse{
		Username:   profile.Username,
		FullName:   profile.FullName,
		Gender:     string(profile.Gender),
		Bio:        profile.Bio,
		PictureKey: profile.PictureKey,
	}})
}
