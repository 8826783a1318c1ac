package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/psytech/suvichar/internal/catalog"
	"github.com/psytech/suvichar/internal/library"
	"github.com/psytech/suvichar/internal/middleware"
	"github.com/psytech/suvichar/internal/premium"
	"github.com/psytech/suvichar/internal/profile"
	"github.com/psytech/suvichar/internal/session"
)

const (
	previewWidth  = 540
	previewHeight = 960
)

// Handler exposes the gateway over HTTP.
type Handler struct {
	gw     *Gateway
	logger *slog.Logger
}

// NewHandler builds the HTTP handler set.
func NewHandler(gw *Gateway, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{gw: gw, logger: logger}
}

type codeRequest struct {
	Phone string `json:"phone"`
}

type verifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type createProfileRequest struct {
	Purpose string `json:"purpose"`
}

type updateProfileRequest struct {
	Name         *string `json:"name"`
	PhotoURI     *string `json:"photoUri"`
	ShowDate     *bool   `json:"showDate"`
	DateOverride *string `json:"dateOverride"`
	About        *string `json:"about"`
	Contact      *string `json:"contact"`
	Organization *string `json:"organization"`
}

type upgradeRequest struct {
	Plan string `json:"plan"`
}

type downloadRequest struct {
	URI string `json:"uri"`
}

type planOffer struct {
	Plan     premium.Plan `json:"plan"`
	Price    int64        `json:"price"`
	Currency string       `json:"currency"`
	Days     int          `json:"days"`
}

// SendCode handles POST /auth/code.
func (h *Handler) SendCode(c *fiber.Ctx) error {
	var req codeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	phone, err := h.gw.SendCode(c.UserContext(), req.Phone)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"phone": phone, "sent": true})
}

// VerifyCode handles POST /auth/verify.
func (h *Handler) VerifyCode(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	token, err := h.gw.VerifyCode(c.UserContext(), req.Phone, req.Code)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(token)
}

// GetProfile handles GET /profile.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	p, ok, err := h.gw.LoadProfile(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	if !ok {
		return fiber.NewError(http.StatusNotFound, "no profile")
	}
	if err := owned(c, p); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

// CreateProfile handles POST /profile. It returns the stored profile when one
// already exists.
func (h *Handler) CreateProfile(c *fiber.Ctx) error {
	var req createProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	purpose, err := profile.ParsePurpose(req.Purpose)
	if err != nil {
		return h.fail(c, err)
	}
	p, err := h.gw.GetOrCreateProfile(c.UserContext(), middleware.Phone(c), purpose)
	if err != nil {
		return h.fail(c, err)
	}
	if err := owned(c, p); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

// UpdateProfile handles PUT /profile. Omitted fields keep their value.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	p, ok, err := h.gw.LoadProfile(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	if !ok {
		return fiber.NewError(http.StatusNotFound, "no profile")
	}
	if err := owned(c, p); err != nil {
		return h.fail(c, err)
	}

	setString(&p.Name, req.Name)
	setString(&p.PhotoURI, req.PhotoURI)
	setString(&p.DateOverride, req.DateOverride)
	setString(&p.About, req.About)
	setString(&p.Contact, req.Contact)
	setString(&p.Organization, req.Organization)
	if req.ShowDate != nil {
		p.ShowDate = *req.ShowDate
	}

	saved, err := h.gw.SaveProfile(c.UserContext(), p)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(saved)
}

// owned rejects a profile stored for a phone other than the session's.
func owned(c *fiber.Ctx, p profile.Profile) error {
	if p.Phone != middleware.Phone(c) {
		return ErrProfileOwner
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Home handles GET /home. Without a profile the client is sent back to sign-in.
func (h *Handler) Home(c *fiber.Ctx) error {
	home, err := h.gw.Home(c.UserContext(), c.Query("category"))
	if errors.Is(err, ErrNoProfile) {
		return c.Status(http.StatusConflict).JSON(fiber.Map{
			"error":  err.Error(),
			"screen": ScreenUnauthenticated,
		})
	}
	if err != nil {
		return h.fail(c, err)
	}
	if err := owned(c, home.Profile); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(home)
}

// Templates handles GET /templates.
func (h *Handler) Templates(c *fiber.Ctx) error {
	list, v, err := h.gw.Templates(c.UserContext(), c.Query("category"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"variant": v.String(), "templates": list})
}

// Template handles GET /templates/:id.
func (h *Handler) Template(c *fiber.Ctx) error {
	t, err := h.gw.Template(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(t)
}

// Preview handles GET /templates/:id/preview.svg.
func (h *Handler) Preview(c *fiber.Ctx) error {
	t, err := h.gw.Template(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(catalog.PreviewSVG(t, previewWidth, previewHeight))
}

// Categories handles GET /categories.
func (h *Handler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": Categories()})
}

// RandomQuote handles GET /quotes/random.
func (h *Handler) RandomQuote(c *fiber.Ctx) error {
	category := c.Query("category")
	q, err := h.gw.RandomQuote(c.UserContext(), category)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"category": category, "quote": q})
}

// Premium handles GET /premium.
func (h *Handler) Premium(c *fiber.Ctx) error {
	st, err := h.gw.GetPremiumState(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	plans := make([]planOffer, 0, 2)
	for _, p := range []premium.Plan{premium.PlanMonthly, premium.PlanYearly} {
		plans = append(plans, planOffer{
			Plan:     p,
			Price:    p.PriceINR(),
			Currency: premium.CurrencyINR,
			Days:     int(p.Term().Hours() / 24),
		})
	}
	return c.JSON(fiber.Map{"state": st, "plans": plans})
}

// Upgrade handles POST /premium/upgrade.
func (h *Handler) Upgrade(c *fiber.Ctx) error {
	var req upgradeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	plan, err := premium.ParsePlan(req.Plan)
	if err != nil {
		return h.fail(c, err)
	}
	st, receipt, err := h.gw.Upgrade(c.UserContext(), plan, middleware.Phone(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"state": st, "receipt": receipt})
}

// ClearPremium handles DELETE /premium.
func (h *Handler) ClearPremium(c *fiber.Ctx) error {
	if err := h.gw.ClearPremium(c.UserContext()); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Downloads handles GET /downloads.
func (h *Handler) Downloads(c *fiber.Ctx) error {
	refs, err := h.gw.Downloads(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"downloads": refs})
}

// SaveDownload handles POST /downloads.
func (h *Handler) SaveDownload(c *fiber.Ctx) error {
	var req downloadRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if req.URI == "" {
		return fiber.NewError(http.StatusBadRequest, "uri is required")
	}
	saved, refs, err := h.gw.SaveToLibrary(c.UserContext(), req.URI)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"asset": saved, "downloads": refs})
}

// fail maps domain errors to HTTP errors. Unexpected errors are logged and
// reported without detail.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrInvalidPhone),
		errors.Is(err, session.ErrInvalidCode),
		errors.Is(err, profile.ErrInvalidPurpose),
		errors.Is(err, premium.ErrInvalidPlan),
		errors.Is(err, catalog.ErrUnknownCategory):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrCodeNotRequested), errors.Is(err, session.ErrCodeMismatch):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, premium.ErrPaymentDeclined):
		return fiber.NewError(http.StatusPaymentRequired, err.Error())
	case errors.Is(err, ErrPremiumRequired), errors.Is(err, ErrProfileOwner):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrTemplateNotFound), errors.Is(err, ErrNoQuote):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoProfile), errors.Is(err, profile.ErrPhoneImmutable):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, library.ErrSaveFailed):
		h.logger.WarnContext(c.UserContext(), "library save failed", slog.Any("error", err))
		return fiber.NewError(http.StatusBadGateway, "could not save to library")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(http.StatusServiceUnavailable, "request cancelled")
	default:
		h.logger.ErrorContext(c.UserContext(), "request failed", slog.String("path", c.Path()), slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, "internal error")
	}
}
