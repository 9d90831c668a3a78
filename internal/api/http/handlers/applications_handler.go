package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hirelane/recruitment-service/internal/api/dto"
	"github.com/hirelane/recruitment-service/internal/auth"
	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/service"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

// IdempotencyHeader lets a client retry a submission safely.
const IdempotencyHeader = "Idempotency-Key"

// ApplicationsHandler serves the public intake form and the recruiter pipeline.
type ApplicationsHandler struct {
	applications *service.ApplicationService
}

func NewApplicationsHandler(applications *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{applications: applications}
}

// FormOptions handles GET /applications/form-options.
func (h *ApplicationsHandler) FormOptions(c *fiber.Ctx) error {
	options, err := h.applications.FormOptions(c.UserContext())
	if err != nil {
		return err
	}
	out := make(map[string][]dto.LookupItemResponse, len(options))
	for _, kind := range domain.LookupKinds() {
		out[string(kind)] = lookupResponses(options[kind])
	}
	return c.JSON(fiber.Map{"data": out})
}

// Submit handles POST /applications.
func (h *ApplicationsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitApplicationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	birth, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		return err
	}

	res, err := h.applications.Submit(c.UserContext(), service.SubmitApplicationInput{
		FirstNames:            req.FirstNames,
		LastNames:             req.LastNames,
		PrimaryPhone:          req.PrimaryPhone,
		SecondaryPhone:        req.SecondaryPhone,
		Email:                 req.Email,
		BirthDate:             birth,
		LivedInUSA:            req.LivedInUSA,
		NationalIDType:        domain.NationalIDType(req.NationalIDType),
		NationalIDNumber:      req.NationalIDNumber,
		Gender:                domain.Gender(req.Gender),
		AddressLineOne:        req.AddressLineOne,
		AddressLineTwo:        req.AddressLineTwo,
		CityTownID:            req.CityTownID,
		ActiveStudies:         req.ActiveStudies,
		Career:                req.Career,
		Institution:           req.Institution,
		CurrentlyEmployed:     req.CurrentlyEmployed,
		CurrentEmployer:       req.CurrentEmployer,
		PreviousCallCenterXP:  req.PreviousCallCenterXP,
		LanguageIDs:           req.LanguageIDs,
		PreviousCallCenterIDs: req.PreviousCallCenterIDs,
		AreaOfExpertiseIDs:    req.AreaOfExpertiseIDs,
		IdempotencyKey:        c.Get(IdempotencyHeader),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.SubmitApplicationResponse{
		Application: applicationResponse(*res.Application),
		Match:       string(res.Match),
		Replayed:    res.Replayed,
	}})
}

// List handles GET /admin/applications.
func (h *ApplicationsHandler) List(c *fiber.Ctx) error {
	limit, offset := paging(c)
	filter := domain.ApplicationFilter{
		PersonID: strings.TrimSpace(c.Query("person_id")),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		filter.Status = domain.ApplicationStatus(strings.ToUpper(raw))
		if !filter.Status.Valid() {
			return apperrors.NewValidationError("validation failed", map[string]any{"status": "unknown application status"})
		}
	}
	apps, err := h.applications.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponses(apps)})
}

// Get handles GET /admin/applications/:id.
func (h *ApplicationsHandler) Get(c *fiber.Ctx) error {
	app, err := h.applications.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(*app)})
}

// UpdatePipeline handles PATCH /admin/applications/:id/pipeline.
func (h *ApplicationsHandler) UpdatePipeline(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.PipelineUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	app, err := h.applications.UpdatePipeline(c.UserContext(), c.Params("id"), domain.ApplicationPipeline{
		Status:      domain.ApplicationStatus(req.Status),
		PreScreen:   req.PreScreen,
		HireIQ:      req.HireIQ,
		TSS:         req.TSS,
		HMInterview: req.HMInterview,
	}, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(*app)})
}

// History handles GET /admin/applications/:id/history.
func (h *ApplicationsHandler) History(c *fiber.Ctx) error {
	entries, err := h.applications.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}
