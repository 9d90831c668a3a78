package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hirelane/recruitment-service/internal/api/dto"
	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/repository"
	"github.com/hirelane/recruitment-service/internal/service"
)

// AdminHandler serves the admin console: users, groups, persons and support tables.
type AdminHandler struct {
	admin   *service.AdminService
	lookups *service.LookupService
}

func NewAdminHandler(admin *service.AdminService, lookups *service.LookupService) *AdminHandler {
	return &AdminHandler{admin: admin, lookups: lookups}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := paging(c)
	users, err := h.admin.ListUsers(c.UserContext(), repository.UserFilter{
		Query:  strings.TrimSpace(c.Query("q")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}
	out := make([]dto.UserDetailResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userDetailResponse(u))
	}
	return c.JSON(fiber.Map{"data": out})
}

// GetUser handles GET /admin/users/:id.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	detail, err := h.admin.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userDetailResponse(*detail)})
}

// CreateUser handles POST /admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	detail, err := h.admin.CreateUser(c.UserContext(), service.CreateUserInput{
		Username:       req.Username,
		Email:          req.Email,
		FirstNames:     req.FirstNames,
		LastNames:      req.LastNames,
		EmployeeStatus: domain.EmployeeStatus(req.EmployeeStatus),
		GroupIDs:       req.Groups,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userDetailResponse(*detail)})
}

// UpdateUser handles PATCH /admin/users/:id.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.UpdateUserInput{
		Username:   req.Username,
		Email:      req.Email,
		FirstNames: req.FirstNames,
		LastNames:  req.LastNames,
		IsActive:   req.IsActive,
	}
	if req.EmployeeStatus != nil {
		status := domain.EmployeeStatus(*req.EmployeeStatus)
		in.EmployeeStatus = &status
	}
	if req.Groups != nil {
		in.GroupIDs = *req.Groups
		in.SetGroups = true
	}
	detail, err := h.admin.UpdateUser(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userDetailResponse(*detail)})
}

// ListGroups handles GET /admin/groups.
func (h *AdminHandler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.admin.ListGroups(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupResponse(g))
	}
	return c.JSON(fiber.Map{"data": out})
}

// GetGroup handles GET /admin/groups/:id.
func (h *AdminHandler) GetGroup(c *fiber.Ctx) error {
	group, err := h.admin.GetGroup(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": groupResponse(*group)})
}

// CreateGroup handles POST /admin/groups.
func (h *AdminHandler) CreateGroup(c *fiber.Ctx) error {
	var req dto.GroupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	group, err := h.admin.CreateGroup(c.UserContext(), groupInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": groupResponse(*group)})
}

// UpdateGroup handles PUT /admin/groups/:id.
func (h *AdminHandler) UpdateGroup(c *fiber.Ctx) error {
	var req dto.GroupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	group, err := h.admin.UpdateGroup(c.UserContext(), c.Params("id"), groupInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": groupResponse(*group)})
}

func groupInput(req dto.GroupRequest) service.GroupInput {
	perms := make([]domain.Permission, 0, len(req.Permissions))
	for _, p := range req.Permissions {
		perms = append(perms, domain.Permission(strings.TrimSpace(p)))
	}
	return service.GroupInput{
		Name:         req.Name,
		IsSupervisor: req.IsSupervisor,
		IsAdmin:      req.IsAdmin,
		Permissions:  perms,
	}
}

// Permissions handles GET /admin/permissions.
func (h *AdminHandler) Permissions(c *fiber.Ctx) error {
	perms := h.admin.Permissions()
	out := make([]dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, dto.PermissionResponse{Code: string(p.Code), Description: p.Description})
	}
	return c.JSON(fiber.Map{"data": out})
}

// ListPersons handles GET /admin/persons.
func (h *AdminHandler) ListPersons(c *fiber.Ctx) error {
	limit, offset := paging(c)
	persons, err := h.admin.ListPersons(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	out := make([]dto.PersonResponse, 0, len(persons))
	for _, p := range persons {
		out = append(out, personResponse(p))
	}
	return c.JSON(fiber.Map{"data": out})
}

// GetPerson handles GET /admin/persons/:id.
func (h *AdminHandler) GetPerson(c *fiber.Ctx) error {
	detail, err := h.admin.GetPerson(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": personDetailResponse(detail)})
}

// UpdatePerson handles PATCH /admin/persons/:id.
func (h *AdminHandler) UpdatePerson(c *fiber.Ctx) error {
	var req dto.UpdatePersonRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	detail, err := h.admin.UpdatePerson(c.UserContext(), c.Params("id"), service.UpdatePersonInput{
		FirstNames:     req.FirstNames,
		LastNames:      req.LastNames,
		DisplayName:    req.DisplayName,
		PrimaryPhone:   req.PrimaryPhone,
		SecondaryPhone: req.SecondaryPhone,
		Email:          req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": personDetailResponse(detail)})
}

// ListLookups handles GET /admin/lookups/:kind.
func (h *AdminHandler) ListLookups(c *fiber.Ctx) error {
	items, err := h.lookups.List(c.UserContext(), c.Params("kind"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lookupResponses(items)})
}

// CreateLookup handles POST /admin/lookups/:kind.
func (h *AdminHandler) CreateLookup(c *fiber.Ctx) error {
	var req dto.LookupItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item, err := h.lookups.Create(c.UserContext(), c.Params("kind"), service.LookupInput{
		Name:          req.Name,
		ShortName:     req.ShortName,
		DisplayInForm: req.DisplayInForm,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": lookupResponse(*item)})
}

// UpdateLookup handles PUT /admin/lookups/:kind/:id.
func (h *AdminHandler) UpdateLookup(c *fiber.Ctx) error {
	var req dto.LookupItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item, err := h.lookups.Update(c.UserContext(), c.Params("kind"), c.Params("id"), service.LookupInput{
		Name:          req.Name,
		ShortName:     req.ShortName,
		DisplayInForm: req.DisplayInForm,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lookupResponse(*item)})
}
