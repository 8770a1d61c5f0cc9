package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/internal/session"
	"github.com/hospoda/shiftboard/pkg/utils"
)

type ShiftsHandler struct {
	Shifts      *services.ShiftService
	Bulk        *services.BulkShiftService
	Tasks       *services.TaskService
	CalendarSvc *services.CalendarService
	Audit       *services.AuditService
}

func NewShiftsHandler(shifts *services.ShiftService, bulk *services.BulkShiftService, tasks *services.TaskService, calendar *services.CalendarService, audit *services.AuditService) *ShiftsHandler {
	return &ShiftsHandler{Shifts: shifts, Bulk: bulk, Tasks: tasks, CalendarSvc: calendar, Audit: audit}
}

func shiftDetails(shift *models.Shift) map[string]interface{} {
	details := map[string]interface{}{
		"date":     shift.Date,
		"position": shift.Position,
	}
	if shift.AssignedToName != nil {
		details["assigned_to_name"] = *shift.AssignedToName
	}
	return details
}

func (h *ShiftsHandler) List(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	shifts, err := h.Shifts.List(c.UserContext(), sess, services.ShiftFilter{
		From: c.Query("from"),
		To:   c.Query("to"),
		View: services.ShiftView(c.Query("view")),
	})
	if err != nil {
		return handleServiceError(c, err, "shift_list_failed")
	}
	return utils.Success(c, fiber.StatusOK, shifts)
}

func (h *ShiftsHandler) Get(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid shift id")
	}

	shift, err := h.Shifts.Get(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, err, "shift_get_failed")
	}
	tasks, err := h.Tasks.ListForShift(c.UserContext(), sess, id)
	if err != nil {
		return handleServiceError(c, err, "shift_tasks_failed")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"shift":  shift,
		"isPast": shift.Date < h.Shifts.Clock.Today(),
		"tasks":  tasks,
	})
}

type createShiftRequest struct {
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	Position  string `json:"position" validate:"required,max=100"`
	Notes     string `json:"notes"`
}

func (h *ShiftsHandler) Create(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createShiftRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	shift, err := h.Shifts.Create(c.UserContext(), sess, services.ShiftInput{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Position:  req.Position,
		Notes:     req.Notes,
	})
	if err != nil {
		return handleServiceError(c, err, "shift_create_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionShiftCreate, "shift", &shift.ID, shiftDetails(shift))
	return utils.Success(c, fiber.StatusCreated, shift)
}

func (h *ShiftsHandler) Update(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid shift id")
	}

	var req services.ShiftUpdate
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	shift, err := h.Shifts.Update(c.UserContext(), sess, id, req)
	if err != nil {
		return handleServiceError(c, err, "shift_update_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionShiftUpdate, "shift", &shift.ID, shiftDetails(shift))
	return utils.Success(c, fiber.StatusOK, shift)
}

func (h *ShiftsHandler) Delete(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid shift id")
	}

	shift, err := h.Shifts.Delete(c.UserContext(), sess, id)
	if err != nil {
		return handleServiceError(c, err, "shift_delete_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionShiftDelete, "shift", &id, shiftDetails(shift))
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "shift deleted"})
}

func (h *ShiftsHandler) Claim(c *fiber.Ctx) error {
	return h.transition(c, services.ActionShiftClaim, func(sess session.Session, id uuid.UUID) (*models.Shift, error) {
		return h.Shifts.Claim(c.UserContext(), sess, id)
	})
}

func (h *ShiftsHandler) Release(c *fiber.Ctx) error {
	return h.transition(c, services.ActionShiftRelease, func(sess session.Session, id uuid.UUID) (*models.Shift, error) {
		return h.Shifts.Release(c.UserContext(), sess, id)
	})
}

type assignShiftRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

func (h *ShiftsHandler) Assign(c *fiber.Ctx) error {
	var req assignShiftRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}
	target, err := parseUUID(req.UserID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	return h.transition(c, services.ActionShiftAssign, func(sess session.Session, id uuid.UUID) (*models.Shift, error) {
		return h.Shifts.Assign(c.UserContext(), sess, id, target)
	})
}

// transition runs one state change on the shift named in the path and audits
// the result.
func (h *ShiftsHandler) transition(c *fiber.Ctx, action services.Action, run func(session.Session, uuid.UUID) (*models.Shift, error)) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid shift id")
	}

	shift, err := run(sess, id)
	if err != nil {
		return handleServiceError(c, err, string(action)+"_failed")
	}

	recordAudit(h.Audit, c, sess, action, "shift", &shift.ID, shiftDetails(shift))
	return utils.Success(c, fiber.StatusOK, shift)
}

// BulkCreate answers 201 when every date produced a shift and 207 when some
// of them failed. The body lists both.
func (h *ShiftsHandler) BulkCreate(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req services.BulkShiftRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.Bulk.Create(c.UserContext(), sess, req)
	if err != nil {
		return handleServiceError(c, err, "shift_bulk_create_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionShiftBulkCreate, "shift", nil, map[string]interface{}{
		"created": len(result.Created),
		"failed":  len(result.Failed),
		"tasks":   result.TasksCreated,
	})

	status := fiber.StatusCreated
	if len(result.Failed) > 0 {
		status = fiber.StatusMultiStatus
	}
	return utils.Success(c, status, result)
}

func (h *ShiftsHandler) Calendar(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	month, err := h.CalendarSvc.Month(c.UserContext(), sess, utils.QueryInt(c, "year", 0), utils.QueryInt(c, "month", 0))
	if err != nil {
		return handleServiceError(c, err, "calendar_failed")
	}
	return utils.Success(c, fiber.StatusOK, month)
}

// Print renders the printable schedule as HTML.
func (h *ShiftsHandler) Print(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	page, err := h.CalendarSvc.PrintSchedule(c.UserContext(), sess, c.Query("from"), c.Query("to"))
	if err != nil {
		return handleServiceError(c, err, "print_schedule_failed")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(page)
}

// Templates lists the named slots, task sets and recurrences bulk creation
// accepts.
func (h *ShiftsHandler) Templates(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, h.Bulk.Templates)
}
