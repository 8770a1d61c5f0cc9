package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/pkg/utils"
)

type TasksHandler struct {
	Tasks *services.TaskService
	Audit *services.AuditService
}

func NewTasksHandler(tasks *services.TaskService, audit *services.AuditService) *TasksHandler {
	return &TasksHandler{Tasks: tasks, Audit: audit}
}

func (h *TasksHandler) List(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	filter := services.TaskFilter{
		Status: models.TaskStatus(c.Query("status")),
		Limit:  utils.QueryInt(c, "limit", 0),
	}
	if raw := c.Query("shiftId"); raw != "" {
		shiftID, err := parseUUID(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid shift id")
		}
		filter.ShiftID = &shiftID
	}

	tasks, err := h.Tasks.List(c.UserContext(), sess, filter)
	if err != nil {
		return handleServiceError(c, err, "task_list_failed")
	}
	return utils.Success(c, fiber.StatusOK, tasks)
}

func (h *TasksHandler) Create(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req services.TaskInput
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	task, err := h.Tasks.Create(c.UserContext(), sess, req)
	if err != nil {
		return handleServiceError(c, err, "task_create_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionTaskCreate, "task", &task.ID, map[string]interface{}{
		"title": task.Title,
	})
	return utils.Success(c, fiber.StatusCreated, task)
}

func (h *TasksHandler) Update(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid task id")
	}

	var req services.TaskUpdate
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	task, err := h.Tasks.Update(c.UserContext(), sess, id, req)
	if err != nil {
		return handleServiceError(c, err, "task_update_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionTaskUpdate, "task", &task.ID, map[string]interface{}{
		"title": task.Title,
	})
	return utils.Success(c, fiber.StatusOK, task)
}

func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid task id")
	}

	if err := h.Tasks.Delete(c.UserContext(), sess, id); err != nil {
		return handleServiceError(c, err, "task_delete_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionTaskDelete, "task", &id, nil)
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "task deleted"})
}

// Toggle flips a task between pending and completed. Any signed-in user may.
func (h *TasksHandler) Toggle(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid task id")
	}

	task, err := h.Tasks.Toggle(c.UserContext(), sess, id)
	if err != nil {
		return handleServiceError(c, err, "task_toggle_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionTaskToggle, "task", &task.ID, map[string]interface{}{
		"title":  task.Title,
		"status": string(task.Status),
	})
	return utils.Success(c, fiber.StatusOK, task)
}
