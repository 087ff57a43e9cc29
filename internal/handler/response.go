package handler

import (
	"errors"
	"strings"
	"time"

	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Envelope is the shape of every JSON response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Errors  []string    `json:"errors,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Meta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

func respondPage(c *fiber.Ctx, data interface{}, page repository.Page, total int64) error {
	page = page.Normalize()
	return c.JSON(Envelope{
		Success: true,
		Data:    data,
		Meta:    &Meta{Page: page.Page, PageSize: page.PageSize, Total: total},
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{Errors: []string{msg}})
}

var statusByKind = map[service.ErrorKind]int{
	service.KindNotFound:          fiber.StatusNotFound,
	service.KindValidation:        fiber.StatusBadRequest,
	service.KindInsufficientStock: fiber.StatusUnprocessableEntity,
	service.KindConflict:          fiber.StatusConflict,
	service.KindUnauthorized:      fiber.StatusUnauthorized,
}

// fail translates a service error into the envelope. Unexpected errors never leak their cause.
func fail(c *fiber.Ctx, err error) error {
	kind := service.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(Envelope{Errors: []string{"internal server error"}})
	}

	env := Envelope{Errors: []string{err.Error()}}
	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		env.Data = stockErr
	}
	var appErr *service.AppError
	if errors.As(err, &appErr) && len(appErr.Messages) > 0 {
		env.Errors = appErr.Messages
	}
	return c.Status(status).JSON(env)
}

func currentUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(middleware.LocalUserID).(uuid.UUID)
	return id
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return parseUUID(c.Params(name))
}

func pageFromQuery(c *fiber.Ctx) repository.Page {
	return repository.Page{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 0),
	}
}

const defaultRangeDays = 30

// parseTime accepts RFC 3339 timestamps or plain dates (UTC midnight).
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}

// rangeFromQuery reads ?from=&to=; a bare date for "to" includes that whole day.
func rangeFromQuery(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	to := now
	from := now.AddDate(0, 0, -defaultRangeDays)

	if s := c.Query("to"); s != "" {
		t, err := parseTime(s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'to', use YYYY-MM-DD or RFC 3339")
		}
		if !strings.Contains(s, "T") {
			t = t.AddDate(0, 0, 1)
		}
		to = t
	}
	if s := c.Query("from"); s != "" {
		t, err := parseTime(s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'from', use YYYY-MM-DD or RFC 3339")
		}
		from = t
	}
	return from, to, nil
}
