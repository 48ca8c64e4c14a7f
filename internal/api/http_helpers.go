package api

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sitr/internal/services"
)

const dateLayout = "2006-01-02"

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serviceError maps service failures to their status code. Unexpected
// failures are logged and reported without detail.
func (handler *Handler) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidOperation):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return apiError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrIntegrityConflict):
		return apiError(c, fiber.StatusConflict, err.Error())
	}

	handler.logger.Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("request_id", requestID(c)).
		Msg("unhandled error")
	return apiError(c, fiber.StatusInternalServerError, "internal server error")
}

// ErrorHandler renders errors that escape the handlers, such as unknown
// routes or panics recovered by the recover middleware.
func (handler *Handler) ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apiError(c, fiberErr.Code, fiberErr.Message)
	}
	return handler.serviceError(c, err)
}

// parseBody decodes the JSON body into payload and checks its validate tags.
func parseBody(c *fiber.Ctx, payload any) error {
	if err := c.BodyParser(payload); err != nil {
		return errInvalidPayload
	}
	return services.ValidateInput(payload)
}

var errInvalidPayload = errors.New("invalid payload")

func (handler *Handler) bodyError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errInvalidPayload) {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	return handler.serviceError(c, err)
}

func queryUserID(c *fiber.Ctx) (uint, error) {
	raw := strings.TrimSpace(c.Query("user_id"))
	if raw == "" {
		return 0, errors.New("user_id is required")
	}
	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || userID == 0 {
		return 0, errors.New("invalid user_id")
	}
	return uint(userID), nil
}

func emailParam(c *fiber.Ctx) string {
	raw := c.Params("email")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// queryDay parses a YYYY-MM-DD query value as a local day, or returns
// fallback when the value is empty.
func (handler *Handler) queryDay(c *fiber.Ctx, key string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	day, err := time.ParseInLocation(dateLayout, raw, handler.location)
	if err != nil {
		return time.Time{}, errors.New("invalid " + key + ": expected YYYY-MM-DD")
	}
	return day, nil
}

func (handler *Handler) today() time.Time {
	return handler.now().In(handler.location)
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

func durationSeconds(duration time.Duration) int64 {
	return int64(duration / time.Second)
}
