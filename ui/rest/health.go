package rest

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/brokerdesk/bd-wap/infrastructure/valkey"
	"github.com/brokerdesk/bd-wap/messaging"
	"github.com/brokerdesk/bd-wap/pkg/utils"
)

type Health struct {
	DB     *gorm.DB
	Valkey *valkey.Client
}

func InitRestHealth(app fiber.Router, handler Health) Health {
	app.Get("/health", handler.GetStatus)
	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	status := fiber.Map{"app": "ok"}
	healthy := true

	if h.DB != nil {
		sqlDB, err := h.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status["database"] = err.Error()
			healthy = false
		} else {
			status["database"] = "ok"
		}
	}

	if h.Valkey != nil {
		if h.Valkey.IsConnected() {
			status["valkey"] = "ok"
		} else {
			status["valkey"] = "unreachable"
			healthy = false
		}
	}

	code := fiber.StatusOK
	if !healthy {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(utils.ResponseData{
		Status:  code,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: status,
	})
}

// Debug exposes introspection endpoints behind the admin token.
type Debug struct{}

func InitRestDebug(app fiber.Router) Debug {
	handler := Debug{}
	app.Get("/menu", handler.GetMenu)
	return handler
}

// GetMenu returns the interactive menu payload the bot sends, for checking
// row ids without a phone in hand.
func (h *Debug) GetMenu(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Menu payload",
		Results: messaging.MenuPayload(),
	})
}
