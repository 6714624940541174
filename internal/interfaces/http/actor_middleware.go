package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fulfillment-api/internal/application/dto"
	"github.com/jhoicas/Fulfillment-api/pkg/jwt"
)

// LocalActorID key en c.Locals del actor autenticado.
const LocalActorID = "actor_id"

// HeaderActorID identidad enviada por el gateway cuando no hay token.
const HeaderActorID = "X-Actor-ID"

// ActorConfig cómo se identifica el actor de cada petición.
type ActorConfig struct {
	JWTSecret string
	JWTIssuer string
	// AllowHeader con JWTSecret configurado acepta X-Actor-ID cuando no llega token.
	AllowHeader bool
}

// ActorMiddleware resuelve el actor de la petición. Con secret configurado exige
// Bearer token salvo que AllowHeader lo permita; sin secret usa X-Actor-ID.
func ActorMiddleware(cfg ActorConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if cfg.JWTSecret != "" && authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
			}
			claims, err := jwt.Parse(cfg.JWTSecret, cfg.JWTIssuer, strings.TrimSpace(parts[1]))
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
			}
			c.Locals(LocalActorID, claims.ActorID)
			return c.Next()
		}
		if cfg.JWTSecret != "" && !cfg.AllowHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization: Bearer <token> requerido"})
		}
		actor := strings.TrimSpace(c.Get(HeaderActorID))
		if actor == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ACTOR", Message: "Authorization o X-Actor-ID requerido"})
		}
		c.Locals(LocalActorID, actor)
		return c.Next()
	}
}

// GetActorID devuelve el actor del contexto (después del middleware).
func GetActorID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalActorID).(string)
	return s
}
