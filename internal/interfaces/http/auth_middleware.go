package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-ledger/internal/application/dto"
	"github.com/jhoicas/Bodega-ledger/pkg/jwt"
)

// Locals keys para UserID y permisos en Fiber.
const (
	LocalUserID      = "user_id"
	LocalPermissions = "permissions"
)

// Permisos conocidos de la API. stock:write cubre recepciones, traslados,
// ajustes y devoluciones; reservations:write cubre reservar/liberar/consumir.
const (
	PermStockRead         = "stock:read"
	PermStockWrite        = "stock:write"
	PermReservationsWrite = "reservations:write"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID y permisos a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, permissions, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalPermissions, permissions)
		return c.Next()
	}
}

// RequirePermission rechaza con 403 si el token no trae el permiso indicado.
// Va después de AuthMiddleware.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !HasPermission(c, permission) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "permiso requerido: " + permission})
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// HasPermission indica si el token autenticado trae el permiso dado.
func HasPermission(c *fiber.Ctx, permission string) bool {
	v := c.Locals(LocalPermissions)
	perms, _ := v.([]string)
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
