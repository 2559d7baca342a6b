package user

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
	secret  []byte
	log     logrus.FieldLogger
	now     func() time.Time
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func NewHandler(service *Service, jwtSecret string, log logrus.FieldLogger) *Handler {
	return &Handler{service: service, secret: []byte(jwtSecret), log: log, now: time.Now}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Post("/api/v1/sign-in", h.login)
	app.Post("/api/v1/sign-up", h.register)
}

// RegisterProtectedRoutes expects a JWT middleware in front that stores the
// parsed token under "user".
func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/account/profile", h.getProfile)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	account, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}
	if err != nil {
		h.log.WithError(err).Error("sign-in lookup failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "failed to sign in"})
	}

	signed, err := h.issueToken(account)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    sanitize(account),
		"token":   signed,
	})
}

func (h *Handler) issueToken(a Account) (string, error) {
	claims := jwt.MapClaims{
		"user_id": a.ID,
		"email":   a.Email,
		"exp":     h.now().Add(TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.secret)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing required fields"})
	}

	created, err := h.service.Register(c.UserContext(), payload.Email, payload.Password, payload.FullName)
	switch {
	case errors.Is(err, ErrEmailExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already exists"})
	case errors.Is(err, ErrWeakPassword):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case err != nil:
		h.log.WithError(err).Error("sign-up failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "failed to sign up"})
	}

	return c.Status(fiber.StatusCreated).JSON(sanitize(created))
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	account, err := h.service.Profile(c.UserContext(), userID)
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	}
	if err != nil {
		h.log.WithError(err).Error("profile lookup failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "failed to load profile"})
	}
	return c.JSON(sanitize(account))
}

// GetUserIDFromCtx extracts the user_id claim from the JWT stored in
// c.Locals("user").
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", fiber.ErrUnauthorized
	}
	return id, nil
}

func sanitize(a Account) Account {
	a.PasswordHash = ""
	return a
}
