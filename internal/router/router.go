package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/oskarkuder/lesson-notes-ai/internal/auth"
	"github.com/oskarkuder/lesson-notes-ai/internal/config"
	"github.com/oskarkuder/lesson-notes-ai/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	sessionHandler *handler.SessionHandler,
	noteHandler *handler.NoteHandler,
	paymentHandler *handler.PaymentHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes: the two ways to obtain a token.
	api.POST("/auth/google", authHandler.GoogleSignIn)
	api.POST("/auth/guest", authHandler.Guest)

	// Everything else requires a token; guests carry guest tokens.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &auth.Claims{}
		},
	}))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/bootstrap", authHandler.Bootstrap)
	secured.GET("/me", authHandler.Me)

	// Recording-session state machine
	secured.POST("/sessions", sessionHandler.Create)
	secured.GET("/sessions/:id", sessionHandler.Get)
	secured.DELETE("/sessions/:id", sessionHandler.Destroy)
	secured.POST("/sessions/:id/start", sessionHandler.Start)
	secured.POST("/sessions/:id/chunks", sessionHandler.Chunk)
	secured.POST("/sessions/:id/stop", sessionHandler.Stop)
	secured.POST("/sessions/:id/reset", sessionHandler.Reset)
	secured.POST("/sessions/:id/history", sessionHandler.History)
	secured.POST("/sessions/:id/pricing", sessionHandler.Pricing)
	secured.POST("/sessions/:id/checkout", sessionHandler.Checkout)
	secured.POST("/sessions/:id/checkout/cancel", sessionHandler.CancelCheckout)
	secured.PUT("/sessions/:id/note", sessionHandler.UpdateNote)
	secured.POST("/sessions/:id/save", sessionHandler.Save)
	secured.POST("/sessions/:id/load", sessionHandler.Load)

	// Saved notes
	secured.GET("/notes", noteHandler.List)
	secured.GET("/notes/:id", noteHandler.Get)
	secured.DELETE("/notes/:id", noteHandler.Delete)
	secured.GET("/notes/:id/export", noteHandler.Export)

	// Payments
	secured.POST("/payments", paymentHandler.Process)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
