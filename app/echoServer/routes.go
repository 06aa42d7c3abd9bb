package echoServer

import (
	"lendoo/app/echoServer/controller/auth"
	"lendoo/app/echoServer/controller/cart"
	"lendoo/app/echoServer/controller/item"
	"lendoo/app/echoServer/controller/loan"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Item      *item.Controller
	Cart      *cart.Controller
	Loan      *loan.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)
	pub.GET("/categories", c.Item.Categories)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))

	// Items
	authed.GET("/items", c.Item.List)
	authed.GET("/items/mine", c.Item.Mine)
	authed.GET("/items/:id", c.Item.Detail)
	authed.POST("/items", c.Item.Create)
	authed.DELETE("/items/:id", c.Item.Deactivate)

	// Cart
	authed.POST("/cart", c.Cart.Add)
	authed.GET("/cart", c.Cart.List)
	authed.PATCH("/cart/:id", c.Cart.UpdateDuration)
	authed.DELETE("/cart/:id", c.Cart.Remove)
	authed.POST("/cart/checkout", c.Cart.Checkout)

	// Loans
	authed.GET("/loans/borrowed", c.Loan.Borrowed)
	authed.GET("/loans/lent", c.Loan.Lent)
	authed.GET("/loans/requests", c.Loan.PendingRequests)
	authed.POST("/loans/:id/approve", c.Loan.Approve)
	authed.POST("/loans/:id/reject", c.Loan.Reject)
	authed.POST("/loans/:id/return-request", c.Loan.RequestReturn)
	authed.POST("/loans/:id/return-confirm", c.Loan.ConfirmReturn)
	authed.POST("/loans/:id/extension", c.Loan.RequestExtension)
	authed.POST("/loans/:id/extension/accept", c.Loan.AcceptExtension)
	authed.POST("/loans/:id/extension/decline", c.Loan.DeclineExtension)
}
