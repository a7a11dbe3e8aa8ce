// Package router wires the HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tournament-auction/internal/handler"
	"github.com/iliyamo/tournament-auction/internal/middleware"
	"github.com/iliyamo/tournament-auction/internal/model"
)

// Deps carries everything the route table needs.
type Deps struct {
	JWTSecret string
	Auth      *handler.AuthHandler
	Admin     *handler.AdminHandler
	Auction   *handler.AuctionHandler
	// BidLimiter rate-limits the bid endpoint; pass-through when rate
	// limiting is disabled.
	BidLimiter echo.MiddlewareFunc
}

// Register mounts all routes on the Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/health", handler.Health)

	v1 := e.Group("/v1")

	// Auth: registration and login are public, the rest require a token.
	auth := v1.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me, middleware.JWTAuth(d.JWTSecret))

	authed := v1.Group("", middleware.JWTAuth(d.JWTSecret))
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// Tournament administration.
	authed.POST("/tournaments", d.Admin.CreateTournament, adminOnly)
	authed.GET("/tournaments", d.Admin.ListTournaments, adminOnly)
	authed.GET("/tournaments/:id", d.Admin.GetTournament)
	authed.PUT("/tournaments/:id", d.Admin.UpdateTournament, adminOnly)

	authed.POST("/tournaments/:id/teams", d.Admin.CreateTeam, adminOnly)
	authed.GET("/tournaments/:id/teams", d.Admin.ListTeams)
	authed.GET("/teams/:id", d.Admin.GetTeam)

	authed.POST("/tournaments/:id/players", d.Admin.CreatePlayer, adminOnly)
	authed.GET("/tournaments/:id/players", d.Admin.ListPlayers)
	authed.GET("/players/:id", d.Admin.GetPlayer)

	// Auction lifecycle (admin) and bidding (managers).
	authed.POST("/tournaments/:id/auction/start", d.Auction.Start, adminOnly)
	authed.GET("/auctions/:id", d.Auction.Get)
	authed.POST("/auctions/:id/pause", d.Auction.Pause, adminOnly)
	authed.POST("/auctions/:id/resume", d.Auction.Resume, adminOnly)
	authed.POST("/auctions/:id/end", d.Auction.End, adminOnly)
	authed.POST("/auctions/:id/players/:playerId/settle", d.Auction.Settle, adminOnly)

	authed.POST("/auctions/:id/players/:playerId/bids", d.Auction.PlaceBid, d.BidLimiter)
	authed.GET("/auctions/:id/players/:playerId/bid", d.Auction.CurrentBid)
	authed.GET("/auctions/:id/players/:playerId/bids", d.Auction.BidHistory)
}
