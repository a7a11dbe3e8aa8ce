package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tournament-auction/internal/auction"
	"github.com/iliyamo/tournament-auction/internal/model"
)

// getUserID extracts the authenticated user ID stored by the JWT middleware.
// JWT claims arrive as float64 after JSON decoding, so several numeric
// representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getActor wraps the authenticated user as the acting party for audit
// stamps on auction writes.
func getActor(c echo.Context) (model.Actor, error) {
	uid, err := getUserID(c)
	if err != nil {
		return model.Actor{}, err
	}
	return model.UserActor(uid), nil
}

// pathUUID parses a UUID path parameter.
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// auctionError translates the engine's error taxonomy into HTTP responses.
// Not-found sentinels become 404, lifecycle violations 409, bid validation
// failures 400 with the amounts needed to resubmit, and an exhausted
// conflict retry 503 (transient, safe to retry).
func auctionError(c echo.Context, err error) error {
	var bidErr *auction.BidError
	switch {
	case errors.Is(err, auction.ErrTournamentNotFound),
		errors.Is(err, auction.ErrAuctionNotFound),
		errors.Is(err, auction.ErrPlayerNotFound),
		errors.Is(err, auction.ErrTeamNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, auction.ErrAuctionDisabled),
		errors.Is(err, auction.ErrAuctionAlreadyActive),
		errors.Is(err, auction.ErrAuctionNotActive),
		errors.Is(err, auction.ErrAuctionNotPaused),
		errors.Is(err, auction.ErrAuctionCompleted),
		errors.Is(err, auction.ErrPlayerAlreadySold):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &bidErr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":          bidErr.Err.Error(),
			"current_bid":    bidErr.Current.String(),
			"next_valid_bid": bidErr.NextMin.String(),
		})
	case errors.Is(err, auction.ErrInsufficientFunds):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, auction.ErrConflict):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "transient conflict, please retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
