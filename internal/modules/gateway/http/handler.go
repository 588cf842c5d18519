// Package http exposes the game over REST and websocket.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/frankieli/dice_arena/internal/config"
	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"github.com/frankieli/dice_arena/internal/modules/game/usecase"
	"github.com/frankieli/dice_arena/internal/modules/gateway/ws"
	"github.com/frankieli/dice_arena/internal/modules/wallet"
	"github.com/frankieli/dice_arena/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler serves the game API.
type Handler struct {
	rounds  *usecase.RoundUseCase
	bets    *usecase.BetUseCase
	admin   *usecase.AdminUseCase
	wallet  wallet.Service
	manager *ws.Manager
	jwt     config.JWTConfig
}

// NewHandler creates a new HTTP handler
func NewHandler(rounds *usecase.RoundUseCase, bets *usecase.BetUseCase, admin *usecase.AdminUseCase, w wallet.Service, manager *ws.Manager, jwt config.JWTConfig) *Handler {
	return &Handler{
		rounds:  rounds,
		bets:    bets,
		admin:   admin,
		wallet:  w,
		manager: manager,
		jwt:     jwt,
	}
}

// RegisterRoutes registers all game routes on the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	secret := []byte(h.jwt.Secret)

	game := r.Group("/api/game")
	game.GET("/current-round", h.CurrentRound)
	game.GET("/settings", h.Settings)
	game.GET("/results/:round_id", h.RoundResults)

	authed := game.Group("")
	authed.Use(AuthRequired(secret))
	authed.POST("/bet", h.PlaceBet)
	authed.DELETE("/bet/:number", h.RemoveBet)
	authed.GET("/my-bets", h.MyBets)

	admin := r.Group("/api/admin")
	admin.Use(AuthRequired(secret), AdminRequired())
	admin.POST("/dice", h.SetDice)
	admin.GET("/dice-mode", h.DiceMode)
	admin.POST("/dice-mode", h.SetDiceMode)
	admin.POST("/settings", h.UpdateSetting)

	r.GET("/ws", h.HandleWebSocket)
}

// CurrentRound returns the live round snapshot.
func (h *Handler) CurrentRound(c *gin.Context) {
	snap, err := h.rounds.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Settings returns the live phase offsets and dice mode.
func (h *Handler) Settings(c *gin.Context) {
	d := h.rounds.Durations(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"betting_close_time": d.BettingClose,
		"dice_roll_time":     d.DiceRoll,
		"dice_result_time":   d.DiceResult,
		"round_end_time":     d.RoundEnd,
		"dice_mode":          h.admin.DiceMode(c.Request.Context()),
	})
}

// RoundResults returns one round's final row.
func (h *Handler) RoundResults(c *gin.Context) {
	round, err := h.rounds.ByID(c.Request.Context(), c.Param("round_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}

type placeBetRequest struct {
	Number int     `json:"number" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

// PlaceBet wagers on a number in the active round.
func (h *Handler) PlaceBet(c *gin.Context) {
	var req placeBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUserID(c)
	bet, err := h.bets.PlaceBet(c.Request.Context(), userID, req.Number, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	balance, _ := h.wallet.Balance(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{
		"bet":     bet,
		"balance": balance,
	})
}

// RemoveBet cancels a bet and refunds the stake.
func (h *Handler) RemoveBet(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "number must be a whole number"})
		return
	}

	userID := currentUserID(c)
	refunded, err := h.bets.RemoveBet(c.Request.Context(), userID, number)
	if err != nil {
		respondError(c, err)
		return
	}

	balance, _ := h.wallet.Balance(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{
		"refunded": refunded,
		"balance":  balance,
	})
}

// MyBets lists the caller's bets in the active round.
func (h *Handler) MyBets(c *gin.Context) {
	bets, err := h.bets.MyBets(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": bets})
}

type setDiceRequest struct {
	Dice  [6]int `json:"dice" binding:"required"`
	Force bool   `json:"force"`
}

// SetDice pre-sets the active round's dice.
func (h *Handler) SetDice(c *gin.Context) {
	var req setDiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.admin.SetDice(c.Request.Context(), req.Dice, req.Force)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"round_id": round.RoundID,
		"result":   round.DiceResult,
	})
}

// DiceMode returns the current dice mode.
func (h *Handler) DiceMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mode": h.admin.DiceMode(c.Request.Context())})
}

type diceModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SetDiceMode switches between random and manual dice.
func (h *Handler) SetDiceMode(c *gin.Context) {
	var req diceModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.admin.SetDiceMode(c.Request.Context(), req.Mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": req.Mode})
}

type updateSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// UpdateSetting edits one duration setting; future rounds pick it up.
func (h *Handler) UpdateSetting(c *gin.Context) {
	var req updateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.admin.UpdateDuration(c.Request.Context(), req.Key, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": req.Key, "value": req.Value})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket authenticates the token from the query string and attaches
// the client to the event fanout.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	ctx := logger.WithRequestID(c.Request.Context(), logger.GenerateRequestID())

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, _, err := validateToken([]byte(h.jwt.Secret), token)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("ws token rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("websocket upgrade failed")
		return
	}

	logger.Info(ctx).Int64("user_id", userID).Msg("ws session opened")
	session := h.manager.Register(conn, userID)
	go session.WritePump()
	go session.ReadPump()
}

// respondError maps domain sentinels onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNoActiveRound), errors.Is(err, domain.ErrBetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrBettingClosed),
		errors.Is(err, domain.ErrRoundEnded),
		errors.Is(err, domain.ErrInvalidNumber),
		errors.Is(err, domain.ErrInvalidFace),
		errors.Is(err, wallet.ErrInsufficientBalance):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrResultCutoff), errors.Is(err, domain.ErrAlreadySettled):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error(c.Request.Context()).Err(err).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
