package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mt5-gateway/internal/api/models"
	"mt5-gateway/internal/logger"
	"mt5-gateway/internal/terminal"
)

// AccountHandler serves account-level reads.
type AccountHandler struct {
	term terminal.Terminal
	log  *logger.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(term terminal.Terminal, log *logger.Logger) *AccountHandler {
	return &AccountHandler{term: term, log: log}
}

// GetAccount handles GET /account.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	acc, err := h.term.AccountInfo()
	if err != nil {
		h.log.Warn("account info unavailable", zap.Error(err))
		c.JSON(http.StatusOK, models.ErrorResponse{Error: err.Error()})

		return
	}

	c.JSON(http.StatusOK, acc)
}
