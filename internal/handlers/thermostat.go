package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errGetState = "failed to load state"
)

func (h *Handler) logInfo(msg string, kv ...interface{}) {
	if h.log != nil {
		h.log.Infow(msg, kv...)
	}
}

func (h *Handler) logError(msg string, kv ...interface{}) {
	if h.log != nil {
		h.log.Errorw(msg, kv...)
	}
}

// logAndJSONError logs err under logKey and answers with a generic message.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		h.logError(logKey, append([]interface{}{"err", err}, kv...)...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get thermostat state
// @Description  Last-known snapshot left by the control loop. Before the first cycle the heater is reported OFF with the default target.
// @Tags         thermostat
// @Produce      json
// @Success      200  {object}  models.ThermostatState
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/thermostat/state [get]
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
