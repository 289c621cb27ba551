package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/PsycoVenom0/security-relay/src/config"
	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/PsycoVenom0/security-relay/src/utils"
	"github.com/gin-gonic/gin"
)

// Health is used by liveness checks, it does not touch the camera or the webhook.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.APIResponse{
		Data: "ok",
	})
}

// GetStatus returns the relay name, uptime, counters and host information.
func GetStatus(c *gin.Context, configuration *models.Configuration, communication *models.Communication, relay Relay) {
	config := configuration.Config
	system, err := utils.GetSystemInfo()
	if err != nil {
		log.Log.Warning("routers.http.GetStatus(): " + err.Error())
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Data: models.Status{
			Name:     config.Name,
			Version:  communication.Version,
			Uptime:   utils.Uptime(communication.StartedAt),
			Listener: net.JoinHostPort(config.Listener.Address, strconv.Itoa(config.Listener.Port)),
			Camera:   config.Camera.URL,
			Stats:    relay.Stats(),
			System:   system,
		},
	})
}

// GetEvents returns the recent dispatch events, newest first.
func GetEvents(c *gin.Context, relay Relay) {
	c.JSON(http.StatusOK, models.APIResponse{
		Data: relay.Events(),
	})
}

// Trigger dispatches an alert as if it was received from a sensor. The
// alert is sent in the background, the request does not wait for it.
func Trigger(c *gin.Context, communication *models.Communication, relay Relay) {
	if communication.IsShuttingDown != nil && communication.IsShuttingDown.IsSet() {
		c.JSON(http.StatusServiceUnavailable, models.APIResponse{
			Message: "relay is shutting down",
		})
		return
	}

	var request models.TriggerRequest
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Message) == "" {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Message: "a message is required",
		})
		return
	}

	trigger, err := models.NewTrigger(models.SourceHTTP, c.ClientIP(), []byte(request.Message))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Message: err.Error(),
		})
		return
	}
	log.Log.Info("routers.http.Trigger(): trigger from " + trigger.Sender + ": " + trigger.Message)
	relay.Dispatch(trigger)

	c.JSON(http.StatusAccepted, models.APIResponse{
		Data:    trigger,
		Message: "alert is being dispatched",
	})
}

// GetConfig returns the active configuration without its secrets.
func GetConfig(c *gin.Context, configuration *models.Configuration) {
	c.JSON(http.StatusOK, models.APIResponse{
		Data: config.Redact(configuration.Config),
	})
}
