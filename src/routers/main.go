package routers

import (
	nethttp "net/http"

	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/PsycoVenom0/security-relay/src/routers/http"
	"github.com/PsycoVenom0/security-relay/src/routers/mqtt"
	"github.com/PsycoVenom0/security-relay/src/routers/websocket"
	paho "github.com/eclipse/paho.mqtt.golang"
)

func StartWebserver(configuration *models.Configuration, communication *models.Communication, relay http.Relay, hub *websocket.Hub) (*nethttp.Server, error) {
	return http.StartServer(configuration, communication, relay, hub)
}

func StartMqttListener(configuration *models.Configuration, dispatcher mqtt.Dispatcher) paho.Client {
	return mqtt.ConfigureMQTT(configuration, dispatcher)
}
