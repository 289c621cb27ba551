package components

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/PsycoVenom0/security-relay/src/outputs"
	"github.com/PsycoVenom0/security-relay/src/routers"
	mqttrouter "github.com/PsycoVenom0/security-relay/src/routers/mqtt"
	"github.com/PsycoVenom0/security-relay/src/routers/udp"
	"github.com/PsycoVenom0/security-relay/src/routers/websocket"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ShutdownTimeout bounds the wait for running dispatches on shutdown.
var ShutdownTimeout = 10 * time.Second

// Bootstrap starts the relay and blocks until the context of the
// communication is cancelled. It only returns an error when the relay
// could not be started, e.g. when the trigger port is in use.
func Bootstrap(configuration *models.Configuration, communication *models.Communication) error {
	log.Log.Debug("components.Bootstrap(): started")
	config := configuration.Config

	stopTracing := ConfigureTracing(config)
	defer stopTracing()

	dispatcher := NewDispatcher(config)
	relay := NewRelay(configuration, dispatcher)

	listener, err := udp.Listen(config.Listener.Address, config.Listener.Port, relay)
	if err != nil {
		return err
	}
	port := config.Listener.Port
	if addr, ok := listener.Addr().(*net.UDPAddr); ok {
		port = addr.Port
	}
	log.Log.Info("components.Bootstrap(): security relay listening on port " + strconv.Itoa(port))
	log.Log.Info("components.Bootstrap(): camera target " + config.Camera.URL)

	// Motion triggers can also be published on a MQTT broker, the events
	// are published back on the same broker.
	var mqttClient mqtt.Client
	if config.MQTT.URI != "" {
		mqttClient = routers.StartMqttListener(configuration, relay)
		relay.AddOutput(&outputs.MQTTOutput{
			Client:        mqttClient,
			Topic:         mqttrouter.EventTopic(config),
			Configuration: configuration,
		})
	}

	// The REST API and the websocket event stream.
	var server *http.Server
	if config.API.Port != "" {
		hub := websocket.NewHub()
		relay.AddOutput(hub)
		server, err = routers.StartWebserver(configuration, communication, relay, hub)
		if err != nil {
			listener.Close()
			mqttrouter.DisconnectMQTT(mqttClient)
			return err
		}
	}

	// This will block until the context is cancelled.
	listener.Serve(*communication.Context)

	log.Log.Info("components.Bootstrap(): shutting down")
	Shutdown(communication, listener, server, mqttClient, configuration, relay)
	log.Log.Debug("components.Bootstrap(): finished")
	return nil
}

// Shutdown stops the trigger sources first, and then waits for the running
// dispatches. Running dispatches are never cancelled, we give them some
// time to finish.
func Shutdown(communication *models.Communication, listener *udp.Listener, server *http.Server, mqttClient mqtt.Client, configuration *models.Configuration, relay *Relay) {
	communication.IsShuttingDown.Set()
	listener.Close()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			log.Log.Error("components.Shutdown(): " + err.Error())
		}
		cancel()
	}
	mqttrouter.UnsubscribeTriggers(mqttClient, configuration.Config)

	// Whatever still comes in through a handler is dropped from here on.
	relay.Stop()

	finished := waitTimeout(func() {
		listener.Wait()
		relay.inFlight.Wait()
	}, ShutdownTimeout)
	if !finished {
		log.Log.Warning("components.Shutdown(): not all alerts were dispatched before shutdown")
	}

	mqttrouter.DisconnectMQTT(mqttClient)
}
