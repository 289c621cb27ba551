package mqtt

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// A Dispatcher starts the dispatch of a trigger without waiting for it.
type Dispatcher interface {
	Dispatch(trigger models.Trigger)
}

// TriggerTopic is the topic motion sensors publish on, relay/<name>/trigger
// when nothing is configured.
func TriggerTopic(config models.Config) string {
	if config.MQTT.TriggerTopic != "" {
		return config.MQTT.TriggerTopic
	}
	return "relay/" + config.Name + "/trigger"
}

// EventTopic is the topic the dispatch events are published on.
func EventTopic(config models.Config) string {
	if config.MQTT.EventTopic != "" {
		return config.MQTT.EventTopic
	}
	return "relay/" + config.Name + "/events"
}

func ConfigureMQTT(configuration *models.Configuration, dispatcher Dispatcher) mqtt.Client {

	config := configuration.Config

	opts := mqtt.NewClientOptions()

	// We will set the MQTT endpoint to which we want to connect
	// and share and receive messages to/from.
	mqttURL := config.MQTT.URI
	opts.AddBroker(mqttURL)
	log.Log.Info("routers.mqtt.main.ConfigureMQTT(): set broker uri " + mqttURL)

	// Our MQTT broker can have username/password credentials
	// to protect it from the outside.
	mqttUsername := config.MQTT.Username
	mqttPassword := config.MQTT.Password
	if mqttUsername != "" || mqttPassword != "" {
		opts.SetUsername(mqttUsername)
		opts.SetPassword(mqttPassword)
		log.Log.Info("routers.mqtt.main.ConfigureMQTT(): set username " + mqttUsername)
	}

	// Some extra options to make sure the connection behaves
	// properly. More information here: github.com/eclipse/paho.mqtt.golang.
	opts.SetCleanSession(true)
	opts.SetConnectRetry(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(30 * time.Second)

	// The random int is to avoid conflicts between relays with the same name.
	mqttClientID := config.Name + strconv.Itoa(rand.Intn(100))
	opts.SetClientID(mqttClientID)
	log.Log.Info("routers.mqtt.main.ConfigureMQTT(): set ClientID " + mqttClientID)

	triggerTopic := TriggerTopic(config)
	opts.OnConnect = func(c mqtt.Client) {
		// We managed to connect to the MQTT broker, hurray!
		log.Log.Info("routers.mqtt.main.ConfigureMQTT(): " + mqttClientID + " connected to " + mqttURL)

		// Create a subscription for the motion triggers.
		MQTTListenerHandleTrigger(c, triggerTopic, dispatcher)
	}

	mqc := mqtt.NewClient(opts)
	if token := mqc.Connect(); token.WaitTimeout(3 * time.Second) {
		if token.Error() != nil {
			log.Log.Error("routers.mqtt.main.ConfigureMQTT(): unable to establish mqtt broker connection, error was: " + token.Error().Error())
		}
	}
	return mqc
}

func MQTTListenerHandleTrigger(mqttClient mqtt.Client, topic string, dispatcher Dispatcher) {
	token := mqttClient.Subscribe(topic, 0, HandleTrigger(dispatcher))
	if token.WaitTimeout(3*time.Second) && token.Error() != nil {
		log.Log.Error("routers.mqtt.main.MQTTListenerHandleTrigger(): could not subscribe to " + topic + ": " + token.Error().Error())
		return
	}
	log.Log.Info("routers.mqtt.main.MQTTListenerHandleTrigger(): subscribed to " + topic)
}

// HandleTrigger decodes a message like a trigger datagram, and dispatches it.
func HandleTrigger(dispatcher Dispatcher) mqtt.MessageHandler {
	return func(c mqtt.Client, msg mqtt.Message) {
		defer msg.Ack()
		trigger, err := models.NewTrigger(models.SourceMQTT, msg.Topic(), msg.Payload())
		if err != nil {
			log.Log.Warning("routers.mqtt.main.HandleTrigger(): discarded message on " + msg.Topic() + ": " + err.Error())
			return
		}
		log.Log.Info("routers.mqtt.main.HandleTrigger(): trigger from " + msg.Topic() + ": " + trigger.Message)
		dispatcher.Dispatch(trigger)
	}
}

// UnsubscribeTriggers stops the trigger subscription, no new triggers are
// received afterwards while events can still be published.
func UnsubscribeTriggers(mqttClient mqtt.Client, config models.Config) {
	if mqttClient == nil || !mqttClient.IsConnected() {
		return
	}
	topic := TriggerTopic(config)
	token := mqttClient.Unsubscribe(topic)
	if !token.WaitTimeout(3 * time.Second) {
		log.Log.Warning("routers.mqtt.main.UnsubscribeTriggers(): unsubscribe from " + topic + " timed out")
		return
	}
	if token.Error() != nil {
		log.Log.Error("routers.mqtt.main.UnsubscribeTriggers(): " + token.Error().Error())
		return
	}
	log.Log.Info("routers.mqtt.main.UnsubscribeTriggers(): unsubscribed from " + topic)
}

func DisconnectMQTT(mqttClient mqtt.Client) {
	if mqttClient != nil {
		mqttClient.Disconnect(1000)
	}
}
