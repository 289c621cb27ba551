package outputs

import (
	"errors"
	"time"

	"github.com/PsycoVenom0/security-relay/src/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTOutput publishes every dispatch event on a topic of the broker.
type MQTTOutput struct {
	Client        mqtt.Client
	Topic         string
	Configuration *models.Configuration
}

func (o *MQTTOutput) Name() string {
	return "mqtt"
}

func (o *MQTTOutput) Trigger(event models.Event) error {
	if o.Client == nil || !o.Client.IsConnected() {
		return errors.New("mqtt client is not connected")
	}

	msg := models.Message{
		Payload: models.Payload{
			Action: "alert-event",
			Value: map[string]interface{}{
				"id":          event.ID,
				"source":      event.Source,
				"sender":      event.Sender,
				"message":     event.Message,
				"outcome":     string(event.Outcome),
				"error":       event.Error,
				"received_at": event.ReceivedAt.Unix(),
				"finished_at": event.FinishedAt.Unix(),
			},
		},
	}
	payload, err := models.PackageMQTTMessage(o.Configuration, msg)
	if err != nil {
		return err
	}

	token := o.Client.Publish(o.Topic, 0, false, payload)
	if !token.WaitTimeout(3 * time.Second) {
		return errors.New("mqtt publish on " + o.Topic + " timed out")
	}
	return token.Error()
}
