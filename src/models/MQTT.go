package models

import (
	"encoding/json"
	"time"

	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/gofrs/uuid"
)

// PackageMQTTMessage stamps the message with a unique id, the relay name
// and the current time, and serializes it for publishing.
func PackageMQTTMessage(configuration *Configuration, msg Message) ([]byte, error) {
	// Create a Version 4 UUID.
	u2, err := uuid.NewV4()
	if err != nil {
		log.Log.Error("models.mqtt.PackageMQTTMessage(): failed to generate UUID: " + err.Error())
	}

	msg.Mid = u2.String()
	msg.DeviceId = configuration.Config.Name
	msg.Payload.DeviceId = configuration.Config.Name
	msg.Timestamp = time.Now().Unix()

	payload, err := json.Marshal(msg)
	return payload, err
}

// The message structure which is used to send over
// and receive messages from the MQTT broker
type Message struct {
	Mid       string  `json:"mid"`
	DeviceId  string  `json:"device_id"`
	Timestamp int64   `json:"timestamp"`
	Payload   Payload `json:"payload"`
}

// The payload structure which is used to send over
// and receive messages from the MQTT broker
type Payload struct {
	Action   string                 `json:"action"`
	DeviceId string                 `json:"device_id"`
	Value    map[string]interface{} `json:"value"`
}
