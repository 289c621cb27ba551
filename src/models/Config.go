package models

// The Configuration struct holds the configuration sources and the
// merged result the relay runs with.
type Configuration struct {
	Name         string
	Config       Config
	CustomConfig Config
	GlobalConfig Config
}

// Config is the highlevel struct which contains all the configuration of
// the security relay. It is constructed once at startup and passed by value
// to the components, it is never mutated afterwards.
type Config struct {
	Type      string         `json:"type" yaml:"type" bson:"type"`
	Name      string         `json:"name" yaml:"name" bson:"name"`
	Timezone  string         `json:"timezone,omitempty" yaml:"timezone,omitempty" bson:"timezone,omitempty"`
	LogLevel  string         `json:"log_level,omitempty" yaml:"log_level,omitempty" bson:"log_level,omitempty"`
	LogOutput string         `json:"log_output,omitempty" yaml:"log_output,omitempty" bson:"log_output,omitempty"`
	LogFile   string         `json:"log_file,omitempty" yaml:"log_file,omitempty" bson:"log_file,omitempty"`
	Listener  ListenerConfig `json:"listener" yaml:"listener" bson:"listener"`
	Camera    CameraConfig   `json:"camera" yaml:"camera" bson:"camera"`
	Webhook   WebhookConfig  `json:"webhook" yaml:"webhook" bson:"webhook"`
	MQTT      MQTTConfig     `json:"mqtt" yaml:"mqtt" bson:"mqtt"`
	API       APIConfig      `json:"api" yaml:"api" bson:"api"`
	Tracing   TracingConfig  `json:"tracing" yaml:"tracing" bson:"tracing"`
	Events    EventsConfig   `json:"events" yaml:"events" bson:"events"`
}

// ListenerConfig is the address and port the trigger socket binds to.
type ListenerConfig struct {
	Address string `json:"address" yaml:"address" bson:"address"`
	Port    int    `json:"port" yaml:"port" bson:"port"`
}

// CameraConfig points at the still image endpoint of the camera, the
// timeout is expressed in milliseconds.
type CameraConfig struct {
	URL     string `json:"url" yaml:"url" bson:"url"`
	Timeout int64  `json:"timeout" yaml:"timeout" bson:"timeout"`
	MaxSize int64  `json:"max_size,omitempty" yaml:"max_size,omitempty" bson:"max_size,omitempty"`
}

// WebhookConfig describes the chat webhook and the look of the embed.
// A zero timeout means no explicit timeout on the webhook post.
type WebhookConfig struct {
	URL          string `json:"url" yaml:"url" bson:"url"`
	Username     string `json:"username" yaml:"username" bson:"username"`
	Title        string `json:"title" yaml:"title" bson:"title"`
	Color        int    `json:"color" yaml:"color" bson:"color"`
	FooterPrefix string `json:"footer_prefix" yaml:"footer_prefix" bson:"footer_prefix"`
	Timeout      int64  `json:"timeout,omitempty" yaml:"timeout,omitempty" bson:"timeout,omitempty"`
}

// MQTTConfig enables an optional trigger topic and event topic on a broker.
type MQTTConfig struct {
	URI          string `json:"uri,omitempty" yaml:"uri,omitempty" bson:"uri,omitempty"`
	Username     string `json:"username,omitempty" yaml:"username,omitempty" bson:"username,omitempty"`
	Password     string `json:"password,omitempty" yaml:"password,omitempty" bson:"password,omitempty"`
	TriggerTopic string `json:"trigger_topic,omitempty" yaml:"trigger_topic,omitempty" bson:"trigger_topic,omitempty"`
	EventTopic   string `json:"event_topic,omitempty" yaml:"event_topic,omitempty" bson:"event_topic,omitempty"`
}

// APIConfig enables the HTTP status API when a port is given. CORSOrigins
// is a comma separated list of browser origins, all origins when empty.
type APIConfig struct {
	Port        string `json:"port,omitempty" yaml:"port,omitempty" bson:"port,omitempty"`
	Username    string `json:"username,omitempty" yaml:"username,omitempty" bson:"username,omitempty"`
	Password    string `json:"password,omitempty" yaml:"password,omitempty" bson:"password,omitempty"`
	Secret      string `json:"secret,omitempty" yaml:"secret,omitempty" bson:"secret,omitempty"`
	CORSOrigins string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty" bson:"cors_origins,omitempty"`
}

type TracingConfig struct {
	Enabled string `json:"enabled,omitempty" yaml:"enabled,omitempty" bson:"enabled,omitempty"`
	Service string `json:"service,omitempty" yaml:"service,omitempty" bson:"service,omitempty"`
}

// EventsConfig sizes the in-memory list of recent dispatch events.
type EventsConfig struct {
	Buffer int `json:"buffer,omitempty" yaml:"buffer,omitempty" bson:"buffer,omitempty"`
}
