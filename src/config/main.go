package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/InVisionApp/conjungo"
	"github.com/PsycoVenom0/security-relay/src/database"
	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	DefaultName            = "relay"
	DefaultListenerAddress = "127.0.0.1"
	DefaultListenerPort    = 7070
	DefaultCameraURL       = "http://192.168.4.1/still"
	DefaultCameraTimeout   = 2000     // milliseconds
	DefaultCameraMaxSize   = 10 << 20 // bytes
	DefaultUsername        = "BeagleY Security"
	DefaultTitle           = "🚨 Motion Detected!"
	DefaultColor           = 15158332 // red
	DefaultFooterPrefix    = "BeagleY-AI"
	DefaultEventBuffer     = 100
)

// Defaults returns the configuration the relay runs with when nothing
// else is provided. The webhook url has no default and must be set.
func Defaults() models.Config {
	return models.Config{
		Type:      "config",
		Name:      DefaultName,
		Timezone:  "Local",
		LogLevel:  "info",
		LogOutput: "logrus",
		Listener: models.ListenerConfig{
			Address: DefaultListenerAddress,
			Port:    DefaultListenerPort,
		},
		Camera: models.CameraConfig{
			URL:     DefaultCameraURL,
			Timeout: DefaultCameraTimeout,
			MaxSize: DefaultCameraMaxSize,
		},
		Webhook: models.WebhookConfig{
			Username:     DefaultUsername,
			Title:        DefaultTitle,
			Color:        DefaultColor,
			FooterPrefix: DefaultFooterPrefix,
		},
		Tracing: models.TracingConfig{
			Enabled: "false",
			Service: "security-relay",
		},
		Events: models.EventsConfig{
			Buffer: DefaultEventBuffer,
		},
	}
}

// OpenConfig builds the configuration: the defaults, overwritten by the
// configuration source of the deployment. For a stand-alone relay this is
// a config.json or config.yaml file in <configDirectory>/data/config, for
// a factory deployment the configuration is stored in MongoDB.
func OpenConfig(configDirectory string, configuration *models.Configuration) error {

	configuration.Config = Defaults()

	if os.Getenv("DEPLOYMENT") == "factory" {

		// Factory deployment means that configuration is stored in MongoDB
		// Multiple relays have there configuration stored, and can benefit from
		// a shared global configuration.
		return openFactoryConfig(configuration)

	} else if os.Getenv("DEPLOYMENT") == "" || os.Getenv("DEPLOYMENT") == "agent" {

		customConfig, path, err := ReadConfigFile(configDirectory)
		if err != nil {
			return err
		}
		if path == "" {
			log.Log.Info("config.main.OpenConfig(): no configuration file found in " + configDirectory + "/data/config, using defaults.")
			return nil
		}
		log.Log.Info("config.main.OpenConfig(): successfully opened " + path)
		configuration.CustomConfig = customConfig
		return MergeConfig(&configuration.Config, customConfig)
	}

	return fmt.Errorf("%w: unknown deployment %q", ErrInvalidConfig, os.Getenv("DEPLOYMENT"))
}

// ReadConfigFile reads the first configuration file found in the config
// directory. An empty path is returned when there is no file.
func ReadConfigFile(configDirectory string) (config models.Config, path string, err error) {
	candidates := []string{"config.json", "config.yaml", "config.yml"}
	for _, name := range candidates {
		candidate := filepath.Join(configDirectory, "data", "config", name)
		data, readErr := os.ReadFile(candidate)
		if errors.Is(readErr, os.ErrNotExist) {
			continue
		}
		if readErr != nil {
			return config, candidate, fmt.Errorf("config.main.ReadConfigFile(): %w", readErr)
		}

		if strings.HasSuffix(name, ".json") {
			err = json.Unmarshal(data, &config)
		} else {
			err = yaml.Unmarshal(data, &config)
		}
		if err != nil {
			return config, candidate, fmt.Errorf("%w: %s is not valid: %v", ErrInvalidConfig, candidate, err)
		}
		return config, candidate, nil
	}
	return config, "", nil
}

func openFactoryConfig(configuration *models.Configuration) error {
	db, err := database.New()
	if err != nil {
		return fmt.Errorf("config.main.OpenConfig(): could not connect to mongodb: %w", err)
	}

	collection := db.Client.Database(database.DatabaseName).Collection("configuration")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var globalConfig models.Config
	err = collection.FindOne(ctx, bson.M{
		"type": "global",
	}).Decode(&globalConfig)
	if err != nil {
		return fmt.Errorf("config.main.OpenConfig(): could not find global configuration: %w", err)
	}
	configuration.GlobalConfig = globalConfig

	var customConfig models.Config
	deploymentName := os.Getenv("DEPLOYMENT_NAME")
	err = collection.FindOne(ctx, bson.M{
		"type": "config",
		"name": deploymentName,
	}).Decode(&customConfig)
	if err != nil {
		log.Log.Warning("config.main.OpenConfig(): could not find configuration for " + deploymentName + ", using global configuration.")
	}
	configuration.CustomConfig = customConfig

	// Global settings first, the custom config might override some of them.
	if err := MergeConfig(&configuration.Config, configuration.GlobalConfig); err != nil {
		return err
	}
	return MergeConfig(&configuration.Config, configuration.CustomConfig)
}

// MergeConfig copies every non-empty value of source on target.
func MergeConfig(target *models.Config, source models.Config) error {
	opts := conjungo.NewOptions()
	opts.SetTypeMergeFunc(
		reflect.TypeOf(""),
		func(t, s reflect.Value, o *conjungo.Options) (reflect.Value, error) {
			targetStr, _ := t.Interface().(string)
			sourceStr, _ := s.Interface().(string)
			finalStr := targetStr
			if sourceStr != "" {
				finalStr = sourceStr
			}
			return reflect.ValueOf(finalStr), nil
		},
	)
	opts.SetTypeMergeFunc(
		reflect.TypeOf(0),
		func(t, s reflect.Value, o *conjungo.Options) (reflect.Value, error) {
			if s.Int() != 0 {
				return reflect.ValueOf(int(s.Int())), nil
			}
			return reflect.ValueOf(int(t.Int())), nil
		},
	)
	opts.SetTypeMergeFunc(
		reflect.TypeOf(int64(0)),
		func(t, s reflect.Value, o *conjungo.Options) (reflect.Value, error) {
			if s.Int() != 0 {
				return reflect.ValueOf(s.Int()), nil
			}
			return reflect.ValueOf(t.Int()), nil
		},
	)
	if err := conjungo.Merge(target, source, opts); err != nil {
		return fmt.Errorf("config.main.MergeConfig(): %w", err)
	}
	return nil
}

// LoadEnvironment reads the .env file of the config directory, variables
// which are already set in the environment are kept.
func LoadEnvironment(configDirectory string) {
	envFile := filepath.Join(configDirectory, ".env")
	if _, err := os.Stat(envFile); err != nil {
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Log.Warning("config.main.LoadEnvironment(): " + err.Error())
		return
	}
	log.Log.Info("config.main.LoadEnvironment(): loaded " + envFile)
}

// This function will override the configuration with environment variables.
func OverrideWithEnvironmentVariables(configuration *models.Configuration) {
	environmentVariables := os.Environ()
	for _, env := range environmentVariables {
		if !strings.HasPrefix(env, "RELAY_") {
			continue
		}
		key := strings.SplitN(env, "=", 2)[0]
		value := os.Getenv(key)
		config := &configuration.Config
		switch key {

		/* General configuration */
		case "RELAY_NAME":
			config.Name = value
		case "RELAY_TIMEZONE":
			config.Timezone = value
		case "RELAY_LOG_LEVEL":
			config.LogLevel = value
		case "RELAY_LOG_OUTPUT":
			config.LogOutput = value
		case "RELAY_LOG_FILE":
			config.LogFile = value

		/* Trigger listener */
		case "RELAY_LISTENER_ADDRESS":
			config.Listener.Address = value
		case "RELAY_LISTENER_PORT":
			if port, err := strconv.Atoi(value); err == nil {
				config.Listener.Port = port
			}

		/* Camera */
		case "RELAY_CAMERA_URL":
			config.Camera.URL = value
		case "RELAY_CAMERA_TIMEOUT":
			if timeout, err := strconv.ParseInt(value, 10, 64); err == nil {
				config.Camera.Timeout = timeout
			}
		case "RELAY_CAMERA_MAX_SIZE":
			if size, err := strconv.ParseInt(value, 10, 64); err == nil {
				config.Camera.MaxSize = size
			}

		/* Webhook */
		case "RELAY_WEBHOOK_URL":
			config.Webhook.URL = value
		case "RELAY_WEBHOOK_USERNAME":
			config.Webhook.Username = value
		case "RELAY_WEBHOOK_TITLE":
			config.Webhook.Title = value
		case "RELAY_WEBHOOK_COLOR":
			if color, err := strconv.Atoi(value); err == nil {
				config.Webhook.Color = color
			}
		case "RELAY_WEBHOOK_FOOTER_PREFIX":
			config.Webhook.FooterPrefix = value
		case "RELAY_WEBHOOK_TIMEOUT":
			if timeout, err := strconv.ParseInt(value, 10, 64); err == nil {
				config.Webhook.Timeout = timeout
			}

		/* MQTT settings for triggers and events */
		case "RELAY_MQTT_URI":
			config.MQTT.URI = value
		case "RELAY_MQTT_USERNAME":
			config.MQTT.Username = value
		case "RELAY_MQTT_PASSWORD":
			config.MQTT.Password = value
		case "RELAY_MQTT_TRIGGER_TOPIC":
			config.MQTT.TriggerTopic = value
		case "RELAY_MQTT_EVENT_TOPIC":
			config.MQTT.EventTopic = value

		/* Status API */
		case "RELAY_API_PORT":
			config.API.Port = value
		case "RELAY_API_USERNAME":
			config.API.Username = value
		case "RELAY_API_PASSWORD":
			config.API.Password = value
		case "RELAY_API_SECRET":
			config.API.Secret = value
		case "RELAY_API_CORS_ORIGINS":
			config.API.CORSOrigins = value

		/* Tracing */
		case "RELAY_TRACING":
			config.Tracing.Enabled = value
		case "RELAY_TRACING_SERVICE":
			config.Tracing.Service = value

		case "RELAY_EVENTS_BUFFER":
			if size, err := strconv.Atoi(value); err == nil {
				config.Events.Buffer = size
			}
		}
	}
}

// Validate checks the settings the relay cannot start without.
func Validate(config models.Config) error {
	if config.Webhook.URL == "" {
		return fmt.Errorf("%w: webhook url is required", ErrInvalidConfig)
	}
	if !isHTTPURL(config.Webhook.URL) {
		return fmt.Errorf("%w: webhook url %q is not a valid http(s) url", ErrInvalidConfig, config.Webhook.URL)
	}
	if !isHTTPURL(config.Camera.URL) {
		return fmt.Errorf("%w: camera url %q is not a valid http(s) url", ErrInvalidConfig, config.Camera.URL)
	}
	if config.Listener.Port < 0 || config.Listener.Port > 65535 {
		return fmt.Errorf("%w: listener port %d out of range", ErrInvalidConfig, config.Listener.Port)
	}
	if config.Camera.Timeout <= 0 {
		return fmt.Errorf("%w: camera timeout must be positive", ErrInvalidConfig)
	}
	if config.Webhook.Timeout < 0 {
		return fmt.Errorf("%w: webhook timeout cannot be negative", ErrInvalidConfig)
	}
	for _, origin := range strings.Split(config.API.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" && !isHTTPURL(origin) {
			return fmt.Errorf("%w: cors origin %q is not a valid http(s) origin", ErrInvalidConfig, origin)
		}
	}
	if config.Timezone != "" {
		if _, err := time.LoadLocation(config.Timezone); err != nil {
			return fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, config.Timezone, err)
		}
	}
	return nil
}

func isHTTPURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Redact returns a copy of the configuration without credentials, so it
// can be shown through the API.
func Redact(config models.Config) models.Config {
	if u, err := url.Parse(config.Webhook.URL); err == nil && u.Host != "" {
		config.Webhook.URL = u.Scheme + "://" + u.Host + "/***"
	} else if config.Webhook.URL != "" {
		config.Webhook.URL = "***"
	}
	if config.MQTT.Password != "" {
		config.MQTT.Password = "***"
	}
	if config.API.Password != "" {
		config.API.Password = "***"
	}
	if config.API.Secret != "" {
		config.API.Secret = "***"
	}
	return config
}

// Location returns the timezone of the relay, falling back to local time.
func Location(config models.Config) *time.Location {
	if config.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
