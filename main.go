package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PsycoVenom0/security-relay/src/components"
	configService "github.com/PsycoVenom0/security-relay/src/config"
	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
)

const VERSION = "1.0.0"

func main() {

	if len(os.Args) < 2 {
		fmt.Println("Usage: relay version | relay run [configDirectory]")
		os.Exit(1)
	}
	action := os.Args[1]

	switch action {
	case "version":
		log.Log.Init("info", "", ".", time.Local)
		log.Log.Info("main.Main(): you are currently running Security Relay " + VERSION)

	case "run":
		{
			configDirectory := "."
			if len(os.Args) > 2 {
				configDirectory = os.Args[2]
			}

			// Environment variables can be provided through a .env file
			// next to the configuration.
			configService.LoadEnvironment(configDirectory)

			// Read the config on start, and pass it to the other
			// function and features. The configuration is not changed afterwards.
			configuration := &models.Configuration{}
			if err := configService.OpenConfig(configDirectory, configuration); err != nil {
				log.Log.Fatal("main.Main(): " + err.Error())
			}

			// We will override the configuration with the environment variables
			configService.OverrideWithEnvironmentVariables(configuration)
			config := configuration.Config

			// Set the logging output and level.
			if config.LogOutput != "" {
				log.Log.Logger = config.LogOutput
			}
			log.Log.Init(config.LogLevel, config.LogFile, configDirectory, configService.Location(config))

			if err := configService.Validate(config); err != nil {
				log.Log.Fatal("main.Main(): " + err.Error())
			}

			// Shared between the different goroutines of the relay.
			communication := models.NewCommunication()
			communication.Version = VERSION

			// Stop gracefully on ctrl+c or when the service is stopped.
			go func() {
				signals := make(chan os.Signal, 1)
				signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
				sig := <-signals
				log.Log.Info("main.Main(): received " + sig.String() + ", stopping the relay.")
				communication.IsShuttingDown.Set()
				(*communication.CancelContext)()
			}()

			// Bootstrapping the relay, this blocks until we are stopped.
			if err := components.Bootstrap(configuration, communication); err != nil {
				log.Log.Fatal("main.Main(): could not start the relay: " + err.Error())
			}
		}
	default:
		fmt.Println("Sorry I don't understand :(")
		os.Exit(1)
	}
}
