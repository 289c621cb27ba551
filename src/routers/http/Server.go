package http

import (
	"errors"
	"net/http"

	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/PsycoVenom0/security-relay/src/routers/websocket"
	"github.com/PsycoVenom0/security-relay/src/utils"
	jwt "github.com/appleboy/gin-jwt/v2"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
)

// The Relay is what the API needs from the relay: triggering alerts and
// reading back what happened.
type Relay interface {
	Dispatch(trigger models.Trigger)
	Events() []models.Event
	Stats() models.Stats
}

// NewRouter builds the gin engine with all routes. The websocket route is
// only added when a hub is given.
func NewRouter(configuration *models.Configuration, communication *models.Communication, relay Relay, hub *websocket.Hub) (*gin.Engine, error) {

	// Initialize REST API
	r := gin.New()
	r.Use(gin.Recovery())

	// Profiler
	pprof.Register(r)

	// Setup CORS
	r.Use(CORS(configuration.Config.API.CORSOrigins))

	// The JWT middleware, a random secret invalidates the tokens on restart.
	secret := configuration.Config.API.Secret
	if secret == "" {
		random, err := utils.RandomSecret(32)
		if err != nil {
			return nil, err
		}
		secret = random
	}
	middleWare := JWTMiddleWare(configuration.Config.API, secret)
	authMiddleware, err := jwt.New(&middleWare)
	if err != nil {
		return nil, err
	}

	// Add all routes
	AddRoutes(r, authMiddleware, configuration, communication, relay, hub)
	return r, nil
}

// StartServer runs the API on the configured port in the background, the
// returned server is used to shut it down.
func StartServer(configuration *models.Configuration, communication *models.Communication, relay Relay, hub *websocket.Hub) (*http.Server, error) {
	if configuration.Config.API.Password == "" {
		log.Log.Warning("routers.http.StartServer(): no api password configured, login is disabled.")
	}

	r, err := NewRouter(configuration, communication, relay, hub)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:    ":" + configuration.Config.API.Port,
		Handler: r,
	}
	go func() {
		log.Log.Info("routers.http.StartServer(): api listening on port " + configuration.Config.API.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Log.Error("routers.http.StartServer(): " + err.Error())
		}
	}()
	return server, nil
}
