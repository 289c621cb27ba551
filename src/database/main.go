package database

import (
	"context"
	"os"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client *mongo.Client
}

var _init_ctx sync.Once
var _instance *DB
var _err error
var DatabaseName = "SecurityRelay"

// New connects once to the MongoDB cluster described by the MONGODB_*
// environment variables, and returns the shared connection.
func New() (*DB, error) {
	host := os.Getenv("MONGODB_HOST")
	databaseCredentials := os.Getenv("MONGODB_DATABASE_CREDENTIALS")
	username := os.Getenv("MONGODB_USERNAME")
	password := os.Getenv("MONGODB_PASSWORD")
	if name := os.Getenv("MONGODB_DATABASE"); name != "" {
		DatabaseName = name
	}

	_init_ctx.Do(func() {
		opts := options.Client().
			ApplyURI("mongodb://" + host).
			SetConnectTimeout(3 * time.Second).
			SetServerSelectionTimeout(3 * time.Second)
		if username != "" || password != "" {
			opts.SetAuth(options.Credential{
				AuthSource: databaseCredentials,
				Username:   username,
				Password:   password,
			})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			_err = err
			return
		}
		_instance = &DB{Client: client}
	})

	return _instance, _err
}
