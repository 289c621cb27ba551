package http

import (
	"net/http"
	"time"

	"github.com/PsycoVenom0/security-relay/src/models"
	jwt "github.com/appleboy/gin-jwt/v2"
	"github.com/gin-gonic/gin"
	jwtgo "github.com/golang-jwt/jwt/v4"
)

// JWTMiddleWare protects the endpoints which can trigger alerts or reveal
// the configuration. Only the user configured in the api section can login,
// without a password nobody can.
func JWTMiddleWare(config models.APIConfig, secret string) jwt.GinJWTMiddleware {

	identityKey := "id"

	m := jwt.GinJWTMiddleware{
		Realm:       "security-relay",
		Key:         []byte(secret),
		Timeout:     time.Hour * 24,
		MaxRefresh:  time.Hour * 24 * 7,
		IdentityKey: identityKey,
		PayloadFunc: func(data interface{}) jwt.MapClaims {
			if v, ok := data.(*models.User); ok {
				return jwt.MapClaims{
					identityKey: v,
				}
			}
			return jwt.MapClaims{}
		},
		IdentityHandler: func(c *gin.Context) interface{} {
			claims := jwt.ExtractClaims(c)
			user, ok := claims[identityKey].(map[string]interface{})
			if !ok {
				return nil
			}
			username, _ := user["username"].(string)
			role, _ := user["role"].(string)
			return &models.User{
				Username: username,
				Role:     role,
			}
		},
		Authenticator: func(c *gin.Context) (interface{}, error) {
			var loginVals models.Authentication
			if err := c.ShouldBind(&loginVals); err != nil {
				return "", jwt.ErrMissingLoginValues
			}
			if config.Password == "" {
				return nil, jwt.ErrFailedAuthentication
			}
			if loginVals.Username == config.Username && loginVals.Password == config.Password {
				return &models.User{
					Username: loginVals.Username,
					Role:     "admin",
				}, nil
			}
			return nil, jwt.ErrFailedAuthentication
		},
		LoginResponse: func(c *gin.Context, code int, token string, expire time.Time) {

			// Decrypt the token
			t, err := jwtgo.Parse(token, func(token *jwtgo.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"code":    http.StatusInternalServerError,
					"message": err.Error(),
				})
				return
			}

			// Get the claims
			claims, _ := t.Claims.(jwtgo.MapClaims)
			user, _ := claims[identityKey].(map[string]interface{})
			username, _ := user["username"].(string)
			role, _ := user["role"].(string)

			c.JSON(http.StatusOK, models.Authorization{
				Code:     http.StatusOK,
				Token:    token,
				Expire:   expire.Format(time.RFC3339),
				Username: username,
				Role:     role,
			})
		},
		Authorizator: func(data interface{}, c *gin.Context) bool {
			if v, ok := data.(*models.User); ok && v.Username != "" {
				return true
			}
			return false
		},
		Unauthorized: func(c *gin.Context, code int, message string) {
			c.AbortWithStatusJSON(code, gin.H{
				"code":    code,
				"message": message,
			})
		},
		// TokenLookup is a string in the form of "<source>:<name>" that is used
		// to extract token from the request.
		TokenLookup: "header: Authorization, query: token, cookie: jwt",

		// TokenHeadName is a string in the header. Default value is "Bearer"
		TokenHeadName: "Bearer",

		TimeFunc: time.Now,
	}
	return m
}
