package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/appcanvas/builder/pkg/constants"
)

// Cors allows the builder frontend to call the API. With no origins
// configured every origin is allowed, without credentials.
func Cors(origins []string) gin.HandlerFunc {
	conf := cors.DefaultConfig()
	conf.AllowHeaders = append(conf.AllowHeaders, constants.HeaderAuthorization)
	conf.MaxAge = 12 * time.Hour
	if len(origins) == 0 {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
		conf.AllowCredentials = true
	}
	return cors.New(conf)
}
