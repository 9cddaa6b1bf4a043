package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterOptions задаёт параметры HTTP-роутера.
type RouterOptions struct {
	// AllowedOrigins ограничивает CORS. Пустой список означает "*".
	AllowedOrigins []string
	// ReleaseMode отключает debug-вывод gin.
	ReleaseMode bool
}

// NewRouter собирает gin-роутер с маршрутами API версии 1.
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	if opts.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products/search", handler.SearchProducts)
		v1.GET("/products/:ident", handler.GetProduct)

		v1.GET("/availability", handler.CheckAvailability)
		v1.GET("/appointments/slots", handler.GetAvailableSlots)
		v1.POST("/appointments", handler.CreateAppointment)

		v1.GET("/customers/search", handler.SearchCustomers)
		v1.GET("/customers/:phone", handler.GetCustomer)
		v1.GET("/customers/:phone/orders", handler.GetCustomerOrders)

		v1.GET("/conversations/:callID/timeline", handler.GetTimeline)

		v1.GET("/config", handler.GetConfig)
		v1.POST("/webhooks/vapi", handler.HandleVapiWebhook)
	}

	return router
}
