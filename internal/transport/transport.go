package transport

import (
	"github.com/gin-gonic/gin"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/transport/middleware"
)

type Handlers struct {
	Courts       *CourtHandler
	Reservations *ReservationHandler
	Block        *BlockHandler
	Config       *ConfigHandler
	History      *HistoryHandler
	Chat         *ChatHandler
	WhatsApp     *WhatsAppHandler
	DeadLetters  *DeadLetterHandler
	Health       *HealthHandler
}

type RouterOptions struct {
	Mode           string
	RequestTimeout int // seconds
	// ChatLimiter may be nil, then the web chat is not limited.
	ChatLimiter middleware.Limiter
}

func InitRoutes(h *Handlers, opts RouterOptions) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(opts.RequestTimeout))

	// Courts and slots
	courts := router.Group("/canchas")
	{
		courts.GET("/horarios", h.Courts.ListSlots)
		courts.GET("", h.Courts.ListCourts)
		courts.POST("", h.Courts.CreateCourt)
		courts.PUT("/:id", h.Courts.UpdateCourt)
		courts.DELETE("/:id", h.Courts.DeleteCourt)
	}

	api := router.Group("/api")
	{
		reservations := api.Group("/reservas")
		{
			reservations.GET("", h.Reservations.List)
			reservations.POST("", h.Reservations.Create)
			reservations.POST("/disponibilidad", h.Reservations.CheckAvailability)
			reservations.GET("/cliente/:telefono", h.Reservations.ListForClient)
			reservations.GET("/:id", h.Reservations.Get)
			reservations.PUT("/:id", h.Reservations.Update)
			reservations.DELETE("/:id", h.Reservations.Delete)
			reservations.POST("/:id/cancelar", h.Reservations.Cancel)
		}

		// Admin block toggle
		block := api.Group("/cancelar")
		{
			block.GET("/horarios_fecha", h.Block.WeeklyGrid)
			block.POST("/toggle", h.Block.Toggle)
		}

		api.GET("/configuracion", h.Config.Get)
		api.POST("/configuracion", h.Config.Update)

		history := api.Group("/historial")
		{
			history.GET("/usuarios", h.History.Users)
			history.GET("/usuario/:usuario", h.History.UserHistory)
			history.DELETE("/usuario/:usuario", h.History.Clear)
			history.GET("/estadisticas", h.History.Stats)
		}

		chat := api.Group("/chat")
		{
			chat.POST("/message",
				middleware.RateLimit(opts.ChatLimiter, func(c *gin.Context) string {
					return entity.LocalWebUser + ":" + c.ClientIP()
				}),
				h.Chat.Message)
		}

		wa := api.Group("/whatsapp")
		{
			wa.GET("/webhook", h.WhatsApp.Verify)
			wa.POST("/webhook", h.WhatsApp.Receive)
			wa.POST("/send", h.WhatsApp.Send)
			wa.DELETE("/clear-history/:phone", h.WhatsApp.ClearHistory)
		}

		// Failed admin notifications
		dlq := api.Group("/admin/dlq")
		{
			dlq.GET("", h.DeadLetters.List)
			dlq.DELETE("", h.DeadLetters.Purge)
			dlq.POST("/:id/requeue", h.DeadLetters.Requeue)
			dlq.DELETE("/:id", h.DeadLetters.Delete)
		}
	}

	// Health check
	router.GET("/health", h.Health.Health)

	return router
}
