package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/propexpo/stall-booking-api/docs"
	v1 "github.com/propexpo/stall-booking-api/internal/api/handler/v1"
	"github.com/propexpo/stall-booking-api/internal/api/middleware"
	"github.com/propexpo/stall-booking-api/internal/config"
	"github.com/propexpo/stall-booking-api/internal/domain"
	"github.com/propexpo/stall-booking-api/internal/pkg/checkinref"
	"github.com/propexpo/stall-booking-api/internal/repository"
	"github.com/propexpo/stall-booking-api/internal/repository/dao"
	"github.com/propexpo/stall-booking-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Live   *v1.LiveHandler
}

type handlers struct {
	event     *v1.EventHandler
	stallType *v1.StallTypeHandler
	booking   *v1.BookingHandler
	checkIn   *v1.CheckInHandler
	live      *v1.LiveHandler
}

// NewServer wires the API on top of db. cache and publisher are optional;
// inventory events always reach the live feed and, when set, publisher too.
// The caller must start Live.Run.
func NewServer(conf *config.AppConfig, db *gorm.DB, cache service.CapacityCache, publisher service.Notifier) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()
	s.MountHandlers(s.initHandlers(db, cache, publisher))

	return s
}

func (s *Server) initHandlers(db *gorm.DB, cache service.CapacityCache, publisher service.Notifier) handlers {
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	inventoryRepo := repository.NewInventoryRepository(dao.NewInventoryDAO(db))
	bookingRepo := repository.NewBookingRepository(dao.NewBookingDAO(db))

	s.Live = v1.NewLiveHandler(eventRepo)
	notifier := service.Fanout{s.Live}
	if publisher != nil {
		notifier = append(notifier, publisher)
	}

	capacitySvc := service.NewCapacityService(inventoryRepo, cache)
	eventSvc := service.NewEventService(eventRepo, capacitySvc, notifier)
	stallTypeSvc := service.NewStallTypeService(inventoryRepo, capacitySvc, notifier)
	bookingSvc := service.NewBookingService(bookingRepo, inventoryRepo, notifier)

	issuer := checkinref.NewIssuer(
		[]byte(s.Config.CheckIn.SigningKey),
		s.Config.CheckIn.Issuer,
		s.Config.CheckIn.FrontendBaseURL,
	)
	checkInSvc := service.NewCheckInService(eventRepo, inventoryRepo, bookingRepo, issuer)

	return handlers{
		event:     v1.NewEventHandler(eventSvc, capacitySvc),
		stallType: v1.NewStallTypeHandler(stallTypeSvc),
		booking:   v1.NewBookingHandler(bookingSvc),
		checkIn:   v1.NewCheckInHandler(checkInSvc),
		live:      s.Live,
	}
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	builderOnly := middleware.RequireRole(domain.RoleBuilder)
	builderOrAdmin := middleware.RequireRole(domain.RoleBuilder, domain.RoleAdmin)

	api := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())

	events := api.Group("/events")
	{
		events.GET("", h.event.HandleListEvents)
		events.POST("", adminOnly, h.event.HandleCreateEvent)
		events.GET("/:eventID", h.event.HandleGetEvent)
		events.PUT("/:eventID", adminOnly, h.event.HandleUpdateEvent)
		events.DELETE("/:eventID", adminOnly, h.event.HandleDeleteEvent)
		events.GET("/:eventID/capacity", adminOnly, h.event.HandleGetCapacity)
		events.GET("/:eventID/live", h.live.HandleLive)

		events.GET("/:eventID/stall-types", h.stallType.HandleListStallTypes)
		events.POST("/:eventID/stall-types", adminOnly, h.stallType.HandleCreateStallType)

		events.GET("/:eventID/stalls/available", h.booking.HandleListAvailableStalls)
		events.POST("/:eventID/book-next", builderOnly, h.booking.HandleBookNextAvailable)
		events.GET("/:eventID/bookings", adminOnly, h.booking.HandleListEventBookings)

		events.GET("/:eventID/stalls/:stallID/checkin", builderOrAdmin, h.checkIn.HandleIssueStallCheckIn)
		events.GET("/:eventID/checkin", adminOnly, h.checkIn.HandleIssueEventCheckIn)
	}

	stallTypes := api.Group("/stall-types")
	{
		stallTypes.GET("/:stallTypeID", h.stallType.HandleGetStallType)
		stallTypes.PUT("/:stallTypeID", adminOnly, h.stallType.HandleUpdateStallType)
		stallTypes.DELETE("/:stallTypeID", adminOnly, h.stallType.HandleDeleteStallType)
	}

	api.POST("/stalls/:stallID/book", builderOnly, h.booking.HandleBookStall)

	bookings := api.Group("/bookings")
	{
		bookings.GET("/mine", builderOnly, h.booking.HandleListMyBookings)
		bookings.DELETE("/:bookingID", builderOrAdmin, h.booking.HandleCancelBooking)
	}

	api.POST("/checkin/resolve", h.checkIn.HandleResolveCheckIn)

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Stall booking API"
	docs.SwaggerInfo.Description = "Stall inventory, booking and check-in for property exhibition events."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
