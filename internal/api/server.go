package api

import (
	"context"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/loca-app/loca-api/docs"
	v1 "github.com/loca-app/loca-api/internal/api/handler/v1"
	"github.com/loca-app/loca-api/internal/api/middleware"
	"github.com/loca-app/loca-api/internal/caption"
	"github.com/loca-app/loca-api/internal/config"
	"github.com/loca-app/loca-api/internal/media"
	"github.com/loca-app/loca-api/internal/repository"
	"github.com/loca-app/loca-api/internal/repository/dao"
	"github.com/loca-app/loca-api/internal/service"
)

const (
	basePath    = "/api/v1"
	uploadsPath = "/uploads"
)

// Collaborators are the outside services the handlers depend on.
type Collaborators struct {
	Store     media.Store
	Describer caption.Describer
	Pinger    v1.Pinger
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Events *v1.EventHub

	collab Collaborators
	namer  *media.Namer
}

func NewServer(conf *config.AppConfig, db *gorm.DB, collab Collaborators) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		Events: v1.NewEventHub(),
		collab: collab,
		namer:  media.NewNamer(),
	}

	s.MountMiddlewares()

	userHandler := s.initUserHandler(db)
	keywordHandler := s.initKeywordHandler(db)
	contestHandler, eventHandler := s.initContestHandlers(db)
	photoHandler := s.initPhotoHandler(db)
	healthHandler := v1.NewHealthHandler(collab.Pinger, conf.API.Version)
	s.MountHandlers(userHandler, keywordHandler, contestHandler, eventHandler, photoHandler, healthHandler)

	return s
}

// RunEvents pumps live contest events until ctx is done.
func (s *Server) RunEvents(ctx context.Context) {
	s.Events.Run(ctx)
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initKeywordHandler(db *gorm.DB) *v1.KeywordHandler {
	keywordDAO := dao.NewKeywordDAO(db)
	repo := repository.NewKeywordRepository(keywordDAO)
	svc := service.NewKeywordService(repo)
	handler := v1.NewKeywordHandler(svc)

	return handler
}

func (s *Server) initContestHandlers(db *gorm.DB) (*v1.ContestHandler, *v1.EventHandler) {
	contestDAO := dao.NewContestDAO(db)
	repo := repository.NewContestRepository(contestDAO)
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewContestService(repo, userRepo, s.collab.Store, s.namer)

	return v1.NewContestHandler(s.Config.API, svc, s.Events), v1.NewEventHandler(s.Events, svc)
}

func (s *Server) initPhotoHandler(db *gorm.DB) *v1.PhotoHandler {
	photoDAO := dao.NewPhotoDAO(db)
	repo := repository.NewPhotoRepository(photoDAO)
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	keywordRepo := repository.NewKeywordRepository(dao.NewKeywordDAO(db))
	svc := service.NewPhotoService(repo, userRepo, keywordRepo, s.collab.Store, s.namer, s.collab.Describer, service.CaptionOptions{
		Timeout:  s.Config.Caption.Timeout,
		Fallback: s.Config.Caption.Fallback,
	})
	handler := v1.NewPhotoHandler(s.Config.API, svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	userHandler *v1.UserHandler,
	keywordHandler *v1.KeywordHandler,
	contestHandler *v1.ContestHandler,
	eventHandler *v1.EventHandler,
	photoHandler *v1.PhotoHandler,
	healthHandler *v1.HealthHandler,
) {
	users := s.Router.Group(basePath)
	{
		users.POST("/users", userHandler.HandleCreateUser)
		users.GET("/users", userHandler.HandleListUsers)
		users.GET("/users/:userID", userHandler.HandleGetUser)
		users.GET("/users/:userID/stats", userHandler.HandleGetUserStats)
	}

	keywords := s.Router.Group(basePath)
	{
		keywords.POST("/keywords", keywordHandler.HandleCreateKeyword)
		keywords.GET("/keywords", keywordHandler.HandleListKeywords)
		keywords.GET("/keywords/random", keywordHandler.HandleRandomKeyword)
		keywords.GET("/keywords/:keywordID", keywordHandler.HandleGetKeyword)
	}

	contests := s.Router.Group(basePath)
	{
		contests.POST("/contests", contestHandler.HandleCreateContest)
		contests.GET("/contests", contestHandler.HandleListContests)
		contests.GET("/contests/applied", contestHandler.HandleListAppliedContests)
		contests.GET("/contests/:contestID", contestHandler.HandleGetContest)
		contests.PATCH("/contests/:contestID", contestHandler.HandleUpdateContest)
		contests.DELETE("/contests/:contestID", contestHandler.HandleDeleteContest)
		contests.POST("/contests/:contestID/cancel", contestHandler.HandleCancelContest)
		contests.POST("/contests/:contestID/photos", contestHandler.HandleSubmitPhoto)
		contests.GET("/contests/:contestID/photos", contestHandler.HandleListContestPhotos)
		contests.PUT("/contests/:contestID/select", contestHandler.HandleSelectWinner)
		contests.GET("/contests/:contestID/events", eventHandler.HandleContestEvents)
	}

	photos := s.Router.Group(basePath)
	{
		photos.POST("/photos/upload", photoHandler.HandleUploadPhoto)
		photos.GET("/photos", photoHandler.HandleListPhotos)
		photos.GET("/photos/:photoID", photoHandler.HandleGetPhoto)
		photos.POST("/photos/:photoID/like", photoHandler.HandleLikePhoto)
		photos.DELETE("/photos/:photoID/like", photoHandler.HandleUnlikePhoto)
	}

	search := s.Router.Group(basePath + "/search")
	{
		search.GET("/photos", photoHandler.HandleSearchPhotos)
		search.GET("/keywords", keywordHandler.HandleSearchKeywords)
	}

	s.Router.GET("/", healthHandler.HandleRoot)
	s.Router.GET("/health", healthHandler.HandleHealthcheck)

	if s.Config.Media.Driver == config.MediaLocal {
		s.Router.Static(uploadsPath, s.Config.Media.Root)
	}

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "LOCA API"
	docs.SwaggerInfo.Description = "Photo contests with point stakes, keyword photo feed and search."
	docs.SwaggerInfo.Version = s.Config.API.Version
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
