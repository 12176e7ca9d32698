// routes/routes.go
package routes

import (
	"famline/cache"
	"famline/config"
	"famline/controllers"
	"famline/middleware"
	"famline/repositories"
	"famline/services"
	"famline/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRoutes initializes all application routes
func SetupRoutes(cfg *config.Config, db *mongo.Database, redisClient *redis.Client) *gin.Engine {
	router := gin.New()

	repos := initializeRepositories(db)
	svcs := initializeServices(cfg, repos, redisClient)
	ctrls := initializeControllers(svcs, redisClient)

	authMW := middleware.NewAuthMiddleware(svcs.JWT, repos.User)

	setupGlobalMiddleware(router, cfg, redisClient)
	setupPublicRoutes(router, ctrls, authMW, redisClient)
	setupAuthenticatedRoutes(router, ctrls, authMW, redisClient)

	return router
}

type Repositories struct {
	User       *repositories.UserRepository
	Group      *repositories.GroupRepository
	Recipient  *repositories.RecipientRepository
	Membership *repositories.MembershipRepository
	Template   *repositories.TemplateRepository
	Update     *repositories.UpdateRepository
}

func initializeRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		User:       repositories.NewUserRepository(db),
		Group:      repositories.NewGroupRepository(db),
		Recipient:  repositories.NewRecipientRepository(db),
		Membership: repositories.NewMembershipRepository(db),
		Template:   repositories.NewTemplateRepository(db),
		Update:     repositories.NewUpdateRepository(db),
	}
}

type Services struct {
	JWT        *utils.JWTService
	Auth       *services.AuthService
	Group      *services.GroupService
	Recipient  *services.RecipientService
	Preference *services.PreferenceService
	Bulk       *services.BulkService
	Update     *services.UpdateService
}

func initializeServices(cfg *config.Config, repos *Repositories, redisClient *redis.Client) *Services {
	groupCache := cache.NewGroupCache(redisClient)
	jwtService := utils.NewJWTService(cfg.JWTSecret)

	groupService := services.NewGroupService(repos.Group, repos.Membership, repos.Recipient, groupCache)

	return &Services{
		JWT:        jwtService,
		Auth:       services.NewAuthService(repos.User, jwtService, groupService),
		Group:      groupService,
		Recipient:  services.NewRecipientService(repos.Recipient),
		Preference: services.NewPreferenceService(repos.Membership, repos.Group, repos.Template, groupCache),
		Bulk:       services.NewBulkService(repos.Membership, repos.Group, repos.Template, groupCache),
		Update:     services.NewUpdateService(repos.Update, repos.Group),
	}
}

type Controllers struct {
	Auth       *controllers.AuthController
	Group      *controllers.GroupController
	Recipient  *controllers.RecipientController
	Preference *controllers.PreferenceController
	Update     *controllers.UpdateController
	Health     *controllers.HealthController
}

func initializeControllers(svcs *Services, redisClient *redis.Client) *Controllers {
	return &Controllers{
		Auth:       controllers.NewAuthController(svcs.Auth),
		Group:      controllers.NewGroupController(svcs.Group),
		Recipient:  controllers.NewRecipientController(svcs.Recipient),
		Preference: controllers.NewPreferenceController(svcs.Preference, svcs.Bulk),
		Update:     controllers.NewUpdateController(svcs.Update),
		Health:     controllers.NewHealthController(redisClient),
	}
}

func setupGlobalMiddleware(router *gin.Engine, cfg *config.Config, redisClient *redis.Client) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.DefaultLoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Environment))
	router.Use(middleware.NewErrorHandler(cfg.Environment, logrus.StandardLogger()).Handle())
	router.Use(middleware.DefaultRateLimit(redisClient))
}

// Public routes (no authentication required)
func setupPublicRoutes(router *gin.Engine, ctrls *Controllers, authMW *middleware.AuthMiddleware, redisClient *redis.Client) {
	router.GET("/health", ctrls.Health.HealthCheck)

	public := router.Group("/api/v1")
	{
		SetupAuthRoutes(public, ctrls.Auth, authMW, redisClient)
	}
}

// Authenticated routes (requires valid JWT token)
func setupAuthenticatedRoutes(router *gin.Engine, ctrls *Controllers, authMW *middleware.AuthMiddleware, redisClient *redis.Client) {
	api := router.Group("/api/v1")
	api.Use(authMW.RequireAuth())
	api.Use(middleware.APIRateLimit(redisClient))

	SetupGroupRoutes(api, ctrls.Group)
	SetupRecipientRoutes(api, ctrls.Recipient)
	SetupPreferenceRoutes(api, ctrls.Preference, redisClient)
	SetupUpdateRoutes(api, ctrls.Update, redisClient)
}
