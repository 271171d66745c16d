package main

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	delivery "audiodb-backend/internal/delivery/http"
	"audiodb-backend/internal/delivery/http/utils"
	"audiodb-backend/internal/repo/cockroach"
	"audiodb-backend/internal/repo/kafka"
	miniorepo "audiodb-backend/internal/repo/minio"
	"audiodb-backend/internal/usecase/service"
	"audiodb-backend/internal/usecase/service/roblox"
	"audiodb-backend/pkg/connector"
	"audiodb-backend/pkg/goosehelper"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Info(".env файл не обнаружен")
	}

	// Выполнить миграции при старте
	dbConnectDSN := os.Getenv("DB_CONNECT_DSN")
	DBConn, err := connector.GetCockroachConnector(dbConnectDSN)
	if err != nil {
		log.Fatalf("Ошибка при подключении к базе данных: %v", err)
	}
	// Получаем *sql.DB из *sqlx.DB
	sqldb := DBConn.DB
	migrationsDir := "./cockroachdb/migrations"
	goosehelper.MigrateUp(sqldb, migrationsDir)
	if err := DBConn.Close(); err != nil {
		log.Fatalf("Ошибка при закрытии соединения с базой данных: %v", err)
	}
}

func main() {
	dbConnectDSN := os.Getenv("DB_CONNECT_DSN")
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	jwtSecret := os.Getenv("JWT_SECRET")
	vaultMasterKeyHex := os.Getenv("VAULT_MASTER_KEY")
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"
	minioBucket := os.Getenv("MINIO_BUCKET")
	discordClientID := os.Getenv("DISCORD_CLIENT_ID")
	discordClientSecret := os.Getenv("DISCORD_CLIENT_SECRET")
	discordRedirectURL := os.Getenv("DISCORD_REDIRECT_URL")
	whitelistBotUserIDStr := os.Getenv("WHITELIST_BOT_USER_ID")
	ffprobePath := os.Getenv("FFPROBE_PATH")
	allowOrigin := os.Getenv("CORS_ALLOW_ORIGIN")
	secureCookies := os.Getenv("SECURE_COOKIES") == "true"

	if minioBucket == "" {
		minioBucket = "audio-requests"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if allowOrigin == "" {
		allowOrigin = "http://localhost:3000"
	}
	whitelistBotUserID, err := strconv.ParseInt(whitelistBotUserIDStr, 10, 64)
	if err != nil {
		log.Fatalf("WHITELIST_BOT_USER_ID должен быть числом: %v", err)
	}
	vaultMasterKey, err := hex.DecodeString(vaultMasterKeyHex)
	if err != nil {
		log.Fatalf("VAULT_MASTER_KEY должен быть hex-строкой: %v", err)
	}

	// cockroach
	DBConn, err := connector.GetCockroachConnector(dbConnectDSN)
	if err != nil {
		log.Fatalf("Ошибка при подключении к базе данных: %v", err)
	}
	defer func() {
		err := DBConn.Close()
		if err != nil {
			log.Fatalf("Ошибка при закрытии соединения с базой данных: %v", err)
		}
	}()

	// minio
	minioClient, err := connector.GetMinioConnector(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Ошибка при подключении к MinIO: %v", err)
	}

	// запускаем сервисы репозиториев (подключение к базе данных)
	userRepo := cockroach.NewUser(DBConn)
	requestRepo := cockroach.NewRequest(DBConn)
	audioRepo := cockroach.NewAudio(DBConn)
	uploadedAudioRepo := cockroach.NewUploadedAudio(DBConn)
	credentialRepo, err := cockroach.NewCredential(DBConn, vaultMasterKey)
	if err != nil {
		log.Fatalf("Ошибка при создании репозитория Credential: %v", err)
	}
	storage, err := miniorepo.NewStorage(minioClient, minioBucket)
	if err != nil {
		log.Fatalf("Ошибка при создании хранилища файлов: %v", err)
	}
	eventRepo, err := kafka.NewNotificationEventKafkaRepository(strings.Split(kafkaBrokers, ","))
	if err != nil {
		log.Fatalf("Ошибка при создании Kafka репозитория: %v", err)
	}

	// запускаем сервисы usecase (бизнес-логика)
	robloxClient := roblox.NewClient(whitelistBotUserID)
	credentialPool := service.NewCredentialPool(credentialRepo, robloxClient, 5*time.Minute)
	durationProber := service.NewFFProbeDurationProber(ffprobePath)
	uploadUseCase := service.NewUpload(requestRepo, storage, durationProber, service.DefaultUploadConfig())
	requestUseCase := service.NewRequest(requestRepo, uploadedAudioRepo, storage, credentialPool, robloxClient, eventRepo, os.TempDir())
	audioUseCase := service.NewAudio(audioRepo)
	userUseCase := service.NewUser(userRepo)

	// запускаем сервисы delivery (обработка запросов)
	cookieManager := utils.NewCookieManager(secureCookies)
	authManager := utils.NewAuthManager([]byte(jwtSecret), userRepo, time.Hour*24*7)
	discordOAuth := utils.NewDiscordOAuth(discordClientID, discordClientSecret, discordRedirectURL)
	uploadDelivery := delivery.NewUpload(uploadUseCase, authManager)
	requestDelivery := delivery.NewRequest(requestUseCase, authManager)
	audioDelivery := delivery.NewAudio(audioUseCase, authManager)
	userDelivery := delivery.NewUser(userUseCase, authManager, cookieManager, discordOAuth)

	// REST API
	echoServer := echo.New()

	// Фрагменты загрузки не превышают размер файла, но оставляем запас на multipart
	echoServer.Use(middleware.BodyLimit("25M"))
	// gzip на прием
	echoServer.Use(middleware.Decompress())
	// gzip на отдачу
	echoServer.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	// request id
	echoServer.Use(middleware.RequestID())
	// ограничение частоты запросов на IP
	echoServer.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))

	// CORS
	echoServer.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, allowOrigin)
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowMethods, strings.Join([]string{
				http.MethodGet,
				http.MethodPut,
				http.MethodPatch,
				http.MethodPost,
				http.MethodDelete,
				http.MethodOptions,
			}, ","))
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowHeaders, strings.Join([]string{
				echo.HeaderOrigin,
				echo.HeaderAccept,
				echo.HeaderXRequestedWith,
				echo.HeaderContentType,
				echo.HeaderAccessControlRequestMethod,
				echo.HeaderAccessControlRequestHeaders,
				echo.HeaderCookie,
			}, ","))
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowCredentials, "true")
			ctx.Response().Header().Set(echo.HeaderAccessControlMaxAge, "86400")
			return next(ctx)
		}
	})

	// Endpoints
	api := echoServer.Group("/api")
	// audio: загрузка, заявки, поиск по вайтлисту
	audio := api.Group("/audio")
	uploadDelivery.Configure(audio.Group("/upload"))
	requestDelivery.Configure(audio.Group("/requests"))
	// dashboard: правка вайтлиста
	dashboard := api.Group("/dashboard")
	audioDelivery.Configure(audio, dashboard.Group("/audio"))
	// oauth + сессии
	userDelivery.Configure(api.Group("/oauth"), api.Group("/session"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()
	go func(server *echo.Echo) {
		if err := server.Start("0.0.0.0:80"); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Logger.Fatalf("Сервер завершил свою работу по причине: %v\n", err)
		}
	}(echoServer)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(10)*time.Second,
	)
	defer cancel()
	if err := echoServer.Shutdown(shutdownCtx); err != nil {
		echoServer.Logger.Fatalf("Во время выключения сервера возникла ошибка: %s\n", err)
	}
}
