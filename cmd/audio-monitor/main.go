package main

import (
	"context"
	"encoding/hex"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"audiodb-backend/internal/repo/cockroach"
	"audiodb-backend/internal/repo/kafka"
	"audiodb-backend/internal/usecase/service"
	"audiodb-backend/internal/usecase/service/roblox"
	"audiodb-backend/pkg/connector"
	"audiodb-backend/pkg/goosehelper"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

func init() {
	// Загружаем переменные окружения
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
	// Настройка контекста для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	dbConnectDSN := os.Getenv("DB_CONNECT_DSN")
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	vaultMasterKeyHex := os.Getenv("VAULT_MASTER_KEY")
	whitelistBotUserIDStr := os.Getenv("WHITELIST_BOT_USER_ID")
	monitorIntervalStr := os.Getenv("AUDIO_MONITOR_INTERVAL")

	if dbConnectDSN == "" {
		log.Fatal("DB_CONNECT_DSN переменная окружения обязательна")
	}
	whitelistBotUserID, err := strconv.ParseInt(whitelistBotUserIDStr, 10, 64)
	if err != nil {
		log.Fatalf("WHITELIST_BOT_USER_ID должен быть числом: %v", err)
	}
	vaultMasterKey, err := hex.DecodeString(vaultMasterKeyHex)
	if err != nil {
		log.Fatalf("VAULT_MASTER_KEY должен быть hex-строкой: %v", err)
	}

	// Парсим интервал проверки (по умолчанию 10 минут)
	monitorInterval := 10 * time.Minute
	if monitorIntervalStr != "" {
		if parsedInterval, err := time.ParseDuration(monitorIntervalStr); err == nil {
			monitorInterval = parsedInterval
		} else {
			log.Warnf("Неверный формат AUDIO_MONITOR_INTERVAL: %s, используется 10m", monitorIntervalStr)
		}
	}

	// Подключение к базе данных
	dbConn, err := connector.GetCockroachConnector(dbConnectDSN)
	if err != nil {
		log.Fatalf("Ошибка при подключении к базе данных: %v", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Errorf("Ошибка при закрытии соединения с базой данных: %v", err)
		}
	}()

	// Инициализация репозиториев
	uploadedAudioRepo := cockroach.NewUploadedAudio(dbConn)
	credentialRepo, err := cockroach.NewCredential(dbConn, vaultMasterKey)
	if err != nil {
		log.Fatalf("Ошибка при создании репозитория Credential: %v", err)
	}
	eventRepo, err := kafka.NewNotificationEventKafkaRepository(strings.Split(kafkaBrokers, ","))
	if err != nil {
		log.Fatalf("Ошибка при создании Kafka репозитория: %v", err)
	}

	// Создание и запуск воркера
	robloxClient := roblox.NewClient(whitelistBotUserID)
	credentialPool := service.NewCredentialPool(credentialRepo, robloxClient, 5*time.Minute)
	monitor := service.NewAudioMonitor(uploadedAudioRepo, credentialPool, robloxClient, eventRepo, monitorInterval)

	log.Info("Воркер проверки модерации запущен")
	monitor.Start(ctx)
	log.Info("Воркер проверки модерации остановлен")
}
