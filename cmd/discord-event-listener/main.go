package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"audiodb-backend/internal/delivery/discord"
	"audiodb-backend/internal/repo/cockroach"
	"audiodb-backend/internal/repo/kafka"
	"audiodb-backend/internal/usecase/service"
	"audiodb-backend/pkg/connector"
	"audiodb-backend/pkg/goosehelper"

	"github.com/joho/godotenv"
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
	sysCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	dbConnectDSN := os.Getenv("DB_CONNECT_DSN")
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	discordBotToken := os.Getenv("DISCORD_BOT_TOKEN")

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

	eventRepo, err := kafka.NewNotificationEventKafkaRepository(strings.Split(kafkaBrokers, ","))
	if err != nil {
		log.Fatalf("Ошибка при создании Kafka репозитория: %v", err)
	}
	audioRepo := cockroach.NewAudio(DBConn)
	audioUseCase := service.NewAudio(audioRepo)

	eventListener, err := discord.NewEventListener(discordBotToken, eventRepo, audioUseCase)
	if err != nil {
		log.Fatalf("Ошибка при создании Discord Event Listener: %v", err)
	}
	if err := eventListener.StartListener(); err != nil {
		log.Fatalf("Ошибка при запуске Discord Event Listener: %v", err)
	}
	log.Infof("Discord Event Listener запущен, слушаем события...")
	defer eventListener.StopListener()

	<-sysCtx.Done()
}
