package main

import (
	"database/sql"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"insta_saver_bot/internal/bot"
	"insta_saver_bot/internal/pkg/instagram"
	"insta_saver_bot/internal/pkg/media"
	"insta_saver_bot/internal/pkg/users/file_storage"
	"insta_saver_bot/internal/pkg/users/postgres_storage"
	"insta_saver_bot/internal/pkg/users/repository"
)

const (
	usersLogFile = "users.log"
	adminFile    = "admin.json"
	timezoneName = "Asia/Tashkent"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("no .env file found, relying on environment")
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		logger.Fatal().Msg("TELEGRAM_BOT_TOKEN is not set")
	}

	igUsername := os.Getenv("INSTAGRAM_USERNAME")
	if igUsername == "" {
		logger.Fatal().Msg("INSTAGRAM_USERNAME is not set")
	}
	igPassword := os.Getenv("INSTAGRAM_PASSWORD")
	if igPassword == "" {
		logger.Fatal().Msg("INSTAGRAM_PASSWORD is not set")
	}

	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}
	bufferPath := os.Getenv("BUFFER_PATH")
	if bufferPath == "" {
		bufferPath = "."
	}

	loc, err := time.LoadLocation(timezoneName)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", timezoneName).Msg("load timezone")
	}

	var storage repository.Storage
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			logger.Fatal().Err(err).Msg("open database")
		}
		if err := db.Ping(); err != nil {
			logger.Fatal().Err(err).Msg("ping database")
		}
		pg := postgres_storage.NewPostgresStorage(db)
		if err := pg.InitSchema(); err != nil {
			logger.Fatal().Err(err).Msg("init database schema")
		}
		storage = pg
		logger.Info().Msg("using postgres storage")
	} else {
		storage = file_storage.NewFileStorage(usersLogFile, adminFile)
		logger.Info().Msg("using file storage")
	}

	igClient := instagram.NewClient(igUsername, igPassword, logger)
	if err := igClient.EnsureSession(); err != nil {
		logger.Fatal().Err(err).Msg("establish instagram session")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Fatal().Err(err).Msg("create telegram bot")
	}
	logger.Info().Str("account", api.Self.UserName).Msg("authorized on telegram")

	resolver := instagram.NewResolver(igClient, logger)
	relay := media.NewRelay(api, bufferPath, logger)

	webServer := bot.NewWebServer(webPort, logger)
	go func() {
		if err := webServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("web server failed")
		}
	}()

	b := bot.New(api, storage, resolver, relay, logger, loc)
	b.Start()
}
