package main

import (
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ecowatch/emission-monitor/internal/cloud"
	"github.com/ecowatch/emission-monitor/internal/config"
	"github.com/ecowatch/emission-monitor/internal/database"
	httpHandlers "github.com/ecowatch/emission-monitor/internal/http"
	"github.com/ecowatch/emission-monitor/internal/service"
	"github.com/ecowatch/emission-monitor/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: config.RedisAddr()}))

	var notifier service.Notifier
	var uploader service.Uploader
	if config.UseCloudServices() {
		sns, err := cloud.NewSNSClient(config.AWSRegion(), config.SNSTopicArn())
		if err != nil {
			log.Fatal().Err(err).Msg("sns client init failed")
		}
		notifier = sns
		s3c, err := cloud.NewS3Client(config.AWSRegion(), config.S3Bucket())
		if err != nil {
			log.Fatal().Err(err).Msg("s3 client init failed")
		}
		uploader = s3c
	}

	svcs := service.New(db, kv, notifier, uploader)
	app := fiber.New()

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	httpHandlers.Register(app, svcs)

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
