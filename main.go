package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"pixbox/internal/adapters/file"
	"pixbox/internal/adapters/gateway"
	"pixbox/internal/adapters/generator"
	"pixbox/internal/adapters/handler"
	"pixbox/internal/adapters/remover"
	"pixbox/internal/adapters/store"
	"pixbox/internal/adapters/transcoder"
	"pixbox/internal/core/service"
	"pixbox/internal/metrics"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting pixbox...")

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")
	viper.SetConfigName("config")

	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.artifacts_dir", "artifacts")
	viper.SetDefault("server.history_file", "artifacts/prompt-history.json")
	viper.SetDefault("ark.generation_endpoint", "https://ark.cn-beijing.volces.com/api/v3/images/generations")
	viper.SetDefault("ark.chat_base_url", "https://ark.cn-beijing.volces.com/api/v3")
	viper.SetDefault("ark.watermark", true)
	viper.SetDefault("removebg.endpoint", "https://api.remove.bg/v1.0/removebg")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	log.Info().Msg("reading config file...")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal().Err(err).Msg("could not read config file")
		}
		log.Warn().Msg("no config file found, using defaults and environment")
	}

	var logLevel zerolog.Level
	switch viper.GetString("server.log_level") {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	default:
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	gw := gateway.New()
	reg := metrics.NewRegistry()

	saver, err := file.NewSaver(gw, viper.GetString("server.artifacts_dir"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing artifact saver")
	}

	historyPath := viper.GetString("server.history_file")
	history, err := store.NewFileStore(filepath.Clean(historyPath))
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing prompt history store")
	}

	arkGenerator := generator.NewArk(gw,
		viper.GetString("ark.generation_endpoint"),
		viper.GetString("ark.api_key"),
		viper.GetString("ark.generation_model"),
		viper.GetBool("ark.watermark"))

	visionRecognizer := generator.NewVision(
		viper.GetString("ark.api_key"),
		viper.GetString("ark.chat_base_url"),
		viper.GetString("ark.vision_model"),
		viper.GetString("ark.vision_question"))

	bgRemover := remover.NewRemoveBG(gw,
		viper.GetString("removebg.endpoint"),
		viper.GetString("removebg.api_key"))

	api := handler.NewAPI(
		service.NewCompress(transcoder.NewStdImage(), saver),
		service.NewGenerate(arkGenerator, saver, history),
		service.NewRecognize(visionRecognizer),
		service.NewRemoveBackground(bgRemover, saver),
		reg)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(handler.RequestLogger(reg))
	api.Register(e)

	go func() {
		listen := viper.GetString("server.listen")
		log.Info().Str("listen", listen).Msg("server listening")
		if err := e.Start(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
