package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/famcare/medminder/internal/api"
	"github.com/famcare/medminder/internal/config"
	"github.com/famcare/medminder/internal/database"
	"github.com/famcare/medminder/internal/engine"
	"github.com/famcare/medminder/internal/escalate"
	"github.com/famcare/medminder/internal/notify"
	myopenai "github.com/famcare/medminder/internal/openai"
	"github.com/famcare/medminder/internal/store"
	"github.com/famcare/medminder/internal/twilio"
)

func main() {
	logger := log.New(os.Stdout, "[medminder] ", log.LstdFlags|log.Lshortfile)
	cfg := config.Load()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database init failed: %v", err)
	}

	reminders := store.NewReminderStore(db)
	family := store.NewFamilyStore(db)

	twilioClient := twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber)
	composer := myopenai.New(cfg.OpenAIAPIKey)

	gateway := pickGateway(twilioClient, cfg.PatientWhatsAppNumber, logger)
	channel := escalate.NewFamilyChannel(family, twilioClient, composer, logger)

	eng := engine.New(reminders, gateway, channel, engine.NewStandardTimer(), cfg.LocalTimezone, logger)
	if err := eng.Start(); err != nil {
		logger.Fatalf("engine start: %v", err)
	}

	handler := api.NewHandler(eng, reminders, cfg.LocalTimezone, logger)
	http.Handle("/twilio/webhook", handler.Webhook())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: nil,
	}

	go func() {
		logger.Printf("server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	waitForShutdown(server, eng, logger)
}

// pickGateway requests delivery permission before first use and falls back
// to log-only delivery when it is not granted.
func pickGateway(client *twilio.Client, patientNumber string, logger *log.Logger) engine.NotificationGateway {
	gateway := notify.NewWhatsAppGateway(client, patientNumber, logger)
	if perm := gateway.RequestPermission(); perm != notify.PermissionGranted {
		logger.Printf("notify: alarms will be logged only")
		return notify.NewLogGateway(logger)
	}
	return gateway
}

func waitForShutdown(server *http.Server, eng *engine.Engine, logger *log.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("server shutdown error: %v", err)
	}
	eng.Stop()
}
