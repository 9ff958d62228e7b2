package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cf_tracker/internal/api"
	"cf_tracker/internal/app/service"
	"cf_tracker/internal/app/worker"
	"cf_tracker/internal/domain/model"
	"cf_tracker/internal/domain/repository"
	"cf_tracker/internal/platform/codeforces"
	"cf_tracker/internal/platform/config"
	"cf_tracker/internal/platform/database"
	"cf_tracker/internal/platform/email"
	"cf_tracker/internal/platform/lock"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 3. Initialize Redis
	lock.ConnectRedis()
	defer lock.CloseRedis()
	fmt.Println("Redis connected.")

	// 4. Initialize Repositories
	studentRepo := repository.NewPgStudentRepository(database.DB)
	contestRepo := repository.NewPgContestResultRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRecordRepository(database.DB)
	settingsRepo := repository.NewPgSettingsRepository(database.DB, model.Settings{
		CronSchedule:   config.AppConfig.DefaultCronSchedule,
		EmailEnabled:   true,
		InactivityDays: config.AppConfig.DefaultInactivityDays,
	})

	// 5. Initialize platform clients
	judge := codeforces.NewClient(
		config.AppConfig.CFAPIBase,
		config.AppConfig.CFProfileTimeout,
		config.AppConfig.CFSubmissionTimeout,
	)
	mailer := newMailer()
	fleetLock := lock.NewFleetLock(
		lock.RDB,
		config.AppConfig.SyncLockKey,
		time.Duration(config.AppConfig.SyncLockTTLSeconds)*time.Second,
	)

	// 6. Initialize Services
	notificationService := service.NewNotificationService(studentRepo, settingsRepo, mailer)
	syncService := service.NewSyncService(
		database.DB, studentRepo, contestRepo, submissionRepo,
		judge, notificationService, fleetLock,
		config.AppConfig.SyncDelay, config.AppConfig.CFSubmissionPage,
	)
	statsService := service.NewStatsService(studentRepo, contestRepo, submissionRepo)

	// 7. Initialize Scheduler (background worker)
	scheduler := worker.NewScheduler(syncService)
	settingsService := service.NewSettingsService(settingsRepo, scheduler)

	settings, err := settingsRepo.Get(context.Background())
	if err != nil {
		log.Fatalf("Could not load settings: %v", err)
	}
	if err := scheduler.Start(settings.CronSchedule); err != nil {
		log.Fatalf("Could not start scheduler: %v", err)
	}
	fmt.Println("Scheduler started.")

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(syncService, statsService, settingsService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Minute, // on-demand fleet sync responds after loop completion
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and scheduler stopped gracefully.")
}

func newMailer() email.Service {
	if config.AppConfig.EmailProvider == "sendgrid" && config.AppConfig.SendgridKey != "" {
		return email.NewSendgridService(
			config.AppConfig.SendgridKey,
			config.AppConfig.EmailFromName,
			config.AppConfig.EmailFrom,
		)
	}
	log.Println("WARN: No sendgrid key configured, emails will be logged to console")
	return email.NewConsoleService()
}
