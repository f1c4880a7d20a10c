package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	anaesthetichandler "github.com/vetdesk/vetdesk-backend/internal/anaesthetic/handler"
	anaestheticrepo "github.com/vetdesk/vetdesk-backend/internal/anaesthetic/repository"
	anaestheticservice "github.com/vetdesk/vetdesk-backend/internal/anaesthetic/service"
	authhandler "github.com/vetdesk/vetdesk-backend/internal/auth/handler"
	"github.com/vetdesk/vetdesk-backend/internal/auth/jwt"
	authrepo "github.com/vetdesk/vetdesk-backend/internal/auth/repository"
	authservice "github.com/vetdesk/vetdesk-backend/internal/auth/service"
	clienthandler "github.com/vetdesk/vetdesk-backend/internal/client/handler"
	clientrepo "github.com/vetdesk/vetdesk-backend/internal/client/repository"
	clientservice "github.com/vetdesk/vetdesk-backend/internal/client/service"
	clinichandler "github.com/vetdesk/vetdesk-backend/internal/clinic/handler"
	clinicrepo "github.com/vetdesk/vetdesk-backend/internal/clinic/repository"
	clinicservice "github.com/vetdesk/vetdesk-backend/internal/clinic/service"
	cremationhandler "github.com/vetdesk/vetdesk-backend/internal/cremation/handler"
	cremationrepo "github.com/vetdesk/vetdesk-backend/internal/cremation/repository"
	cremationservice "github.com/vetdesk/vetdesk-backend/internal/cremation/service"
	dentalhandler "github.com/vetdesk/vetdesk-backend/internal/dental/handler"
	dentalrepo "github.com/vetdesk/vetdesk-backend/internal/dental/repository"
	dentalservice "github.com/vetdesk/vetdesk-backend/internal/dental/service"
	drughandler "github.com/vetdesk/vetdesk-backend/internal/drug/handler"
	drugrepo "github.com/vetdesk/vetdesk-backend/internal/drug/repository"
	drugservice "github.com/vetdesk/vetdesk-backend/internal/drug/service"
	"github.com/vetdesk/vetdesk-backend/internal/events"
	patienthandler "github.com/vetdesk/vetdesk-backend/internal/patient/handler"
	patientrepo "github.com/vetdesk/vetdesk-backend/internal/patient/repository"
	patientservice "github.com/vetdesk/vetdesk-backend/internal/patient/service"
	xrayhandler "github.com/vetdesk/vetdesk-backend/internal/xray/handler"
	xrayrepo "github.com/vetdesk/vetdesk-backend/internal/xray/repository"
	xrayservice "github.com/vetdesk/vetdesk-backend/internal/xray/service"
	"github.com/vetdesk/vetdesk-backend/pkg/config"
	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.Load("server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("server", cfg.Server.Environment)
	log.Info().Msg("starting VetDesk backend")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ when enabled. The publisher is nil-safe, so a
	// broker-less deployment simply emits no events.
	var publisher *events.ClinicalEventPublisher
	var rmq *messaging.RabbitMQ
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err = events.NewClinicalEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		log.Info().Msg("event publishing disabled")
	}

	// Initialize components
	jwtManager := jwt.NewManager(&cfg.JWT)

	staffRepo := authrepo.NewStaffRepository(db)
	authSvc := authservice.NewAuthService(staffRepo, jwtManager, publisher, log)
	authH := authhandler.NewAuthHandler(authSvc, log)

	clientRepo := clientrepo.NewClientRepository(db)
	clientSvc := clientservice.NewClientService(clientRepo, publisher, log)
	clientH := clienthandler.NewClientHandler(clientSvc, log)

	patientRepo := patientrepo.NewPatientRepository(db)
	patientSvc := patientservice.NewPatientService(patientRepo, publisher, log)
	patientH := patienthandler.NewPatientHandler(patientSvc, log)

	drugRepo := drugrepo.NewDrugRepository(db)
	drugSvc := drugservice.NewDrugService(drugRepo, publisher, log)
	drugH := drughandler.NewDrugHandler(drugSvc, log)

	dentalRepo := dentalrepo.NewDentalRepository(db)
	dentalSvc := dentalservice.NewDentalService(dentalRepo, log)
	dentalH := dentalhandler.NewDentalHandler(dentalSvc, log)

	anaestheticRepo := anaestheticrepo.NewAnaestheticRepository(db)
	anaestheticSvc := anaestheticservice.NewAnaestheticService(anaestheticRepo, log)
	anaestheticH := anaesthetichandler.NewAnaestheticHandler(anaestheticSvc, log)

	xrayRepo := xrayrepo.NewXrayRepository(db)
	xraySvc := xrayservice.NewXrayService(xrayRepo, log)
	xrayH := xrayhandler.NewXrayHandler(xraySvc, log)

	cremationRepo := cremationrepo.NewCremationRepository(db)
	cremationSvc := cremationservice.NewCremationService(cremationRepo, publisher, log)
	cremationH := cremationhandler.NewCremationHandler(cremationSvc, log)

	clinicRepo := clinicrepo.NewClinicRepository(db)
	clinicSvc := clinicservice.NewClinicService(clinicRepo, log)
	clinicH := clinichandler.NewClinicHandler(clinicSvc, log)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for the browser frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "healthy",
			"service":  "vetdesk-backend",
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authH.Register)
		r.Post("/login", authH.Login)

		// Everything else requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(httputil.Authenticate(jwtManager))

			r.Get("/verify", authH.Verify)
			clinicH.Routes(r)

			r.Route("/clients", clientH.Routes)
			r.Route("/patients", patientH.Routes)
			r.Route("/drugs", drugH.Routes)
			r.Route("/dentals", dentalH.Routes)
			r.Route("/anaesthetic", anaestheticH.Routes)
			r.Route("/xrays", xrayH.Routes)
			r.Route("/cremations", cremationH.Routes)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
