package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/greenhaven/internal/config"
	"github.com/Skotchmaster/greenhaven/internal/db"
	"github.com/Skotchmaster/greenhaven/internal/es"
	"github.com/Skotchmaster/greenhaven/internal/httpserver"
	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/metrics"
	"github.com/Skotchmaster/greenhaven/internal/middleware/auth"
	"github.com/Skotchmaster/greenhaven/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/greenhaven/internal/middleware/logging"
	"github.com/Skotchmaster/greenhaven/internal/mykafka"
	"github.com/Skotchmaster/greenhaven/internal/notify"
	"github.com/Skotchmaster/greenhaven/internal/otp"
	"github.com/Skotchmaster/greenhaven/internal/repo"
	"github.com/Skotchmaster/greenhaven/internal/service"
)

func serve(parent context.Context, cfg config.Config) error {
	cfg.MustServe()

	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(log)

	ctx, stop := context.WithCancel(parent)
	defer stop()

	openCtx, cancelOpen := context.WithTimeout(ctx, 30*time.Second)
	gdb, err := db.Open(openCtx, cfg.DatabaseURL)
	if err != nil {
		cancelOpen()
		return fmt.Errorf("init db: %w", err)
	}
	err = db.Migrate(openCtx, gdb)
	cancelOpen()
	if err != nil {
		_ = db.Close(gdb)
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Warn("db_close_error", "error", err)
		}
	}()

	m := metrics.New()
	r := repo.New(gdb)

	var transport notify.Transport = &notify.LogTransport{Logger: log}
	if cfg.SMTPHost != "" {
		transport = &notify.SMTPTransport{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
		}
	} else {
		log.Warn("smtp_not_configured", "reason", "SMTP_HOST empty, mail is only logged")
	}
	dispatcher, err := notify.NewDispatcher(cfg.MailFrom, transport, cfg.NotifyTimeout)
	if err != nil {
		return err
	}

	var events service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return fmt.Errorf("init kafka: %w", err)
		}
		defer func() {
			if err := prod.Close(); err != nil {
				log.Warn("kafka_close_error", "error", err)
			}
		}()
		events = prod
	}

	var index service.OrderIndexer
	if cfg.ESURL != "" {
		esCtx, cancelES := context.WithTimeout(ctx, 10*time.Second)
		client, err := es.NewClient(esCtx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		cancelES()
		if err != nil {
			log.Warn("es_unavailable", "error", err)
		} else {
			index = &es.OrderIndex{Client: client, Index: cfg.ESOrderIndex}
		}
	}

	emailCodes := otp.NewStore(cfg.OTPTTL)
	mobileCodes := otp.NewStore(cfg.OTPTTL)
	for channel, store := range map[string]*otp.Store{
		service.ChannelEmail:  emailCodes,
		service.ChannelMobile: mobileCodes,
	} {
		go store.RunJanitor(ctx, cfg.OTPSweepInterval, func(n int) {
			log.Debug("otp_swept", "channel", channel, "removed", n)
		})
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(log),
		m.Middleware(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowCredentials: false,
		}),
		middleware.BodyLimit("1M"),
	)

	httpserver.Register(e, &httpserver.Deps{
		Order: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo:       r,
			Notifier:   dispatcher,
			AdminEmail: cfg.AdminEmail,
			Events:     events,
			Index:      index,
			Metrics:    m,

			FollowUpBudget: cfg.FollowUpBudget,
		}},
		OTP: &httpserver.OTPHTTP{Svc: &service.OTPService{
			Email:    emailCodes,
			Mobile:   mobileCodes,
			Notifier: dispatcher,
			SMS:      &notify.LogSMS{Logger: log},
			Repo:     r,
			TTL:      cfg.OTPTTL,
			Metrics:  m,
		}},
		User: &httpserver.UserHTTP{
			Svc: &service.UserService{
				Repo:       r,
				JWTSecret:  cfg.JWTSecret,
				AdminEmail: cfg.AdminEmail,
				Events:     events,
			},
			SecureCookie: cfg.CookieSecure,
		},
		Cart:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: events}},
		Wishlist: &httpserver.WishlistHTTP{Svc: &service.WishlistService{Repo: r}},
		Auth:     auth.New(cfg.JWTSecret),
		CSRF:     csrfConfig(cfg),
		DB:       gdb,
		Metrics:  m,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout(cfg),
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		log.Info("shutting_down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}

	log.Info("shutdown_complete")
	return nil
}

func csrfConfig(cfg config.Config) csrf.Config {
	c := csrf.DefaultConfig()
	c.Secure = cfg.CookieSecure
	return c
}

// writeTimeout leaves room for an order's follow-up work plus the cart
// purge and the response itself.
func writeTimeout(cfg config.Config) time.Duration {
	const floor = 30 * time.Second
	if t := cfg.FollowUpBudget + 10*time.Second; t > floor {
		return t
	}
	return floor
}
