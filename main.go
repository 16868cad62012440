package main

import (
	"context"
	"errors"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/cache"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/config"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/gateway"
	apphttp "github.com/Quadco-Consults/Saharam-express-sub001/internal/http"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/http/handlers"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/services"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/ticket"
)

func main() {
	env := config.LoadEnv()

	sqldb, err := config.OpenDB(env)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer sqldb.Close()

	if err := db.EnsureSchema(sqldb); err != nil {
		log.Fatalf("schema: %v", err)
	}

	tripCache := cache.New(env.RedisAddr, 30*time.Second)

	gateways := gateway.NewRegistry(
		gateway.NewPaystack(env.PaystackSecretKey, env.PaystackBaseURL),
		gateway.NewOPay(env.OPayMerchantID, env.OPaySecretKey, env.OPayBaseURL),
	)

	notifier := services.LogNotifier{}
	ticketSvc := services.TicketService{
		DB:    sqldb,
		Codec: ticket.NewCodec(env.TicketSecret),
	}

	h := handlers.Handlers{
		DB:  sqldb,
		Env: env,
		Trips: services.TripService{
			DB:    sqldb,
			Cache: tripCache,
		},
		Bookings: services.BookingService{
			DB:        sqldb,
			Cache:     tripCache,
			Notifier:  notifier,
			RefPrefix: "SAH",
		},
		Payments: services.PaymentService{
			DB:              sqldb,
			Gateways:        gateways,
			Cache:           tripCache,
			Ticket:          ticketSvc,
			Notifier:        notifier,
			EarnRatePercent: env.LoyaltyEarnRate,
		},
		Tickets: ticketSvc,
		Loyalty: services.LoyaltyService{DB: sqldb},
		Docs:    services.DocsService{DB: sqldb},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := services.SweeperService{
		DB:       sqldb,
		Cache:    tripCache,
		Notifier: notifier,
		HoldTTL:  env.BookingHoldTTL,
		Interval: env.SweepInterval,
	}
	go sweeper.Run(ctx)

	server := &stdhttp.Server{
		Addr:              env.AppAddr,
		Handler:           apphttp.NewRouter(env, h),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", env.AppAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
		os.Exit(1)
	}
	log.Println("stopped cleanly")
}
