package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/btc-address-daemon/internal/core/application"
	interfaces "github.com/tdex-network/btc-address-daemon/internal/interfaces"
)

const shutdownTimeout = 5 * time.Second

// ServiceOpts is the struct given to NewService
type ServiceOpts struct {
	Port int

	AddressSvc application.AddressService
	// Validator authenticates requests. Auth is disabled if nil
	Validator TokenValidator

	MaxConcurrentRequests int
	// MaxRequestsPerSecond throttles requests. 0 means unlimited
	MaxRequestsPerSecond int
}

func (o ServiceOpts) validate() error {
	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("port must be in range [1, 65535]")
	}
	if o.AddressSvc == nil {
		return fmt.Errorf("address app service must not be null")
	}
	if o.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("max concurrent requests must be a positive number")
	}
	if o.MaxRequestsPerSecond < 0 {
		return fmt.Errorf("max requests per second must not be negative")
	}
	return nil
}

func (o ServiceOpts) address() string {
	return fmt.Sprintf(":%d", o.Port)
}

type service struct {
	opts   ServiceOpts
	server *http.Server
}

// NewService returns the HTTP interface serving the address service.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	return &service{
		opts: opts,
		server: &http.Server{
			Addr:              opts.address(),
			Handler:           newRouter(opts),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(lis); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("http interface stopped unexpectedly")
		}
	}()

	log.Infof("http interface is listening on %s", s.server.Addr)
	if s.opts.Validator == nil {
		log.Warn("authentication is disabled")
	}
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http interface")
	}
	log.Debug("disabled http interface")
}

func newRouter(opts ServiceOpts) http.Handler {
	handler := newAddressHandler(opts.AddressSvc)

	router := chi.NewRouter()
	router.Use(requestLogger)
	router.Get("/", handler.root)
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		// throttled requests must not hold a concurrency slot while waiting
		if opts.MaxRequestsPerSecond > 0 {
			r.Use(rateLimiter(opts.MaxRequestsPerSecond))
		}
		r.Use(concurrencyLimiter(opts.MaxConcurrentRequests))
		if opts.Validator != nil {
			r.Use(authenticator(opts.Validator))
		}

		r.Post("/seed", handler.segwitFromSeed)
		r.Post("/legacy", handler.legacyFromSeed)
		r.Post("/pubkey", handler.segwitFromPublicKey)
		r.Post("/mofn", handler.multisig)
	})

	return router
}
