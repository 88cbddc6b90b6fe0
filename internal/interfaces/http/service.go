// Package httpinterface exposes the market engine as a json over http api.
// Mutating routes require requests signed with pkg/signature.
package httpinterface

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/futarchy-daemon/internal/core/application"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
	"github.com/tdex-network/futarchy-daemon/internal/interfaces"
	"github.com/tdex-network/futarchy-daemon/pkg/signature"
)

const (
	DefaultSignatureMaxSkew = 5 * time.Minute

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type ServiceOpts struct {
	Address          string
	CORSOrigins      []string
	SignatureMaxSkew time.Duration

	MarketSvc application.MarketService
	PubSubSvc application.PubSubService
	// Optional, balances route answers 501 if nil.
	BalanceReader ports.BalanceReader
	// Optional, the stream route is not served if nil.
	EventStream ports.EventStream

	// Used to check signature timestamps and market tradability, defaults
	// to time.Now.
	Now func() time.Time
}

func (o ServiceOpts) validate() error {
	if o.Address == "" {
		return fmt.Errorf("missing listening address")
	}
	if o.MarketSvc == nil {
		return fmt.Errorf("missing market service")
	}
	if o.PubSubSvc == nil {
		return fmt.Errorf("missing pubsub service")
	}
	if o.SignatureMaxSkew < 0 {
		return fmt.Errorf("signature max skew must not be negative")
	}
	return nil
}

type service struct {
	opts   ServiceOpts
	server *http.Server
}

func NewService(opts ServiceOpts) (interfaces.Service, error) {
	handler, err := NewHandler(opts)
	if err != nil {
		return nil, err
	}
	return &service{
		opts: opts,
		server: &http.Server{
			Addr:              opts.Address,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server stopped unexpectedly")
		}
	}()
	log.Infof("http server listening on %s", lis.Addr().String())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http server")
	}
	log.Debug("stopped http server")
}

// NewHandler returns the http handler serving every route of the api,
// metrics included.
func NewHandler(opts ServiceOpts) (http.Handler, error) {
	if opts.Address == "" {
		// Address is only needed when serving.
		opts.Address = ":0"
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.SignatureMaxSkew == 0 {
		opts.SignatureMaxSkew = DefaultSignatureMaxSkew
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := newMetrics()
	h := &handler{
		marketSvc:     opts.MarketSvc,
		pubsubSvc:     opts.PubSubSvc,
		balanceReader: opts.BalanceReader,
		metrics:       m,
		now:           opts.Now,
	}
	auth := authenticator{maxSkew: opts.SignatureMaxSkew, now: opts.Now}

	router := mux.NewRouter()
	router.Handle("/metrics", m.handler()).Methods(http.MethodGet)

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(m.middleware)

	v1.HandleFunc("/markets", h.listMarkets).Methods(http.MethodGet)
	v1.HandleFunc("/markets", auth.wrap(h.createMarket)).Methods(http.MethodPost)
	v1.HandleFunc("/markets/{id}", h.getMarket).Methods(http.MethodGet)
	v1.HandleFunc("/markets/{id}/buy", auth.wrap(h.buyShares)).Methods(http.MethodPost)
	v1.HandleFunc("/markets/{id}/sell", auth.wrap(h.sellShares)).Methods(http.MethodPost)
	v1.HandleFunc("/markets/{id}/quote", h.quote).Methods(http.MethodGet)
	v1.HandleFunc("/markets/{id}/resolve", auth.wrap(h.resolveMarket)).Methods(http.MethodPost)
	v1.HandleFunc("/markets/{id}/claim", auth.wrap(h.claimWinnings)).Methods(http.MethodPost)
	v1.HandleFunc("/markets/{id}/positions", h.listPositions).Methods(http.MethodGet)
	v1.HandleFunc("/markets/{id}/positions/{trader}", h.getPosition).Methods(http.MethodGet)
	v1.HandleFunc("/markets/{id}/winnings/{trader}", h.calculateWinnings).Methods(http.MethodGet)

	v1.HandleFunc("/oracle", h.getOracle).Methods(http.MethodGet)
	v1.HandleFunc("/oracle", auth.wrap(h.updateOracle)).Methods(http.MethodPut)

	v1.HandleFunc("/balances/{address}", h.getBalance).Methods(http.MethodGet)

	v1.HandleFunc("/webhooks", auth.wrap(h.listWebhooks)).Methods(http.MethodGet)
	v1.HandleFunc("/webhooks", auth.wrap(h.addWebhook)).Methods(http.MethodPost)
	v1.HandleFunc("/webhooks/{id}", auth.wrap(h.removeWebhook)).Methods(http.MethodDelete)

	if opts.EventStream != nil {
		stream := newStreamHandler(opts.EventStream, opts.CORSOrigins)
		v1.HandleFunc("/stream", stream.serve).Methods(http.MethodGet)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		},
		AllowedHeaders: []string{
			"Content-Type",
			signature.HeaderAddress,
			signature.HeaderTimestamp,
			signature.HeaderSignature,
		},
	})
	return c.Handler(router), nil
}
