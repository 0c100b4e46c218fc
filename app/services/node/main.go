package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/RyanLatimer/Corundum/app/services/node/handlers"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database/storage/engine"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/discovery"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/genesis"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/peer"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/signature"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/state"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/worker"
	"github.com/RyanLatimer/Corundum/foundation/events"
	"github.com/RyanLatimer/Corundum/foundation/logger"
	"github.com/RyanLatimer/Corundum/foundation/nameservice"
	"github.com/ardanlabs/conf/v3"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:5m"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		State struct {
			MinerName    string `conf:"default:miner1"`
			DBPath       string `conf:"default:zblock/"`
			DBEngine     string `conf:"default:disk,help:memory|disk|badger|bolt"`
			GenesisPath  string `conf:"help:genesis file, the built in genesis is used when empty"`
			Difficulty   int    `conf:"default:-1,help:overrides the genesis difficulty when not negative"`
			MiningReward int64  `conf:"default:-1,help:overrides the genesis mining reward when not negative"`
			AutoMine     bool   `conf:"default:false"`
			PoolMaxSize  int    `conf:"default:0,help:0 is unbounded"`
		}
		P2P struct {
			Host             string        `conf:"default:localhost,help:host other nodes use to reach this node"`
			Port             int           `conf:"default:9080"`
			KnownPeers       []string      `conf:"help:host:port of the nodes to connect to at startup"`
			MaxPeers         int           `conf:"default:0,help:0 is unbounded"`
			MaxConnections   int           `conf:"default:0,help:inbound connection limit 0 is unbounded"`
			MaxMessageSize   int           `conf:"default:16777216"`
			DialTimeout      time.Duration `conf:"default:5s"`
			ReplyTimeout     time.Duration `conf:"default:10s"`
			PeerInterval     time.Duration `conf:"default:1m"`
			BootstrapRetries uint64        `conf:"default:5"`
		}
		Discovery struct {
			Enabled  bool   `conf:"default:false"`
			Instance string `conf:"help:mDNS instance name, derived from the p2p host when empty"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "Corundum proof of work ledger node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	fmt.Println(`   ____                                _                  `)
	fmt.Println(`  / ___|___  _ __ _   _ _ __   __| |_   _ _ __ ___  `)
	fmt.Println(` | |   / _ \| '__| | | | '_ \ / _' | | | | '_ ' _ \ `)
	fmt.Println(` | |__| (_) | |  | |_| | | | | (_| | |_| | | | | | |`)
	fmt.Println(`  \____\___/|_|   \__,_|_| |_|\__,_|\__,_|_| |_| |_|`)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Miner Key Support

	// Need to load the private key file for the configured miner so the account
	// can get credited with the mining reward. A key is created on first start.
	minerPath := filepath.Join(cfg.NameService.Folder, cfg.State.MinerName+nameservice.KeyExt)
	privateKey, err := crypto.LoadECDSA(minerPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(cfg.NameService.Folder, 0755); err != nil {
			return fmt.Errorf("creating accounts folder: %w", err)
		}
		if privateKey, err = signature.GenerateKey(); err != nil {
			return fmt.Errorf("generating miner key: %w", err)
		}
		if err := crypto.SaveECDSA(minerPath, privateKey); err != nil {
			return fmt.Errorf("saving miner key: %w", err)
		}
		log.Infow("startup", "status", "miner key created", "path", minerPath)

	case err != nil:
		return fmt.Errorf("unable to load private key for node: %w", err)
	}
	minerAddress := signature.Address(privateKey.PublicKey)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for account addresses.
	// The names come from the file names in the accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the accounts for documentation in the logs.
	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	// =========================================================================
	// Blockchain Support

	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}
	if cfg.State.Difficulty >= 0 {
		gen.Difficulty = uint16(cfg.State.Difficulty)
	}
	if cfg.State.MiningReward >= 0 {
		gen.MiningReward = uint64(cfg.State.MiningReward)
	}
	if err := gen.Validate(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}

	storage, err := engine.Open(cfg.State.DBEngine, cfg.State.DBPath)
	if err != nil {
		return fmt.Errorf("unable to open %s storage: %w", cfg.State.DBEngine, err)
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. For now, these raw messages are sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the blockchain node and manages the blockchain
	// database and provides an API for application support.
	st, err := state.New(state.Config{
		MinerAddress:   minerAddress,
		Host:           cfg.P2P.Host,
		Genesis:        gen,
		Storage:        storage,
		PoolMaxSize:    cfg.State.PoolMaxSize,
		KnownPeers:     peer.NewPeerSet(cfg.P2P.MaxPeers),
		MaxConnections: cfg.P2P.MaxConnections,
		MaxMessageSize: cfg.P2P.MaxMessageSize,
		DialTimeout:    cfg.P2P.DialTimeout,
		ReplyTimeout:   cfg.P2P.ReplyTimeout,
		EvHandler:      ev,
	})
	if err != nil {
		storage.Close()
		return err
	}
	defer st.Shutdown()

	log.Infow("startup", "status", "chain loaded", "length", st.QueryChainLength(), "latest", st.RetrieveLatestBlock().Hash, "miner", minerAddress)

	// The peer endpoint failing to bind is the only fatal network error.
	if err := st.StartListening(cfg.P2P.Port); err != nil {
		return err
	}

	// The worker package implements the different workflows such as mining,
	// transaction peer sharing, and peer updates. The worker will register
	// itself with the state.
	worker.Run(st, worker.Config{
		AutoMine:         cfg.State.AutoMine,
		PeerInterval:     cfg.P2P.PeerInterval,
		KnownPeers:       cfg.P2P.KnownPeers,
		BootstrapRetries: cfg.P2P.BootstrapRetries,
	}, ev)

	// =========================================================================
	// Start Discovery Support

	if cfg.Discovery.Enabled {
		instance := cfg.Discovery.Instance
		if instance == "" {
			instance = fmt.Sprintf("corundum-%s", st.RetrieveHost())
		}

		self, err := peer.Parse(st.RetrieveHost())
		if err != nil {
			return fmt.Errorf("parsing p2p host: %w", err)
		}
		_, port, err := self.HostPort()
		if err != nil {
			return fmt.Errorf("parsing p2p host: %w", err)
		}

		disc, err := discovery.Start(discovery.Config{
			Instance:  instance,
			Port:      port,
			Found:     st.ConnectToPeer,
			EvHandler: ev,
		})
		if err != nil {
			return fmt.Errorf("starting discovery: %w", err)
		}
		defer disc.Shutdown()

		log.Infow("startup", "status", "discovery started", "instance", instance)
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux, err := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     evts,
	})
	if err != nil {
		return fmt.Errorf("constructing public mux: %w", err)
	}

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
