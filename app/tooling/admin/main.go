// This program performs administrative tasks against the chain storage of
// a stopped node.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/RyanLatimer/Corundum/app/tooling/admin/commands"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database/storage/engine"
	"github.com/RyanLatimer/Corundum/foundation/logger"
	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("admin", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args conf.Args
		DB   struct {
			Engine string `conf:"default:disk,help:memory|disk|badger|bolt"`
			Path   string `conf:"default:zblock/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "Corundum storage administration",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	log.Infow("admin", "engine", cfg.DB.Engine, "path", cfg.DB.Path, "command", cfg.Args.Num(0))

	storage, err := engine.Open(cfg.DB.Engine, cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.DB.Engine, err)
	}
	defer storage.Close()

	return processCommands(cfg.Args, storage)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, storage database.Storage) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(os.Stdout, storage, args.Num(1)); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	case "blocks":
		if err := commands.Blocks(os.Stdout, storage); err != nil {
			return fmt.Errorf("getting blocks: %w", err)
		}

	case "validate":
		if err := commands.Validate(os.Stdout, storage); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}

	case "migrate":
		dest, err := engine.Open(args.Num(1), args.Num(2))
		if err != nil {
			return fmt.Errorf("opening %s storage: %w", args.Num(1), err)
		}
		defer dest.Close()

		if err := commands.Migrate(os.Stdout, storage, dest); err != nil {
			return fmt.Errorf("migrating chain: %w", err)
		}

	default:
		fmt.Println("bals [account]: show the balance of every account or the specified account")
		fmt.Println("blocks: show every block in the chain")
		fmt.Println("validate: validate the stored chain")
		fmt.Println("migrate <engine> <path>: copy the chain into an empty storage")
		return commands.ErrHelp
	}

	return nil
}
