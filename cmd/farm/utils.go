// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	"github.com/elastic/gosigar"
	"github.com/holiman/uint256"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin"
	"github.com/berryfarm/farm/log"
	"github.com/berryfarm/farm/lvldb"
	farmrt "github.com/berryfarm/farm/runtime"
	"github.com/berryfarm/farm/state"
)

func initLogger(ctx *cli.Context, w io.Writer) *slog.LevelVar {
	lvl := new(slog.LevelVar)
	lvl.Set(log.FromLegacyLevel(ctx.GlobalInt(verbosityFlag.Name)))

	var useColor bool
	if f, ok := w.(*os.File); ok {
		useColor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
	}
	log.SetDefault(log.NewLogger(log.NewHandler(w, log.Options{
		Level:    lvl,
		JSON:     ctx.GlobalBool(jsonLogsFlag.Name),
		UseColor: useColor,
	})))
	return lvl
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.berryfarm.farm")
		}
		return filepath.Join(home, ".org.berryfarm.farm")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func openMainDB(ctx *cli.Context, dataDir string) (*lvldb.LevelDB, int, error) {
	cacheMB := normalizeCacheSize(ctx.GlobalInt(cacheFlag.Name))
	logger.Debug("cache size(MB)", "size", cacheMB)

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: 512,
	})
	if err != nil {
		return nil, 0, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, cacheMB / 2, nil
}

// node is a runtime with the farm deployed on a persistent database.
type node struct {
	cfg *Config
	db  *lvldb.LevelDB
	rt  *farmrt.Runtime
}

func openNode(ctx *cli.Context) (*node, error) {
	cfg, err := loadConfig(ctx.GlobalString(configFlag.Name))
	if err != nil {
		return nil, err
	}
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return nil, err
	}
	db, stateCacheMB, err := openMainDB(ctx, dataDir)
	if err != nil {
		return nil, err
	}
	rt := farmrt.New(state.NewStater(db, stateCacheMB), farmrt.Options{})
	builtin.Deploy(rt, cfg.FarmID, cfg.Token.ID, cfg.FarmConfig())

	n := &node{cfg, db, rt}
	if err := n.initGenesis(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return n, nil
}

func (n *node) Close() {
	logger.Info("closing main database...")
	n.db.Close()
}

type genesisCall struct {
	receiver berry.AccountID
	method   string
	args     any
}

// initGenesis mints the genesis balances, initializes both contracts and
// registers the genesis accounts with the token.
// It's skipped when the farm is already initialized.
func (n *node) initGenesis(ctx context.Context) error {
	if _, err := n.rt.View(n.cfg.FarmID, "get_stats", nil); err == nil {
		return nil
	}
	logger.Info("initializing genesis state", "farm", n.cfg.FarmID, "token", n.cfg.Token.ID)

	for _, a := range n.cfg.Genesis {
		if err := n.rt.Mint(a.Account, uint256.MustFromDecimal(a.Balance)); err != nil {
			return errors.Wrapf(err, "mint %s", a.Account)
		}
	}
	calls := []genesisCall{
		{n.cfg.Token.ID, "new", map[string]any{
			"owner_id":     n.cfg.Token.Owner,
			"total_supply": n.cfg.Token.TotalSupply,
		}},
		{n.cfg.FarmID, "new", map[string]any{"banana_token_account_id": n.cfg.Token.ID}},
	}
	for _, a := range n.cfg.Genesis {
		calls = append(calls, genesisCall{n.cfg.Token.ID, "register_account", map[string]any{"account_id": a.Account}})
	}
	for _, c := range calls {
		out, err := n.rt.Call(ctx, n.cfg.Token.Owner, c.receiver, c.method, c.args, nil, 0)
		if err != nil {
			return errors.Wrapf(err, "%s.%s", c.receiver, c.method)
		}
		if !out.Succeeded() {
			return errors.Errorf("%s.%s: %s", c.receiver, c.method, out.Error)
		}
	}
	return nil
}
