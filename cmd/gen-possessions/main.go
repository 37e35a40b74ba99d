// Command gen-possessions writes synthetic possession CSVs with planted
// player impacts, one file per season, for exercising the rapm command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/courtside/internal/adapters/source"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/synth"
	"github.com/okian/courtside/pkg/logger"
)

const filePermission = 0o644

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	synth.Config
	seasons string
	out     string
	truth   string
	names   string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	def := synth.DefaultConfig()
	o := options{Config: def}
	fs := flag.NewFlagSet("gen-possessions", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Uint64Var(&o.Seed, "seed", def.Seed, "random seed")
	fs.IntVar(&o.Teams, "teams", def.Teams, "number of teams")
	fs.IntVar(&o.Roster, "roster", def.Roster, "players per team, at least 5")
	fs.IntVar(&o.Possessions, "possessions", def.Possessions, "possessions per season")
	fs.Float64Var(&o.BasePoints, "base", def.BasePoints, "league average points per possession")
	fs.Float64Var(&o.ImpactSD, "impact-sd", def.ImpactSD, "spread of true player impacts")
	fs.Float64Var(&o.NoiseSD, "noise-sd", def.NoiseSD, "per possession scoring noise")
	fs.BoolVar(&o.Integer, "integer", def.Integer, "round points to whole numbers")
	fs.StringVar(&o.seasons, "season", strings.Join(def.Seasons, ","), "comma separated seasons")
	fs.StringVar(&o.out, "out", "base_poss_data_{season}.csv", `output path template, {season} is replaced; "-" writes every season to stdout`)
	fs.StringVar(&o.truth, "truth", "", "optional path for the planted Player,offense,defense impacts")
	fs.StringVar(&o.names, "names", "", "optional path for a Player,player_name directory")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.Seasons = nil
	for _, s := range strings.Split(o.seasons, ",") {
		if s = strings.TrimSpace(s); s != "" {
			o.Seasons = append(o.Seasons, s)
		}
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if err := logger.Init(logger.WithOutput(stderr)); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return 2
	}
	ctx := context.Background()
	log := logger.Get().Named("gen")

	lg, err := synth.Generate(o.Config)
	if err != nil {
		log.Error(ctx, "generate failed", logger.Error(err))
		return 2
	}

	if o.out == "-" {
		err = synth.WriteCSV(stdout, lg.Possessions)
	} else {
		err = writeSeasons(o.out, o.Seasons, lg.Possessions)
	}
	if err != nil {
		log.Error(ctx, "write possessions failed", logger.Error(err))
		return 1
	}
	if o.truth != "" {
		if err := writeFile(o.truth, lg.WriteTruth); err != nil {
			log.Error(ctx, "write truth failed", logger.Error(err))
			return 1
		}
	}
	if o.names != "" {
		if err := writeFile(o.names, lg.WriteNames); err != nil {
			log.Error(ctx, "write names failed", logger.Error(err))
			return 1
		}
	}

	log.Info(ctx, "generated possessions",
		logger.Int("players", len(lg.Truth)),
		logger.Int("possessions", len(lg.Possessions)),
		logger.Strings("seasons", o.Seasons),
	)
	return 0
}

// writeSeasons writes each season's possessions to its own file.
func writeSeasons(template string, seasons []string, possessions []model.Possession) error {
	bySeason := make(map[string][]model.Possession, len(seasons))
	for _, p := range possessions {
		bySeason[p.Season] = append(bySeason[p.Season], p)
	}
	for _, season := range seasons {
		path := source.Expand(template, season)
		err := writeFile(path, func(w io.Writer) error {
			return synth.WriteCSV(w, bySeason[season])
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
