package main

import (
	"context"
	"fmt"
	"os"

	"github.com/LilVoxy/coursework_mortality/ETL/config"
	"github.com/LilVoxy/coursework_mortality/ETL/extractors"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"github.com/LilVoxy/coursework_mortality/dashboard"
	"github.com/spf13/cobra"
)

// rootFlags - общие флаги всех команд
type rootFlags struct {
	configPath string
	snapshot   string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "mortality-report",
		Short: "Представления дашборда смертности в терминале",
		Long:  "mortality-report строит представления дашборда смертности Колумбии 2019\nнад единым снимком и выводит их таблицами.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Путь к YAML-файлу конфигурации")
	pf.StringVar(&flags.snapshot, "snapshot", "", "Снимок: путь к файлу или sqlite://..., mysql://...")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Подробный лог в stderr")

	cmd.AddCommand(newViewCmd(flags))
	cmd.AddCommand(newKPIsCmd(flags))
	cmd.AddCommand(newOptionsCmd(flags))
	return cmd
}

// loadService загружает снимок по настройкам из конфигурации и флагов
func loadService(ctx context.Context, flags *rootFlags) (*dashboard.Service, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.snapshot != "" {
		cfg.Dashboard.Snapshot = flags.snapshot
	}

	logger := utils.NewNopLogger()
	if flags.verbose {
		logger = utils.NewETLLogger(true, "")
	}

	store := dashboard.NewStore(cfg.Dashboard.Snapshot, extractors.ReadOptions{
		Delimiter: config.DelimiterRune(cfg.Output.Delimiter),
		Encoding:  cfg.Output.Encoding,
	}, logger)
	return dashboard.NewService(ctx, store, cfg.Dashboard, logger)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
