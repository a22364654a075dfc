// Package cmd содержит команды printshopctl: расчёт цены и доукомплектование изделий
// из консоли, по базе MySQL или по JSON-каталогу.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"printshop/internal/config"
	"printshop/internal/lib/logger"
	"printshop/internal/service/pricing"
	"printshop/internal/service/pricing/layout"
	"printshop/internal/service/provision"
	"printshop/internal/storage/memory"
	"printshop/internal/storage/mysql"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath  string
	catalogPath string
	verbose     bool
}

// Store: всё, что нужно командам от хранилища.
type Store interface {
	pricing.Storage
	provision.Storage
}

func Execute() error {
	return NewRootCmd(os.Stdout, os.Stderr).Execute()
}

func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "printshopctl",
		Short: "Расчёт стоимости печати из консоли",
		Long: `printshopctl считает цену заказа тем же движком, что и сервер.

Данные берутся из MySQL (--config) или из JSON-каталога (--catalog).

Примеры:
  printshopctl quote --catalog catalog.json --product 1 --quantity 500 --width 90 --height 50
  printshopctl quote --product 3 --quantity 100 --size A5 --color color --format json
  printshopctl provision 7`,
		SilenceUsage: true,
	}

	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "yaml-конфиг сервера (по умолчанию CONFIG_PATH или ./config/local.yaml)")
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "JSON-каталог вместо базы")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "подробный лог в stderr")

	root.AddCommand(newQuoteCmd(opts))
	root.AddCommand(newProvisionCmd(opts))

	return root
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return logger.Discard()
	}
	return logger.New(logger.EnvLocal, cmd.ErrOrStderr(), nil)
}

// open подключает хранилище и настройки движка. closeFn нужно вызвать всегда.
func (o *rootOptions) open() (store Store, settings pricing.Settings, closeFn func() error, err error) {
	settings = pricing.DefaultSettings()

	if o.catalogPath != "" {
		s, err := memory.LoadFile(o.catalogPath)
		if err != nil {
			return nil, settings, nil, err
		}
		return s, settings, func() error { return nil }, nil
	}

	path := o.configPath
	if path == "" {
		path = config.Path()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, settings, nil, err
	}

	db, err := mysql.New(*cfg)
	if err != nil {
		return nil, settings, nil, fmt.Errorf("не удалось подключиться к базе: %w", err)
	}

	settings.DefaultMarkup = cfg.Pricing.DefaultMarkup
	settings.Optimizer = layout.New(cfg.Pricing.SheetMargin, cfg.Pricing.SheetGap)

	return db, settings, db.Close, nil
}
