package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	generate_excel "printshop/internal/service/generate-excel"
	"printshop/internal/service/pricing"
	"printshop/internal/storage"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type quoteOptions struct {
	productID int64
	quantity  int
	format    string
	xlsxPath  string
	trace     bool

	// гибкий калькулятор
	width      float64
	height     float64
	materialID int64
	technology string
	colorMode  string
	duplex     bool
	urgent     bool
	pages      int
	options    []string

	// упрощённый калькулятор
	sizeCode     string
	materialCode string
	finishing    []string
}

func newQuoteCmd(root *rootOptions) *cobra.Command {
	opts := &quoteOptions{}

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Рассчитать стоимость заказа",
		Long: `Считает цену заказа и печатает разбор: операции, материалы, наценку, скидку.

С --size используется упрощённый калькулятор (таблица цен изделия),
иначе гибкий (раскладка, операции, материалы).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.Int64VarP(&opts.productID, "product", "p", 0, "id изделия")
	f.IntVarP(&opts.quantity, "quantity", "q", 0, "тираж")
	f.StringVarP(&opts.format, "format", "f", "text", "формат вывода (text, json)")
	f.StringVar(&opts.xlsxPath, "xlsx", "", "сохранить расчёт в Excel")
	f.BoolVar(&opts.trace, "trace", false, "показать журнал решений")

	f.Float64Var(&opts.width, "width", 0, "ширина изделия, мм")
	f.Float64Var(&opts.height, "height", 0, "высота изделия, мм")
	f.Int64Var(&opts.materialID, "material", 0, "id материала")
	f.StringVar(&opts.technology, "technology", "", "код технологии печати")
	f.StringVar(&opts.colorMode, "color", "", "режим цвета (bw, color)")
	f.BoolVar(&opts.duplex, "duplex", false, "двусторонняя печать")
	f.BoolVar(&opts.urgent, "urgent", false, "срочный заказ")
	f.IntVar(&opts.pages, "pages", 0, "страниц в многостраничном изделии")
	f.StringSliceVar(&opts.options, "option", nil, "включённые опции шаблона")

	f.StringVar(&opts.sizeCode, "size", "", "код формата упрощённого калькулятора")
	f.StringVar(&opts.materialCode, "material-code", "", "код материала упрощённого калькулятора")
	f.StringSliceVar(&opts.finishing, "finishing", nil, "коды постпечатной обработки")

	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("quantity")

	return cmd
}

func (o *quoteOptions) request() pricing.Request {
	req := pricing.Request{ProductID: o.productID, Quantity: o.quantity}

	if o.sizeCode != "" {
		req.Config = pricing.SimplifiedConfig{
			SizeCode:     o.sizeCode,
			ColorMode:    storage.ColorMode(o.colorMode),
			Duplex:       o.duplex,
			Pages:        o.pages,
			MaterialCode: o.materialCode,
			Finishing:    o.finishing,
		}
		return req
	}

	cfg := pricing.FlexibleConfig{
		Width:      o.width,
		Height:     o.height,
		Technology: o.technology,
		ColorMode:  storage.ColorMode(o.colorMode),
		Duplex:     o.duplex,
		Urgent:     o.urgent,
		Pages:      o.pages,
	}
	if o.materialID > 0 {
		id := o.materialID
		cfg.MaterialID = &id
	}
	if len(o.options) > 0 {
		cfg.Options = make(map[string]bool, len(o.options))
		for _, key := range o.options {
			cfg.Options[key] = true
		}
	}
	req.Config = cfg

	return req
}

func runQuote(cmd *cobra.Command, root *rootOptions, opts *quoteOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("неизвестный формат %q", opts.format)
	}

	store, settings, closeFn, err := root.open()
	if err != nil {
		return err
	}
	defer closeFn()

	engine := pricing.NewEngine(store, root.logger(cmd), settings)

	b, err := engine.Calculate(cmd.Context(), opts.request())
	if err != nil {
		return err
	}

	quoteID := uuid.NewString()

	if opts.xlsxPath != "" {
		data, err := generate_excel.QuoteWorkbook(quoteID, b)
		if err != nil {
			return fmt.Errorf("не удалось собрать Excel: %w", err)
		}
		if err := os.WriteFile(opts.xlsxPath, data, 0o644); err != nil {
			return fmt.Errorf("не удалось сохранить %s: %w", opts.xlsxPath, err)
		}
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			QuoteID string `json:"quote_id"`
			*pricing.Breakdown
		}{quoteID, b})
	}

	printBreakdown(cmd.OutOrStdout(), b, opts.trace)
	return nil
}

func printBreakdown(out io.Writer, b *pricing.Breakdown, trace bool) {
	fmt.Fprintf(out, "%s (%s), тираж %d\n", b.ProductName, b.Strategy, b.Quantity)
	if b.Layout.FitsOnSheet {
		fmt.Fprintf(out, "Раскладка: %d шт. на %s, листов %d\n", b.Layout.ItemsPerSheet, b.Layout.SheetName, b.SheetsNeeded)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ОПЕРАЦИЯ\tКОЛ-ВО\tЦЕНА\tСУММА\tПРАВИЛА")
	for _, op := range b.Operations {
		fmt.Fprintf(w, "%s\t%g\t%.2f\t%.2f\t%s\n", op.Name, op.EffectiveQuantity, op.UnitPrice, op.TotalCost, strings.Join(op.AppliedRules, ", "))
	}
	fmt.Fprintln(w, "\t\t\t\t")

	fmt.Fprintln(w, "МАТЕРИАЛ\tКОЛ-ВО\tЦЕНА\tСУММА\tИСТОЧНИК")
	for _, m := range b.Materials {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%s\n", m.Name, m.Quantity, m.UnitPrice, m.Total, m.Source)
	}
	w.Flush()

	if b.MaterialsEstimated {
		fmt.Fprintln(out, "! материалы не настроены, цена оценочная")
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Себестоимость: %.2f\n", b.Subtotal)
	fmt.Fprintf(out, "Наценка:       x%g\n", b.Markup)
	if b.DiscountPercent > 0 {
		fmt.Fprintf(out, "Скидка:        %g%% (%.2f)\n", b.DiscountPercent, b.DiscountAmount)
	}
	fmt.Fprintf(out, "Итого:         %.2f\n", b.FinalPrice)
	fmt.Fprintf(out, "За штуку:      %.4f\n", b.PricePerUnit)

	if trace {
		fmt.Fprintln(out)
		for _, d := range b.Trace {
			fmt.Fprintf(out, "[%s] %s\n", d.Step, d.Detail)
		}
	}
}
