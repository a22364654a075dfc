package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"printshop/internal/constants"
	"printshop/internal/lib/errs"
	"printshop/internal/lib/money"
	"printshop/internal/service/pricing/layout"
	"printshop/internal/service/pricing/material"
	"printshop/internal/service/pricing/operation"
	"printshop/internal/service/pricing/tier"
	"printshop/internal/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// printOperationName: имя операции печати, которую добавляем сами,
// если у изделия её нет, а параметры печати заданы.
const printOperationName = "Печать"

func (e *Engine) flexible(ctx context.Context, p storage.Product, quantity int, cfg FlexibleConfig) (*Breakdown, error) {
	const op = "service.pricing.flexible"

	var (
		tpl       *storage.ProductTemplate
		linked    []storage.Operation
		markup    float64
		discounts []storage.DiscountTier
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		tpl, err = e.template(gctx, p.ID)
		if err != nil {
			return fmt.Errorf("ошибка получения шаблона: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		linked, err = e.storage.GetProductOperations(gctx, p.ID)
		if err != nil {
			return fmt.Errorf("ошибка получения операций изделия: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		markup, err = e.storage.GetMarkup(gctx)
		if err != nil {
			return fmt.Errorf("ошибка получения наценки: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		discounts, err = e.storage.GetQuantityDiscounts(gctx, p.Type)
		if err != nil {
			return fmt.Errorf("ошибка получения скидок: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b := newBreakdown(p, quantity, storage.CalculatorFlexible)

	size, err := resolveSize(cfg, tpl)
	if err != nil {
		return nil, err
	}
	b.Size = size

	lay := e.settings.Optimizer.FindBestSheet(size, e.settings.Sheets)
	b.Layout = lay
	if lay.FitsOnSheet {
		b.note("layout", "%s: %d шт. на листе (%d×%d), отход %.2f%%, поворот %t",
			lay.SheetName, lay.ItemsPerSheet, lay.Grid.Rows, lay.Grid.Cols, lay.WastePercentage, lay.Rotated)
	} else {
		b.note("layout", "изделие %.0f×%.0f не помещается ни на один лист", size.Width, size.Height)
	}

	pages := cfg.Pages
	if pages == 0 && tpl != nil {
		pages = tpl.Pages
	}

	sheetBased := constants.SheetBasedTypes[p.Type]
	multiPage := constants.MultiPageTypes[p.Type] && pages > 0

	// для многостраничных всё считаем на один экземпляр
	calcQty := quantity
	switch {
	case multiPage:
		calcQty = 1
		sides := 1
		if cfg.Duplex || constants.AlwaysDuplexTypes[p.Type] {
			sides = 2
		}
		printed := ceilDiv(pages, sides)
		if lay.FitsOnSheet {
			b.SheetsNeeded = ceilDiv(printed, lay.ItemsPerSheet)
		} else {
			b.SheetsNeeded = printed
		}
		b.note("sheets", "многостраничное: %d стр., %d сторон(ы), %d листов на экземпляр", pages, sides, b.SheetsNeeded)
	case lay.FitsOnSheet:
		b.SheetsNeeded = ceilDiv(quantity, lay.ItemsPerSheet)
		b.note("sheets", "%d шт. / %d на листе = %d листов", quantity, lay.ItemsPerSheet, b.SheetsNeeded)
	default:
		b.SheetsNeeded = quantity
		b.note("sheets", "широкий формат: по листу на изделие, %d листов", quantity)
	}

	ops, err := e.collectOperations(ctx, b, linked, tpl, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, o := range ops {
		line, err := e.operations.Price(ctx, operation.Input{
			Operation:     o,
			Print:         cfg.print(),
			Urgent:        cfg.Urgent,
			Quantity:      calcQty,
			SheetsNeeded:  b.SheetsNeeded,
			Size:          size,
			Layout:        lay,
			OrderQuantity: quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if line.TierFallback {
			e.log.Warn("тираж вне ступеней операции, взята нижняя ступень",
				slog.String("op", op),
				slog.Int64("product_id", p.ID),
				slog.Int64("operation_id", o.ID),
			)
			b.note("tier", "операция %q: тираж вне ступеней, взята нижняя", o.Name)
		}
		for _, name := range line.SkippedRules {
			b.note("rule", "операция %q: правило %q не меняет цену", o.Name, name)
		}

		b.Operations = append(b.Operations, line)
	}

	mats, err := e.materials.Resolve(ctx, material.Input{
		Product:      p,
		Template:     tpl,
		Size:         size,
		Layout:       lay,
		MaterialID:   cfg.MaterialID,
		Quantity:     calcQty,
		SheetsNeeded: b.SheetsNeeded,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if mats.ExplicitMissing {
		e.log.Warn("выбранный материал не найден, материалы подобраны по цепочке",
			slog.String("op", op),
			slog.Int64("product_id", p.ID),
			slog.Int64("material_id", *cfg.MaterialID),
		)
		b.note("materials", "материал %d не найден, выбор заказчика пропущен", *cfg.MaterialID)
	}
	if len(mats.Lines) > 0 {
		b.Materials = mats.Lines
		b.note("materials", "источник %s, позиций %d", mats.Source, len(mats.Lines))
	}
	if mats.Estimated {
		b.MaterialsEstimated = true
		e.log.Warn("материалы не настроены, взяты со склада",
			slog.String("op", op),
			slog.Int64("product_id", p.ID),
		)
		b.note("materials", "материалы не настроены, цена материалов оценочная")
	}

	opCosts, setupCosts, matCosts := b.costs()
	opsTotal, setupTotal, matTotal := money.Sum(opCosts...), money.Sum(setupCosts...), money.Sum(matCosts...)

	subtotal := opsTotal.Add(matTotal).Add(setupTotal)

	if markup <= 0 {
		markup = e.settings.DefaultMarkup
		b.note("markup", "наценка не задана, по умолчанию ×%.2f", markup)
	}
	afterMarkup := subtotal.Mul(money.D(markup))

	discountKey, keyName := quantity, "тираж"
	if sheetBased {
		discountKey, keyName = b.SheetsNeeded, "листы"
	}

	percent := 0.0
	if res, ok := tier.Resolve(discounts, discountKey); ok {
		percent = res.Tier.Percent
		if res.Fallback {
			e.log.Warn("ключ скидки вне ступеней, взята нижняя ступень",
				slog.String("op", op),
				slog.String("product_type", p.Type),
				slog.Int("key", discountKey),
			)
		}
		b.note("discount", "скидка %.2f%% по ключу %s=%d", percent, keyName, discountKey)
	}

	discount := afterMarkup.Mul(money.D(percent)).Div(decimal.NewFromInt(100))
	net := afterMarkup.Sub(discount)

	final := net
	switch {
	case multiPage:
		final = net.Mul(decimal.NewFromInt(int64(quantity)))
		b.CopyMultiplier = quantity
		b.note("final", "цена экземпляра × %d", quantity)
	case sheetBased && lay.FitsOnSheet && b.SheetsNeeded > 0:
		perItem := net.
			Div(decimal.NewFromInt(int64(b.SheetsNeeded))).
			Div(decimal.NewFromInt(int64(lay.ItemsPerSheet)))
		final = perItem.Mul(decimal.NewFromInt(int64(quantity)))
		b.note("final", "цена полного листа / %d на листе × %d", lay.ItemsPerSheet, quantity)
	}

	b.OperationsTotal = money.Round(opsTotal.InexactFloat64())
	b.MaterialsTotal = money.Round(matTotal.InexactFloat64())
	b.SetupTotal = money.Round(setupTotal.InexactFloat64())
	b.Subtotal = money.Round(subtotal.InexactFloat64())
	b.Markup = markup
	b.DiscountPercent = percent
	b.DiscountAmount = money.Round(discount.InexactFloat64())
	b.FinalPrice = money.Round(final.InexactFloat64())
	b.PricePerUnit = money.RoundTo(final.Div(decimal.NewFromInt(int64(quantity))).InexactFloat64(), 4)

	return b, nil
}

func resolveSize(cfg FlexibleConfig, tpl *storage.ProductTemplate) (layout.Dimensions, error) {
	if cfg.Width > 0 && cfg.Height > 0 {
		return layout.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
	}
	if tpl != nil && tpl.TrimWidth > 0 && tpl.TrimHeight > 0 {
		return layout.Dimensions{Width: tpl.TrimWidth, Height: tpl.TrimHeight}, nil
	}
	return layout.Dimensions{}, errs.New(errs.KindSizeNotResolved, "размер не задан ни в конфигурации, ни в шаблоне")
}

// collectOperations: привязанные операции, операции отмеченных опций шаблона
// и печать, если она нужна, но не привязана.
func (e *Engine) collectOperations(
	ctx context.Context,
	b *Breakdown,
	linked []storage.Operation,
	tpl *storage.ProductTemplate,
	cfg FlexibleConfig,
) ([]storage.Operation, error) {
	ops := make([]storage.Operation, 0, len(linked)+2)
	seen := make(map[int64]bool, len(linked))
	hasPrint := false

	for _, o := range linked {
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		hasPrint = hasPrint || o.IsPrint()
		ops = append(ops, o)
	}

	if tpl != nil {
		for _, opt := range tpl.Options {
			if !cfg.Options[opt.Key] || opt.OperationID == nil || seen[*opt.OperationID] {
				continue
			}

			o, err := e.storage.GetOperation(ctx, *opt.OperationID)
			if errors.Is(err, storage.ErrNotFound) || (err == nil && o == nil) {
				b.note("operations", "опция %q ссылается на несуществующую операцию %d", opt.Key, *opt.OperationID)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("ошибка получения операции %d: %w", *opt.OperationID, err)
			}

			seen[o.ID] = true
			hasPrint = hasPrint || o.IsPrint()
			ops = append(ops, *o)
			b.note("operations", "опция %q добавила операцию %q", opt.Key, o.Name)
		}
	}

	if cfg.Technology != "" && !hasPrint {
		ops = append(ops, storage.Operation{
			Name:        printOperationName,
			Type:        storage.OperationTypePrint,
			PricingUnit: storage.PerSheet,
		})
		b.note("operations", "добавлена печать %q", cfg.Technology)
	}

	return ops, nil
}
