package pricing

import (
	"context"
	"fmt"
	"printshop/internal/constants"
	"printshop/internal/lib/errs"
	"printshop/internal/lib/money"
	"printshop/internal/service/pricing/layout"
	"printshop/internal/service/pricing/material"
	"printshop/internal/service/pricing/operation"
	"printshop/internal/service/pricing/tier"
	"printshop/internal/storage"

	"github.com/shopspring/decimal"
)

const (
	simplifiedPrintType     = "print"
	simplifiedFinishingType = "finishing"
)

// simplified считает цену по готовой таблице размеров. Цены в таблице
// уже конечные, наценка и тиражная скидка не применяются.
func (e *Engine) simplified(ctx context.Context, p storage.Product, quantity int, cfg SimplifiedConfig) (*Breakdown, error) {
	const op = "service.pricing.simplified"

	tpl, err := e.template(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения шаблона: %w", op, err)
	}
	if tpl == nil || tpl.Simplified == nil {
		return nil, errs.New(errs.KindConfigurationNotFound, "у изделия нет таблицы упрощённого калькулятора").
			With("product_id", p.ID)
	}

	size, ok := findSize(tpl.Simplified, cfg.SizeCode)
	if !ok {
		return nil, errs.New(errs.KindConfigurationNotFound, "размер %q не настроен", cfg.SizeCode).
			With("size_code", cfg.SizeCode)
	}

	b := newBreakdown(p, quantity, storage.CalculatorSimplified)
	b.Size = layout.Dimensions{Width: size.Width, Height: size.Height}

	lay := e.settings.Optimizer.FindBestSheet(b.Size, e.settings.Sheets)
	if !lay.FitsOnSheet {
		return nil, errs.New(errs.KindSizeNotResolved, "размер %q не помещается на лист", size.Code).
			With("size_code", size.Code)
	}
	b.Layout = lay
	b.note("layout", "%s: %d шт. на листе", lay.SheetName, lay.ItemsPerSheet)

	minQty := lay.ItemsPerSheet
	if size.PrinterClass == storage.PrinterClassOffice {
		minQty = 1
	}
	if quantity < minQty {
		return nil, errs.New(errs.KindQuantityOutOfRange, "тираж меньше минимального для размера %q", size.Code).
			With("min", minQty).
			With("quantity", quantity)
	}
	if size.MaxQuantity > 0 && quantity > size.MaxQuantity {
		return nil, errs.New(errs.KindQuantityOutOfRange, "тираж больше максимального для размера %q", size.Code).
			With("max", size.MaxQuantity).
			With("quantity", quantity)
	}

	if constants.MultiPageTypes[p.Type] && cfg.Pages > 0 {
		sides := 1
		if cfg.Duplex {
			sides = 2
		}
		printed := ceilDiv(cfg.Pages, sides) * quantity
		b.SheetsNeeded = ceilDiv(printed, lay.ItemsPerSheet)
		b.note("sheets", "%d стр. × %d экз. / %d на листе = %d листов", cfg.Pages, quantity, lay.ItemsPerSheet, b.SheetsNeeded)
	} else {
		b.SheetsNeeded = ceilDiv(quantity, lay.ItemsPerSheet)
		b.note("sheets", "%d шт. / %d на листе = %d листов", quantity, lay.ItemsPerSheet, b.SheetsNeeded)
	}

	printSet, ok := findPrintTiers(size, cfg.ColorMode, cfg.Duplex)
	if !ok {
		return nil, errs.New(errs.KindConfigurationNotFound, "нет цен печати для размера %q", size.Code).
			With("color_mode", string(cfg.ColorMode)).
			With("duplex", cfg.Duplex)
	}
	printLine, err := tableLine(b, "Печать", simplifiedPrintType, storage.PerSheet, printSet.Tiers, b.SheetsNeeded)
	if err != nil {
		return nil, err
	}
	b.Operations = append(b.Operations, printLine)

	if cfg.MaterialCode != "" {
		mt, ok := findNamed(size.MaterialTiers, cfg.MaterialCode)
		if !ok {
			return nil, errs.New(errs.KindConfigurationNotFound, "материал %q не настроен для размера %q", cfg.MaterialCode, size.Code).
				With("material_code", cfg.MaterialCode)
		}

		res, ok := tier.Resolve(mt.Tiers, b.SheetsNeeded)
		if !ok {
			return nil, errs.New(errs.KindConfigurationNotFound, "у материала %q нет ступеней цен", mt.Code)
		}
		if res.Fallback {
			b.note("tier", "материал %q: листы вне ступеней, взята нижняя", mt.Code)
		}

		b.Materials = append(b.Materials, material.Line{
			Name:      mt.Name,
			Unit:      "лист",
			Quantity:  b.SheetsNeeded,
			UnitPrice: res.Tier.UnitPrice,
			Total:     money.Round(res.Tier.UnitPrice * float64(b.SheetsNeeded)),
			Source:    material.SourceTable,
		})
	}

	for _, code := range cfg.Finishing {
		ft, ok := findNamed(size.FinishingTiers, code)
		if !ok {
			return nil, errs.New(errs.KindConfigurationNotFound, "отделка %q не настроена для размера %q", code, size.Code).
				With("finishing", code)
		}

		line, err := tableLine(b, ft.Name, simplifiedFinishingType, storage.PerItem, ft.Tiers, quantity)
		if err != nil {
			return nil, err
		}
		b.Operations = append(b.Operations, line)
	}

	opCosts, _, matCosts := b.costs()
	opsTotal, matTotal := money.Sum(opCosts...), money.Sum(matCosts...)
	total := opsTotal.Add(matTotal)

	b.OperationsTotal = money.Round(opsTotal.InexactFloat64())
	b.MaterialsTotal = money.Round(matTotal.InexactFloat64())
	b.Subtotal = money.Round(total.InexactFloat64())
	b.Markup = 1
	b.FinalPrice = b.Subtotal
	b.PricePerUnit = money.RoundTo(total.Div(decimal.NewFromInt(int64(quantity))).InexactFloat64(), 4)

	return b, nil
}

func tableLine(b *Breakdown, name, typ string, unit storage.PricingUnit, tiers []storage.QuantityTier, qty int) (operation.Line, error) {
	res, ok := tier.Resolve(tiers, qty)
	if !ok {
		return operation.Line{}, errs.New(errs.KindConfigurationNotFound, "у позиции %q нет ступеней цен", name)
	}
	if res.Fallback {
		b.note("tier", "%q: количество %d вне ступеней, взята нижняя", name, qty)
	}

	return operation.Line{
		Name:              name,
		Type:              typ,
		PricingUnit:       unit,
		UnitPrice:         res.Tier.UnitPrice,
		EffectiveQuantity: float64(qty),
		TotalCost:         money.Round(res.Tier.UnitPrice * float64(qty)),
		PriceSource:       operation.SourceTier,
		TierFallback:      res.Fallback,
	}, nil
}

func findSize(t *storage.SimplifiedTable, code string) (storage.SimplifiedSize, bool) {
	for _, s := range t.Sizes {
		if s.Code == code {
			return s, true
		}
	}
	return storage.SimplifiedSize{}, false
}

func findPrintTiers(s storage.SimplifiedSize, mode storage.ColorMode, duplex bool) (storage.PrintTierSet, bool) {
	for _, set := range s.PrintTiers {
		if set.ColorMode == mode && set.Duplex == duplex {
			return set, true
		}
	}
	return storage.PrintTierSet{}, false
}

func findNamed(list []storage.NamedTiers, code string) (storage.NamedTiers, bool) {
	for _, n := range list {
		if n.Code == code {
			return n, true
		}
	}
	return storage.NamedTiers{}, false
}
