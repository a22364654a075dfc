package constants

var (
	// Листовая продукция: печатается много штук на листе, скидка считается от листов.
	SheetBasedTypes = map[string]bool{
		"business_cards": true,
		"flyers":         true,
		"postcards":      true,
		"stickers":       true,
		"labels":         true,
	}

	// Многостраничные: расчёт ведётся на один экземпляр и умножается на тираж.
	MultiPageTypes = map[string]bool{
		"booklets":  true,
		"brochures": true,
		"catalogs":  true,
		"notebooks": true,
		"calendars": true,
	}

	// Типы, для которых печать всегда двусторонняя при подсчёте листов на экземпляр.
	AlwaysDuplexTypes = map[string]bool{
		"booklets": true,
		"catalogs": true,
	}
)
