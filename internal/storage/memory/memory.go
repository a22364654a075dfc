// Package memory хранит каталог в памяти. Используется в тестах
// и в CLI для расчёта по JSON-выгрузке без подключения к базе.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"printshop/internal/storage"
)

// OperationTiers: ступени цен операции для режима печати.
// Пустой ColorMode — общие ступени, если для режима отдельных нет.
type OperationTiers struct {
	OperationID int64                  `json:"operation_id"`
	ColorMode   storage.ColorMode      `json:"color_mode"`
	Duplex      bool                   `json:"duplex"`
	Tiers       []storage.QuantityTier `json:"tiers"`
}

// Catalog: JSON-выгрузка справочников.
type Catalog struct {
	Products          []storage.Product                   `json:"products"`
	Templates         []storage.ProductTemplate           `json:"templates"`
	Operations        []storage.Operation                 `json:"operations"`
	ProductOperations map[int64][]int64                   `json:"product_operations"`
	OperationTiers    []OperationTiers                    `json:"operation_tiers"`
	PricingRules      []storage.PricingRule               `json:"pricing_rules"`
	Materials         []storage.Material                  `json:"materials"`
	ProductMaterials  map[int64][]storage.ProductMaterial `json:"product_materials"`
	MaterialRules     []storage.MaterialRule              `json:"material_rules"`
	Technologies      []storage.TechnologyPrice           `json:"technologies"`
	Markup            float64                             `json:"markup"`
	Discounts         []storage.DiscountTier              `json:"discounts"`
	OperationNorms    []storage.OperationNorm             `json:"operation_norms"`
}

type Storage struct {
	mu sync.RWMutex

	catalog    Catalog
	products   map[int64]storage.Product
	templates  map[int64]storage.ProductTemplate
	operations map[int64]storage.Operation
	materials  map[int64]storage.Material
	techs      map[string]storage.TechnologyPrice
}

func New(c Catalog) *Storage {
	s := &Storage{
		catalog:    c,
		products:   make(map[int64]storage.Product, len(c.Products)),
		templates:  make(map[int64]storage.ProductTemplate, len(c.Templates)),
		operations: make(map[int64]storage.Operation, len(c.Operations)),
		materials:  make(map[int64]storage.Material, len(c.Materials)),
		techs:      make(map[string]storage.TechnologyPrice, len(c.Technologies)),
	}

	if s.catalog.ProductOperations == nil {
		s.catalog.ProductOperations = make(map[int64][]int64)
	}

	for _, p := range c.Products {
		s.products[p.ID] = p
	}
	for _, t := range c.Templates {
		s.templates[t.ProductID] = t
	}
	for _, o := range c.Operations {
		s.operations[o.ID] = o
	}
	for _, m := range c.Materials {
		s.materials[m.ID] = m
	}
	for _, t := range c.Technologies {
		s.techs[t.Code] = t
	}

	return s
}

func Load(r io.Reader) (*Storage, error) {
	const op = "storage.memory.Load"

	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("%s: ошибка разбора каталога: %w", op, err)
	}

	return New(c), nil
}

func LoadFile(path string) (*Storage, error) {
	const op = "storage.memory.LoadFile"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	return Load(f)
}

func (s *Storage) GetProduct(_ context.Context, id int64) (*storage.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (s *Storage) GetProductTemplate(_ context.Context, productID int64) (*storage.ProductTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[productID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (s *Storage) GetProductOperations(_ context.Context, productID int64) ([]storage.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.catalog.ProductOperations[productID]
	ops := make([]storage.Operation, 0, len(ids))
	for _, id := range ids {
		if o, ok := s.operations[id]; ok {
			ops = append(ops, o)
		}
	}
	return ops, nil
}

func (s *Storage) GetOperation(_ context.Context, id int64) (*storage.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.operations[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &o, nil
}

func (s *Storage) GetOperationTiers(_ context.Context, operationID int64, mode storage.ColorMode, duplex bool) ([]storage.QuantityTier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var common []storage.QuantityTier
	for _, t := range s.catalog.OperationTiers {
		if t.OperationID != operationID {
			continue
		}
		if t.ColorMode == mode && t.Duplex == duplex {
			return t.Tiers, nil
		}
		if t.ColorMode == "" {
			common = t.Tiers
		}
	}
	return common, nil
}

func (s *Storage) GetPricingRules(_ context.Context, operationID int64) ([]storage.PricingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rules []storage.PricingRule
	for _, r := range s.catalog.PricingRules {
		if r.OperationID == operationID {
			rules = append(rules, r)
		}
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].SortOrder < rules[j].SortOrder
	})
	return rules, nil
}

func (s *Storage) GetTechnologyPrice(_ context.Context, code string) (*storage.TechnologyPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.techs[code]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (s *Storage) GetMaterial(_ context.Context, id int64) (*storage.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.materials[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &m, nil
}

func (s *Storage) GetMaterials(_ context.Context) ([]storage.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]storage.Material, len(s.catalog.Materials))
	copy(list, s.catalog.Materials)
	return list, nil
}

func (s *Storage) GetProductMaterials(_ context.Context, productID int64) ([]storage.ProductMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := s.catalog.ProductMaterials[productID]
	list := make([]storage.ProductMaterial, 0, len(links))
	for _, pm := range links {
		m, ok := s.materials[pm.MaterialID]
		if !ok {
			continue
		}
		pm.Material = m
		list = append(list, pm)
	}
	return list, nil
}

func (s *Storage) GetMaterialRules(_ context.Context, productType, productName string) ([]storage.MaterialRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []storage.MaterialRule
	for _, r := range s.catalog.MaterialRules {
		if r.ProductType != productType {
			continue
		}
		if r.ProductName != "" && !strings.EqualFold(r.ProductName, productName) {
			continue
		}
		m, ok := s.materials[r.MaterialID]
		if !ok {
			continue
		}
		r.Material = m
		list = append(list, r)
	}
	return list, nil
}

func (s *Storage) GetInStockMaterials(_ context.Context, limit int) ([]storage.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []storage.Material
	for _, m := range s.catalog.Materials {
		if !m.InStock {
			continue
		}
		list = append(list, m)
		if limit > 0 && len(list) == limit {
			break
		}
	}
	return list, nil
}

func (s *Storage) GetMarkup(_ context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog.Markup, nil
}

func (s *Storage) GetQuantityDiscounts(_ context.Context, productType string) ([]storage.DiscountTier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []storage.DiscountTier
	for _, d := range s.catalog.Discounts {
		if d.ProductType == productType {
			list = append(list, d)
		}
	}
	return list, nil
}

func (s *Storage) GetPricingSettings(_ context.Context) (*storage.PricingSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := &storage.PricingSettings{
		Markup:    s.catalog.Markup,
		Discounts: make(map[string][]storage.DiscountTier),
	}
	for _, d := range s.catalog.Discounts {
		settings.Discounts[d.ProductType] = append(settings.Discounts[d.ProductType], d)
	}
	return settings, nil
}

func (s *Storage) UpdateMarkup(_ context.Context, markup float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.Markup = markup
	return nil
}

func (s *Storage) GetOperationNorms(_ context.Context, productType string) ([]storage.OperationNorm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []storage.OperationNorm
	for _, n := range s.catalog.OperationNorms {
		if n.ProductType == productType {
			list = append(list, n)
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].SortOrder < list[j].SortOrder
	})
	return list, nil
}

func (s *Storage) LinkProductOperations(_ context.Context, productID int64, operationIDs []int64) error {
	const op = "storage.memory.LinkProductOperations"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return fmt.Errorf("%s: изделие %d: %w", op, productID, storage.ErrNotFound)
	}

	existing := make(map[int64]bool)
	for _, id := range s.catalog.ProductOperations[productID] {
		existing[id] = true
	}

	for _, id := range operationIDs {
		if existing[id] {
			continue
		}
		if _, ok := s.operations[id]; !ok {
			return fmt.Errorf("%s: операция %d: %w", op, id, storage.ErrNotFound)
		}
		s.catalog.ProductOperations[productID] = append(s.catalog.ProductOperations[productID], id)
		existing[id] = true
	}

	return nil
}
