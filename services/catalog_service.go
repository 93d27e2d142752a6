package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bakery-backend/models"

	"gorm.io/gorm"
)

// Варианты сортировки изделий
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// StatusAll отключает фильтр по состоянию остатка
const StatusAll = "all"

// Page - одна страница результата
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// IngredientRow - ингредиент с вычисленным состоянием остатка
type IngredientRow struct {
	models.Ingredient
	Status models.StockStatus `json:"status,omitempty"`
}

// ProductFilter - параметры поиска изделий; ID имеет приоритет над остальными полями
type ProductFilter struct {
	ID       *uint
	Keyword  string
	Category string
	Sort     string
	Page     int
	Size     int
}

// CatalogService выполняет поиск и постраничный вывод ингредиентов и изделий
type CatalogService struct {
	db          *gorm.DB
	defaultSize int
}

// NewCatalogService создает новый сервис каталога
func NewCatalogService(db *gorm.DB, defaultSize int) *CatalogService {
	if defaultSize <= 0 {
		defaultSize = 5
	}
	return &CatalogService{db: db, defaultSize: defaultSize}
}

// FilterIngredients ищет ингредиенты по подстроке названия или точному id и по состоянию остатка.
// Фильтрация и разбиение на страницы выполняются в памяти.
func (s *CatalogService) FilterIngredients(keyword, status string, page, size int) (Page[IngredientRow], error) {
	page, size = s.normalizePage(page, size)

	status = strings.ToLower(strings.TrimSpace(status))
	switch models.StockStatus(status) {
	case models.StockStatusOut, models.StockStatusWarning, models.StockStatusOK:
	default:
		if status != "" && status != StatusAll {
			return Page[IngredientRow]{}, NewValidationError("unknown stock status '%s'", status)
		}
		status = ""
	}

	var ingredients []models.Ingredient
	if err := s.db.Preload("Stock").Order("id ASC").Find(&ingredients).Error; err != nil {
		return Page[IngredientRow]{}, fmt.Errorf("list ingredients: %w", err)
	}

	keyword = strings.ToLower(strings.TrimSpace(keyword))
	matched := make([]IngredientRow, 0, len(ingredients))
	for _, ing := range ingredients {
		if keyword != "" && !matchesIngredientKeyword(ing, keyword) {
			continue
		}

		row := IngredientRow{Ingredient: ing}
		if ing.Stock != nil {
			row.Status = ClassifyStatus(*ing.Stock)
		}
		if status != "" && (ing.Stock == nil || string(row.Status) != status) {
			continue
		}
		matched = append(matched, row)
	}

	return paginate(matched, page, size), nil
}

// FilterProducts ищет изделия. При заданном ID возвращается не более одного изделия,
// иначе применяются подстрока названия, категория и сортировка.
func (s *CatalogService) FilterProducts(filter ProductFilter) (Page[models.Product], error) {
	page, size := s.normalizePage(filter.Page, filter.Size)

	if filter.ID != nil {
		var product models.Product
		err := s.db.Preload("Images").First(&product, *filter.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return paginate([]models.Product{}, page, size), nil
			}
			return Page[models.Product]{}, fmt.Errorf("load product: %w", err)
		}
		return paginate([]models.Product{product}, page, size), nil
	}

	query := s.db.Model(&models.Product{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}

	switch filter.Sort {
	case SortPriceAsc:
		query = query.Order("price ASC").Order("id DESC")
	case SortPriceDesc:
		query = query.Order("price DESC").Order("id DESC")
	default:
		query = query.Order("id DESC")
	}

	keyword := strings.ToLower(strings.TrimSpace(filter.Keyword))
	if keyword == "" {
		return s.productPage(query, page, size)
	}

	// Подстрока ищется в Go: % и _ не шаблоны, регистр сворачивается и для не-ASCII
	var candidates []models.Product
	if err := query.Preload("Images").Find(&candidates).Error; err != nil {
		return Page[models.Product]{}, fmt.Errorf("list products: %w", err)
	}
	matched := make([]models.Product, 0, len(candidates))
	for _, product := range candidates {
		if strings.Contains(strings.ToLower(product.Name), keyword) {
			matched = append(matched, product)
		}
	}
	return paginate(matched, page, size), nil
}

// productPage считает и выбирает одну страницу изделий средствами базы
func (s *CatalogService) productPage(query *gorm.DB, page, size int) (Page[models.Product], error) {
	// Сессия позволяет выполнить запрос дважды: для Count и для страницы
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[models.Product]{}, fmt.Errorf("count products: %w", err)
	}

	products := make([]models.Product, 0)
	if int64(page*size) < total {
		err := query.Preload("Images").Offset(page * size).Limit(size).Find(&products).Error
		if err != nil {
			return Page[models.Product]{}, fmt.Errorf("list products: %w", err)
		}
	}

	return Page[models.Product]{
		Items:      products,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages(total, size),
	}, nil
}

func (s *CatalogService) normalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = s.defaultSize
	}
	return page, size
}

func matchesIngredientKeyword(ing models.Ingredient, keyword string) bool {
	if strings.Contains(strings.ToLower(ing.Name), keyword) {
		return true
	}
	id, err := strconv.ParseUint(keyword, 10, 64)
	return err == nil && uint(id) == ing.ID
}

// paginate вырезает страницу: start=page*size, end=min(start+size, total);
// если start выходит за total, страница пустая
func paginate[T any](items []T, page, size int) Page[T] {
	total := len(items)
	start := page * size
	result := Page[T]{
		Items:      []T{},
		Page:       page,
		Size:       size,
		Total:      int64(total),
		TotalPages: totalPages(int64(total), size),
	}
	if start >= total {
		return result
	}
	end := start + size
	if end > total {
		end = total
	}
	result.Items = items[start:end]
	return result
}

func totalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
