package main

import (
	"fmt"

	"bakery-backend/config"
	"bakery-backend/models"
	"bakery-backend/services"

	"github.com/shopspring/decimal"
)

const seedActor = "seed"

type demoIngredient struct {
	name, unit string
	min, qty   string
}

type demoProduct struct {
	name, category, price string
	recipe                map[string]string
	showcase              int
}

var demoIngredients = []demoIngredient{
	{"Wheat flour", "kg", "10", "40"},
	{"Rye flour", "kg", "5", "12"},
	{"Butter", "kg", "3", "4"},
	{"Sugar", "kg", "5", "2"},
	{"Eggs", "pcs", "30", "120"},
	{"Yeast", "kg", "0.5", "0"},
}

var demoProducts = []demoProduct{
	{"White bread", "bread", "2.20", map[string]string{"Wheat flour": "0.5", "Yeast": "0.01"}, 20},
	{"Rye bread", "bread", "2.80", map[string]string{"Rye flour": "0.4", "Wheat flour": "0.1", "Yeast": "0.01"}, 12},
	{"Croissant", "pastry", "1.90", map[string]string{"Wheat flour": "0.08", "Butter": "0.04", "Eggs": "1"}, 30},
	{"Sponge cake", "cake", "14.50", map[string]string{"Wheat flour": "0.3", "Sugar": "0.3", "Eggs": "6"}, 4},
}

// Заполняет пустую базу демонстрационными ингредиентами, изделиями и витриной на сегодня
func main() {
	cfg := config.Load()
	log := config.GetLogger()

	db, err := models.InitDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := models.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	var count int64
	db.Model(&models.Ingredient{}).Count(&count)
	if count > 0 {
		log.WithField("ingredients", count).Info("database is not empty, skipping demo seed")
		return
	}

	ledger := services.NewLedgerService(db, nil)
	products := services.NewProductService(db)
	daily := services.NewDailyStockService(db, nil, cfg.Location)

	ids := make(map[string]uint, len(demoIngredients))
	var stock []services.StockItem
	for _, d := range demoIngredients {
		minQty := decimal.RequireFromString(d.min)
		ing, err := ledger.CreateIngredient(seedActor, services.IngredientInput{Name: d.name, Unit: d.unit, MinQuantity: &minQty})
		if err != nil {
			log.WithError(err).Fatalf("create ingredient %s", d.name)
		}
		ids[d.name] = ing.ID
		qty := decimal.RequireFromString(d.qty)
		stock = append(stock, services.StockItem{IngredientID: ing.ID, Quantity: &qty, Note: "Demo delivery"})
	}
	if err := ledger.ImportStock(seedActor, stock); err != nil {
		log.WithError(err).Fatal("import demo stock")
	}

	var showcase []services.DailyStockItem
	for _, d := range demoProducts {
		price := decimal.RequireFromString(d.price)
		input := services.ProductInput{Name: d.name, Category: d.category, Price: &price}
		for name, amount := range d.recipe {
			a := decimal.RequireFromString(amount)
			input.Recipes = append(input.Recipes, services.RecipeLine{IngredientID: ids[name], Amount: &a})
		}
		product, err := products.CreateProduct(input)
		if err != nil {
			log.WithError(err).Fatalf("create product %s", d.name)
		}
		qty := d.showcase
		showcase = append(showcase, services.DailyStockItem{ProductID: product.ID, Quantity: &qty})
	}
	if _, err := daily.ApplyUpdate(daily.Today(), showcase); err != nil {
		log.WithError(err).Fatal("fill today's showcase")
	}

	fmt.Printf("Demo data added: %d ingredients, %d products\n", len(demoIngredients), len(demoProducts))
}
