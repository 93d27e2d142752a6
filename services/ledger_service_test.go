package services

import (
	"testing"

	"bakery-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		qty, min string
		want     models.StockStatus
	}{
		{"0", "5", models.StockStatusOut},
		{"-1", "5", models.StockStatusOut},
		{"0", "0", models.StockStatusOut},
		{"5", "5", models.StockStatusWarning},
		{"0.01", "5", models.StockStatusWarning},
		{"5.01", "5", models.StockStatusOK},
		{"100", "5", models.StockStatusOK},
	}

	for _, tc := range cases {
		stock := models.IngredientStock{
			Quantity:    decimal.RequireFromString(tc.qty),
			MinQuantity: decimal.RequireFromString(tc.min),
		}
		assert.Equal(t, tc.want, ClassifyStatus(stock), "qty=%s min=%s", tc.qty, tc.min)
	}
}

func TestCreateIngredient(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)

	ing, err := ledger.CreateIngredient("admin@bakery.test", IngredientInput{Name: "Flour", Unit: "kg", MinQuantity: dec("5")})
	require.NoError(t, err)
	require.NotNil(t, ing.Stock)
	assert.True(t, ing.Stock.Quantity.IsZero())
	assert.True(t, ing.Stock.MinQuantity.Equal(decimal.NewFromInt(5)))

	history, err := ledger.History(ing.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "admin@bakery.test", history[0].UpdatedBy)
	assert.True(t, history[0].NewQuantity.IsZero())
}

func TestCreateIngredientValidation(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)

	_, err := ledger.CreateIngredient("", IngredientInput{Name: "Flour", Unit: "kg", MinQuantity: dec("0")})
	assert.True(t, IsKind(err, KindValidation))

	_, err = ledger.CreateIngredient("", IngredientInput{Name: "Flour", Unit: "kg"})
	assert.True(t, IsKind(err, KindValidation))

	_, err = ledger.CreateIngredient("", IngredientInput{Name: "Flour", Unit: "kg", MinQuantity: dec("1")})
	require.NoError(t, err)

	// Название уникально без учета регистра
	_, err = ledger.CreateIngredient("", IngredientInput{Name: "FLOUR", Unit: "kg", MinQuantity: dec("1")})
	assert.True(t, IsKind(err, KindValidation))

	var count int64
	db.Model(&models.Ingredient{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestIngredientNameUniqueIgnoresCaseBeyondASCII(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)

	_, err := ledger.CreateIngredient("", IngredientInput{Name: "ĐƯỜNG", Unit: "kg", MinQuantity: dec("1")})
	require.NoError(t, err)
	_, err = ledger.CreateIngredient("", IngredientInput{Name: "МУКА", Unit: "kg", MinQuantity: dec("1")})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
	}{
		{"Вьетнамский в нижнем регистре", "đường"},
		{"Кириллица в нижнем регистре", "мука"},
		{"Смешанный регистр", "Đường"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.CreateIngredient("", IngredientInput{Name: tt.input, Unit: "kg", MinQuantity: dec("1")})
			assert.True(t, IsKind(err, KindValidation), "got %v", err)
		})
	}

	// Переименование в занятое название тоже запрещено
	salt, err := ledger.CreateIngredient("", IngredientInput{Name: "Muối", Unit: "kg", MinQuantity: dec("1")})
	require.NoError(t, err)
	_, err = ledger.UpdateIngredient("", salt.ID, UpdateIngredientInput{Name: "đường", Unit: "kg"})
	assert.True(t, IsKind(err, KindValidation))

	// Смена регистра собственного названия разрешена
	_, err = ledger.UpdateIngredient("", salt.ID, UpdateIngredientInput{Name: "MUỐI", Unit: "kg"})
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Ingredient{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestImportStockAddsQuantityAndHistory(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)
	ing := createIngredient(t, ledger, "Sugar", "kg", "5", "12.5")

	err := ledger.ImportStock("admin", []StockItem{{IngredientID: ing.ID, Quantity: dec("3")}})
	require.NoError(t, err)

	reloaded, err := ledger.GetIngredient(ing.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Stock.Quantity.Equal(decimal.RequireFromString("15.5")), "got %s", reloaded.Stock.Quantity)

	history, err := ledger.History(ing.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	latest := history[0]
	assert.True(t, latest.OldQuantity.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, latest.NewQuantity.Equal(decimal.RequireFromString("15.5")))
	assert.Equal(t, "Import: +3 kg", latest.Note)
}

func TestImportStockSkipsNonPositive(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)
	ing := createIngredient(t, ledger, "Salt", "kg", "1", "2")
	before := historyCount(t, db, ing.ID)

	err := ledger.ImportStock("admin", []StockItem{
		{IngredientID: ing.ID, Quantity: dec("0")},
		{IngredientID: ing.ID, Quantity: dec("-4")},
		{IngredientID: 9999, Quantity: nil},
	})
	require.NoError(t, err)

	reloaded, _ := ledger.GetIngredient(ing.ID)
	assert.True(t, reloaded.Stock.Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, before, historyCount(t, db, ing.ID))
}

func TestImportStockUnknownIngredientRollsBackBatch(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)
	ing := createIngredient(t, ledger, "Butter", "kg", "1", "2")
	before := historyCount(t, db, ing.ID)

	err := ledger.ImportStock("admin", []StockItem{
		{IngredientID: ing.ID, Quantity: dec("5")},
		{IngredientID: 4242, Quantity: dec("1")},
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
	assert.Contains(t, err.Error(), "4242")

	reloaded, _ := ledger.GetIngredient(ing.ID)
	assert.True(t, reloaded.Stock.Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, before, historyCount(t, db, ing.ID))
}

func TestExportStockInsufficientLeavesStockUnchanged(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)
	ing := createIngredient(t, ledger, "Milk", "l", "1", "2")
	before := historyCount(t, db, ing.ID)

	err := ledger.ExportStock("admin", []StockItem{{IngredientID: ing.ID, Quantity: dec("3")}})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInsufficientStock))
	assert.Contains(t, err.Error(), "Milk")
	assert.Contains(t, err.Error(), "2")
	assert.Contains(t, err.Error(), "3")

	reloaded, _ := ledger.GetIngredient(ing.ID)
	assert.True(t, reloaded.Stock.Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, before, historyCount(t, db, ing.ID))
}

func TestExportStockFailureRollsBackEarlierItems(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)
	eggs := createIngredient(t, ledger, "Eggs", "pcs", "10", "30")
	cream := createIngredient(t, ledger, "Cream", "l", "1", "1")

	err := ledger.ExportStock("admin", []StockItem{
		{IngredientID: eggs.ID, Quantity: dec("12")},
		{IngredientID: cream.ID, Quantity: dec("5")},
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInsufficientStock))

	reloaded, _ := ledger.GetIngredient(eggs.ID)
	assert.True(t, reloaded.Stock.Quantity.Equal(decimal.NewFromInt(30)))
}

func TestExportStockSubtractsWithNote(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)
	ing := createIngredient(t, ledger, "Yeast", "g", "100", "500")

	require.NoError(t, ledger.ExportStock("admin", []StockItem{
		{IngredientID: ing.ID, Quantity: dec("200"), Note: "Morning batch"},
	}))
	require.NoError(t, ledger.ExportStock("admin", []StockItem{
		{IngredientID: ing.ID, Quantity: dec("50")},
	}))

	reloaded, _ := ledger.GetIngredient(ing.ID)
	assert.True(t, reloaded.Stock.Quantity.Equal(decimal.NewFromInt(250)))

	history, _ := ledger.History(ing.ID)
	require.GreaterOrEqual(t, len(history), 2)
	notes := []string{history[0].Note, history[1].Note}
	assert.Contains(t, notes, "Morning batch")
	assert.Contains(t, notes, "Manual export")
}

func TestExportStockRejectsNonPositive(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)
	ing := createIngredient(t, ledger, "Cocoa", "kg", "1", "5")

	err := ledger.ExportStock("admin", []StockItem{{IngredientID: ing.ID, Quantity: dec("0")}})
	assert.True(t, IsKind(err, KindValidation))
}

func TestUpdateIngredientAlwaysWritesHistory(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)
	ing := createIngredient(t, ledger, "Vanilla", "g", "5", "20")
	before := historyCount(t, db, ing.ID)

	updated, err := ledger.UpdateIngredient("admin", ing.ID, UpdateIngredientInput{Name: "Vanilla", Unit: "g"})
	require.NoError(t, err)
	assert.True(t, updated.Stock.Quantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, updated.Stock.MinQuantity.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, before+1, historyCount(t, db, ing.ID))

	updated, err = ledger.UpdateIngredient("admin", ing.ID, UpdateIngredientInput{
		Name: "Vanilla extract", Unit: "ml", Quantity: dec("7"), MinQuantity: dec("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Vanilla extract", updated.Name)
	assert.Equal(t, models.StockStatusWarning, ClassifyStatus(*updated.Stock))

	history, _ := ledger.History(ing.ID)
	assert.True(t, history[0].OldQuantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, history[0].NewQuantity.Equal(decimal.NewFromInt(7)))
	assert.True(t, history[0].NewMinQuantity.Equal(decimal.NewFromInt(10)))
}

func TestUpdateIngredientErrors(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)
	ing := createIngredient(t, ledger, "Honey", "kg", "1", "0")
	createIngredient(t, ledger, "Jam", "kg", "1", "0")

	_, err := ledger.UpdateIngredient("admin", 777, UpdateIngredientInput{Name: "X", Unit: "kg"})
	assert.True(t, IsKind(err, KindNotFound))

	_, err = ledger.UpdateIngredient("admin", ing.ID, UpdateIngredientInput{Name: "Honey", Unit: "kg", MinQuantity: dec("-1")})
	assert.True(t, IsKind(err, KindValidation))

	_, err = ledger.UpdateIngredient("admin", ing.ID, UpdateIngredientInput{Name: "Honey", Unit: "kg", Quantity: dec("-1")})
	assert.True(t, IsKind(err, KindValidation))

	_, err = ledger.UpdateIngredient("admin", ing.ID, UpdateIngredientInput{Name: "jam", Unit: "kg"})
	assert.True(t, IsKind(err, KindValidation))

	// Смена регистра своего же названия разрешена
	_, err = ledger.UpdateIngredient("admin", ing.ID, UpdateIngredientInput{Name: "HONEY", Unit: "kg"})
	assert.NoError(t, err)
}

func TestDeleteIngredient(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)
	ing := createIngredient(t, ledger, "Raisins", "kg", "1", "3")
	product := createProduct(t, db, "Raisin bun", "2.50")
	require.NoError(t, db.Create(&models.Recipe{ProductID: product.ID, IngredientID: ing.ID, Amount: decimal.NewFromFloat(0.05)}).Error)

	require.NoError(t, ledger.DeleteIngredient(ing.ID))

	_, err := ledger.GetIngredient(ing.ID)
	assert.True(t, IsKind(err, KindNotFound))
	assert.Equal(t, int64(0), historyCount(t, db, ing.ID))

	var recipes int64
	db.Model(&models.Recipe{}).Where("ingredient_id = ?", ing.ID).Count(&recipes)
	assert.Equal(t, int64(0), recipes)

	err = ledger.DeleteIngredient(ing.ID)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestLowStock(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, nil)
	createIngredient(t, ledger, "Flour", "kg", "5", "50")
	createIngredient(t, ledger, "Sugar", "kg", "5", "5")
	createIngredient(t, ledger, "Almonds", "kg", "1", "0")

	low, err := ledger.LowStock()
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Almonds", low[0].Name)
	assert.Equal(t, "Sugar", low[1].Name)
}

func TestLedgerPublishesAfterCommit(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	ledger := NewLedgerService(db, notifier)

	ing, err := ledger.CreateIngredient("admin", IngredientInput{Name: "Oil", Unit: "l", MinQuantity: dec("2")})
	require.NoError(t, err)
	require.NoError(t, ledger.ImportStock("admin", []StockItem{{IngredientID: ing.ID, Quantity: dec("10")}}))

	err = ledger.ExportStock("admin", []StockItem{{IngredientID: ing.ID, Quantity: dec("100")}})
	require.Error(t, err)

	require.Len(t, notifier.stock, 2)
	assert.Equal(t, models.StockStatusOut, notifier.stock[0].Status)
	assert.Equal(t, models.StockStatusOK, notifier.stock[1].Status)
	assert.True(t, notifier.stock[1].Quantity.Equal(decimal.NewFromInt(10)))
}
