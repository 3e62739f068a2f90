package service

import (
	"context"
	"testing"

	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newCartServiceForTest() (CartService, *mockProductRepository, *mockCartItemRepository) {
	productRepo := newMockProductRepository()
	cartRepo := newMockCartItemRepository(productRepo)
	return NewCartService(cartRepo, productRepo), productRepo, cartRepo
}

func TestAddItem_CreatesLineAndComputesTotals(t *testing.T) {
	svc, productRepo, _ := newCartServiceForTest()
	ctx := context.Background()
	userID := uuid.New()

	soap := productRepo.add("Soap", "3.50", 10)
	towel := productRepo.add("Towel", "12.00", 5)

	if _, err := svc.AddItem(ctx, userID, soap.ID, 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	cart, err := svc.AddItem(ctx, userID, towel.ID, 1)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if len(cart.Items) != 2 {
		t.Fatalf("Expected 2 cart lines, got %d", len(cart.Items))
	}
	if cart.ItemsCount != 3 {
		t.Errorf("Expected items count 3, got %d", cart.ItemsCount)
	}
	// 2 * 3.50 + 1 * 12.00 = 19.00
	if !cart.Total.Equal(decimal.RequireFromString("19.00")) {
		t.Errorf("Expected total 19.00, got %s", cart.Total)
	}
}

func TestAddItem_MergesQuantityForSameProduct(t *testing.T) {
	svc, productRepo, _ := newCartServiceForTest()
	ctx := context.Background()
	userID := uuid.New()

	soap := productRepo.add("Soap", "3.50", 10)

	if _, err := svc.AddItem(ctx, userID, soap.ID, 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	cart, err := svc.AddItem(ctx, userID, soap.ID, 3)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("Expected a single merged line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Errorf("Expected merged quantity 5, got %d", cart.Items[0].Quantity)
	}
}

func TestAddItem_MergedQuantityCannotExceedStock(t *testing.T) {
	svc, productRepo, _ := newCartServiceForTest()
	ctx := context.Background()
	userID := uuid.New()

	soap := productRepo.add("Soap", "3.50", 4)

	if _, err := svc.AddItem(ctx, userID, soap.ID, 3); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	_, err := svc.AddItem(ctx, userID, soap.ID, 2)
	stockErr, ok := AsInsufficientStock(err)
	if !ok {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 5 || stockErr.Available != 4 {
		t.Errorf("Expected cumulative requested=5 available=4, got requested=%d available=%d",
			stockErr.Requested, stockErr.Available)
	}

	// The existing line is unchanged
	cart, _ := svc.GetCart(ctx, userID)
	if cart.Items[0].Quantity != 3 {
		t.Errorf("Expected quantity to stay 3, got %d", cart.Items[0].Quantity)
	}
}

func TestAddItem_RejectsBadInput(t *testing.T) {
	svc, productRepo, _ := newCartServiceForTest()
	ctx := context.Background()
	userID := uuid.New()

	soap := productRepo.add("Soap", "3.50", 4)

	if _, err := svc.AddItem(ctx, userID, soap.ID, 0); err != ErrInvalidQuantity {
		t.Errorf("Expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := svc.AddItem(ctx, userID, uuid.New(), 1); err != repository.ErrProductNotFound {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateItem_ReplacesQuantityWithinStock(t *testing.T) {
	svc, productRepo, _ := newCartServiceForTest()
	ctx := context.Background()
	userID := uuid.New()

	soap := productRepo.add("Soap", "3.50", 6)
	cart, err := svc.AddItem(ctx, userID, soap.ID, 2)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateItem(ctx, userID, itemID, 6)
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if cart.Items[0].Quantity != 6 {
		t.Errorf("Expected quantity 6, got %d", cart.Items[0].Quantity)
	}

	if _, err := svc.UpdateItem(ctx, userID, itemID, 7); err == nil {
		t.Error("Expected stock error when quantity exceeds stock")
	}
	if _, err := svc.UpdateItem(ctx, userID, uuid.New(), 1); err != repository.ErrCartItemNotFound {
		t.Errorf("Expected ErrCartItemNotFound, got %v", err)
	}
}

func TestRemoveItemAndClearCart(t *testing.T) {
	svc, productRepo, _ := newCartServiceForTest()
	ctx := context.Background()
	userID := uuid.New()

	soap := productRepo.add("Soap", "3.50", 10)
	towel := productRepo.add("Towel", "12.00", 5)

	cart, err := svc.AddItem(ctx, userID, soap.ID, 1)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	soapItemID := cart.Items[0].ID
	if _, err := svc.AddItem(ctx, userID, towel.ID, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	cart, err = svc.RemoveItem(ctx, userID, soapItemID)
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Errorf("Expected 1 line after removal, got %d", len(cart.Items))
	}

	if _, err := svc.RemoveItem(ctx, userID, soapItemID); err != repository.ErrCartItemNotFound {
		t.Errorf("Expected ErrCartItemNotFound on double removal, got %v", err)
	}

	if err := svc.ClearCart(ctx, userID); err != nil {
		t.Fatalf("ClearCart failed: %v", err)
	}
	cart, _ = svc.GetCart(ctx, userID)
	if len(cart.Items) != 0 || !cart.Total.IsZero() {
		t.Errorf("Expected empty cart with zero total, got %d items, total %s", len(cart.Items), cart.Total)
	}
}

func TestGetCart_UsesCurrentCatalogPrices(t *testing.T) {
	svc, productRepo, _ := newCartServiceForTest()
	ctx := context.Background()
	userID := uuid.New()

	soap := productRepo.add("Soap", "3.50", 10)
	if _, err := svc.AddItem(ctx, userID, soap.ID, 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	// Price change is reflected on the next read, carts never snapshot
	productRepo.products[soap.ID].Price = decimal.RequireFromString("4.00")

	cart, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if !cart.Total.Equal(decimal.RequireFromString("8.00")) {
		t.Errorf("Expected total 8.00 at the new price, got %s", cart.Total)
	}
}
