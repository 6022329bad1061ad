package handlers

import (
	"regexp"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateOrderCodeShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z][0-9]{2}[A-Z]{3}$`)
	for i := 0; i < 100; i++ {
		code, err := generateOrderCode()
		if err != nil {
			t.Fatalf("generateOrderCode returned error: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("unexpected order code shape: %q", code)
		}
	}
}

func TestBuildOrderItemsSnapshotsEveryItem(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	items := []createOrderItemRequest{
		{ProductID: first.Hex(), Quantity: 2, Price: 12.5, Size: "250g", Name: "House Blend", Grind: "whole bean"},
		{ProductID: second.Hex(), Quantity: 1, Price: 18, Size: "500g", Name: "Single Origin", Grind: "espresso", Discount: 10},
	}
	thumbnails := map[primitive.ObjectID]string{
		first: "/img/house-blend.jpg",
	}

	snapshots, err := buildOrderItems(items, thumbnails)
	if err != nil {
		t.Fatalf("buildOrderItems returned error: %v", err)
	}
	if len(snapshots) != len(items) {
		t.Fatalf("expected %d snapshots, got %d", len(items), len(snapshots))
	}

	if snapshots[0].ProductID != first || snapshots[0].Thumbnail != "/img/house-blend.jpg" {
		t.Fatalf("first snapshot missing denormalized thumbnail: %+v", snapshots[0])
	}
	if snapshots[0].Quantity != 2 || snapshots[0].Price != 12.5 || snapshots[0].Name != "House Blend" {
		t.Fatalf("first snapshot did not copy request fields: %+v", snapshots[0])
	}

	if snapshots[1].Thumbnail != "" {
		t.Fatalf("expected empty thumbnail for product without one, got %q", snapshots[1].Thumbnail)
	}
	if snapshots[1].Discount != 10 {
		t.Fatalf("expected discount copied, got %v", snapshots[1].Discount)
	}
}

func TestBuildOrderItemsRejectsBadProductID(t *testing.T) {
	items := []createOrderItemRequest{
		{ProductID: "not-an-object-id", Quantity: 1, Price: 10, Size: "250g", Name: "X", Grind: "filter"},
	}
	if _, err := buildOrderItems(items, nil); err == nil {
		t.Fatal("expected error for malformed product id")
	}
}
