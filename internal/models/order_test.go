package models

import "testing"

func TestValidOrderStatus(t *testing.T) {
	for _, status := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		if !ValidOrderStatus(status) {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	for _, status := range []string{"", "PENDING", "refunded"} {
		if ValidOrderStatus(status) {
			t.Fatalf("expected %q to be invalid", status)
		}
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, method := range []string{"credit card", "paypal", "cod"} {
		if !ValidPaymentMethod(method) {
			t.Fatalf("expected %q to be valid", method)
		}
	}
	if ValidPaymentMethod("bitcoin") {
		t.Fatal("expected unknown payment method to be invalid")
	}
}
