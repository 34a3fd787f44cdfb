package budget

import "testing"

func TestLedger_DeniesCallPastCeiling(t *testing.T) {
	l := NewLedger(100)

	for i := 0; i < 3; i++ {
		if !l.Reserve(30) {
			t.Fatalf("reservation %d denied, consumed=%d", i+1, l.Consumed())
		}
	}

	if l.Consumed() != 90 {
		t.Fatalf("expected consumed 90, got %d", l.Consumed())
	}

	if l.CanAfford(30) {
		t.Error("CanAfford(30) = true at 90/100, want false")
	}

	if l.Reserve(30) {
		t.Error("fourth reservation allowed, would reach 120 > 100")
	}

	if l.Consumed() != 90 {
		t.Errorf("denied reservation changed consumed to %d", l.Consumed())
	}

	if !l.Reserve(10) {
		t.Error("expected reservation of exactly the remaining 10 units to succeed")
	}

	if l.Reserve(1) {
		t.Error("expected no reservation once consumed >= max")
	}
}

func TestLedger_Settle(t *testing.T) {
	tests := []struct {
		name     string
		reserved int
		billed   int
		want     int
	}{
		{"billed as estimated", 30, 30, 30},
		{"billed less", 30, 10, 10},
		{"nothing billed refunds", 30, 0, 0},
		{"billed more", 30, 40, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger(100)
			if !l.Reserve(tt.reserved) {
				t.Fatal("reserve denied")
			}
			l.Settle(tt.reserved, tt.billed)
			if l.Consumed() != tt.want {
				t.Errorf("consumed = %d, want %d", l.Consumed(), tt.want)
			}
		})
	}
}

func TestLedger_ZeroBudget(t *testing.T) {
	l := NewLedger(0)
	if l.CanAfford(1) || l.Reserve(1) {
		t.Error("zero budget must deny every call")
	}
	if l.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", l.Remaining())
	}
}
