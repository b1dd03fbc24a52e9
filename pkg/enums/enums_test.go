package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("delivered")
	if err != nil || status != OrderStatusDelivered {
		t.Fatalf("expected delivered, got %q (%v)", status, err)
	}
	if _, err := ParseOrderStatus("lost"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
	if OrderStatus("lost").IsValid() {
		t.Fatal("unknown status should not be valid")
	}
}

func TestQueryNamesCatalog(t *testing.T) {
	names := QueryNames()
	if len(names) != 9 {
		t.Fatalf("expected 9 queries, got %d", len(names))
	}
	seen := map[QueryName]bool{}
	for _, name := range names {
		if seen[name] {
			t.Fatalf("duplicate query name %s", name)
		}
		seen[name] = true
		parsed, err := ParseQueryName(name.String())
		if err != nil || parsed != name {
			t.Fatalf("round trip failed for %s", name)
		}
	}

	names[0] = "mutated"
	if QueryNames()[0] != QueryDeliveryDateDifference {
		t.Fatal("internal catalog leaked")
	}
}
