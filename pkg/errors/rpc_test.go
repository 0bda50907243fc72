package errors

import "testing"

func TestCategoryCodes(t *testing.T) {
	cases := []struct {
		category Category
		code     int
	}{
		{CategoryParsing, -32700},
		{CategoryInvalidMessage, -32600},
		{CategoryInvalidMethod, -32601},
		{CategoryInvalidParams, -32602},
		{CategoryOther, -32603},
	}

	for _, tc := range cases {
		if got := tc.category.Code(); got != tc.code {
			t.Errorf("%s: expected code %d, got %d", tc.category, tc.code, got)
		}
		if back := CategoryOf(tc.category.Rpc()); back != tc.category {
			t.Errorf("%s: round trip gave %s", tc.category, back)
		}
	}
}

func TestCategoryOfUnreserved(t *testing.T) {
	if got := CategoryOf(&RpcError{Code: -32000, Message: "app error"}); got != CategoryOther {
		t.Errorf("expected other, got %s", got)
	}
	if got := CategoryOf(nil); got != CategoryOther {
		t.Errorf("expected other for nil, got %s", got)
	}
}

func TestWithMessagefCopies(t *testing.T) {
	derived := ErrInvalidParams.WithMessagef("missing field %q", "name")

	if derived == ErrInvalidParams {
		t.Fatal("expected a copy, got the shared var")
	}
	if ErrInvalidParams.Message != "Invalid params" {
		t.Fatalf("shared var was mutated: %s", ErrInvalidParams.Message)
	}
	if derived.Code != ErrInvalidParams.Code {
		t.Fatalf("code must be preserved, got %d", derived.Code)
	}
	if derived.Message != `missing field "name"` {
		t.Fatalf("unexpected message: %s", derived.Message)
	}
}

func TestWithDataCopies(t *testing.T) {
	derived := ErrInternal.WithData(map[string]string{"hint": "check logs"})

	if ErrInternal.Data != nil {
		t.Fatal("shared var was mutated")
	}
	if derived.Data == nil {
		t.Fatal("expected data on the copy")
	}
}
