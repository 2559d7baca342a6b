package navigation

import "testing"

func TestNavigate(t *testing.T) {
	cases := []struct {
		name string
		page Page
		slug string
		want State
	}{
		{"home", Home, "", State{Page: Home, ResetScroll: true}},
		{"product keeps slug", Product, "sunmax-400w-panel", State{Page: Product, ProductSlug: "sunmax-400w-panel", ResetScroll: true}},
		{"slug dropped off product pages", Cart, "sunmax-400w-panel", State{Page: Cart, ResetScroll: true}},
		{"unknown page falls back home", Page("checkout"), "x", State{Page: Home, ResetScroll: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Initial().Navigate(tc.page, tc.slug); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestNavigate_DoesNotMutateReceiver(t *testing.T) {
	s := State{Page: Product, ProductSlug: "a"}
	_ = s.Navigate(Contact, "")
	if s.Page != Product || s.ProductSlug != "a" || s.ResetScroll {
		t.Fatalf("receiver changed: %+v", s)
	}
}

func TestParse(t *testing.T) {
	if got := Parse("", ""); got != Initial() {
		t.Fatalf("empty page should be the initial state, got %+v", got)
	}
	if got := Parse("explore", ""); got.Page != Explore || !got.ResetScroll {
		t.Fatalf("unexpected state %+v", got)
	}
}
