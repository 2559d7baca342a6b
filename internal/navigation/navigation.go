// Package navigation models which storefront page is showing. State is a
// plain value; transitions return a new State and never mutate the old one.
package navigation

type Page string

const (
	Home     Page = "home"
	Explore  Page = "explore"
	Products Page = "products"
	Product  Page = "product"
	Cart     Page = "cart"
	Contact  Page = "contact"
)

var pages = map[Page]bool{
	Home: true, Explore: true, Products: true, Product: true, Cart: true, Contact: true,
}

// Valid reports whether p is a known page.
func (p Page) Valid() bool {
	return pages[p]
}

// State is the current page, the product slug when Page is Product, and
// whether the viewport should jump to the top after the transition.
type State struct {
	Page        Page   `json:"page"`
	ProductSlug string `json:"product_slug,omitempty"`
	ResetScroll bool   `json:"reset_scroll"`
}

// Initial is the state of a fresh visit.
func Initial() State {
	return State{Page: Home}
}

// Navigate returns the state after moving to page. Unknown pages land on
// Home, and the slug only survives for Product.
func (s State) Navigate(page Page, slug string) State {
	if !page.Valid() {
		page = Home
	}
	next := State{Page: page, ResetScroll: true}
	if page == Product {
		next.ProductSlug = slug
	}
	return next
}

// Parse builds the state a request asks for, starting from Initial.
func Parse(page, slug string) State {
	if page == "" {
		return Initial()
	}
	return Initial().Navigate(Page(page), slug)
}
