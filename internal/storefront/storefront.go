// Package storefront assembles what each page needs from a navigation state.
package storefront

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/obrakomarvelouss/gpower/internal/cart"
	"github.com/obrakomarvelouss/gpower/internal/category"
	"github.com/obrakomarvelouss/gpower/internal/contact"
	"github.com/obrakomarvelouss/gpower/internal/navigation"
	"github.com/obrakomarvelouss/gpower/internal/product"
)

// View is one rendered page. Sections that failed to load are left empty and
// named in Errors.
type View struct {
	State      navigation.State  `json:"state"`
	CartCount  int               `json:"cart_count"`
	Featured   []product.Product `json:"featured,omitempty"`
	Categories []category.Item   `json:"categories,omitempty"`
	Category   string            `json:"category,omitempty"`
	Products   []product.Product `json:"products,omitempty"`
	Product    *product.Product  `json:"product,omitempty"`
	Related    []product.Product `json:"related,omitempty"`
	NotFound   bool              `json:"not_found,omitempty"`
	Cart       *cart.Summary     `json:"cart,omitempty"`
	Contact    *contact.Info     `json:"contact,omitempty"`
	Errors     []string          `json:"errors,omitempty"`
}

type Composer struct {
	products *product.Service
	cart     *cart.Service
	log      logrus.FieldLogger
}

func NewComposer(products *product.Service, cart *cart.Service, log logrus.FieldLogger) *Composer {
	return &Composer{products: products, cart: cart, log: log}
}

// Compose runs the independent reads of a page concurrently. It never fails
// as a whole.
func (c *Composer) Compose(ctx context.Context, state navigation.State, sessionID, categoryTag string) View {
	v := View{State: state}
	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	failed := func(name string, err error) {
		c.log.WithError(err).WithFields(logrus.Fields{"page": state.Page, "section": name}).Warn("view section failed")
		mu.Lock()
		v.Errors = append(v.Errors, name)
		mu.Unlock()
	}
	// The group only fans out the reads. A failed section is recorded and
	// swallowed so the other sections still finish; Wait never sees an error.
	section := func(name string, read func() error) {
		g.Go(func() error {
			if err := read(); err != nil {
				failed(name, err)
			}
			return nil
		})
	}

	section("cart_count", func() (err error) {
		v.CartCount, err = c.cart.Count(ctx, sessionID)
		return err
	})

	switch state.Page {
	case navigation.Home:
		section("featured", func() (err error) {
			v.Featured, err = c.products.Featured(ctx)
			return err
		})

	case navigation.Explore:
		section("products", func() (err error) {
			v.Products, err = c.products.List(ctx)
			return err
		})

	case navigation.Products:
		if categoryTag == "" {
			categoryTag = category.All
		}
		v.Categories = category.Chips()
		v.Category = categoryTag
		section("products", func() (err error) {
			v.Products, err = c.products.ListByCategory(ctx, categoryTag)
			return err
		})

	case navigation.Product:
		section("product", func() error {
			p, err := c.products.BySlug(ctx, state.ProductSlug)
			if err != nil {
				return err
			}
			if p == nil {
				v.NotFound = true
				return nil
			}
			v.Product = p
			related, err := c.products.Related(ctx, *p)
			if err != nil {
				failed("related", err)
				return nil
			}
			v.Related = related
			return nil
		})

	case navigation.Cart:
		section("cart", func() error {
			summary, err := c.cart.Summary(ctx, sessionID)
			if err != nil {
				return err
			}
			v.Cart = &summary
			return nil
		})

	case navigation.Contact:
		info := contact.StoreInfo()
		v.Contact = &info
	}

	g.Wait()
	return v
}
