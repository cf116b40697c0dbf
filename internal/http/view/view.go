// Package view renders the catalog HTML pages. Templates are html/template so
// product fields are escaped for the context they appear in.
package view

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("catalog").
		Funcs(template.FuncMap{
			"listPrice": ListPrice,
			"editPrice": EditPrice,
		}).
		ParseFS(templateFS, "templates/*.html"),
)

// Link points back to another page from a message.
type Link struct {
	URL   string
	Label string
}

var (
	HomeLink     = Link{URL: "/", Label: "Back to Home"}
	ProductsLink = Link{URL: "/products", Label: "Back to Products"}
)

type message struct {
	Text      string
	BackURL   string
	BackLabel string
}

func Home() templ.Component {
	return page("home", nil)
}

func CreateProductForm() templ.Component {
	return page("create_product", nil)
}

// ProductList renders products in the given order.
func ProductList(products []model.Product) templ.Component {
	return page("product_list", products)
}

func EditProductForm(product model.Product) templ.Component {
	return page("edit_product", product)
}

// Message renders a short status fragment with a single link.
func Message(text string, back Link) templ.Component {
	return page("message", message{Text: text, BackURL: back.URL, BackLabel: back.Label})
}

// ListPrice formats a price with exactly two decimals.
func ListPrice(price decimal.Decimal) string {
	return price.StringFixed(2)
}

// EditPrice shows two decimals unless that would round the stored value.
func EditPrice(price decimal.Decimal) string {
	if price.Exponent() >= -2 || price.Equal(price.Round(2)) {
		return price.StringFixed(2)
	}
	return price.String()
}

func page(name string, data any) templ.Component {
	return templ.FromGoHTML(templates.Lookup(name), data)
}
