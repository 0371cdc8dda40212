package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"unimart/internal/identity"
)

// ProductAPI covers the listing lifecycle: create, browse, moderate, buy.
type ProductAPI struct {
	c *Client
}

type Product struct {
	ID          identity.ID `json:"productId"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Category    string      `json:"category"`
	ImageURL    string      `json:"imageUrl"`
	SellerID    identity.ID `json:"sellerId"`
	Sold        bool        `json:"sold"`
}

// NewProduct is the create form. The image travels as a multipart file part
// because the backend stores listing photos out of band.
type NewProduct struct {
	Name        string  `validate:"required"`
	Description string  `validate:"required"`
	Price       float64 `validate:"required,gt=0"`
	Category    string  `validate:"required"`

	Image         io.Reader
	ImageFilename string
}

// Create posts a new listing as multipart form data.
func (p *ProductAPI) Create(ctx context.Context, product NewProduct) error {
	if err := p.c.validateRequest(product); err != nil {
		return err
	}
	fields := map[string]string{
		"name":        product.Name,
		"description": product.Description,
		"price":       strconv.FormatFloat(product.Price, 'f', 2, 64),
		"category":    product.Category,
	}
	return p.c.doMultipart(ctx, http.MethodPost, p.c.cfg.MarketBaseURL+"/product/create",
		fields, "image", product.ImageFilename, product.Image, nil)
}

// List fetches every available listing for the buy page.
func (p *ProductAPI) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := p.c.doJSON(ctx, http.MethodGet, p.c.cfg.MarketBaseURL+"/product/getAllProducts", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get fetches a single listing.
func (p *ProductAPI) Get(ctx context.Context, id identity.ID) (*Product, error) {
	var product Product
	url := fmt.Sprintf("%s/product/read/%s", p.c.cfg.MarketBaseURL, id)
	if err := p.c.doJSON(ctx, http.MethodGet, url, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes a listing; a moderation action for admins.
func (p *ProductAPI) Delete(ctx context.Context, id identity.ID) error {
	url := fmt.Sprintf("%s/product/delete/%s", p.c.cfg.MarketBaseURL, id)
	return p.c.doJSON(ctx, http.MethodDelete, url, nil, nil)
}

// Checkout starts the payment flow for a listing. The backend answers with a
// redirect target owned by the payment gateway.
func (p *ProductAPI) Checkout(ctx context.Context, id identity.ID) (string, error) {
	var out struct {
		RedirectURL string `json:"redirectUrl"`
	}
	url := fmt.Sprintf("%s/product/checkout/%s", p.c.cfg.MarketBaseURL, id)
	if err := p.c.doJSON(ctx, http.MethodPost, url, nil, &out); err != nil {
		return "", err
	}
	return out.RedirectURL, nil
}
