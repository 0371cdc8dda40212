package api

import (
	"context"
	"net/http"
	"net/url"

	"unimart/internal/identity"
)

// TransactionAPI records completed sales.
type TransactionAPI struct {
	c *Client
}

type Transaction struct {
	ID        identity.ID `json:"transactionId"`
	ProductID identity.ID `json:"productId"`
	BuyerID   identity.ID `json:"buyerId"`
	Amount    float64     `json:"amount"`
}

// Create records a sale. The backend takes the IDs as query parameters with
// no body, an oddity kept for compatibility.
func (t *TransactionAPI) Create(ctx context.Context, productID, buyerID identity.ID) error {
	q := url.Values{}
	q.Set("productId", productID.String())
	q.Set("buyerId", buyerID.String())
	endpoint := t.c.cfg.MarketBaseURL + "/transaction/create?" + q.Encode()
	return t.c.doJSON(ctx, http.MethodPost, endpoint, nil, nil)
}

// List fetches the transaction history.
func (t *TransactionAPI) List(ctx context.Context) ([]Transaction, error) {
	var transactions []Transaction
	if err := t.c.doJSON(ctx, http.MethodGet, t.c.cfg.MarketBaseURL+"/transaction/getAll", nil, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}
