package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

func resourcePath(resource domain.Resource, id string) string {
	path := "/api/protected/" + resource.String()
	if id != "" {
		path += "/" + url.PathEscape(id)
	}
	return path
}

func listNamed[T any](ctx context.Context, c *Client, resource domain.Resource) ([]T, error) {
	var items []T
	if err := c.query(ctx, resource, resourcePath(resource, ""), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func getNamed[T any](ctx context.Context, c *Client, resource domain.Resource, id string) (*T, error) {
	var item T
	if err := c.query(ctx, resource, resourcePath(resource, id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func writeNamed[T any](ctx context.Context, c *Client, resource domain.Resource, method, id string, input domain.NamedInput) (*T, error) {
	var env struct {
		Data T `json:"data"`
	}
	if err := c.mutate(ctx, resource, method, resourcePath(resource, id), input, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	return listNamed[Account](ctx, c, domain.ResourceAccounts)
}

func (c *Client) GetAccount(ctx context.Context, id string) (*Account, error) {
	return getNamed[Account](ctx, c, domain.ResourceAccounts, id)
}

func (c *Client) CreateAccount(ctx context.Context, input domain.NamedInput) (*Account, error) {
	return writeNamed[Account](ctx, c, domain.ResourceAccounts, http.MethodPost, "", input)
}

func (c *Client) UpdateAccount(ctx context.Context, id, name string) (*Account, error) {
	return writeNamed[Account](ctx, c, domain.ResourceAccounts, http.MethodPatch, id, domain.NamedInput{Name: name})
}

func (c *Client) DeleteAccount(ctx context.Context, id string) ([]string, error) {
	return c.deleteIDs(ctx, domain.ResourceAccounts, http.MethodDelete, resourcePath(domain.ResourceAccounts, id), nil)
}

func (c *Client) BulkDeleteAccounts(ctx context.Context, ids []string) ([]string, error) {
	return c.bulkDelete(ctx, domain.ResourceAccounts, ids)
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	return listNamed[Category](ctx, c, domain.ResourceCategories)
}

func (c *Client) GetCategory(ctx context.Context, id string) (*Category, error) {
	return getNamed[Category](ctx, c, domain.ResourceCategories, id)
}

func (c *Client) CreateCategory(ctx context.Context, input domain.NamedInput) (*Category, error) {
	return writeNamed[Category](ctx, c, domain.ResourceCategories, http.MethodPost, "", input)
}

func (c *Client) UpdateCategory(ctx context.Context, id, name string) (*Category, error) {
	return writeNamed[Category](ctx, c, domain.ResourceCategories, http.MethodPatch, id, domain.NamedInput{Name: name})
}

func (c *Client) DeleteCategory(ctx context.Context, id string) ([]string, error) {
	return c.deleteIDs(ctx, domain.ResourceCategories, http.MethodDelete, resourcePath(domain.ResourceCategories, id), nil)
}

func (c *Client) BulkDeleteCategories(ctx context.Context, ids []string) ([]string, error) {
	return c.bulkDelete(ctx, domain.ResourceCategories, ids)
}

func (c *Client) bulkDelete(ctx context.Context, resource domain.Resource, ids []string) ([]string, error) {
	body := map[string][]string{"ids": ids}
	return c.deleteIDs(ctx, resource, http.MethodPost, resourcePath(resource, "")+"/bulk-delete", body)
}

func rangeQuery(from, to domain.Date, accountID string) string {
	values := url.Values{}
	if !from.IsZero() {
		values.Set("from", from.String())
	}
	if !to.IsZero() {
		values.Set("to", to.String())
	}
	if accountID != "" {
		values.Set("account_id", accountID)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func (c *Client) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	path := resourcePath(domain.ResourceTransactions, "") + rangeQuery(filter.From, filter.To, filter.AccountID)
	var views []domain.TransactionView
	if err := c.query(ctx, domain.ResourceTransactions, path, &views); err != nil {
		return nil, err
	}
	transactions := make([]Transaction, len(views))
	for i, v := range views {
		transactions[i] = fromWireView(v)
	}
	return transactions, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	var t domain.Transaction
	if err := c.query(ctx, domain.ResourceTransactions, resourcePath(domain.ResourceTransactions, id), &t); err != nil {
		return nil, err
	}
	transaction := fromWireTransaction(t)
	return &transaction, nil
}

func (c *Client) writeTransaction(ctx context.Context, method, id string, input TransactionInput) (*Transaction, error) {
	var env struct {
		Data domain.Transaction `json:"data"`
	}
	if err := c.mutate(ctx, domain.ResourceTransactions, method, resourcePath(domain.ResourceTransactions, id), input.toWire(), &env); err != nil {
		return nil, err
	}
	transaction := fromWireTransaction(env.Data)
	return &transaction, nil
}

func (c *Client) CreateTransaction(ctx context.Context, input TransactionInput) (*Transaction, error) {
	return c.writeTransaction(ctx, http.MethodPost, "", input)
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, input TransactionInput) (*Transaction, error) {
	return c.writeTransaction(ctx, http.MethodPatch, id, input)
}

func (c *Client) BulkCreateTransactions(ctx context.Context, inputs []TransactionInput) ([]Transaction, error) {
	wire := make([]domain.TransactionInput, len(inputs))
	for i, in := range inputs {
		wire[i] = in.toWire()
	}
	var env struct {
		Data []domain.Transaction `json:"data"`
	}
	path := resourcePath(domain.ResourceTransactions, "") + "/bulk-create"
	if err := c.mutate(ctx, domain.ResourceTransactions, http.MethodPost, path, wire, &env); err != nil {
		return nil, err
	}
	created := make([]Transaction, len(env.Data))
	for i, t := range env.Data {
		created[i] = fromWireTransaction(t)
	}
	return created, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) ([]string, error) {
	return c.deleteIDs(ctx, domain.ResourceTransactions, http.MethodDelete, resourcePath(domain.ResourceTransactions, id), nil)
}

func (c *Client) BulkDeleteTransactions(ctx context.Context, ids []string) ([]string, error) {
	return c.bulkDelete(ctx, domain.ResourceTransactions, ids)
}

func (c *Client) GetSummary(ctx context.Context, filter TransactionFilter) (*Summary, error) {
	path := "/api/protected/summary" + rangeQuery(filter.From, filter.To, filter.AccountID)
	var s domain.Summary
	if err := c.query(ctx, domain.ResourceSummary, path, &s); err != nil {
		return nil, err
	}
	summary := fromWireSummary(s)
	return &summary, nil
}
