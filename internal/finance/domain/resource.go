package domain

// Resource names the closed set of cached, invalidated API resources.
type Resource string

const (
	ResourceAccounts     Resource = "accounts"
	ResourceCategories   Resource = "categories"
	ResourceTransactions Resource = "transactions"
	ResourceSummary      Resource = "summary"
)

// Invalidates lists the resource itself followed by everything derived from it.
func (r Resource) Invalidates() []Resource {
	switch r {
	case ResourceAccounts, ResourceCategories:
		return []Resource{r, ResourceTransactions, ResourceSummary}
	case ResourceTransactions:
		return []Resource{r, ResourceSummary}
	default:
		return []Resource{r}
	}
}

func (r Resource) String() string {
	return string(r)
}
