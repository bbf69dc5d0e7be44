package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinanceTracker/internal/client"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/sebuszqo/FinanceTracker/internal/log"
)

const (
	daysInPeriod     = 90
	transactionCount = 100
	maxAmount        = 10000
)

var (
	accountNames  = []string{"Savings Account", "Checking Account", "Credit Card", "Business Account"}
	categoryNames = []string{"Groceries", "Utilities", "Entertainment", "Transport", "Healthcare", "Miscellaneous"}
	payees        = []string{"Amazon", "Flipkart", "Uber", "Zomato", "Big Bazaar", "MedLife"}
	notes         = []string{"Shopping", "Ride", "Food", "Grocery", "Medical", "Bill Payment"}
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// login signs in as the demo user, registering it first when it does not exist yet.
func login(ctx context.Context, c *client.Client, email, password string) error {
	_, err := c.Login(ctx, email, password)
	var apiErr *client.APIError
	if err == nil || !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}
	if _, err := c.Register(ctx, email, "", password); err != nil {
		return err
	}
	_, err = c.Login(ctx, email, password)
	return err
}

// randomTransactions builds count transactions spread over the last daysInPeriod
// days, about half of them expenses.
func randomTransactions(rng *rand.Rand, today domain.Date, accounts []client.Account, categories []client.Category, count int) []client.TransactionInput {
	inputs := make([]client.TransactionInput, count)
	for i := range inputs {
		amount := decimal.NewFromInt(rng.Int63n(maxAmount) + 1)
		if rng.Float64() < 0.5 {
			amount = amount.Neg()
		}
		note := notes[rng.Intn(len(notes))]
		categoryID := categories[rng.Intn(len(categories))].ID
		inputs[i] = client.TransactionInput{
			Amount:     amount,
			Payee:      payees[rng.Intn(len(payees))],
			Notes:      &note,
			Date:       today.AddDays(-rng.Intn(daysInPeriod)),
			AccountID:  accounts[rng.Intn(len(accounts))].ID,
			CategoryID: &categoryID,
		}
	}
	return inputs
}

func seed(ctx context.Context, c *client.Client, rng *rand.Rand, logger *log.Logger) error {
	accounts := make([]client.Account, 0, len(accountNames))
	for _, name := range accountNames {
		account, err := c.CreateAccount(ctx, domain.NamedInput{Name: name})
		if err != nil {
			return err
		}
		accounts = append(accounts, *account)
	}

	categories := make([]client.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		category, err := c.CreateCategory(ctx, domain.NamedInput{Name: name})
		if err != nil {
			return err
		}
		categories = append(categories, *category)
	}

	today := domain.DateOf(time.Now())
	created, err := c.BulkCreateTransactions(ctx, randomTransactions(rng, today, accounts, categories, transactionCount))
	if err != nil {
		return err
	}

	logger.Info("Database seeded successfully",
		"accounts", len(accounts), "categories", len(categories), "transactions", len(created))
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.FromContext(context.Background()).Info("No .env file loaded, continuing with system environment variables")
	}

	apiURL := flag.String("api", getEnv("SEED_API_URL", "http://localhost:8080"), "FinanceTracker base URL")
	email := flag.String("email", getEnv("SEED_EMAIL", "demo@example.com"), "demo user email")
	password := flag.String("password", getEnv("SEED_PASSWORD", "demo-password"), "demo user password")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	logger := log.New(log.Config{Component: "seed", Output: os.Stdout})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c := client.New(*apiURL)
	if err := login(ctx, c, *email, *password); err != nil {
		logger.Error("Could not sign in as demo user", "email", *email, "error", err)
		os.Exit(1)
	}

	if err := seed(ctx, c, rand.New(rand.NewSource(*seedValue)), logger); err != nil {
		logger.Error("Error during seeding the database", "error", err)
		os.Exit(1)
	}
}
