//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "shop-api"
	ConsumerName = "shop-portal"

	StateCatalogBaseline = "catalog baseline"
	StateProductExists   = "product with id 101 exists"
	StateProductMissing  = "no product with id 404"
	StateSessionActive   = "product in stock and customer session active"
	StateStockDepleted   = "product 101 almost out of stock"
)

const (
	ExistingProductID int64 = 101
	MissingProductID  int64 = 404
	SeededCategoryID  int64 = 11

	CustomerUsername = "pact-user"
	CustomerPassword = "pact-pass"
	SessionToken     = "pact-session-token"
)

const (
	exampleProductName  = "Pact Mechanical Keyboard"
	exampleProductPrice = "19.99"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the shop portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleProductPayload provides stable test data for pact interactions.
func ExampleProductPayload() map[string]any {
	return map[string]any{
		"id":         ExistingProductID,
		"name":       exampleProductName,
		"price":      exampleProductPrice,
		"quantity":   5,
		"isActive":   true,
		"categoryId": SeededCategoryID,
	}
}

// ExampleOrderRequest provides the stable order placement payload.
func ExampleOrderRequest() map[string]any {
	return map[string]any{
		"productId": ExistingProductID,
		"quantity":  2,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
