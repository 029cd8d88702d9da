package mock

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/storefront/internal/models"
	"github.com/isdelr/storefront/internal/session"
	"github.com/shopspring/decimal"
)

func newStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.Open(session.NewMemoryStorage())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestGetProductsPagination(t *testing.T) {
	svc := NewProductService(WithoutLatency())
	ctx := context.Background()

	for limit := 1; limit <= 13; limit++ {
		for page := 1; page <= 4; page++ {
			res, err := svc.GetProducts(ctx, page, limit)
			if err != nil {
				t.Fatalf("GetProducts(%d, %d) error = %v", page, limit, err)
			}
			if len(res.Items) > limit {
				t.Errorf("page %d limit %d: %d items", page, limit, len(res.Items))
			}
			if want := (res.Total + limit - 1) / limit; res.TotalPages != want {
				t.Errorf("totalPages = %d, want %d", res.TotalPages, want)
			}
			if res.Page != page || res.Limit != limit {
				t.Errorf("echoed page/limit = %d/%d", res.Page, res.Limit)
			}
		}
	}
}

func TestGetProductsLargeValues(t *testing.T) {
	svc := NewProductService(WithoutLatency())
	ctx := context.Background()

	for _, pl := range [][2]int{{2, math.MaxInt}, {math.MaxInt/2 + 1, 4}, {math.MaxInt, 1}} {
		res, err := svc.GetProducts(ctx, pl[0], pl[1])
		if err != nil {
			t.Fatalf("GetProducts(%d, %d) error = %v", pl[0], pl[1], err)
		}
		if len(res.Items) != 0 || res.TotalPages != models.TotalPages(res.Total, pl[1]) {
			t.Errorf("GetProducts(%d, %d) = %d items, %d pages", pl[0], pl[1], len(res.Items), res.TotalPages)
		}
	}

	res, err := svc.GetProducts(ctx, 1, math.MaxInt)
	if err != nil || len(res.Items) != res.Total || res.TotalPages != 1 {
		t.Errorf("huge limit = %+v, %v", res, err)
	}
}

func TestGetProductsRejectsNonPositive(t *testing.T) {
	svc := NewProductService(WithoutLatency())
	for _, pl := range [][2]int{{0, 10}, {1, 0}, {-1, -1}} {
		_, err := svc.GetProducts(context.Background(), pl[0], pl[1])
		apiErr, ok := models.AsAPIError(err)
		if !ok || apiErr.Status != http.StatusBadRequest {
			t.Errorf("GetProducts(%d, %d) err = %v", pl[0], pl[1], err)
		}
	}
}

func TestGetProductByIDNotFound(t *testing.T) {
	svc := NewProductService(WithoutLatency())
	_, err := svc.GetProductByID(context.Background(), "does-not-exist")
	apiErr, ok := models.AsAPIError(err)
	if !ok || apiErr.Status != http.StatusNotFound || apiErr.Message != "Product not found" {
		t.Fatalf("err = %v", err)
	}
}

func TestUpdateProductMergePatch(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewProductService(WithoutLatency(), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	before, err := svc.GetProductByID(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	price := decimal.RequireFromString("9.99")
	if _, err := svc.UpdateProduct(ctx, "1", models.ProductPatch{Price: &price}); err != nil {
		t.Fatal(err)
	}
	after, err := svc.GetProductByID(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if !after.Price.Equal(price) {
		t.Errorf("price = %s, want 9.99", after.Price)
	}
	if after.Name != before.Name || after.Description != before.Description ||
		after.Category != before.Category || after.InStock != before.InStock ||
		after.ImageURL != before.ImageURL || !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("unrelated fields changed:\nbefore %+v\nafter  %+v", before, after)
	}
	if !after.UpdatedAt.Equal(now) {
		t.Errorf("updatedAt = %v", after.UpdatedAt)
	}
}

func TestUpdateProductRejectsNegativePrice(t *testing.T) {
	svc := NewProductService(WithoutLatency())
	price := decimal.RequireFromString("-1")
	_, err := svc.UpdateProduct(context.Background(), "1", models.ProductPatch{Price: &price})
	apiErr, ok := models.AsAPIError(err)
	if !ok || apiErr.Kind() != models.KindValidation || apiErr.FieldMessages()["price"] == "" {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateAndDeleteProduct(t *testing.T) {
	svc := NewProductService(WithoutLatency())
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, models.ProductInput{}); !models.IsValidation(err) {
		t.Fatalf("empty create err = %v", err)
	}

	created, err := svc.CreateProduct(ctx, models.ProductInput{Name: "Tea Towel", Category: "home", Price: decimal.RequireFromString("7.5"), InStock: true})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Errorf("created = %+v", created)
	}
	page, _ := svc.GetProducts(ctx, 1, 100)
	if page.Total != 13 {
		t.Errorf("total after create = %d", page.Total)
	}

	if err := svc.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetProductByID(ctx, created.ID); !models.IsNotFound(err) {
		t.Errorf("deleted product still found: %v", err)
	}
	if err := svc.DeleteProduct(ctx, created.ID); !models.IsNotFound(err) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestBrokenDatasetYieldsEmptyCatalog(t *testing.T) {
	svc := NewProductService(WithoutLatency(), WithDataset(func() ([]models.Product, error) {
		return nil, errors.New("missing file")
	}))
	res, err := svc.GetProducts(context.Background(), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 0 || len(res.Items) != 0 || res.TotalPages != 0 {
		t.Errorf("res = %+v", res)
	}
}

func TestLatencyRespectsContext(t *testing.T) {
	svc := NewProductService(WithLatency(Latency{List: time.Hour}))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.GetProducts(ctx, 1, 10)
	if !models.IsNetwork(err) {
		t.Fatalf("err = %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancelled call should return promptly")
	}
}

func TestLatencyDelaysCall(t *testing.T) {
	svc := NewProductService(WithLatency(Latency{Get: 30 * time.Millisecond}))
	start := time.Now()
	if _, err := svc.GetProductByID(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 30ms", elapsed)
	}
}

func TestLogin(t *testing.T) {
	store := newStore(t)
	svc := NewAuthService(store, WithoutLatency())
	ctx := context.Background()

	res, err := svc.Login(ctx, "john@example.com", Password)
	if err != nil {
		t.Fatal(err)
	}
	if res.User.ID != "1" {
		t.Errorf("user id = %q", res.User.ID)
	}
	if !strings.HasPrefix(res.Token, "mock-token-1-") {
		t.Errorf("token = %q", res.Token)
	}
	if !svc.IsAuthenticated() || store.Token() != res.Token {
		t.Error("login should persist the token")
	}

	user, err := svc.CurrentUser(ctx)
	if err != nil || user.Email != "john@example.com" {
		t.Errorf("CurrentUser = %+v, %v", user, err)
	}

	svc.Logout()
	if svc.IsAuthenticated() {
		t.Error("logout should clear the session")
	}
	if _, err := svc.CurrentUser(ctx); !models.IsUnauthorized(err) {
		t.Errorf("CurrentUser after logout err = %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(newStore(t), WithoutLatency())
	for _, email := range []string{"john@example.com", "nobody@example.com"} {
		_, err := svc.Login(context.Background(), email, "wrong")
		apiErr, ok := models.AsAPIError(err)
		if !ok || apiErr.Status != http.StatusUnauthorized {
			t.Errorf("Login(%s) err = %v", email, err)
		}
	}
	if svc.IsAuthenticated() {
		t.Error("failed login must not authenticate")
	}
}

func TestRegister(t *testing.T) {
	now := time.UnixMilli(1700000000000).UTC()
	store := newStore(t)
	svc := NewAuthService(store, WithoutLatency(), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := svc.Register(ctx, models.Registration{Name: "Jane", Email: "jane@example.com", Password: "password123", PasswordConfirmation: "password123"})
	apiErr, ok := models.AsAPIError(err)
	if !ok || apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate register err = %v", err)
	}
	if apiErr.FieldMessages()["email"] == "" {
		t.Errorf("errors = %v", apiErr.Errors)
	}

	user, err := svc.Register(ctx, models.Registration{Name: "Ana", Email: "ana@example.com", Password: Password, PasswordConfirmation: Password})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(user.ID); err != nil || user.Role != models.RoleUser {
		t.Errorf("user = %+v", user)
	}

	// A frozen clock must still hand out distinct ids.
	other, err := svc.Register(ctx, models.Registration{Name: "Bo", Email: "bo@example.com", Password: Password, PasswordConfirmation: Password})
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == user.ID {
		t.Fatalf("duplicate id %q", other.ID)
	}

	// The new account can sign in with the shared password and be resolved
	// from a token whose id contains a dash.
	if _, err := svc.Login(ctx, "ana@example.com", Password); err != nil {
		t.Fatal(err)
	}
	me, err := svc.CurrentUser(ctx)
	if err != nil || me.ID != user.ID {
		t.Errorf("CurrentUser = %+v, %v", me, err)
	}
}

func TestRefreshReissuesToken(t *testing.T) {
	tick := time.UnixMilli(1000)
	store := newStore(t)
	svc := NewAuthService(store, WithoutLatency(), WithClock(func() time.Time { return tick }))
	ctx := context.Background()

	if err := svc.Refresh(ctx); !models.IsUnauthorized(err) {
		t.Errorf("refresh without session err = %v", err)
	}
	svc.Login(ctx, "jane@example.com", Password)
	first := store.Token()
	tick = tick.Add(time.Second)
	if err := svc.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Token() == first || !strings.HasPrefix(store.Token(), "mock-token-2-") {
		t.Errorf("token = %q (was %q)", store.Token(), first)
	}
	if err := svc.Revoke(ctx); err != nil || svc.IsAuthenticated() {
		t.Errorf("revoke err = %v, authenticated = %v", err, svc.IsAuthenticated())
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		token string
		id    string
		ok    bool
	}{
		{"mock-token-1-1700000000000", "1", true},
		{"mock-token-user-17-1700000000000", "user-17", true},
		{"mock-token--1", "", false},
		{"bearer-abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		id, ok := parseToken(tt.token)
		if id != tt.id || ok != tt.ok {
			t.Errorf("parseToken(%q) = %q, %v", tt.token, id, ok)
		}
	}
}
