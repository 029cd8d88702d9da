package services

import (
	"database/sql"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/storefront/internal/catalog"
	"github.com/isdelr/storefront/internal/database"
	"github.com/isdelr/storefront/internal/models"
	"github.com/shopspring/decimal"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type recorder struct {
	mu     sync.Mutex
	events []models.ProductEvent
}

func (r *recorder) Publish(e models.ProductEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestUserService(t *testing.T) {
	svc := NewUserService(newDB(t))

	user, err := svc.CreateUser("Ana", "Ana@Example.com ", "s3cret-pass", models.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "ana@example.com" || user.PasswordHash != "" {
		t.Errorf("user = %+v", user)
	}

	if _, err := svc.CreateUser("Other", "ana@example.com", "x", models.RoleUser); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate err = %v", err)
	}

	got, err := svc.AuthenticateUser("ana@example.com", "s3cret-pass")
	if err != nil || got.ID != user.ID || got.PasswordHash != "" {
		t.Errorf("authenticate = %+v, %v", got, err)
	}
	if _, err := svc.AuthenticateUser("ana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := svc.AuthenticateUser("ghost@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v", err)
	}

	byID, err := svc.GetUserByID(user.ID)
	if err != nil || byID.Name != "Ana" || byID.Role != models.RoleUser || byID.CreatedAt.IsZero() {
		t.Errorf("GetUserByID = %+v, %v", byID, err)
	}
	if _, err := svc.GetUserByID("nope"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user err = %v", err)
	}
}

func seededProducts(t *testing.T, pub Publisher) *ProductService {
	t.Helper()
	svc := NewProductService(newDB(t), pub)
	products, err := catalog.Products()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Seed(products); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestListProductsPagination(t *testing.T) {
	svc := seededProducts(t, nil)

	for limit := 1; limit <= 13; limit++ {
		var seen int
		for page := 1; ; page++ {
			res, err := svc.ListProducts(page, limit)
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Items) > limit {
				t.Fatalf("limit %d page %d: %d items", limit, page, len(res.Items))
			}
			if res.Total != 12 || res.TotalPages != models.TotalPages(12, limit) {
				t.Fatalf("meta = %+v", res)
			}
			if len(res.Items) == 0 {
				break
			}
			seen += len(res.Items)
		}
		if seen != 12 {
			t.Errorf("limit %d: walked %d products", limit, seen)
		}
	}

	if _, err := svc.ListProducts(0, 10); !models.IsAPIErrorStatus(err, 400) {
		t.Errorf("page 0 err = %v", err)
	}
}

func TestListProductsLargeValues(t *testing.T) {
	svc := seededProducts(t, nil)

	res, err := svc.ListProducts(math.MaxInt/100+2, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 0 || res.Total != 12 || res.TotalPages != 1 {
		t.Errorf("far page = %d items, meta %+v", len(res.Items), res)
	}

	res, err = svc.ListProducts(1, math.MaxInt)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 12 || res.TotalPages != 1 {
		t.Errorf("huge limit = %d items, %d pages", len(res.Items), res.TotalPages)
	}
}

func TestProductCRUD(t *testing.T) {
	rec := &recorder{}
	svc := seededProducts(t, rec)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	before, err := svc.GetProductByID("3")
	if err != nil {
		t.Fatal(err)
	}

	price := decimal.RequireFromString("9.99")
	if _, err := svc.UpdateProduct("3", models.ProductPatch{Price: &price}); err != nil {
		t.Fatal(err)
	}
	after, err := svc.GetProductByID("3")
	if err != nil {
		t.Fatal(err)
	}
	if !after.Price.Equal(price) || after.Name != before.Name || after.InStock != before.InStock ||
		after.Description != before.Description || !after.CreatedAt.Equal(before.CreatedAt) || !after.UpdatedAt.Equal(now) {
		t.Errorf("merge-patch mismatch:\nbefore %+v\nafter  %+v", before, after)
	}

	created, err := svc.CreateProduct(models.ProductInput{Name: "Tea Towel", Category: "home", Price: decimal.RequireFromString("6.00")})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteProduct(created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetProductByID(created.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("deleted product err = %v", err)
	}
	if err := svc.DeleteProduct(created.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if _, err := svc.UpdateProduct("missing", models.ProductPatch{Price: &price}); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("update missing err = %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	var actions []string
	for _, e := range rec.events {
		actions = append(actions, e.Action)
	}
	want := []string{models.ProductUpdated, models.ProductCreated, models.ProductDeleted}
	if len(actions) != len(want) {
		t.Fatalf("events = %v", actions)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, actions[i], want[i])
		}
	}
	if rec.events[2].Product != nil {
		t.Error("delete event should not carry a product")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newDB(t)
	users, products := NewUserService(db), NewProductService(db, nil)
	dataset, _ := catalog.Products()

	for i := 0; i < 2; i++ {
		if err := SeedDemoData(users, products, dataset); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}
	res, err := products.ListProducts(1, 100)
	if err != nil || res.Total != len(dataset) {
		t.Errorf("total = %d, %v", res.Total, err)
	}
	jane, err := users.AuthenticateUser("jane@example.com", DemoPassword)
	if err != nil || jane.Role != models.RoleAdmin {
		t.Errorf("jane = %+v, %v", jane, err)
	}
}

func TestTokenService(t *testing.T) {
	svc := NewTokenService(newDB(t))
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := svc.Revoke("jti-old", "1", now.Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := svc.Revoke("jti-new", "1", now.Add(500*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	if err := svc.Revoke("jti-new", "1", now.Add(time.Hour)); err != nil {
		t.Errorf("second revoke err = %v", err)
	}

	for jti, want := range map[string]bool{"jti-old": true, "jti-new": true, "jti-other": false} {
		got, err := svc.IsRevoked(jti)
		if err != nil || got != want {
			t.Errorf("IsRevoked(%s) = %v, %v", jti, got, err)
		}
	}

	n, err := svc.PruneExpired(now)
	if err != nil || n != 1 {
		t.Errorf("pruned %d, %v", n, err)
	}
	if revoked, _ := svc.IsRevoked("jti-new"); !revoked {
		t.Error("unexpired entry should survive pruning")
	}
}
