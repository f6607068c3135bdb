package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/mesaops/stockshift/internal/domain"
)

func TestDirectoryUsers(t *testing.T) {
	store := newStore(t)
	dir := store.Directory()
	ctx := context.Background()

	user := domain.User{ID: "u-1", TenantID: "tenant-1", Name: "Sol", Role: domain.RoleManager, LocationID: "loc-1"}
	if err := dir.PutUser(ctx, user); err != nil {
		t.Fatalf("PutUser: %v", err)
	}

	got, err := dir.UserByID(ctx, "tenant-1", "u-1")
	if err != nil {
		t.Fatalf("UserByID: %v", err)
	}
	if got != user {
		t.Errorf("got %+v, want %+v", got, user)
	}

	// Admins may have no home location.
	admin := domain.User{ID: "u-2", TenantID: "tenant-1", Name: "Ada", Role: domain.RoleAdmin}
	if err := dir.PutUser(ctx, admin); err != nil {
		t.Fatalf("PutUser admin: %v", err)
	}
	got, err = dir.UserByID(ctx, "tenant-1", "u-2")
	if err != nil {
		t.Fatalf("UserByID admin: %v", err)
	}
	if got.LocationID != "" {
		t.Errorf("admin location = %q, want empty", got.LocationID)
	}

	// Upsert replaces in place.
	user.Role = domain.RoleAdmin
	if err := dir.PutUser(ctx, user); err != nil {
		t.Fatalf("PutUser upsert: %v", err)
	}
	got, _ = dir.UserByID(ctx, "tenant-1", "u-1")
	if got.Role != domain.RoleAdmin {
		t.Errorf("role after upsert = %q", got.Role)
	}
}

func TestDirectoryLocationsAndProducts(t *testing.T) {
	store := newStore(t)
	dir := store.Directory()
	ctx := context.Background()

	loc := domain.Location{ID: "loc-1", TenantID: "tenant-1", Name: "Commissary"}
	if err := dir.PutLocation(ctx, loc); err != nil {
		t.Fatalf("PutLocation: %v", err)
	}
	gotLoc, err := dir.LocationByID(ctx, "tenant-1", "loc-1")
	if err != nil {
		t.Fatalf("LocationByID: %v", err)
	}
	if gotLoc != loc {
		t.Errorf("got %+v, want %+v", gotLoc, loc)
	}

	prod := domain.Product{ID: "p-1", TenantID: "tenant-1", Name: "Olive Oil", SKU: "OIL-001"}
	if err := dir.PutProduct(ctx, prod); err != nil {
		t.Fatalf("PutProduct: %v", err)
	}
	gotProd, err := dir.ProductByID(ctx, "tenant-1", "p-1")
	if err != nil {
		t.Fatalf("ProductByID: %v", err)
	}
	if gotProd != prod {
		t.Errorf("got %+v, want %+v", gotProd, prod)
	}
}

func TestDirectoryTenantIsolation(t *testing.T) {
	store := newStore(t)
	dir := store.Directory()
	ctx := context.Background()

	if err := dir.PutUser(ctx, domain.User{ID: "u-1", TenantID: "tenant-1", Name: "Sol", Role: domain.RoleStaff}); err != nil {
		t.Fatalf("PutUser: %v", err)
	}

	_, err := dir.UserByID(ctx, "tenant-2", "u-1")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("cross-tenant user read: err = %v, want NotFoundError", err)
	}

	_, err = dir.LocationByID(ctx, "tenant-1", "missing")
	if !errors.As(err, &nf) {
		t.Fatalf("missing location: err = %v, want NotFoundError", err)
	}

	_, err = dir.ProductByID(ctx, "tenant-1", "missing")
	if !errors.As(err, &nf) {
		t.Fatalf("missing product: err = %v, want NotFoundError", err)
	}
}
