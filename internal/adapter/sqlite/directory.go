package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesaops/stockshift/internal/domain"
)

// Compile-time check: Directory implements domain.Directory.
var _ domain.Directory = (*Directory)(nil)

// Directory resolves tenant-scoped users, locations, and products. Every
// query filters on tenant_id, so a record in another tenant resolves to
// NotFoundError, which is the tenant-isolation guarantee the engine
// relies on.
type Directory struct {
	db *sql.DB
}

func (d *Directory) UserByID(ctx context.Context, tenantID, userID string) (domain.User, error) {
	var u domain.User
	var role string
	var locationID sql.NullString

	err := d.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, role, location_id FROM users WHERE tenant_id = ? AND id = ?`,
		tenantID, userID,
	).Scan(&u.ID, &u.TenantID, &u.Name, &role, &locationID)
	if err == sql.ErrNoRows {
		return domain.User{}, &domain.NotFoundError{Resource: "user", ID: userID}
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = domain.Role(role)
	u.LocationID = locationID.String
	return u, nil
}

func (d *Directory) LocationByID(ctx context.Context, tenantID, locationID string) (domain.Location, error) {
	var l domain.Location

	err := d.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name FROM locations WHERE tenant_id = ? AND id = ?`,
		tenantID, locationID,
	).Scan(&l.ID, &l.TenantID, &l.Name)
	if err == sql.ErrNoRows {
		return domain.Location{}, &domain.NotFoundError{Resource: "location", ID: locationID}
	}
	if err != nil {
		return domain.Location{}, fmt.Errorf("scanning location: %w", err)
	}

	return l, nil
}

func (d *Directory) ProductByID(ctx context.Context, tenantID, productID string) (domain.Product, error) {
	var p domain.Product
	var sku sql.NullString

	err := d.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, sku FROM products WHERE tenant_id = ? AND id = ?`,
		tenantID, productID,
	).Scan(&p.ID, &p.TenantID, &p.Name, &sku)
	if err == sql.ErrNoRows {
		return domain.Product{}, &domain.NotFoundError{Resource: "product", ID: productID}
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("scanning product: %w", err)
	}

	p.SKU = sku.String
	return p, nil
}

// PutUser inserts or replaces a user. Provisioning of directory records
// is owned by the platform's onboarding flow; this upsert is its
// minimal surface, also used by tests.
func (d *Directory) PutUser(ctx context.Context, u domain.User) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO users (id, tenant_id, name, role, location_id) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, id) DO UPDATE SET name = excluded.name, role = excluded.role, location_id = excluded.location_id`,
		u.ID, u.TenantID, u.Name, string(u.Role), nullString(u.LocationID),
	)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// PutLocation inserts or replaces a location.
func (d *Directory) PutLocation(ctx context.Context, l domain.Location) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO locations (id, tenant_id, name) VALUES (?, ?, ?)
		 ON CONFLICT (tenant_id, id) DO UPDATE SET name = excluded.name`,
		l.ID, l.TenantID, l.Name,
	)
	if err != nil {
		return fmt.Errorf("upserting location: %w", err)
	}
	return nil
}

// PutProduct inserts or replaces a product.
func (d *Directory) PutProduct(ctx context.Context, p domain.Product) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO products (id, tenant_id, name, sku) VALUES (?, ?, ?, ?)
		 ON CONFLICT (tenant_id, id) DO UPDATE SET name = excluded.name, sku = excluded.sku`,
		p.ID, p.TenantID, p.Name, nullString(p.SKU),
	)
	if err != nil {
		return fmt.Errorf("upserting product: %w", err)
	}
	return nil
}
