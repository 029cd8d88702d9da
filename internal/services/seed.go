package services

import (
	"errors"

	"github.com/isdelr/storefront/internal/models"
	"github.com/rs/zerolog/log"
)

// DemoPassword is the password of the seeded demo accounts.
const DemoPassword = "password123"

// DemoAccount is a user created on first start.
type DemoAccount struct {
	Name  string
	Email string
	Role  models.Role
}

// DemoAccounts mirror the accounts of the client-side mock provider.
var DemoAccounts = []DemoAccount{
	{Name: "John Doe", Email: "john@example.com", Role: models.RoleUser},
	{Name: "Jane Smith", Email: "jane@example.com", Role: models.RoleAdmin},
}

// SeedDemoData creates the demo accounts and catalog when missing.
func SeedDemoData(users *UserService, products *ProductService, catalog []models.Product) error {
	for _, acc := range DemoAccounts {
		_, err := users.CreateUser(acc.Name, acc.Email, DemoPassword, acc.Role)
		if err != nil && !errors.Is(err, ErrEmailTaken) {
			return err
		}
	}

	added, err := products.Seed(catalog)
	if err != nil {
		return err
	}
	if added > 0 {
		log.Info().Int("products", added).Msg("Seeded demo catalog")
	}
	return nil
}
