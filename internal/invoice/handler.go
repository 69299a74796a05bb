package invoice

import (
	"freight-backend/internal/apperr"
	"freight-backend/internal/auth"
	"freight-backend/internal/response"

	"github.com/gofiber/fiber/v2"
)

// query adapts c.Query to the getter taken by ParseFilter and ParsePage.
func query(c *fiber.Ctx) func(string) string {
	return func(key string) string { return c.Query(key) }
}

func parseInput(c *fiber.Ctx) (*Input, error) {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return nil, apperr.Validation("body", "Invalid request body")
	}
	return &in, nil
}

func ListInvoicesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}
		filter, err := ParseFilter(query(c))
		if err != nil {
			return err
		}
		page, limit := ParsePage(query(c))

		invoices, pagination, err := svc.List(c.UserContext(), accountID, filter, page, limit)
		if err != nil {
			return err
		}

		return response.OK(c, "", fiber.Map{
			"invoices":   NewViews(invoices),
			"pagination": pagination,
		})
	}
}

func GetInvoiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}
		id, err := response.ParamID(c, entityName)
		if err != nil {
			return err
		}

		inv, err := svc.Get(c.UserContext(), accountID, id)
		if err != nil {
			return err
		}
		return response.OK(c, "", fiber.Map{"invoice": NewView(inv)})
	}
}

func CreateInvoiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}
		in, err := parseInput(c)
		if err != nil {
			return err
		}

		inv, err := svc.Create(c.UserContext(), accountID, in)
		if err != nil {
			return err
		}
		return response.Created(c, "Invoice created successfully", fiber.Map{"invoice": NewView(inv)})
	}
}

func UpdateInvoiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}
		id, err := response.ParamID(c, entityName)
		if err != nil {
			return err
		}
		in, err := parseInput(c)
		if err != nil {
			return err
		}

		inv, err := svc.Update(c.UserContext(), accountID, id, in)
		if err != nil {
			return err
		}
		return response.OK(c, "Invoice updated successfully", fiber.Map{"invoice": NewView(inv)})
	}
}

func DeleteInvoiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}
		id, err := response.ParamID(c, entityName)
		if err != nil {
			return err
		}

		if err := svc.Delete(c.UserContext(), accountID, id); err != nil {
			return err
		}
		return response.OK(c, "Invoice deleted successfully", nil)
	}
}
