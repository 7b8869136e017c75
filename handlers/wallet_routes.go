package handlers

import (
	"time"

	"investment-platform/middleware"
	"investment-platform/models"
	"investment-platform/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func SetupWalletRoutes(app *fiber.App, withdrawalService *services.WithdrawalService, paymentService *services.PaymentService, reportService *services.ReportService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/withdrawals", func(c *fiber.Ctx) error {
		var req struct {
			Amount decimal.Decimal `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		userID := c.Locals("user_id").(string)
		w, err := withdrawalService.Request(userID, req.Amount)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(w)
	})

	admin := app.Group("/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	admin.Get("/withdrawals", func(c *fiber.Ctx) error {
		withdrawals, err := withdrawalService.Pending(c.Query("search"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(withdrawals)
	})

	admin.Patch("/withdrawals/:id/complete", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid withdrawal ID"})
		}
		if err := withdrawalService.Complete(id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Withdrawal marked as completed"})
	})

	admin.Patch("/withdrawals/:id/reject", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid withdrawal ID"})
		}
		if err := withdrawalService.Reject(id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Withdrawal rejected, balance returned to user"})
	})

	admin.Patch("/payments/:id/settle", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
		}
		var req struct {
			Outcome models.PaymentStatus `json:"outcome"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		payment, err := paymentService.Settle(id, req.Outcome, time.Now())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Payment settled", "payment": payment})
	})

	admin.Get("/payments/due", func(c *fiber.Ctx) error {
		payments, err := paymentService.DuePayments(time.Now())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(payments)
	})

	admin.Post("/maintenance/fix-closed-payments", func(c *fiber.Ctx) error {
		dryRun := c.Query("dry_run", "true") != "false"
		corrections, err := paymentService.FixClosedPayments(dryRun)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"dry_run":     dryRun,
			"corrections": corrections,
		})
	})

	admin.Get("/reports/financial", func(c *fiber.Ctx) error {
		var start, end *time.Time
		if v := c.Query("start_date"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date"})
			}
			start = &t
		}
		if v := c.Query("end_date"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date"})
			}
			t = t.Add(24*time.Hour - time.Second)
			end = &t
		}

		report, err := reportService.Financial(start, end)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(report)
	})
}
