package handlers

import (
	"log"
	"time"

	"investment-platform/middleware"
	"investment-platform/models"
	"investment-platform/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func SetupSubscriptionRoutes(app *fiber.App, db *gorm.DB, subscriptionService *services.SubscriptionService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/plans", func(c *fiber.Ctx) error {
		var plans []models.Plan
		if err := db.Where("is_active = ?", true).Order("name ASC").Find(&plans).Error; err != nil {
			log.Printf("DB Error fetching plans: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch plans"})
		}
		return c.JSON(plans)
	})

	secured.Post("/subscriptions", func(c *fiber.Ctx) error {
		var req struct {
			PlanID   string          `json:"plan_id"`
			Amount   decimal.Decimal `json:"amount"`
			Reinvest bool            `json:"reinvest"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if _, err := uuid.Parse(req.PlanID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan ID"})
		}

		userID := c.Locals("user_id").(string)
		sub, err := subscriptionService.Create(userID, req.PlanID, req.Amount, req.Reinvest)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})

	secured.Post("/subscriptions/:id/switch-to-closed", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription ID"})
		}

		// Ownership check before any state change.
		userID := c.Locals("user_id").(string)
		var sub models.Subscription
		if err := db.First(&sub, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subscription not found or not owned by user"})
		}

		switched, err := subscriptionService.SwitchToClosed(id, time.Now())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(switched)
	})

	admin := app.Group("/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	admin.Post("/plans", func(c *fiber.Ctx) error {
		var req struct {
			Name                   string                 `json:"name"`
			ContractType           models.ContractType    `json:"contract_type"`
			CalculationType        models.CalculationType `json:"calculation_type"`
			ClosedProfitPercentage decimal.Decimal        `json:"closed_profit_percentage"`
			ClosedDurationDays     int                    `json:"closed_duration_days"`
			FixedPercentage        decimal.Decimal        `json:"fixed_percentage"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
		}

		plan := models.Plan{
			ID:                     uuid.NewString(),
			Name:                   req.Name,
			Slug:                   slug.Make(req.Name),
			ContractType:           req.ContractType,
			CalculationType:        req.CalculationType,
			ClosedProfitPercentage: req.ClosedProfitPercentage,
			ClosedDurationDays:     req.ClosedDurationDays,
			FixedPercentage:        req.FixedPercentage,
			IsActive:               true,
		}
		// A plan that cannot produce a schedule is rejected up front.
		if _, err := services.TermsFromPlan(plan.ContractType, &plan); err != nil {
			return respondError(c, err)
		}

		if err := db.Create(&plan).Error; err != nil {
			log.Printf("DB Error creating plan: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create plan"})
		}
		return c.Status(fiber.StatusCreated).JSON(plan)
	})

	admin.Get("/subscriptions/pending", func(c *fiber.Ctx) error {
		var subs []models.Subscription
		if err := db.Preload("User").Preload("Plan").
			Where("status = ?", models.SubscriptionStatusPendingVerification).
			Order("created_at ASC").
			Find(&subs).Error; err != nil {
			log.Printf("DB Error fetching pending subscriptions: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subscriptions"})
		}
		return c.JSON(subs)
	})

	admin.Patch("/subscriptions/:id/approve", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription ID"})
		}
		sub, err := subscriptionService.Approve(id, time.Now())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Subscription approved", "subscription": sub})
	})

	admin.Patch("/subscriptions/:id/reject", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription ID"})
		}
		if err := subscriptionService.Reject(id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Subscription rejected"})
	})
}
