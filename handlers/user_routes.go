package handlers

import (
	"errors"
	"log"

	"investment-platform/middleware"
	"investment-platform/models"
	"investment-platform/services"
	"investment-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func SetupUserRoutes(app *fiber.App, db *gorm.DB, ledgerService *services.LedgerService) {
	// Provisioning: registration/auth live upstream, the gateway calls this
	// with a verified identity. An optional sponsor code wires the new user
	// into the referral graph at creation time.
	app.Post("/users", func(c *fiber.Ctx) error {
		var req struct {
			FirstName      string `json:"first_name"`
			LastName       string `json:"last_name"`
			Email          string `json:"email"`
			ReferredByCode string `json:"referred_by_code"`
			IsTestAccount  bool   `json:"is_test_account"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.FirstName == "" || req.Email == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "first_name and email are required"})
		}

		var referredByID *string
		if req.ReferredByCode != "" {
			var sponsor models.User
			if err := db.First(&sponsor, "referral_code = ?", req.ReferredByCode).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown referral code"})
				}
				return respondError(c, err)
			}
			referredByID = &sponsor.ID
		}

		user := models.User{
			ID:            uuid.NewString(),
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			Email:         req.Email,
			Role:          "user",
			ReferralCode:  utils.ShortCode(8),
			ReferredByID:  referredByID,
			IsTestAccount: req.IsTestAccount,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("DB Error creating user: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
		}

		return c.Status(fiber.StatusCreated).JSON(user)
	})

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/user/summary", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		summary, err := ledgerService.AccountSummary(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(summary)
	})

	secured.Get("/user/statement", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		lines, err := ledgerService.Statement(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(lines)
	})

	// Recipient lookup for the transfer form. Only public fields leave here.
	secured.Post("/find-user-by-code", func(c *fiber.Ctx) error {
		var req struct {
			ReferralCode string `json:"referral_code"`
		}
		if err := c.BodyParser(&req); err != nil || req.ReferralCode == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "referral_code is required"})
		}

		var recipient models.User
		if err := db.First(&recipient, "referral_code = ?", req.ReferralCode).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown referral code"})
			}
			return respondError(c, err)
		}
		if recipient.ID == c.Locals("user_id").(string) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "cannot transfer to your own account"})
		}

		return c.JSON(fiber.Map{
			"id":         recipient.ID,
			"first_name": recipient.FirstName,
			"last_name":  recipient.LastName,
		})
	})

	secured.Post("/transfer", func(c *fiber.Ctx) error {
		var req struct {
			RecipientCode string          `json:"recipient_code"`
			Amount        decimal.Decimal `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		senderID := c.Locals("user_id").(string)
		recipient, err := ledgerService.Transfer(senderID, req.RecipientCode, req.Amount)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{
			"message":      "Transfer completed",
			"recipient_id": recipient.ID,
			"amount":       req.Amount,
		})
	})
}
