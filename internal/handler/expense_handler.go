package handler

import (
	"net/http"

	"hotel-service/internal/middleware"
	"hotel-service/internal/model"
	"hotel-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExpenseCategoryRequest defines the structure for category creation requests
type ExpenseCategoryRequest struct {
	Name string `json:"name"`
}

// ExpenseRequest defines the structure for expense creation requests
type ExpenseRequest struct {
	CategoryID  uint    `json:"categoryId"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

type ExpenseHandler struct {
	db *gorm.DB
}

func NewExpenseHandler(db *gorm.DB) *ExpenseHandler {
	return &ExpenseHandler{db: db}
}

// ListCategories returns all expense categories for the hotel
func (h *ExpenseHandler) ListCategories(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var categories []model.ExpenseCategory
	if err := h.db.Where("hotel_id = ?", hotelID).Find(&categories).Error; err != nil {
		log.Error("Failed to list expense categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve expense categories"})
	}

	return c.JSON(http.StatusOK, categories)
}

// CreateCategory creates an expense category
func (h *ExpenseHandler) CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var req ExpenseCategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category name is required"})
	}

	category := model.ExpenseCategory{HotelID: hotelID, Name: req.Name}
	if err := h.db.Create(&category).Error; err != nil {
		log.Error("Failed to create expense category", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create expense category"})
	}

	log.Info("Expense category created",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name))
	return c.JSON(http.StatusCreated, category)
}

// ListExpenses returns the hotel's expenses, newest first
func (h *ExpenseHandler) ListExpenses(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var expenses []model.Expense
	if err := h.db.Where("hotel_id = ?", hotelID).Order("date desc").Find(&expenses).Error; err != nil {
		log.Error("Failed to list expenses", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve expenses"})
	}

	return c.JSON(http.StatusOK, expenses)
}

// CreateExpense records a cost against a category
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.CategoryID == 0 || req.Amount <= 0 || req.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "categoryId, amount and date are required"})
	}
	date, ok := parseDate(req.Date)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid expense date"})
	}

	var category model.ExpenseCategory
	if err := h.db.Where("hotel_id = ?", hotelID).First(&category, req.CategoryID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "expense category not found"})
	}

	expense := model.Expense{
		HotelID:     hotelID,
		CategoryID:  category.ID,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
	}
	if err := h.db.Create(&expense).Error; err != nil {
		log.Error("Failed to create expense", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create expense"})
	}

	log.Info("Expense recorded",
		zap.Uint("expense_id", expense.ID),
		zap.Float64("amount", expense.Amount))
	return c.JSON(http.StatusCreated, expense)
}

// DeleteExpense removes an expense record
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var expense model.Expense
	if err := h.db.Where("hotel_id = ?", hotelID).First(&expense, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "expense not found"})
	}

	if err := h.db.Delete(&expense).Error; err != nil {
		log.Error("Failed to delete expense", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete expense"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "expense deleted"})
}
