package store

import (
	"errors"
	"fmt"

	"github.com/parth-ai/parth/internal/models"
	"gorm.io/gorm"
)

// GetAccount fetches an account by internal ID.
func GetAccount(db *gorm.DB, id uint) (*models.Account, error) {
	var acct models.Account
	err := db.First(&acct, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store: account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get account %d: %w", id, err)
	}
	return &acct, nil
}

// GetAccountByTelegramID fetches an account by its Telegram chat ID.
func GetAccountByTelegramID(db *gorm.DB, telegramID int64) (*models.Account, error) {
	var acct models.Account
	err := db.Where("telegram_id = ?", telegramID).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store: telegram account %d: %w", telegramID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get telegram account %d: %w", telegramID, err)
	}
	return &acct, nil
}

// GetOrCreateAccount returns the account for a Telegram chat ID, creating it
// on first contact.
func GetOrCreateAccount(db *gorm.DB, telegramID int64) (*models.Account, error) {
	acct, err := GetAccountByTelegramID(db, telegramID)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created := models.Account{TelegramID: telegramID, IsActive: true}
	if err := db.Create(&created).Error; err != nil {
		return nil, fmt.Errorf("store: create account for telegram %d: %w", telegramID, err)
	}
	return &created, nil
}

// ActiveAccountsWithActiveGoals returns distinct accounts that are marked
// active and own at least one active goal. This is the evaluation cron's
// enumeration query.
func ActiveAccountsWithActiveGoals(db *gorm.DB) ([]models.Account, error) {
	var accts []models.Account
	err := db.Distinct("accounts.*").
		Joins("JOIN goals ON goals.account_id = accounts.id AND goals.status = ?", models.GoalActive).
		Where("accounts.is_active = ?", true).
		Order("accounts.id ASC").
		Find(&accts).Error
	if err != nil {
		return nil, fmt.Errorf("store: enumerate active accounts: %w", err)
	}
	return accts, nil
}
