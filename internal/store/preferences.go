package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parth-ai/parth/internal/models"
	"gorm.io/gorm"
)

// GetPreferences returns the account's preference blob as a map. Accounts
// without a stored preference row get an empty map, not an error.
func GetPreferences(db *gorm.DB, accountID uint) (map[string]interface{}, error) {
	var pref models.Preference
	err := db.Where("account_id = ?", accountID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get preferences for account %d: %w", accountID, err)
	}

	out := map[string]interface{}{}
	if pref.AgentData != "" {
		if err := json.Unmarshal([]byte(pref.AgentData), &out); err != nil {
			return nil, fmt.Errorf("store: preferences blob for account %d: %w", accountID, err)
		}
	}
	return out, nil
}

// MergePreferences shallow-merges patch into the account's preference blob
// inside one transaction, creating the row on first write. Last writer wins
// at top-level-key granularity; untouched keys survive.
func MergePreferences(db *gorm.DB, accountID uint, patch map[string]interface{}) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var pref models.Preference
		err := tx.Where("account_id = ?", accountID).First(&pref).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			blob, merr := MergePatch("", patch)
			if merr != nil {
				return merr
			}
			return tx.Create(&models.Preference{AccountID: accountID, AgentData: blob}).Error
		case err != nil:
			return err
		}

		blob, merr := MergePatch(pref.AgentData, patch)
		if merr != nil {
			return merr
		}
		return tx.Model(&models.Preference{}).Where("account_id = ?", accountID).
			Update("agent_data", blob).Error
	})
	if err != nil {
		return fmt.Errorf("store: merge preferences for account %d: %w", accountID, err)
	}
	return nil
}
