package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UIPreferences stores persisted app preferences.
type UIPreferences struct {
	Screen string `json:"screen"`
	// LastView maps a page type to the id of the view last applied to it.
	LastView map[string]string `json:"last_view"`
}

func defaultUIPreferences() UIPreferences {
	return UIPreferences{LastView: map[string]string{}}
}

func loadUIPreferences(path string) UIPreferences {
	if path == "" {
		return defaultUIPreferences()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaultUIPreferences()
	}

	var prefs UIPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return defaultUIPreferences()
	}
	if prefs.LastView == nil {
		prefs.LastView = map[string]string{}
	}
	return prefs
}

func saveUIPreferences(path string, prefs UIPreferences) error {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}
