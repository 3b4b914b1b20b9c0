package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Theme selects the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var (
	ErrUnknownTheme    = fmt.Errorf("unknown theme")
	ErrUnknownCurrency = fmt.Errorf("unknown currency code")
)

// currencySymbols maps ISO 4217 codes to display symbols.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CHF": "CHF",
	"CAD": "C$",
	"AUD": "A$",
	"INR": "₹",
	"BRL": "R$",
	"SEK": "kr",
}

// Settings holds user preferences persisted between runs.
type Settings struct {
	Theme    Theme  `json:"theme"`
	Currency string `json:"currency"`
}

// Default returns the settings used when no file exists yet.
func Default() Settings {
	return Settings{Theme: ThemeLight, Currency: "USD"}
}

// Validate checks that both preferences hold known values.
func (s Settings) Validate() error {
	if s.Theme != ThemeLight && s.Theme != ThemeDark {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, s.Theme)
	}
	if _, ok := currencySymbols[s.Currency]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCurrency, s.Currency)
	}
	return nil
}

// Symbol returns the display symbol for the configured currency.
func (s Settings) Symbol() string {
	if sym, ok := currencySymbols[s.Currency]; ok {
		return sym
	}
	return s.Currency
}

// CurrencyCodes lists the supported ISO codes in no particular order.
func CurrencyCodes() []string {
	codes := make([]string, 0, len(currencySymbols))
	for code := range currencySymbols {
		codes = append(codes, code)
	}
	return codes
}

// Store loads settings at startup and saves them on every change.
type Store struct {
	mu      sync.RWMutex
	path    string
	current Settings
}

// Open reads the settings file at path, falling back to defaults when
// the file is missing or unreadable.
func Open(path string) (*Store, error) {
	s := &Store{path: path, current: Default()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		// A corrupt file should not prevent startup.
		return s, nil
	}
	if err := loaded.Validate(); err != nil {
		return s, nil
	}

	s.current = loaded
	return s, nil
}

// Get returns the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates, applies, and persists new settings.
func (s *Store) Update(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current
	s.current = next
	if err := s.save(); err != nil {
		s.current = prev
		return err
	}
	return nil
}

func (s *Store) save() error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
