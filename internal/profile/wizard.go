package profile

import (
	"fmt"
	"net/mail"

	"github.com/manifoldco/promptui"
)

// RunEditor prompts for each profile field, pre-filled with current, and
// returns the edited profile. Nothing is saved.
func RunEditor(current Profile) (Profile, error) {
	fields := []struct {
		label    string
		value    *string
		validate promptui.ValidateFunc
	}{
		{"Name", &current.Name, nil},
		{"Email", &current.Email, validateEmail},
		{"Phone", &current.Phone, nil},
		{"Bio", &current.Bio, nil},
	}

	for _, f := range fields {
		prompt := promptui.Prompt{
			Label:     f.label,
			Default:   *f.value,
			AllowEdit: true,
			Validate:  f.validate,
		}
		v, err := prompt.Run()
		if err != nil {
			return Profile{}, fmt.Errorf("%s: %w", f.label, err)
		}
		*f.value = v
	}
	return current, nil
}

func validateEmail(s string) error {
	if s == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
