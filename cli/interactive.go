package cli

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"

	"pfeifer.dev/velfilter/params"
	"pfeifer.dev/velfilter/settings"
)

const (
	ACTION_EDIT    = "Edit Setting"
	ACTION_SAVE    = "Save Settings"
	ACTION_DEFAULT = "Reset To Defaults"
	ACTION_COMFORT = "Use Comfort Preset"
	ACTION_EXIT    = "Exit"
)

func interactive(store *params.Store, s *settings.FilterSettings) error {
	for {
		prompt := promptui.Select{
			Label: "Select Action",
			Items: []string{ACTION_EDIT, ACTION_SAVE, ACTION_DEFAULT, ACTION_COMFORT, ACTION_EXIT},
		}
		_, result, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return errors.Wrap(err, "prompt failed")
		}

		switch result {
		case ACTION_EDIT:
			if err := editSetting(s); err != nil {
				fmt.Printf("Prompt failed %v\n", err)
			}
		case ACTION_SAVE:
			if err := s.Save(store); err != nil {
				return err
			}
			fmt.Printf("Saved settings to %s\n", store.Path(params.VELOCITY_FILTER_SETTINGS))
		case ACTION_DEFAULT:
			s.Default()
		case ACTION_COMFORT:
			s.Comfort()
		case ACTION_EXIT:
			return nil
		}
	}
}

func editSetting(s *settings.FilterSettings) error {
	keys := s.Keys()
	sel := promptui.Select{
		Label: "Setting",
		Items: settingItems(*s),
		Size:  len(keys),
	}
	idx, _, err := sel.Run()
	if err != nil {
		return err
	}
	key := keys[idx]
	value, err := s.Get(key)
	if err != nil {
		return err
	}

	prompt := promptui.Prompt{
		Label:    key,
		Default:  value,
		Validate: settingValidator(*s, key),
	}
	result, err := prompt.Run()
	if err != nil {
		return err
	}
	return s.Set(key, result)
}

// settingItems labels every setting with its current value.
func settingItems(s settings.FilterSettings) []string {
	keys := s.Keys()
	items := make([]string, 0, len(keys))
	for _, key := range keys {
		value, err := s.Get(key)
		if err != nil {
			value = "?"
		}
		items = append(items, fmt.Sprintf("%s: %s", key, value))
	}
	return items
}

// settingValidator checks a candidate value against a copy of s so that the
// prompt can reject it before anything changes.
func settingValidator(s settings.FilterSettings, key string) promptui.ValidateFunc {
	return func(input string) error {
		candidate := s
		return candidate.Set(key, input)
	}
}
