package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fingerprint identifies an element by tag and its exact set of classes.
// Selector, when set, replaces the class match with a plain CSS selector.
type Fingerprint struct {
	Tag      string `yaml:"tag"`
	Classes  string `yaml:"classes"`
	Selector string `yaml:"selector,omitempty"`
}

// Fingerprints is everything the extractor needs to know about one storefront build.
type Fingerprints struct {
	// Matcher is "fingerprint" (exact class sets) or "selector" (CSS selectors).
	Matcher string `yaml:"matcher"`

	DataScriptID string `yaml:"data_script_id"`

	PriceContainer Fingerprint `yaml:"price_container"`
	PriceHeading   Fingerprint `yaml:"price_heading"`
	Dropdown       Fingerprint `yaml:"dropdown"`
	OptionList     Fingerprint `yaml:"option_list"`
	OptionItem     Fingerprint `yaml:"option_item"`

	ConsentLabels []string `yaml:"consent_labels"`
	TargetOption  string   `yaml:"target_option"`
}

// DefaultFingerprints returns the markers of the current Chemist Warehouse product page.
func DefaultFingerprints() Fingerprints {
	return Fingerprints{
		Matcher:      "fingerprint",
		DataScriptID: "__NEXT_DATA__",
		PriceContainer: Fingerprint{
			Tag:     "div",
			Classes: "space-y-space-400 md:space-y-space-500 lg:space-y-space-600 flex w-full flex-col items-start self-stretch lg:w-[26rem] lg:flex-shrink-0",
		},
		PriceHeading: Fingerprint{
			Tag:     "h2",
			Classes: "display-l text-colour-title-light",
		},
		Dropdown: Fingerprint{
			Classes: "rounded-b-shape-button-input ring-1 px-space-400 text-colour-body-light rounded-t-shape-button-input flex h-[60px] items-center justify-between border-0 ring-inset ring-offset-0 ring-neutral-300 bg-white",
		},
		OptionList: Fingerprint{
			Tag:     "ul",
			Classes: "h-max max-h-[316px] overflow-y-auto bg-white p-0",
		},
		OptionItem: Fingerprint{
			Tag:     "li",
			Classes: "p-space-400 flex flex-col aria-disabled:text-gray-500",
		},
		ConsentLabels: []string{"Accept All Cookies", "Close"},
		TargetOption:  "No Medicare card",
	}
}

// LoadFingerprints reads a YAML file over the defaults. Keys missing from
// the file keep their default value. An empty path returns the defaults.
func LoadFingerprints(path string) (Fingerprints, error) {
	fp := DefaultFingerprints()
	if path == "" {
		return fp, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fp, fmt.Errorf("read fingerprints %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fp); err != nil {
		return fp, fmt.Errorf("parse fingerprints %s: %w", path, err)
	}

	switch fp.Matcher {
	case "", "fingerprint":
		fp.Matcher = "fingerprint"
	case "selector":
	default:
		return fp, fmt.Errorf("fingerprints %s: unknown matcher %q", path, fp.Matcher)
	}
	return fp, nil
}
