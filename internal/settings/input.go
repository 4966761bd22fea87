package settings

import (
	"fmt"
	"strconv"
	"strings"

	"chainwatch/internal/domain"
)

// Safety setting keys accepted by Apply and Format.
const (
	KeyMarketCapMin           = "market_cap_min"
	KeyMarketCapMax           = "market_cap_max"
	KeyHoldersMin             = "holders_min"
	KeySnipersMax             = "snipers_max"
	KeyRequireLaunchMigration = "require_launch_migration"
	KeyCheckFreezeAuthority   = "check_freeze_authority"
	KeyCheckMintAuthority     = "check_mint_authority"
	KeyTop10HolderMax         = "top10_holder_max"
	KeyLPBurnMin              = "lp_burn_min"

	volumeRatioPrefix = "volume_ratio_"
)

// Keys lists every setting key in menu order.
func Keys() []string {
	keys := []string{
		KeyMarketCapMin,
		KeyMarketCapMax,
		KeyHoldersMin,
		KeySnipersMax,
		KeyRequireLaunchMigration,
	}
	for _, w := range domain.VolumeWindows {
		keys = append(keys, volumeRatioPrefix+string(w))
	}
	return append(keys,
		KeyCheckFreezeAuthority,
		KeyCheckMintAuthority,
		KeyTop10HolderMax,
		KeyLPBurnMin,
	)
}

// Apply parses raw user input for a setting key and stores it in cs.
//
// Percentage conversion: for top10_holder_max and lp_burn_min the user
// enters a human-readable 0-100 value which is stored as a 0-1.0 fraction.
// Volume-ratio thresholds are entered and stored as raw percentages. The
// asymmetry mirrors how each threshold is compared during validation.
func Apply(cs *domain.ChainSettings, key, raw string) error {
	raw = strings.TrimSpace(raw)

	switch key {
	case KeyMarketCapMin, KeyMarketCapMax:
		v, err := parseNonNegative(raw)
		if err != nil {
			return err
		}
		v = float64(int(v))
		if key == KeyMarketCapMin {
			cs.MarketCapMin = &v
		} else {
			cs.MarketCapMax = &v
		}
		return nil

	case KeyHoldersMin, KeySnipersMax:
		f, err := parseNonNegative(raw)
		if err != nil {
			return err
		}
		v := int(f)
		if key == KeyHoldersMin {
			cs.HoldersMin = &v
		} else {
			cs.SnipersMax = &v
		}
		return nil

	case KeyRequireLaunchMigration, KeyCheckFreezeAuthority, KeyCheckMintAuthority:
		b, err := parseBool(raw)
		if err != nil {
			return err
		}
		switch key {
		case KeyRequireLaunchMigration:
			cs.RequireLaunchMigration = b
		case KeyCheckFreezeAuthority:
			cs.CheckFreezeAuthority = b
		case KeyCheckMintAuthority:
			cs.CheckMintAuthority = b
		}
		return nil

	case KeyTop10HolderMax, KeyLPBurnMin:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		if v < 0 || v > 100 {
			return fmt.Errorf("enter 0-100 (e.g. 50 for 50%%)")
		}
		frac := v / 100
		if key == KeyTop10HolderMax {
			cs.Top10HolderMax = &frac
		} else {
			cs.LPBurnMin = &frac
		}
		return nil
	}

	if w, ok := volumeWindow(key); ok {
		v, err := parseNonNegative(raw)
		if err != nil {
			return err
		}
		if cs.VolumeRatio == nil {
			cs.VolumeRatio = make(map[domain.VolumeWindow]*float64)
		}
		cs.VolumeRatio[w] = &v
		return nil
	}

	return fmt.Errorf("unknown setting %q", key)
}

// Format renders the current value of a setting key for menu display.
func Format(cs *domain.ChainSettings, key string) string {
	switch key {
	case KeyMarketCapMin:
		return formatOptionalUSD(cs.MarketCapMin)
	case KeyMarketCapMax:
		return formatOptionalUSD(cs.MarketCapMax)
	case KeyHoldersMin:
		return formatOptionalInt(cs.HoldersMin)
	case KeySnipersMax:
		return formatOptionalInt(cs.SnipersMax)
	case KeyRequireLaunchMigration:
		return formatBool(cs.RequireLaunchMigration)
	case KeyCheckFreezeAuthority:
		return formatBool(cs.CheckFreezeAuthority)
	case KeyCheckMintAuthority:
		return formatBool(cs.CheckMintAuthority)
	case KeyTop10HolderMax:
		return formatOptionalFraction(cs.Top10HolderMax)
	case KeyLPBurnMin:
		return formatOptionalFraction(cs.LPBurnMin)
	}
	if w, ok := volumeWindow(key); ok {
		v := cs.VolumeRatio[w]
		if v == nil {
			return "Not set"
		}
		return fmt.Sprintf("%.0f%% threshold", *v)
	}
	return "Unknown"
}

func volumeWindow(key string) (domain.VolumeWindow, bool) {
	if !strings.HasPrefix(key, volumeRatioPrefix) {
		return "", false
	}
	w := domain.VolumeWindow(strings.TrimPrefix(key, volumeRatioPrefix))
	for _, known := range domain.VolumeWindows {
		if w == known {
			return w, true
		}
	}
	return "", false
}

func parseNonNegative(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("value must not be negative")
	}
	return v, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "on", "enabled":
		return true, nil
	case "false", "0", "no", "off", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("enter true/false, yes/no, or 1/0")
}

func formatBool(v bool) string {
	if v {
		return "Enabled"
	}
	return "Disabled"
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "Not set"
	}
	return strconv.Itoa(*v)
}

func formatOptionalUSD(v *float64) string {
	if v == nil {
		return "Not set"
	}
	return "$" + groupThousands(int64(*v))
}

func formatOptionalFraction(v *float64) string {
	if v == nil {
		return "Not set"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

// groupThousands renders n with comma separators ($50,000 style).
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
