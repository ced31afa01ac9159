package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var serverIDRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

const (
	displayNameMax = 50
	tokenMin       = 10
)

func ValidateServerID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !serverIDRe.MatchString(s) {
		return "", invalid("serverId", "Server ID may only contain letters, numbers and dashes.")
	}
	return s, nil
}

func ValidateDisplayName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n := utf8.RuneCountInString(s); n < 1 || n > displayNameMax {
		return "", invalid("displayName", "Display name must be between 1 and 50 characters.")
	}
	return s, nil
}

func ValidateToken(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < tokenMin {
		return "", invalid("apiToken", "API token looks too short (min 10 characters).")
	}
	return s, nil
}

// UpdateField es una opción del menú de !update (1..6).
type UpdateField int

const (
	FieldServerID UpdateField = iota + 1
	FieldDisplayName
	FieldAPIToken
	FieldBanLogChannel
	FieldOnlineListChannel
	FieldRconTerminalChannel
)

var UpdateFields = []UpdateField{
	FieldServerID, FieldDisplayName, FieldAPIToken,
	FieldBanLogChannel, FieldOnlineListChannel, FieldRconTerminalChannel,
}

func (f UpdateField) Label() string {
	switch f {
	case FieldServerID:
		return "Server ID"
	case FieldDisplayName:
		return "Display Name"
	case FieldAPIToken:
		return "API Token"
	case FieldBanLogChannel:
		return "Ban Log Channel"
	case FieldOnlineListChannel:
		return "Online List Channel"
	case FieldRconTerminalChannel:
		return "RCON Terminal Channel"
	}
	return "Unknown"
}

func (f UpdateField) IsChannel() bool {
	return f == FieldBanLogChannel || f == FieldOnlineListChannel || f == FieldRconTerminalChannel
}

func (f UpdateField) Valid() bool { return f >= FieldServerID && f <= FieldRconTerminalChannel }

// ParseUpdateField lee la respuesta "1".."6".
func ParseUpdateField(s string) (UpdateField, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 1 || s[0] < '1' || s[0] > '6' {
		return 0, false
	}
	return UpdateField(s[0] - '0'), true
}

// Patch valida value y arma el parche; los canales ya vienen resueltos.
func (f UpdateField) Patch(value string) (ConfigPatch, error) {
	var p ConfigPatch
	switch f {
	case FieldServerID:
		v, err := ValidateServerID(value)
		if err != nil {
			return p, err
		}
		p.ServerID = &v
	case FieldDisplayName:
		v, err := ValidateDisplayName(value)
		if err != nil {
			return p, err
		}
		p.DisplayName = &v
	case FieldAPIToken:
		v, err := ValidateToken(value)
		if err != nil {
			return p, err
		}
		p.APIToken = &v
	case FieldBanLogChannel:
		p.BanLogChannelID = &value
	case FieldOnlineListChannel:
		p.OnlineListChannelID = &value
	case FieldRconTerminalChannel:
		p.RconTerminalChannelID = &value
	default:
		return p, invalid("field", "unknown field")
	}
	return p, nil
}
