package rcon

import (
	"regexp"
	"strings"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

var reNumericID = regexp.MustCompile(`^\d+$`)

// ParsePlayers filtra el blob de #players: fila válida = al menos dos ';'
// y primer campo numérico. Cabeceras, pies y vacías se descartan.
func ParsePlayers(raw string) []domain.OnlinePlayer {
	out := []domain.OnlinePlayer{}
	for _, line := range splitLines(raw) {
		if strings.Count(line, ";") < 2 {
			continue
		}
		parts := strings.SplitN(line, ";", 3)
		id := strings.TrimSpace(parts[0])
		if !reNumericID.MatchString(id) {
			continue
		}
		out = append(out, domain.OnlinePlayer{
			ID:   id,
			UID:  strings.TrimSpace(parts[1]),
			Name: strings.TrimSpace(parts[2]),
		})
	}
	return out
}

// ParseBans: '|' manda sobre ';'. Se tiran cabeceras ("uid", "total bans",
// "identity id") y filas sin uid o nombre.
func ParseBans(raw string) []domain.BanEntry {
	out := []domain.BanEntry{}
	for _, line := range splitLines(raw) {
		delim := ""
		switch {
		case strings.Contains(line, "|"):
			delim = "|"
		case strings.Contains(line, ";"):
			delim = ";"
		default:
			continue
		}
		parts := strings.Split(line, delim)
		uid := strings.TrimSpace(parts[0])
		name := ""
		if len(parts) > 1 {
			name = strings.TrimSpace(parts[1])
		}
		if uid == "" || name == "" {
			continue
		}
		if isBanHeader(uid) || isBanHeader(name) {
			continue
		}
		out = append(out, domain.BanEntry{UID: uid, Name: name})
	}
	return out
}

// isBanHeader: cabeceras y pie de #ban list, en cualquiera de las columnas.
func isBanHeader(col string) bool {
	c := strings.ToLower(col)
	return c == "uid" || strings.Contains(c, "total bans") || strings.Contains(c, "identity id")
}

func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
