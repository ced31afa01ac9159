package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Paginate parte entries en páginas de size manteniendo el orden.
func Paginate(entries []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	pages := make([][]string, 0, PageCount(len(entries), size))
	for i := 0; i < len(entries); i += size {
		end := i + size
		if end > len(entries) {
			end = len(entries)
		}
		pages = append(pages, entries[i:end])
	}
	return pages
}

// PageCount = ceil(n/size).
func PageCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paged es un resultado listo para postear con navegación.
// Sin páginas se manda Empty como texto plano y no hay botones.
type Paged struct {
	Kind  string // prefijo de custom_id: "players" | "bans"
	Pages []*discordgo.MessageEmbed
	TTL   time.Duration
	Empty string
}

func (p Paged) IsEmpty() bool { return len(p.Pages) == 0 }

// Buttons arma prev/next para la página (0-based); ambos se apagan en los
// bordes y con expired=true.
func (p Paged) Buttons(session string, page int, expired bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Previous",
					Style:    discordgo.SecondaryButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "⬅️"},
					Disabled: expired || page <= 0,
					CustomID: fmt.Sprintf("%s_prev:%s", p.Kind, session),
				},
				discordgo.Button{
					Label:    "Next",
					Style:    discordgo.SecondaryButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "➡️"},
					Disabled: expired || page >= len(p.Pages)-1,
					CustomID: fmt.Sprintf("%s_next:%s", p.Kind, session),
				},
			},
		},
	}
}

func pagedEmbeds(entries []string, size int, sep string, build func(body string) *discordgo.MessageEmbed) []*discordgo.MessageEmbed {
	pages := Paginate(entries, size)
	out := make([]*discordgo.MessageEmbed, 0, len(pages))
	for i, pg := range pages {
		e := build(strings.Join(pg, sep))
		e.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d/%d", i+1, len(pages))}
		out = append(out, e)
	}
	return out
}
